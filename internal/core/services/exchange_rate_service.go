package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portsrepo "github.com/ledgerforge/gl_backend/internal/core/ports/repositories"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/dto"
	"github.com/ledgerforge/gl_backend/internal/middleware"
	"github.com/ledgerforge/gl_backend/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// defaultSanityCeiling rejects obviously fat-fingered rates at data entry.
var defaultSanityCeiling = decimal.NewFromInt(1_000_000)

// exchangeRateService provides business logic for exchange rate time series.
type exchangeRateService struct {
	rateRepo      portsrepo.ExchangeRateRepository
	currencySvc   portssvc.CurrencySvcFacade
	sanityCeiling decimal.Decimal
}

// ExchangeRateServiceOption is a functional option for the rate service.
type ExchangeRateServiceOption func(*exchangeRateService)

// WithSanityCeiling overrides the data-entry guard for recorded rates.
func WithSanityCeiling(ceiling decimal.Decimal) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		if ceiling.IsPositive() {
			s.sanityCeiling = ceiling
		}
	}
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepository, currencySvc portssvc.CurrencySvcFacade, options ...ExchangeRateServiceOption) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{
		rateRepo:      rateRepo,
		currencySvc:   currencySvc,
		sanityCeiling: defaultSanityCeiling,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// RecordRate records an exchange rate for a pair and date. Recording an
// existing (from, to, date) key amends rate and source in place; the key
// itself never changes.
func (s *exchangeRateService) RecordRate(ctx context.Context, req dto.RecordRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	fromCode := strings.ToUpper(req.FromCurrencyCode)
	toCode := strings.ToUpper(req.ToCurrencyCode)

	if fromCode == toCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if req.Rate.GreaterThan(s.sanityCeiling) {
		return nil, fmt.Errorf("%w: exchange rate %s exceeds sanity ceiling %s", apperrors.ErrValidation, req.Rate, s.sanityCeiling)
	}
	if req.RateDate.After(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: rate date cannot be in the future", apperrors.ErrValidation)
	}

	for _, code := range []string{fromCode, toCode} {
		if _, err := s.currencySvc.GetCurrencyByCode(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidCurrency, code)
			}
			return nil, fmt.Errorf("failed to validate currency %q: %w", code, err)
		}
	}

	now := time.Now().UTC()
	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		Rate:             req.Rate,
		RateDate:         req.RateDate,
		Source:           req.Source,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	stored, err := s.rateRepo.UpsertExchangeRate(ctx, rate)
	if err != nil {
		logger.Error("Failed to record exchange rate", slog.String("error", err.Error()),
			slog.String("from", fromCode), slog.String("to", toCode))
		return nil, fmt.Errorf("failed to record exchange rate: %w", err)
	}

	logger.Info("Exchange rate recorded", slog.String("from", fromCode), slog.String("to", toCode),
		slog.String("rate", stored.Rate.String()), slog.String("source", stored.Source))
	return stored, nil
}

// UpdateRate amends the non-key fields of an existing rate record. Any
// attempt to change from, to or rate date fails with ErrImmutableKey: the
// key identity of a historical rate must never change.
func (s *exchangeRateService) UpdateRate(ctx context.Context, rateID string, req dto.UpdateRateRequest, userID string) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.rateRepo.FindExchangeRateByID(ctx, rateID)
	if err != nil {
		return nil, err
	}

	if req.FromCurrencyCode != nil && strings.ToUpper(*req.FromCurrencyCode) != existing.FromCurrencyCode {
		return nil, fmt.Errorf("%w: from currency", apperrors.ErrImmutableKey)
	}
	if req.ToCurrencyCode != nil && strings.ToUpper(*req.ToCurrencyCode) != existing.ToCurrencyCode {
		return nil, fmt.Errorf("%w: to currency", apperrors.ErrImmutableKey)
	}
	if req.RateDate != nil && !req.RateDate.Equal(existing.RateDate) {
		return nil, fmt.Errorf("%w: rate date", apperrors.ErrImmutableKey)
	}

	updated := false
	if req.Rate != nil {
		if req.Rate.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
		}
		if req.Rate.GreaterThan(s.sanityCeiling) {
			return nil, fmt.Errorf("%w: exchange rate %s exceeds sanity ceiling %s", apperrors.ErrValidation, req.Rate, s.sanityCeiling)
		}
		existing.Rate = *req.Rate
		updated = true
	}
	if req.Source != nil {
		existing.Source = *req.Source
		updated = true
	}

	if !updated {
		return existing, nil
	}

	existing.LastUpdatedAt = time.Now().UTC()
	existing.LastUpdatedBy = userID

	if err := s.rateRepo.UpdateExchangeRate(ctx, *existing); err != nil {
		logger.Error("Failed to update exchange rate", slog.String("error", err.Error()), slog.String("rate_id", rateID))
		return nil, fmt.Errorf("failed to update exchange rate: %w", err)
	}

	return existing, nil
}

// LatestRate retrieves the most recent rate at or before asOf for a pair.
// Returns apperrors.ErrRateUnavailable when no historical rate exists.
func (s *exchangeRateService) LatestRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if len(fromCode) != 3 || len(toCode) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}

	rate, err := s.rateRepo.FindLatestRate(ctx, fromCode, toCode, asOf)
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// Convert converts an amount from one currency to another using the latest
// rate at or before asOf, rounded to the target currency's precision. A
// missing rate propagates as ErrRateUnavailable so callers exclude the
// amount from computation instead of converting at par.
func (s *exchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, asOf time.Time) (decimal.Decimal, *domain.ExchangeRate, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)

	if fromCode == toCode {
		return amount, nil, nil
	}

	target, err := s.currencySvc.GetCurrencyByCode(ctx, toCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidCurrency, toCode)
		}
		return decimal.Zero, nil, err
	}

	rate, err := s.LatestRate(ctx, fromCode, toCode, asOf)
	if err != nil {
		return decimal.Zero, nil, err
	}

	converted := accounting.FunctionalAmount(amount, rate.Rate, target.Decimals)
	return converted, rate, nil
}

// ListRates retrieves the rate history for a pair, newest first.
func (s *exchangeRateService) ListRates(ctx context.Context, fromCode, toCode string, limit int) ([]domain.ExchangeRate, error) {
	if limit <= 0 {
		limit = 50
	}
	rates, err := s.rateRepo.ListRates(ctx, strings.ToUpper(fromCode), strings.ToUpper(toCode), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	if rates == nil {
		return []domain.ExchangeRate{}, nil
	}
	return rates, nil
}
