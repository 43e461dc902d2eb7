package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portsrepo "github.com/ledgerforge/gl_backend/internal/core/ports/repositories"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/dto"
	"github.com/ledgerforge/gl_backend/internal/middleware"
)

// currencyService manages currency master data and the functional currency
// selection. The functional currency is a global singleton; the repository
// flips the flag atomically so exactly one currency is functional at any time.
type currencyService struct {
	currencyRepo portsrepo.CurrencyRepository
}

// NewCurrencyService creates a new currency service.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepository) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: currencyRepo}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

// CreateCurrency registers a new currency. The first currency registered
// becomes the functional currency by default.
func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	decimals := 2
	if req.Decimals != nil {
		decimals = *req.Decimals
	}

	currency := domain.Currency{
		CurrencyCode: req.CurrencyCode,
		Symbol:       req.Symbol,
		Name:         req.Name,
		Decimals:     decimals,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// First currency in the system becomes functional.
	if _, err := s.currencyRepo.FindFunctionalCurrency(ctx); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check functional currency: %w", err)
		}
		currency.IsFunctional = true
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save currency", slog.String("error", err.Error()), slog.String("code", currency.CurrencyCode))
		}
		return nil, err
	}

	logger.Info("Currency created", slog.String("code", currency.CurrencyCode), slog.Bool("functional", currency.IsFunctional))
	return &currency, nil
}

// GetCurrencyByCode retrieves a currency by its 3-letter code.
func (s *currencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, err
	}
	return currency, nil
}

// ListCurrencies retrieves all currencies.
func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// GetFunctionalCurrency retrieves the single functional currency.
func (s *currencyService) GetFunctionalCurrency(ctx context.Context) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindFunctionalCurrency(ctx)
	if err != nil {
		return nil, err
	}
	return currency, nil
}

// SetFunctionalCurrency flips the functional flag to the given currency.
// The previous flag is cleared and the new one set in a single transaction.
func (s *currencyService) SetFunctionalCurrency(ctx context.Context, currencyCode string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidCurrency, currencyCode)
		}
		return err
	}

	now := time.Now().UTC()
	if err := s.currencyRepo.SetFunctionalCurrency(ctx, currencyCode, userID, now); err != nil {
		logger.Error("Failed to set functional currency", slog.String("error", err.Error()), slog.String("code", currencyCode))
		return fmt.Errorf("failed to set functional currency: %w", err)
	}

	logger.Info("Functional currency changed", slog.String("code", currencyCode))
	return nil
}
