package services

import (
	"context"
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/ledgerforge/gl_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// ExchangeRateSvcFacade defines operations for exchange rate time series and
// conversion. A missing rate is always an explicit apperrors.ErrRateUnavailable,
// never an implied rate of 1.0.
type ExchangeRateSvcFacade interface {
	// RecordRate records a rate for a pair and date. Recording an existing
	// (from, to, date) key amends rate and source in place.
	RecordRate(ctx context.Context, req dto.RecordRateRequest, creatorUserID string) (*domain.ExchangeRate, error)

	// UpdateRate amends an existing rate record. Attempts to change from, to
	// or rate date fail with apperrors.ErrImmutableKey.
	UpdateRate(ctx context.Context, rateID string, req dto.UpdateRateRequest, userID string) (*domain.ExchangeRate, error)

	// LatestRate retrieves the most recent rate at or before asOf for a pair.
	LatestRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error)

	// Convert converts an amount between currencies using the latest rate at
	// or before asOf, rounded to the target currency's precision.
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, asOf time.Time) (decimal.Decimal, *domain.ExchangeRate, error)

	// ListRates retrieves the rate history for a pair, newest first.
	ListRates(ctx context.Context, fromCode, toCode string, limit int) ([]domain.ExchangeRate, error)
}
