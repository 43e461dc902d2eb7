package repositories

import (
	"context"
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
)

// ExchangeRateRepository defines persistence operations for exchange rates.
type ExchangeRateRepository interface {
	// UpsertExchangeRate inserts a rate, or updates rate and source in place
	// when the (from, to, rate date) key already exists. The stored record is
	// returned either way.
	UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) (*domain.ExchangeRate, error)

	// UpdateExchangeRate amends the non-key fields of an existing rate record.
	UpdateExchangeRate(ctx context.Context, rate domain.ExchangeRate) error

	// FindExchangeRateByID retrieves a rate record by its ID.
	FindExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error)

	// FindLatestRate retrieves the rate with the most recent rate date at or
	// before asOf for the pair, or apperrors.ErrRateUnavailable.
	FindLatestRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error)

	// ListRates retrieves the rate history for a pair, newest first.
	ListRates(ctx context.Context, fromCode, toCode string, limit int) ([]domain.ExchangeRate, error)
}
