package repositories

import (
	"context"
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
)

// CurrencyRepository defines persistence operations for currency master data.
type CurrencyRepository interface {
	// SaveCurrency persists a new currency.
	SaveCurrency(ctx context.Context, currency domain.Currency) error

	// FindCurrencyByCode retrieves a currency by its 3-letter code.
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// FindFunctionalCurrency retrieves the currency currently flagged functional.
	FindFunctionalCurrency(ctx context.Context) (*domain.Currency, error)

	// SetFunctionalCurrency atomically clears the previous functional flag and
	// sets it on the given currency, preserving exactly-one-true.
	SetFunctionalCurrency(ctx context.Context, currencyCode string, userID string, now time.Time) error
}
