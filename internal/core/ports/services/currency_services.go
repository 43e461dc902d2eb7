package services

import (
	"context"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/ledgerforge/gl_backend/internal/dto"
)

// CurrencySvcFacade defines operations for currency master data and the
// functional currency singleton.
type CurrencySvcFacade interface {
	// CreateCurrency registers a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)

	// GetCurrencyByCode retrieves a currency by its 3-letter code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// GetFunctionalCurrency retrieves the single functional currency.
	GetFunctionalCurrency(ctx context.Context) (*domain.Currency, error)

	// SetFunctionalCurrency atomically flips the functional flag to the given
	// currency, keeping exactly one functional currency at all times.
	SetFunctionalCurrency(ctx context.Context, currencyCode string, userID string) error
}
