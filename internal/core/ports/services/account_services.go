package services

import (
	"context"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/ledgerforge/gl_backend/internal/dto"
)

// AccountReaderSvc defines read operations for the account registry.
type AccountReaderSvc interface {
	// GetAccountByCode retrieves an account by its numeric code.
	GetAccountByCode(ctx context.Context, code int64) (*domain.Account, error)

	// GetAccountsByCodes retrieves multiple accounts keyed by code.
	GetAccountsByCodes(ctx context.Context, codes []int64) (map[int64]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error)

	// ListAccountTypes retrieves the account type reference set.
	ListAccountTypes(ctx context.Context) ([]domain.AccountType, error)

	// NormalBalanceOf reports the normal balance polarity of a type.
	NormalBalanceOf(ctx context.Context, typeName string) (domain.NormalBalance, error)
}

// AccountWriterSvc defines write operations for the account registry.
// Balances are never written here; only the posting engine changes them.
type AccountWriterSvc interface {
	// RegisterAccountType registers a new account type.
	RegisterAccountType(ctx context.Context, name string, normalBalance domain.NormalBalance, userID string) (*domain.AccountType, error)

	// CreateAccount registers a new account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an account's name. Code, type and currency are
	// immutable.
	UpdateAccount(ctx context.Context, code int64, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)
}

// AccountSvcFacade combines all account registry operations.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
