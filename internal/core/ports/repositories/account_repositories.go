package repositories

import (
	"context"
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/ledgerforge/gl_backend/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
)

// AccountReader defines read operations for account and account type data.
type AccountReader interface {
	// FindAccountByCode retrieves a specific account by its numeric code.
	FindAccountByCode(ctx context.Context, code int64) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code.
	FindAccountsByCodes(ctx context.Context, codes []int64) (map[int64]domain.Account, error)

	// ListAccounts retrieves a page of accounts ordered by code.
	ListAccounts(ctx context.Context, limit int, nextToken *string) ([]domain.Account, *string, error)

	// ListAccountsByTypes retrieves all accounts whose type is in the given set.
	ListAccountsByTypes(ctx context.Context, typeNames []string) ([]domain.Account, error)

	// FindAccountType retrieves an account type by name.
	FindAccountType(ctx context.Context, name string) (*domain.AccountType, error)

	// ListAccountTypes retrieves the full account type reference set.
	ListAccountTypes(ctx context.Context) ([]domain.AccountType, error)
}

// AccountWriter defines write operations for account data. Balance columns
// are out of scope here; only the posting path may change them.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an account's mutable details (name).
	UpdateAccount(ctx context.Context, account domain.Account) error

	// SaveAccountType persists a new account type.
	SaveAccountType(ctx context.Context, accountType domain.AccountType) error
}

// AccountTransactionSupport defines account operations used inside posting
// transactions.
type AccountTransactionSupport interface {
	// FindAccountsByCodesForUpdate selects accounts and locks them for update
	// within a transaction.
	FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []int64) (map[int64]domain.Account, error)

	// ApplyBalanceChangesInTx adjusts native and functional balances for
	// multiple accounts within a given transaction.
	ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[int64]accounting.BalanceDelta, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
