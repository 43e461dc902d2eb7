package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portsrepo "github.com/ledgerforge/gl_backend/internal/core/ports/repositories"
	"github.com/ledgerforge/gl_backend/internal/models"
	"github.com/ledgerforge/gl_backend/internal/utils/accounting"
	"github.com/ledgerforge/gl_backend/internal/utils/mapping"
	"github.com/ledgerforge/gl_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `code, name, account_type_name, currency_code, balance, balance_functional, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account and account
// type data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.Code,
		&m.Name,
		&m.AccountTypeName,
		&m.CurrencyCode,
		&m.Balance,
		&m.BalanceFunctional,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.Code,
		m.Name,
		m.AccountTypeName,
		m.CurrencyCode,
		m.Balance,
		m.BalanceFunctional,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account with code %d already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save account %d: %w", m.Code, err)
	}
	return nil
}

// UpdateAccount updates an account's mutable details. Balance columns are
// deliberately absent here; only the posting path touches them.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		UPDATE accounts
		SET name = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE code = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, m.Code, m.Name, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update account %d: %w", m.Code, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("account %d not found for update", m.Code))
	}
	return nil
}

// FindAccountByCode retrieves an account by its numeric code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by code %d: %w", code, err)
	}

	account := mapping.ToDomainAccount(*m)
	return &account, nil
}

// FindAccountsByCodes retrieves multiple accounts keyed by code.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, codes []int64) (map[int64]domain.Account, error) {
	if len(codes) == 0 {
		return map[int64]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by codes: %w", err)
	}
	defer rows.Close()

	accounts := make(map[int64]domain.Account, len(codes))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[m.Code] = mapping.ToDomainAccount(*m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves a page of accounts ordered by code using token-based
// pagination.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, nextToken *string) ([]domain.Account, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	fetchLimit := limit + 1

	query := `SELECT ` + accountColumns + ` FROM accounts`
	args := []interface{}{}
	if nextToken != nil && *nextToken != "" {
		lastCode, decodeErr := pagination.DecodeRefToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` WHERE code > $1`
		args = append(args, lastCode)
	}
	query += fmt.Sprintf(` ORDER BY code LIMIT $%d;`, len(args)+1)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	modelAccounts := make([]models.Account, 0, fetchLimit)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		modelAccounts = append(modelAccounts, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	var nextTokenVal *string
	if len(modelAccounts) > limit {
		token := pagination.EncodeRefToken(modelAccounts[limit-1].Code)
		nextTokenVal = &token
		modelAccounts = modelAccounts[:limit]
	}

	accounts := make([]domain.Account, len(modelAccounts))
	for i, m := range modelAccounts {
		accounts[i] = mapping.ToDomainAccount(m)
	}
	return accounts, nextTokenVal, nil
}

// ListAccountsByTypes retrieves all accounts whose type is in the given set.
func (r *PgxAccountRepository) ListAccountsByTypes(ctx context.Context, typeNames []string) ([]domain.Account, error) {
	if len(typeNames) == 0 {
		return []domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_type_name = ANY($1) ORDER BY code;`
	rows, err := r.Pool.Query(ctx, query, typeNames)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by types: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// FindAccountType retrieves an account type by name.
func (r *PgxAccountRepository) FindAccountType(ctx context.Context, name string) (*domain.AccountType, error) {
	query := `
		SELECT name, normal_balance, category, is_contra, is_temporary, created_at, created_by, last_updated_at, last_updated_by
		FROM account_types
		WHERE name = $1;
	`
	var m models.AccountType
	err := r.Pool.QueryRow(ctx, query, name).Scan(
		&m.Name,
		&m.NormalBalance,
		&m.Category,
		&m.IsContra,
		&m.IsTemporary,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account type %q: %w", name, err)
	}

	accountType := mapping.ToDomainAccountType(m)
	return &accountType, nil
}

// ListAccountTypes retrieves the full account type reference set.
func (r *PgxAccountRepository) ListAccountTypes(ctx context.Context) ([]domain.AccountType, error) {
	query := `
		SELECT name, normal_balance, category, is_contra, is_temporary, created_at, created_by, last_updated_at, last_updated_by
		FROM account_types
		ORDER BY name;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query account types: %w", err)
	}
	defer rows.Close()

	accountTypes := []domain.AccountType{}
	for rows.Next() {
		var m models.AccountType
		if err := rows.Scan(
			&m.Name,
			&m.NormalBalance,
			&m.Category,
			&m.IsContra,
			&m.IsTemporary,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account type row: %w", err)
		}
		accountTypes = append(accountTypes, mapping.ToDomainAccountType(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account type rows: %w", err)
	}
	return accountTypes, nil
}

// SaveAccountType persists a new account type.
func (r *PgxAccountRepository) SaveAccountType(ctx context.Context, accountType domain.AccountType) error {
	m := mapping.ToModelAccountType(accountType)

	query := `
		INSERT INTO account_types (name, normal_balance, category, is_contra, is_temporary, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.Name,
		m.NormalBalance,
		m.Category,
		m.IsContra,
		m.IsTemporary,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account type %q already exists", apperrors.ErrDuplicate, m.Name)
		}
		return fmt.Errorf("failed to save account type %q: %w", m.Name, err)
	}
	return nil
}

// FindAccountsByCodesForUpdate selects accounts FOR UPDATE within a
// transaction. Accounts are locked in code order to avoid deadlocks between
// concurrent postings.
func (r *PgxAccountRepository) FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []int64) (map[int64]domain.Account, error) {
	if len(codes) == 0 {
		return map[int64]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1) ORDER BY code FOR UPDATE;`
	rows, err := tx.Query(ctx, query, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts for update: %w", err)
	}
	defer rows.Close()

	accounts := make(map[int64]domain.Account, len(codes))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accounts[m.Code] = mapping.ToDomainAccount(*m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	for _, code := range codes {
		if _, ok := accounts[code]; !ok {
			return nil, fmt.Errorf("%w: code %d", apperrors.ErrUnknownAccount, code)
		}
	}
	return accounts, nil
}

// ApplyBalanceChangesInTx adjusts native and functional balances for multiple
// accounts within a given transaction.
func (r *PgxAccountRepository) ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[int64]accounting.BalanceDelta, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    balance_functional = balance_functional + $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE code = $1;
	`
	batch := &pgx.Batch{}
	for code, delta := range changes {
		batch.Queue(query, code, delta.Native, delta.Functional, now, userID)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to apply balance changes: %w", err)
	}
	return nil
}
