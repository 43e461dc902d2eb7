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
	"github.com/ledgerforge/gl_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fiscalYearColumns = `fiscal_year_id, begin_time, end_time, post_time, created_at, created_by, last_updated_at, last_updated_by`

type PgxFiscalYearRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxFiscalYearRepository creates a new repository for fiscal year data.
func newPgxFiscalYearRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.FiscalYearRepository {
	return &PgxFiscalYearRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.FiscalYearRepository = (*PgxFiscalYearRepository)(nil)

func scanFiscalYear(row pgx.Row) (*models.FiscalYear, error) {
	var m models.FiscalYear
	err := row.Scan(
		&m.FiscalYearID,
		&m.BeginTime,
		&m.EndTime,
		&m.PostTime,
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

// SaveFiscalYear persists a new open fiscal year.
func (r *PgxFiscalYearRepository) SaveFiscalYear(ctx context.Context, year domain.FiscalYear) error {
	m := mapping.ToModelFiscalYear(year)

	query := `
		INSERT INTO fiscal_years (` + fiscalYearColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.FiscalYearID,
		m.BeginTime,
		m.EndTime,
		m.PostTime,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: fiscal year beginning %s already exists",
				apperrors.ErrDuplicate, m.BeginTime.Format(time.RFC3339))
		}
		return fmt.Errorf("failed to save fiscal year %s: %w", m.FiscalYearID, err)
	}
	return nil
}

// FindFiscalYearByBegin retrieves the fiscal year starting at begin.
func (r *PgxFiscalYearRepository) FindFiscalYearByBegin(ctx context.Context, begin time.Time) (*domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE begin_time = $1;`

	m, err := scanFiscalYear(r.Pool.QueryRow(ctx, query, begin))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fiscal year beginning %s: %w", begin.Format(time.RFC3339), err)
	}

	year := mapping.ToDomainFiscalYear(*m)
	return &year, nil
}

// FindOverlappingFiscalYear retrieves any fiscal year overlapping [begin, end).
func (r *PgxFiscalYearRepository) FindOverlappingFiscalYear(ctx context.Context, begin, end time.Time) (*domain.FiscalYear, error) {
	query := `
		SELECT ` + fiscalYearColumns + `
		FROM fiscal_years
		WHERE begin_time < $2 AND $1 < end_time
		ORDER BY begin_time
		LIMIT 1;
	`
	m, err := scanFiscalYear(r.Pool.QueryRow(ctx, query, begin, end))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find overlapping fiscal year: %w", err)
	}

	year := mapping.ToDomainFiscalYear(*m)
	return &year, nil
}

// ListFiscalYears retrieves all fiscal years ordered by begin time.
func (r *PgxFiscalYearRepository) ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years ORDER BY begin_time;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fiscal years: %w", err)
	}
	defer rows.Close()

	years := []domain.FiscalYear{}
	for rows.Next() {
		m, err := scanFiscalYear(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fiscal year row: %w", err)
		}
		years = append(years, mapping.ToDomainFiscalYear(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fiscal year rows: %w", err)
	}
	return years, nil
}

// CloseFiscalYear posts the closing batch and sets the period's post_time in
// one transaction. The period row is locked first, so a concurrent close
// observes post_time already set and fails with ErrAlreadyClosed instead of
// double-posting.
func (r *PgxFiscalYearRepository) CloseFiscalYear(ctx context.Context, fiscalYearID string, postTime time.Time, batch portsrepo.ClosingBatch, userID string, now time.Time) ([]int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE fiscal_year_id = $1 FOR UPDATE;`
	locked, err := scanFiscalYear(tx.QueryRow(ctx, lockQuery, fiscalYearID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock fiscal year %s: %w", fiscalYearID, err)
	}
	if locked.PostTime != nil {
		return nil, fmt.Errorf("%w: fiscal year %s", apperrors.ErrAlreadyClosed, fiscalYearID)
	}

	refs := make([]int64, 0, len(batch.Entries))
	for _, entry := range batch.Entries {
		ref, err := insertEntryTx(ctx, tx, entry)
		if err != nil {
			return nil, err
		}
		if err := insertLinesTx(ctx, tx, ref, entry.Lines); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	if len(batch.Changes) > 0 {
		codes := make([]int64, 0, len(batch.Changes))
		for code := range batch.Changes {
			codes = append(codes, code)
		}
		locked, err := r.accountRepo.FindAccountsByCodesForUpdate(ctx, tx, codes)
		if err != nil {
			return nil, err
		}
		// The batch zeroes absolute balances as read before this transaction.
		// A swept balance that moved in the meantime would leave a residual,
		// so the close fails instead and the caller retries from a fresh read.
		for code, expected := range batch.ExpectedFunctional {
			account, ok := locked[code]
			if !ok {
				return nil, fmt.Errorf("%w: code %d", apperrors.ErrUnknownAccount, code)
			}
			if !account.BalanceFunctional.Equal(expected) {
				return nil, fmt.Errorf("%w: account %d balance changed during close", apperrors.ErrConflict, code)
			}
		}
		if err := r.accountRepo.ApplyBalanceChangesInTx(ctx, tx, batch.Changes, userID, now); err != nil {
			return nil, err
		}
	}

	closeQuery := `
		UPDATE fiscal_years
		SET post_time = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE fiscal_year_id = $1;
	`
	if _, err := tx.Exec(ctx, closeQuery, fiscalYearID, postTime, now, userID); err != nil {
		return nil, fmt.Errorf("failed to set post time for fiscal year %s: %w", fiscalYearID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return refs, nil
}
