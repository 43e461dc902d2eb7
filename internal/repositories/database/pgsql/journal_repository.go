package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
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

const entryColumns = `ref, transaction_time, note, transaction_currency_code, exchange_rate_to_functional, post_time, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_ref, line_order, account_code, debit, credit, debit_functional, credit_functional, foreign_currency_amount, foreign_currency_code, exchange_rate, created_at, created_by, last_updated_at, last_updated_by`

// qualifyColumns prefixes every column in a comma-separated list with a table
// alias, for use in joined queries.
func qualifyColumns(alias, columns string) string {
	return alias + "." + strings.ReplaceAll(columns, ", ", ", "+alias+".")
}

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal entry data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanEntry(row pgx.Row) (*models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.Ref,
		&m.TransactionTime,
		&m.Note,
		&m.TransactionCurrencyCode,
		&m.ExchangeRateToFunctional,
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

func scanLine(row pgx.Row) (*models.JournalEntryLine, error) {
	var m models.JournalEntryLine
	err := row.Scan(
		&m.LineID,
		&m.EntryRef,
		&m.LineOrder,
		&m.AccountCode,
		&m.Debit,
		&m.Credit,
		&m.DebitFunctional,
		&m.CreditFunctional,
		&m.ForeignCurrencyAmount,
		&m.ForeignCurrencyCode,
		&m.ExchangeRate,
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

// insertEntryTx inserts a journal entry header inside tx and returns the
// BIGSERIAL ref assigned by the database. Skipped serial values leave gaps;
// refs stay strictly increasing either way.
func insertEntryTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) (int64, error) {
	m := mapping.ToModelJournalEntry(entry)

	query := `
		INSERT INTO journal_entries (transaction_time, note, transaction_currency_code, exchange_rate_to_functional, post_time, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ref;
	`
	var ref int64
	err := tx.QueryRow(ctx, query,
		m.TransactionTime,
		m.Note,
		m.TransactionCurrencyCode,
		m.ExchangeRateToFunctional,
		m.PostTime,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	).Scan(&ref)
	if err != nil {
		return 0, fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return ref, nil
}

// insertLinesTx batch-inserts entry lines inside tx.
func insertLinesTx(ctx context.Context, tx pgx.Tx, ref int64, lines []domain.JournalEntryLine) error {
	query := `
		INSERT INTO journal_entry_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		m := mapping.ToModelJournalEntryLine(line)
		batch.Queue(query,
			m.LineID,
			ref,
			m.LineOrder,
			m.AccountCode,
			m.Debit,
			m.Credit,
			m.DebitFunctional,
			m.CreditFunctional,
			m.ForeignCurrencyAmount,
			m.ForeignCurrencyCode,
			m.ExchangeRate,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert lines for entry %d: %w", ref, err)
	}
	return nil
}

// lockEntryTx selects an entry header FOR UPDATE inside tx.
func lockEntryTx(ctx context.Context, tx pgx.Tx, ref int64) (*models.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE ref = $1 FOR UPDATE;`
	m, err := scanEntry(tx.QueryRow(ctx, query, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock journal entry %d: %w", ref, err)
	}
	return m, nil
}

// SaveDraftEntry persists an unposted entry with its lines and returns the
// assigned ref.
func (r *PgxJournalRepository) SaveDraftEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	ref, err := insertEntryTx(ctx, tx, entry)
	if err != nil {
		return 0, err
	}
	if err := insertLinesTx(ctx, tx, ref, lines); err != nil {
		return 0, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return ref, nil
}

// UpdateDraftEntry replaces a draft's header fields and line set. The header
// is locked first so a concurrent post cannot slip between the check and the
// rewrite.
func (r *PgxJournalRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	locked, err := lockEntryTx(ctx, tx, entry.Ref)
	if err != nil {
		return err
	}
	if locked.PostTime != nil {
		return fmt.Errorf("%w: entry %d", apperrors.ErrPostedImmutable, entry.Ref)
	}

	m := mapping.ToModelJournalEntry(entry)
	headerQuery := `
		UPDATE journal_entries
		SET transaction_time = $2,
		    note = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE ref = $1;
	`
	if _, err := tx.Exec(ctx, headerQuery, m.Ref, m.TransactionTime, m.Note, m.LastUpdatedAt, m.LastUpdatedBy); err != nil {
		return fmt.Errorf("failed to update journal entry %d: %w", m.Ref, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_ref = $1;`, m.Ref); err != nil {
		return fmt.Errorf("failed to delete lines for entry %d: %w", m.Ref, err)
	}
	if err := insertLinesTx(ctx, tx, m.Ref, lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeleteDraftEntry removes an unposted entry and its lines.
func (r *PgxJournalRepository) DeleteDraftEntry(ctx context.Context, ref int64) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	locked, err := lockEntryTx(ctx, tx, ref)
	if err != nil {
		return err
	}
	if locked.PostTime != nil {
		return fmt.Errorf("%w: entry %d", apperrors.ErrPostedImmutable, ref)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_ref = $1;`, ref); err != nil {
		return fmt.Errorf("failed to delete lines for entry %d: %w", ref, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE ref = $1;`, ref); err != nil {
		return fmt.Errorf("failed to delete journal entry %d: %w", ref, err)
	}

	return r.Commit(ctx, tx)
}

// PostEntry sets post_time and applies the per-account balance changes as one
// atomic unit. The entry header and every affected account are locked for the
// duration, so concurrent posts of entries sharing accounts serialize. The
// header's last_updated_at must still match the read the changes came from;
// a draft rewritten in between would otherwise be posted with balance deltas
// derived from its old line set.
func (r *PgxJournalRepository) PostEntry(ctx context.Context, ref int64, postTime, expectedLastUpdatedAt time.Time, changes map[int64]accounting.BalanceDelta, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	locked, err := lockEntryTx(ctx, tx, ref)
	if err != nil {
		return err
	}
	if locked.PostTime != nil {
		return fmt.Errorf("%w: entry %d", apperrors.ErrAlreadyPosted, ref)
	}
	if !locked.LastUpdatedAt.Equal(expectedLastUpdatedAt) {
		return fmt.Errorf("%w: entry %d changed after it was read", apperrors.ErrConflict, ref)
	}

	if err := r.applyChangesTx(ctx, tx, changes, userID, now); err != nil {
		return err
	}

	postQuery := `
		UPDATE journal_entries
		SET post_time = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE ref = $1;
	`
	if _, err := tx.Exec(ctx, postQuery, ref, postTime, now, userID); err != nil {
		return fmt.Errorf("failed to set post time for entry %d: %w", ref, err)
	}

	return r.Commit(ctx, tx)
}

// SaveCompensatingEntry inserts an already-posted compensating entry, its
// lines, the original→compensating link and the balance changes in one
// transaction. The PRIMARY KEY on entry_links.original_ref turns a second
// compensation of the same entry into a unique violation.
func (r *PgxJournalRepository) SaveCompensatingEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, link domain.EntryLink, changes map[int64]accounting.BalanceDelta) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	ref, err := insertEntryTx(ctx, tx, entry)
	if err != nil {
		return 0, err
	}
	if err := insertLinesTx(ctx, tx, ref, lines); err != nil {
		return 0, err
	}

	linkQuery := `
		INSERT INTO entry_links (original_ref, compensating_ref, kind, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.Exec(ctx, linkQuery,
		link.OriginalRef,
		ref,
		string(link.Kind),
		link.CreatedAt,
		link.CreatedBy,
		link.LastUpdatedAt,
		link.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: entry %d", apperrors.ErrAlreadyProcessed, link.OriginalRef)
		}
		return 0, fmt.Errorf("failed to insert entry link for %d: %w", link.OriginalRef, err)
	}

	if err := r.applyChangesTx(ctx, tx, changes, entry.CreatedBy, entry.CreatedAt); err != nil {
		return 0, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return ref, nil
}

func (r *PgxJournalRepository) applyChangesTx(ctx context.Context, tx pgx.Tx, changes map[int64]accounting.BalanceDelta, userID string, now time.Time) error {
	codes := make([]int64, 0, len(changes))
	for code := range changes {
		codes = append(codes, code)
	}

	if _, err := r.accountRepo.FindAccountsByCodesForUpdate(ctx, tx, codes); err != nil {
		return err
	}
	return r.accountRepo.ApplyBalanceChangesInTx(ctx, tx, changes, userID, now)
}

// FindEntryByRef retrieves a journal entry header by ref.
func (r *PgxJournalRepository) FindEntryByRef(ctx context.Context, ref int64) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE ref = $1;`

	m, err := scanEntry(r.Pool.QueryRow(ctx, query, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal entry %d: %w", ref, err)
	}

	entry := mapping.ToDomainJournalEntry(*m)
	return &entry, nil
}

// FindLinesByRef retrieves an entry's lines ordered by line_order.
func (r *PgxJournalRepository) FindLinesByRef(ctx context.Context, ref int64) ([]domain.JournalEntryLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_entry_lines WHERE entry_ref = $1 ORDER BY line_order;`

	rows, err := r.Pool.Query(ctx, query, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %d: %w", ref, err)
	}
	defer rows.Close()

	lines := []models.JournalEntryLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %d: %w", ref, err)
		}
		lines = append(lines, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %d: %w", ref, err)
	}

	return mapping.ToDomainJournalEntryLineSlice(lines), nil
}

// ListEntries retrieves a page of entries ordered by ref using token-based
// pagination.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	fetchLimit := limit + 1

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	args := []interface{}{}
	if nextToken != nil && *nextToken != "" {
		lastRef, decodeErr := pagination.DecodeRefToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` WHERE ref > $1`
		args = append(args, lastRef)
	}
	query += ` ORDER BY ref LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		modelEntries = append(modelEntries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}

	var nextTokenVal *string
	if len(modelEntries) > limit {
		token := pagination.EncodeRefToken(modelEntries[limit-1].Ref)
		nextTokenVal = &token
		modelEntries = modelEntries[:limit]
	}

	entries := make([]domain.JournalEntry, len(modelEntries))
	for i, m := range modelEntries {
		entries[i] = mapping.ToDomainJournalEntry(m)
	}
	return entries, nextTokenVal, nil
}

// FindLinkByOriginalRef retrieves the compensating link for an entry.
func (r *PgxJournalRepository) FindLinkByOriginalRef(ctx context.Context, originalRef int64) (*domain.EntryLink, error) {
	query := `
		SELECT original_ref, compensating_ref, kind, created_at, created_by, last_updated_at, last_updated_by
		FROM entry_links
		WHERE original_ref = $1;
	`
	var m models.EntryLink
	err := r.Pool.QueryRow(ctx, query, originalRef).Scan(
		&m.OriginalRef,
		&m.CompensatingRef,
		&m.Kind,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry link for %d: %w", originalRef, err)
	}

	link := mapping.ToDomainEntryLink(m)
	return &link, nil
}

// ListLinesByAccountCode retrieves a page of posted lines for an account,
// newest entry first. The cursor is (entry_ref, line_order), which is unique
// and stable.
func (r *PgxJournalRepository) ListLinesByAccountCode(ctx context.Context, accountCode int64, limit int, nextToken *string) ([]domain.JournalEntryLine, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + qualifyColumns("l", lineColumns) + `
		FROM journal_entry_lines l
		JOIN journal_entries e ON l.entry_ref = e.ref
		WHERE l.account_code = $1 AND e.post_time IS NOT NULL
	`
	orderByClause := `ORDER BY l.entry_ref DESC, l.line_order`

	args := []interface{}{accountCode}
	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeMultiFieldToken(*nextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		lastRef, refErr := strconv.ParseInt(fields[0], 10, 64)
		lastOrder, orderErr := strconv.Atoi(fields[1])
		if refErr != nil || orderErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		baseQuery += ` AND (l.entry_ref < $2 OR (l.entry_ref = $2 AND l.line_order > $3))`
		args = append(args, lastRef, lastOrder)
	}

	query := baseQuery + " " + orderByClause + ` LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query lines for account %d: %w", accountCode, err)
	}
	defer rows.Close()

	modelLines := make([]models.JournalEntryLine, 0, fetchLimit)
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan line row for account %d: %w", accountCode, err)
		}
		modelLines = append(modelLines, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating line rows for account %d: %w", accountCode, err)
	}

	var nextTokenVal *string
	if len(modelLines) > limit {
		last := modelLines[limit-1]
		token := pagination.EncodeMultiFieldToken(
			strconv.FormatInt(last.EntryRef, 10),
			strconv.Itoa(last.LineOrder),
		)
		nextTokenVal = &token
		modelLines = modelLines[:limit]
	}

	return mapping.ToDomainJournalEntryLineSlice(modelLines), nextTokenVal, nil
}
