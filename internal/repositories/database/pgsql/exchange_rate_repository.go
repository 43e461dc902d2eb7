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
	"github.com/jackc/pgx/v5/pgxpool"
)

const exchangeRateColumns = `exchange_rate_id, from_currency_code, to_currency_code, rate, rate_date, source, created_at, created_by, last_updated_at, last_updated_by`

type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new repository for exchange rate data.
func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepository {
	return &PgxExchangeRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ExchangeRateRepository = (*PgxExchangeRateRepository)(nil)

func scanExchangeRate(row pgx.Row) (*models.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(
		&m.ExchangeRateID,
		&m.FromCurrencyCode,
		&m.ToCurrencyCode,
		&m.Rate,
		&m.RateDate,
		&m.Source,
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

// UpsertExchangeRate inserts a rate or, when the (from, to, rate date) key
// already exists, amends rate and source in place. The stored row is returned
// so callers see the surviving record's identity.
func (r *PgxExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) (*domain.ExchangeRate, error) {
	m := mapping.ToModelExchangeRate(rate)

	query := `
		INSERT INTO exchange_rates (` + exchangeRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (from_currency_code, to_currency_code, rate_date)
		DO UPDATE SET rate = EXCLUDED.rate,
		              source = EXCLUDED.source,
		              last_updated_at = EXCLUDED.last_updated_at,
		              last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + exchangeRateColumns + `;
	`
	stored, err := scanExchangeRate(r.Pool.QueryRow(ctx, query,
		m.ExchangeRateID,
		m.FromCurrencyCode,
		m.ToCurrencyCode,
		m.Rate,
		m.RateDate,
		m.Source,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert exchange rate %s/%s: %w", m.FromCurrencyCode, m.ToCurrencyCode, err)
	}

	result := mapping.ToDomainExchangeRate(*stored)
	return &result, nil
}

// UpdateExchangeRate amends the non-key fields of an existing rate record.
func (r *PgxExchangeRateRepository) UpdateExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	m := mapping.ToModelExchangeRate(rate)

	query := `
		UPDATE exchange_rates
		SET rate = $2,
		    source = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE exchange_rate_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, m.ExchangeRateID, m.Rate, m.Source, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update exchange rate %s: %w", m.ExchangeRateID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("exchange rate " + m.ExchangeRateID + " not found for update")
	}
	return nil
}

// FindExchangeRateByID retrieves a rate record by its ID.
func (r *PgxExchangeRateRepository) FindExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	query := `SELECT ` + exchangeRateColumns + ` FROM exchange_rates WHERE exchange_rate_id = $1;`

	m, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, rateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find exchange rate %s: %w", rateID, err)
	}

	rate := mapping.ToDomainExchangeRate(*m)
	return &rate, nil
}

// FindLatestRate retrieves the rate with the most recent rate_date at or
// before asOf for a pair. A pair with no usable rate yields
// apperrors.ErrRateUnavailable, never a default rate.
func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND rate_date <= $3
		ORDER BY rate_date DESC
		LIMIT 1;
	`
	m, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, fromCode, toCode, asOf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s to %s at %s", apperrors.ErrRateUnavailable,
				fromCode, toCode, asOf.Format(time.RFC3339))
		}
		return nil, fmt.Errorf("failed to find latest rate %s/%s: %w", fromCode, toCode, err)
	}

	rate := mapping.ToDomainExchangeRate(*m)
	return &rate, nil
}

// ListRates retrieves the rate history for a pair, newest first.
func (r *PgxExchangeRateRepository) ListRates(ctx context.Context, fromCode, toCode string, limit int) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2
		ORDER BY rate_date DESC
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, fromCode, toCode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange rates %s/%s: %w", fromCode, toCode, err)
	}
	defer rows.Close()

	rates := []domain.ExchangeRate{}
	for rows.Next() {
		m, err := scanExchangeRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate row: %w", err)
		}
		rates = append(rates, mapping.ToDomainExchangeRate(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange rate rows: %w", err)
	}
	return rates, nil
}
