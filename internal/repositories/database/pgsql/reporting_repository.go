package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portsrepo "github.com/ledgerforge/gl_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface. All sums
// are over functional-currency amounts of posted lines.
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetTrialBalanceData retrieves per-account functional debit and credit sums
// over entries posted at or before asOf.
func (r *reportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.code,
			a.name,
			a.account_type_name,
			COALESCE(SUM(l.debit_functional), 0) AS total_debit,
			COALESCE(SUM(l.credit_functional), 0) AS total_credit
		FROM journal_entry_lines l
		JOIN accounts a ON l.account_code = a.code
		JOIN journal_entries e ON l.entry_ref = e.ref
		WHERE e.post_time IS NOT NULL
			AND e.post_time <= $1
		GROUP BY a.code, a.name, a.account_type_name
		ORDER BY a.code
	`

	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying trial balance data: %w", err)
	}
	defer rows.Close()

	var result []domain.TrialBalanceRow
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(
			&row.AccountCode,
			&row.AccountName,
			&row.AccountType,
			&row.Debit,
			&row.Credit,
		); err != nil {
			return nil, fmt.Errorf("error scanning trial balance row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}

	if len(result) == 0 {
		return []domain.TrialBalanceRow{}, nil
	}
	return result, nil
}

// GetIncomeStatementData retrieves net amounts for revenue, cogs and expense
// category accounts over a posting period. Nets are signed by each type's
// normal balance, so contra types come back negative and offset their
// category without special handling upstream.
func (r *reportingRepository) GetIncomeStatementData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error) {
	query := `
		SELECT
			a.code,
			a.name,
			t.name AS type_name,
			t.category,
			t.normal_balance,
			SUM(l.debit_functional - l.credit_functional) AS net
		FROM journal_entry_lines l
		JOIN accounts a ON l.account_code = a.code
		JOIN account_types t ON a.account_type_name = t.name
		JOIN journal_entries e ON l.entry_ref = e.ref
		WHERE e.post_time IS NOT NULL
			AND e.post_time >= $1 AND e.post_time < $2
			AND t.category IN ('REVENUE', 'EXPENSE')
		GROUP BY a.code, a.name, t.name, t.category, t.normal_balance
		ORDER BY a.code
	`

	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error querying income statement data: %w", err)
	}
	defer rows.Close()

	revenue := []domain.AccountAmount{}
	cogs := []domain.AccountAmount{}
	expenses := []domain.AccountAmount{}

	for rows.Next() {
		var code int64
		var name, typeName, category, normalBalance string
		var net decimal.Decimal

		if err := rows.Scan(&code, &name, &typeName, &category, &normalBalance, &net); err != nil {
			return nil, nil, nil, fmt.Errorf("error scanning income statement row: %w", err)
		}

		// net is debit minus credit; flip for credit-normal types so every
		// amount reads in the account's own direction.
		if normalBalance == string(domain.NormalCredit) {
			net = net.Neg()
		}

		amount := domain.AccountAmount{AccountCode: code, Name: name, NetAmount: net}
		switch {
		case category == string(domain.CategoryRevenue):
			revenue = append(revenue, amount)
		case typeName == domain.TypeCOGS:
			cogs = append(cogs, amount)
		default:
			expenses = append(expenses, amount)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("error iterating income statement rows: %w", err)
	}

	return revenue, cogs, expenses, nil
}

// GetBalanceSheetData retrieves net amounts for asset, liability and equity
// category accounts as of a point in time.
func (r *reportingRepository) GetBalanceSheetData(ctx context.Context, asOf time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error) {
	query := `
		SELECT
			a.code,
			a.name,
			t.category,
			SUM(l.debit_functional - l.credit_functional) AS net
		FROM journal_entry_lines l
		JOIN accounts a ON l.account_code = a.code
		JOIN account_types t ON a.account_type_name = t.name
		JOIN journal_entries e ON l.entry_ref = e.ref
		WHERE e.post_time IS NOT NULL
			AND e.post_time <= $1
			AND t.category IN ('ASSET', 'LIABILITY', 'EQUITY')
		GROUP BY a.code, a.name, t.category
		ORDER BY a.code
	`

	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error querying balance sheet data: %w", err)
	}
	defer rows.Close()

	assets := []domain.AccountAmount{}
	liabilities := []domain.AccountAmount{}
	equity := []domain.AccountAmount{}

	for rows.Next() {
		var code int64
		var name, category string
		var net decimal.Decimal

		if err := rows.Scan(&code, &name, &category, &net); err != nil {
			return nil, nil, nil, fmt.Errorf("error scanning balance sheet row: %w", err)
		}

		// Express each amount in its category's direction: assets read
		// debit-positive, liabilities and equity credit-positive. Contra
		// types then come back negative and offset their category.
		if category != string(domain.CategoryAsset) {
			net = net.Neg()
		}

		amount := domain.AccountAmount{AccountCode: code, Name: name, NetAmount: net}
		switch category {
		case string(domain.CategoryAsset):
			assets = append(assets, amount)
		case string(domain.CategoryLiability):
			liabilities = append(liabilities, amount)
		default:
			equity = append(equity, amount)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("error iterating balance sheet rows: %w", err)
	}

	return assets, liabilities, equity, nil
}
