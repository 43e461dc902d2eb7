package repositories

import (
	"context"
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
)

// ReportingRepository defines read-only projections over posted ledger state.
type ReportingRepository interface {
	// GetTrialBalanceData retrieves functional debit/credit sums per account
	// over lines posted at or before asOf.
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetIncomeStatementData retrieves net amounts for revenue (net of
	// contra-revenue), cogs and expense accounts over a posting period.
	GetIncomeStatementData(ctx context.Context, from, to time.Time) (revenue, cogs, expenses []domain.AccountAmount, err error)

	// GetBalanceSheetData retrieves net amounts for asset, liability and
	// equity accounts as of a point in time.
	GetBalanceSheetData(ctx context.Context, asOf time.Time) (assets, liabilities, equity []domain.AccountAmount, err error)
}
