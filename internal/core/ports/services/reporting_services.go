package services

import (
	"context"
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/ledgerforge/gl_backend/internal/dto"
)

// ReportingSvcFacade defines the read-only projections exposed to consumers
// of ledger state. These are pure derivations and carry no extra invariants.
type ReportingSvcFacade interface {
	// TrialBalance generates the functional-currency trial balance as of a date.
	TrialBalance(ctx context.Context, asOf time.Time) (*dto.TrialBalanceResponse, error)

	// IncomeStatement generates an income statement over a posting period.
	IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error)

	// BalanceSheet generates a balance sheet as of a point in time.
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)

	// ConvertedBalances re-expresses every account balance in the target
	// currency. Accounts lacking a rate are reported as excluded, never
	// converted at par.
	ConvertedBalances(ctx context.Context, targetCurrency string, asOf time.Time) (*domain.ConvertedBalancesReport, error)
}
