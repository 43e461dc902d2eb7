package dto

import (
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceResponse is a trial balance projection: functional debit and
// credit sums per account. Difference is always zero for a consistent ledger.
type TrialBalanceResponse struct {
	AsOf        time.Time                `json:"asOf"`
	Rows        []domain.TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal          `json:"totalDebit"`
	TotalCredit decimal.Decimal          `json:"totalCredit"`
	Difference  decimal.Decimal          `json:"difference"`
}

// IncomeStatementParams holds the reporting period for an income statement.
type IncomeStatementParams struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
}

// AccountingEquationResponse reports both sides of assets = liabilities + equity.
type AccountingEquationResponse struct {
	Assets            decimal.Decimal `json:"assets"`
	LiabilitiesEquity decimal.Decimal `json:"liabilitiesEquity"`
	Holds             bool            `json:"holds"`
}
