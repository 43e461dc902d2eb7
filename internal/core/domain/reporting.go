package domain

import (
	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single row in a trial balance report.
// Amounts are functional-currency sums over posted lines.
type TrialBalanceRow struct {
	AccountCode int64           `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// AccountAmount represents an account with its net amount for financial reports.
type AccountAmount struct {
	AccountCode int64           `json:"accountCode"`
	Name        string          `json:"name"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// IncomeStatementReport covers revenue, contra-revenue, expense and cogs
// accounts over a period.
type IncomeStatementReport struct {
	Revenue       []AccountAmount `json:"revenue"`
	CostOfGoods   []AccountAmount `json:"costOfGoods"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// BalanceSheetReport represents a balance sheet as of a point in time.
type BalanceSheetReport struct {
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}

// ConvertedBalance is an account balance re-expressed in a target currency.
// Accounts for which no exchange rate exists are reported in the Excluded
// list of ConvertedBalancesReport instead of defaulting to par.
type ConvertedBalance struct {
	AccountCode int64           `json:"accountCode"`
	Name        string          `json:"name"`
	Currency    string          `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
	Converted   decimal.Decimal `json:"converted"`
}

// ConvertedBalancesReport lists converted balances plus the accounts excluded
// because no rate was available.
type ConvertedBalancesReport struct {
	TargetCurrency string             `json:"targetCurrency"`
	Balances       []ConvertedBalance `json:"balances"`
	Excluded       []AccountAmount    `json:"excluded"`
	Total          decimal.Decimal    `json:"total"`
}
