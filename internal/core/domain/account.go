package domain

import (
	"github.com/shopspring/decimal"
)

// NormalBalance indicates whether increases to an account type are recorded
// as debits or as credits.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// AccountCategory groups account types for reporting and for the accounting
// equation (assets = liabilities + equity).
type AccountCategory string

const (
	CategoryAsset     AccountCategory = "ASSET"
	CategoryLiability AccountCategory = "LIABILITY"
	CategoryEquity    AccountCategory = "EQUITY"
	CategoryRevenue   AccountCategory = "REVENUE"
	CategoryExpense   AccountCategory = "EXPENSE"
)

// AccountType is a reference record pairing a type name with its normal
// balance polarity. The set is fixed and seeded; a type is immutable once any
// account references it.
type AccountType struct {
	Name          string        `json:"name"`
	NormalBalance NormalBalance `json:"normalBalance"`
	Category      AccountCategory
	// IsContra marks types that offset their category (contra_asset etc.).
	IsContra bool
	// IsTemporary marks types zeroed into retained earnings at period close.
	IsTemporary bool
	AuditFields
}

// Standard account type names.
const (
	TypeAsset           = "asset"
	TypeContraAsset     = "contra_asset"
	TypeLiability       = "liability"
	TypeContraLiability = "contra_liability"
	TypeEquity          = "equity"
	TypeContraEquity    = "contra_equity"
	TypeRevenue         = "revenue"
	TypeContraRevenue   = "contra_revenue"
	TypeExpense         = "expense"
	TypeContraExpense   = "contra_expense"
	TypeCOGS            = "cogs"
	TypeDividend        = "dividend"
)

// StandardAccountTypes is the fixed reference set of account types.
var StandardAccountTypes = []AccountType{
	{Name: TypeAsset, NormalBalance: NormalDebit, Category: CategoryAsset},
	{Name: TypeContraAsset, NormalBalance: NormalCredit, Category: CategoryAsset, IsContra: true},
	{Name: TypeLiability, NormalBalance: NormalCredit, Category: CategoryLiability},
	{Name: TypeContraLiability, NormalBalance: NormalDebit, Category: CategoryLiability, IsContra: true},
	{Name: TypeEquity, NormalBalance: NormalCredit, Category: CategoryEquity},
	{Name: TypeContraEquity, NormalBalance: NormalDebit, Category: CategoryEquity, IsContra: true},
	{Name: TypeRevenue, NormalBalance: NormalCredit, Category: CategoryRevenue, IsTemporary: true},
	{Name: TypeContraRevenue, NormalBalance: NormalDebit, Category: CategoryRevenue, IsContra: true, IsTemporary: true},
	{Name: TypeExpense, NormalBalance: NormalDebit, Category: CategoryExpense, IsTemporary: true},
	{Name: TypeContraExpense, NormalBalance: NormalCredit, Category: CategoryExpense, IsContra: true},
	{Name: TypeCOGS, NormalBalance: NormalDebit, Category: CategoryExpense, IsTemporary: true},
	{Name: TypeDividend, NormalBalance: NormalDebit, Category: CategoryEquity, IsTemporary: true},
}

// Account represents a financial account within the ledger. Code is the
// externally meaningful numeric identifier and is immutable. Balance is the
// running total in the account's own currency; BalanceFunctional tracks the
// same total expressed in the functional (reporting) currency. Both are
// signed by the account's normal balance and only the posting engine may
// change them.
type Account struct {
	Code              int64           `json:"code"`
	Name              string          `json:"name"`
	AccountTypeName   string          `json:"accountType"`
	CurrencyCode      string          `json:"currencyCode"`
	Balance           decimal.Decimal `json:"balance"`
	BalanceFunctional decimal.Decimal `json:"balanceFunctional"`
	AuditFields
}
