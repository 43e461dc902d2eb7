package models

import (
	"github.com/shopspring/decimal"
)

// AccountType is a reference row pairing a type name with its normal balance.
type AccountType struct {
	Name          string `db:"name"`
	NormalBalance string `db:"normal_balance"`
	Category      string `db:"category"`
	IsContra      bool   `db:"is_contra"`
	IsTemporary   bool   `db:"is_temporary"`
	AuditFields
}

// Account represents a row of the accounts table. Balance columns are only
// written by the posting engine, inside the same transaction that inserts the
// posted lines.
type Account struct {
	Code              int64           `db:"code"`
	Name              string          `db:"name"`
	AccountTypeName   string          `db:"account_type_name"`
	CurrencyCode      string          `db:"currency_code"`
	Balance           decimal.Decimal `db:"balance"`
	BalanceFunctional decimal.Decimal `db:"balance_functional"`
	AuditFields
}
