package models

// Currency represents a row of the currencies table. A partial unique index
// on is_functional guarantees at most one functional currency.
type Currency struct {
	CurrencyCode string `db:"currency_code"`
	Symbol       string `db:"symbol"`
	Name         string `db:"name"`
	Decimals     int    `db:"decimals"`
	IsFunctional bool   `db:"is_functional"`
	AuditFields
}
