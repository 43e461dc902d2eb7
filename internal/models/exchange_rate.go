package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate represents a row of the exchange_rates table, uniquely keyed
// by (from_currency_code, to_currency_code, rate_date).
type ExchangeRate struct {
	ExchangeRateID   string          `db:"exchange_rate_id"`
	FromCurrencyCode string          `db:"from_currency_code"`
	ToCurrencyCode   string          `db:"to_currency_code"`
	Rate             decimal.Decimal `db:"rate"`
	RateDate         time.Time       `db:"rate_date"`
	Source           string          `db:"source"`
	AuditFields
}
