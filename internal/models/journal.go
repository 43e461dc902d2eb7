package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry represents a row of the journal_entries table. The ref column
// is a BIGSERIAL assigned at insert time inside the same transaction.
type JournalEntry struct {
	Ref                      int64           `db:"ref"`
	TransactionTime          time.Time       `db:"transaction_time"`
	Note                     string          `db:"note"`
	TransactionCurrencyCode  string          `db:"transaction_currency_code"`
	ExchangeRateToFunctional decimal.Decimal `db:"exchange_rate_to_functional"`
	PostTime                 *time.Time      `db:"post_time"`
	AuditFields
}

// JournalEntryLine represents a row of the journal_entry_lines table.
// (entry_ref, line_order) is unique and line_order is gap-free per entry.
type JournalEntryLine struct {
	LineID                string          `db:"line_id"`
	EntryRef              int64           `db:"entry_ref"`
	LineOrder             int             `db:"line_order"`
	AccountCode           int64           `db:"account_code"`
	Debit                 decimal.Decimal `db:"debit"`
	Credit                decimal.Decimal `db:"credit"`
	DebitFunctional       decimal.Decimal `db:"debit_functional"`
	CreditFunctional      decimal.Decimal `db:"credit_functional"`
	ForeignCurrencyAmount decimal.Decimal `db:"foreign_currency_amount"`
	ForeignCurrencyCode   string          `db:"foreign_currency_code"`
	ExchangeRate          decimal.Decimal `db:"exchange_rate"`
	AuditFields
}

// EntryLink represents a row of the entry_links table. original_ref is the
// primary key, which enforces "reversed or corrected at most once, never both".
type EntryLink struct {
	OriginalRef     int64  `db:"original_ref"`
	CompensatingRef int64  `db:"compensating_ref"`
	Kind            string `db:"kind"`
	AuditFields
}
