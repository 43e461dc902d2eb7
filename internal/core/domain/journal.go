package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a transaction header. Ref is a monotonically assigned
// identifier. PostTime is nil while the entry is an editable draft; posting
// sets it exactly once and from then on the entry and its lines are immutable.
type JournalEntry struct {
	Ref                      int64           `json:"ref"`
	TransactionTime          time.Time       `json:"transactionTime"`
	Note                     string          `json:"note"`
	TransactionCurrencyCode  string          `json:"transactionCurrencyCode"`
	ExchangeRateToFunctional decimal.Decimal `json:"exchangeRateToFunctional"`
	PostTime                 *time.Time      `json:"postTime,omitempty"`
	AuditFields
	Lines []JournalEntryLine `json:"lines,omitempty"`
}

// Posted reports whether the entry has been committed to the ledger.
func (e *JournalEntry) Posted() bool {
	return e.PostTime != nil
}

// JournalEntryLine is a single line of a journal entry. Debit and Credit are
// denominated in the entry's transaction currency; exactly one of them is
// non-zero. DebitFunctional and CreditFunctional are the functional-currency
// amounts derived once at creation time and never recomputed.
// ForeignCurrencyAmount carries the signed original amount (positive for
// debit lines) when the transaction currency is not the functional currency.
type JournalEntryLine struct {
	LineID                string          `json:"lineID"`
	EntryRef              int64           `json:"entryRef"`
	LineOrder             int             `json:"lineOrder"`
	AccountCode           int64           `json:"accountCode"`
	Debit                 decimal.Decimal `json:"debit"`
	Credit                decimal.Decimal `json:"credit"`
	DebitFunctional       decimal.Decimal `json:"debitFunctional"`
	CreditFunctional      decimal.Decimal `json:"creditFunctional"`
	ForeignCurrencyAmount decimal.Decimal `json:"foreignCurrencyAmount"`
	ForeignCurrencyCode   string          `json:"foreignCurrencyCode,omitempty"`
	ExchangeRate          decimal.Decimal `json:"exchangeRate"`
	AuditFields
}

// EntryState is the derived lifecycle state of a journal entry.
type EntryState string

const (
	StateUnposted  EntryState = "UNPOSTED"
	StatePosted    EntryState = "POSTED"
	StateReversed  EntryState = "REVERSED"
	StateCorrected EntryState = "CORRECTED"
)

// EntryStatus is the derived "reversible status" projection: the lifecycle
// state joined with the compensating entry ref, when one exists. REVERSED and
// CORRECTED are terminal and mutually exclusive.
type EntryStatus struct {
	State           EntryState `json:"state"`
	CompensatingRef *int64     `json:"compensatingRef,omitempty"`
}

// Reversible reports whether the entry can still be reversed or corrected.
func (s EntryStatus) Reversible() bool {
	return s.State == StatePosted
}

// LinkKind distinguishes the two compensating relations between entries.
type LinkKind string

const (
	LinkReversal   LinkKind = "REVERSAL"
	LinkCorrection LinkKind = "CORRECTION"
)

// EntryLink records that CompensatingRef negates OriginalRef. An original ref
// appears in at most one link.
type EntryLink struct {
	OriginalRef     int64    `json:"originalRef"`
	CompensatingRef int64    `json:"compensatingRef"`
	Kind            LinkKind `json:"kind"`
	AuditFields
}
