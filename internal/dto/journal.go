package dto

import (
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryLineRequest is one line of a draft journal entry. Amounts are in
// the entry's transaction currency; exactly one of debit/credit must be set.
// LineOrder is optional; when omitted the engine assigns 0..n-1.
type CreateEntryLineRequest struct {
	AccountCode int64           `json:"accountCode" binding:"required,gt=0"`
	LineOrder   *int            `json:"lineOrder,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// CreateEntryRequest is the payload for creating a draft journal entry.
// TransactionCurrencyCode defaults to the functional currency and
// ExchangeRate to 1.
type CreateEntryRequest struct {
	Note                    string                   `json:"note" binding:"required"`
	TransactionCurrencyCode string                   `json:"transactionCurrencyCode,omitempty" binding:"omitempty,len=3,uppercase"`
	ExchangeRate            *decimal.Decimal         `json:"exchangeRate,omitempty"`
	TransactionTime         *time.Time               `json:"transactionTime,omitempty"`
	Lines                   []CreateEntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// UpdateEntryRequest edits a draft entry. Replacing lines swaps the whole
// line set; posted entries reject any update.
type UpdateEntryRequest struct {
	Note            *string                  `json:"note,omitempty"`
	TransactionTime *time.Time               `json:"transactionTime,omitempty"`
	Lines           []CreateEntryLineRequest `json:"lines,omitempty" binding:"omitempty,min=2,dive"`
}

// PostEntryRequest carries the optional post time; when omitted the entry's
// transaction time is used.
type PostEntryRequest struct {
	PostTime *time.Time `json:"postTime,omitempty"`
}

// EntryLineResponse is the API representation of a journal entry line.
// EntryRef is only populated in the account ledger view, where lines from
// many entries are interleaved.
type EntryLineResponse struct {
	EntryRef              int64           `json:"entryRef,omitempty"`
	LineOrder             int             `json:"lineOrder"`
	AccountCode           int64           `json:"accountCode"`
	Debit                 decimal.Decimal `json:"debit"`
	Credit                decimal.Decimal `json:"credit"`
	DebitFunctional       decimal.Decimal `json:"debitFunctional"`
	CreditFunctional      decimal.Decimal `json:"creditFunctional"`
	ForeignCurrencyAmount decimal.Decimal `json:"foreignCurrencyAmount"`
	ForeignCurrencyCode   string          `json:"foreignCurrencyCode,omitempty"`
	ExchangeRate          decimal.Decimal `json:"exchangeRate"`
}

// EntryResponse is the API representation of a journal entry.
type EntryResponse struct {
	Ref                      int64               `json:"ref"`
	TransactionTime          time.Time           `json:"transactionTime"`
	Note                     string              `json:"note"`
	TransactionCurrencyCode  string              `json:"transactionCurrencyCode"`
	ExchangeRateToFunctional decimal.Decimal     `json:"exchangeRateToFunctional"`
	PostTime                 *time.Time          `json:"postTime,omitempty"`
	Lines                    []EntryLineResponse `json:"lines,omitempty"`
}

// ToEntryResponse converts a domain JournalEntry to its API representation.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		Ref:                      e.Ref,
		TransactionTime:          e.TransactionTime,
		Note:                     e.Note,
		TransactionCurrencyCode:  e.TransactionCurrencyCode,
		ExchangeRateToFunctional: e.ExchangeRateToFunctional,
		PostTime:                 e.PostTime,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]EntryLineResponse, len(e.Lines))
		for i, line := range e.Lines {
			resp.Lines[i] = EntryLineResponse{
				LineOrder:             line.LineOrder,
				AccountCode:           line.AccountCode,
				Debit:                 line.Debit,
				Credit:                line.Credit,
				DebitFunctional:       line.DebitFunctional,
				CreditFunctional:      line.CreditFunctional,
				ForeignCurrencyAmount: line.ForeignCurrencyAmount,
				ForeignCurrencyCode:   line.ForeignCurrencyCode,
				ExchangeRate:          line.ExchangeRate,
			}
		}
	}
	return resp
}

// ToAccountLineResponse converts a domain line for the account ledger view,
// keeping the entry ref so callers can trace each line back to its entry.
func ToAccountLineResponse(line *domain.JournalEntryLine) EntryLineResponse {
	return EntryLineResponse{
		EntryRef:              line.EntryRef,
		LineOrder:             line.LineOrder,
		AccountCode:           line.AccountCode,
		Debit:                 line.Debit,
		Credit:                line.Credit,
		DebitFunctional:       line.DebitFunctional,
		CreditFunctional:      line.CreditFunctional,
		ForeignCurrencyAmount: line.ForeignCurrencyAmount,
		ForeignCurrencyCode:   line.ForeignCurrencyCode,
		ExchangeRate:          line.ExchangeRate,
	}
}

// ListEntriesParams holds pagination parameters for listing journal entries.
type ListEntriesParams struct {
	Limit        int     `form:"limit"`
	NextToken    *string `form:"nextToken"`
	IncludeLines bool    `form:"includeLines"`
}

// ListEntriesResponse is a page of entries plus the next-page token.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ListAccountLinesParams holds pagination parameters for an account's ledger view.
type ListAccountLinesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListAccountLinesResponse is a page of posted lines touching one account,
// newest entry first.
type ListAccountLinesResponse struct {
	AccountCode int64               `json:"accountCode"`
	Lines       []EntryLineResponse `json:"lines"`
	NextToken   *string             `json:"nextToken,omitempty"`
}

// EntryStatusResponse is the derived reversible-status projection of an entry.
type EntryStatusResponse struct {
	Ref             int64  `json:"ref"`
	State           string `json:"state"`
	CompensatingRef *int64 `json:"compensatingRef,omitempty"`
}
