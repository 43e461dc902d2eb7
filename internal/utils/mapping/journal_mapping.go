package mapping

import (
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/ledgerforge/gl_backend/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		Ref:                      d.Ref,
		TransactionTime:          d.TransactionTime,
		Note:                     d.Note,
		TransactionCurrencyCode:  d.TransactionCurrencyCode,
		ExchangeRateToFunctional: d.ExchangeRateToFunctional,
		PostTime:                 d.PostTime,
		AuditFields:              ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		Ref:                      m.Ref,
		TransactionTime:          m.TransactionTime,
		Note:                     m.Note,
		TransactionCurrencyCode:  m.TransactionCurrencyCode,
		ExchangeRateToFunctional: m.ExchangeRateToFunctional,
		PostTime:                 m.PostTime,
		AuditFields:              ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalEntryLine converts a domain line to a model line.
func ToModelJournalEntryLine(d domain.JournalEntryLine) models.JournalEntryLine {
	return models.JournalEntryLine{
		LineID:                d.LineID,
		EntryRef:              d.EntryRef,
		LineOrder:             d.LineOrder,
		AccountCode:           d.AccountCode,
		Debit:                 d.Debit,
		Credit:                d.Credit,
		DebitFunctional:       d.DebitFunctional,
		CreditFunctional:      d.CreditFunctional,
		ForeignCurrencyAmount: d.ForeignCurrencyAmount,
		ForeignCurrencyCode:   d.ForeignCurrencyCode,
		ExchangeRate:          d.ExchangeRate,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntryLine converts a model line to a domain line.
func ToDomainJournalEntryLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		LineID:                m.LineID,
		EntryRef:              m.EntryRef,
		LineOrder:             m.LineOrder,
		AccountCode:           m.AccountCode,
		Debit:                 m.Debit,
		Credit:                m.Credit,
		DebitFunctional:       m.DebitFunctional,
		CreditFunctional:      m.CreditFunctional,
		ForeignCurrencyAmount: m.ForeignCurrencyAmount,
		ForeignCurrencyCode:   m.ForeignCurrencyCode,
		ExchangeRate:          m.ExchangeRate,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalEntryLineSlice converts a slice of model lines to domain lines.
func ToDomainJournalEntryLineSlice(ms []models.JournalEntryLine) []domain.JournalEntryLine {
	ds := make([]domain.JournalEntryLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntryLine(m)
	}
	return ds
}

// ToDomainEntryLink converts a model EntryLink to a domain EntryLink.
func ToDomainEntryLink(m models.EntryLink) domain.EntryLink {
	return domain.EntryLink{
		OriginalRef:     m.OriginalRef,
		CompensatingRef: m.CompensatingRef,
		Kind:            domain.LinkKind(m.Kind),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
