package services

import (
	"context"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/ledgerforge/gl_backend/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries.
type JournalReaderSvc interface {
	// GetEntry retrieves an entry with its lines by ref.
	GetEntry(ctx context.Context, ref int64) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// ReversibleStatus reports the derived lifecycle state of an entry plus
	// the compensating ref, when one exists.
	ReversibleStatus(ctx context.Context, ref int64) (*domain.EntryStatus, error)

	// ListAccountLines retrieves a paginated ledger view of an account: the
	// posted lines touching it, newest entry first.
	ListAccountLines(ctx context.Context, accountCode int64, params dto.ListAccountLinesParams) (*dto.ListAccountLinesResponse, error)
}

// JournalWriterSvc defines the posting engine's mutating operations.
type JournalWriterSvc interface {
	// CreateEntry validates and persists a new draft entry, returning it with
	// its assigned ref.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// UpdateEntry edits a draft entry. Posted entries fail with
	// apperrors.ErrPostedImmutable.
	UpdateEntry(ctx context.Context, ref int64, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error)

	// DeleteEntry removes a draft entry. Posted entries fail with
	// apperrors.ErrPostedImmutable.
	DeleteEntry(ctx context.Context, ref int64, userID string) error

	// PostEntry commits a draft entry: validates balance invariants and
	// atomically updates account balances. One-way; there is no un-posting.
	PostEntry(ctx context.Context, ref int64, req dto.PostEntryRequest, userID string) (*domain.JournalEntry, error)
}

// CompensatingSvc defines the reversal/correction manager, built entirely on
// top of the posting path.
type CompensatingSvc interface {
	// ReverseEntry posts a new entry that exactly negates a posted entry and
	// links it as its reversal. Returns the new entry.
	ReverseEntry(ctx context.Context, originalRef int64, userID string) (*domain.JournalEntry, error)

	// CorrectEntry is mechanically a reversal but linked as a correction,
	// marking the original as "to be followed by a replacement entry".
	CorrectEntry(ctx context.Context, originalRef int64, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	CompensatingSvc
}
