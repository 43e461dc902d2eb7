package repositories

import (
	"context"
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/ledgerforge/gl_backend/internal/utils/accounting"
)

// JournalReader defines read operations for journal entry data.
type JournalReader interface {
	// FindEntryByRef retrieves a journal entry header by ref.
	FindEntryByRef(ctx context.Context, ref int64) (*domain.JournalEntry, error)

	// FindLinesByRef retrieves an entry's lines ordered by line_order.
	FindLinesByRef(ctx context.Context, ref int64) ([]domain.JournalEntryLine, error)

	// ListEntries retrieves a page of entries ordered by ref using token
	// pagination.
	ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// FindLinkByOriginalRef retrieves the compensating link for an entry, or
	// apperrors.ErrNotFound when the entry has not been reversed or corrected.
	FindLinkByOriginalRef(ctx context.Context, originalRef int64) (*domain.EntryLink, error)

	// ListLinesByAccountCode retrieves a page of posted lines for an account,
	// newest first.
	ListLinesByAccountCode(ctx context.Context, accountCode int64, limit int, nextToken *string) ([]domain.JournalEntryLine, *string, error)
}

// JournalWriter defines write operations for journal entry data. Posting,
// compensating and closing writes each run inside one database transaction.
type JournalWriter interface {
	// SaveDraftEntry persists an unposted entry with its lines and returns the
	// assigned ref.
	SaveDraftEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) (int64, error)

	// UpdateDraftEntry replaces a draft's header fields and line set. Fails
	// with apperrors.ErrPostedImmutable when the entry is posted.
	UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error

	// DeleteDraftEntry removes an unposted entry and its lines. Fails with
	// apperrors.ErrPostedImmutable when the entry is posted.
	DeleteDraftEntry(ctx context.Context, ref int64) error

	// PostEntry sets post_time and applies the per-account balance changes as
	// one atomic unit, locking the entry header and the affected accounts.
	// expectedLastUpdatedAt is the header timestamp the changes were computed
	// from; a draft edited since that read fails with apperrors.ErrConflict.
	PostEntry(ctx context.Context, ref int64, postTime, expectedLastUpdatedAt time.Time, changes map[int64]accounting.BalanceDelta, userID string, now time.Time) error

	// SaveCompensatingEntry inserts an already-posted compensating entry, its
	// lines, the original→compensating link, and the balance changes in one
	// transaction. Fails with apperrors.ErrAlreadyProcessed when the original
	// is already linked. Returns the new entry's ref.
	SaveCompensatingEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, link domain.EntryLink, changes map[int64]accounting.BalanceDelta) (int64, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
