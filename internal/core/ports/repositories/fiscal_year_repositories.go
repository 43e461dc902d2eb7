package repositories

import (
	"context"
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/ledgerforge/gl_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ClosingBatch is the set of pre-validated closing entries for one fiscal
// year, posted together with the period's post_time as one atomic unit.
// ExpectedFunctional holds the functional balances the batch was computed
// from, per swept account; the repository re-checks them under the account
// locks and fails with apperrors.ErrConflict when any balance moved in the
// meantime.
type ClosingBatch struct {
	Entries            []domain.JournalEntry // lines populated
	Changes            map[int64]accounting.BalanceDelta
	ExpectedFunctional map[int64]decimal.Decimal
}

// FiscalYearRepository defines persistence operations for fiscal years.
type FiscalYearRepository interface {
	// SaveFiscalYear persists a new open fiscal year.
	SaveFiscalYear(ctx context.Context, year domain.FiscalYear) error

	// FindFiscalYearByBegin retrieves the fiscal year starting at begin.
	FindFiscalYearByBegin(ctx context.Context, begin time.Time) (*domain.FiscalYear, error)

	// FindOverlappingFiscalYear retrieves any fiscal year overlapping
	// [begin, end), or apperrors.ErrNotFound.
	FindOverlappingFiscalYear(ctx context.Context, begin, end time.Time) (*domain.FiscalYear, error)

	// ListFiscalYears retrieves all fiscal years ordered by begin time.
	ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error)

	// CloseFiscalYear posts the closing batch and sets the period's post_time
	// in one transaction. Fails with apperrors.ErrAlreadyClosed when post_time
	// is already set. Returns the refs of the posted closing entries.
	CloseFiscalYear(ctx context.Context, fiscalYearID string, postTime time.Time, batch ClosingBatch, userID string, now time.Time) ([]int64, error)
}
