package services

import (
	"context"
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FiscalYearSvcFacade defines fiscal period lifecycle operations.
type FiscalYearSvcFacade interface {
	// CreateFiscalYear opens a new period. Overlapping periods fail with
	// apperrors.ErrOverlappingPeriod.
	CreateFiscalYear(ctx context.Context, begin, end time.Time, userID string) (*domain.FiscalYear, error)

	// ListFiscalYears retrieves all periods ordered by begin time.
	ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error)

	// CloseFiscalYear zeroes all temporary accounts into retained earnings
	// (through the income summary account) via ordinary posted entries, then
	// marks the period closed. Returns the period and the closing entry refs.
	CloseFiscalYear(ctx context.Context, begin time.Time, postTime *time.Time, userID string) (*domain.FiscalYear, []int64, error)

	// ValidateAccountingEquation checks assets = liabilities + equity over all
	// account balances, signed by normal balance. Returns both sides.
	ValidateAccountingEquation(ctx context.Context) (assets, liabilitiesEquity decimal.Decimal, holds bool, err error)
}
