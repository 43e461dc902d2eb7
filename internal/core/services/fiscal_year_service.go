package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portsrepo "github.com/ledgerforge/gl_backend/internal/core/ports/repositories"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/middleware"
	"github.com/ledgerforge/gl_backend/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fiscalYearService implements the period lifecycle: opening periods and
// closing them by zeroing temporary accounts through the income summary
// account into retained earnings.
type fiscalYearService struct {
	fiscalRepo           portsrepo.FiscalYearRepository
	accountRepo          portsrepo.AccountRepositoryFacade
	currencySvc          portssvc.CurrencySvcFacade
	retainedEarningsCode int64
	incomeSummaryCode    int64
}

// NewFiscalYearService creates a new fiscal year service. The retained
// earnings and income summary account codes come from configuration.
func NewFiscalYearService(
	fiscalRepo portsrepo.FiscalYearRepository,
	accountRepo portsrepo.AccountRepositoryFacade,
	currencySvc portssvc.CurrencySvcFacade,
	retainedEarningsCode, incomeSummaryCode int64,
) portssvc.FiscalYearSvcFacade {
	return &fiscalYearService{
		fiscalRepo:           fiscalRepo,
		accountRepo:          accountRepo,
		currencySvc:          currencySvc,
		retainedEarningsCode: retainedEarningsCode,
		incomeSummaryCode:    incomeSummaryCode,
	}
}

var _ portssvc.FiscalYearSvcFacade = (*fiscalYearService)(nil)

// CreateFiscalYear opens a new period [begin, end). Any overlap with an
// existing period is rejected.
func (s *fiscalYearService) CreateFiscalYear(ctx context.Context, begin, end time.Time, userID string) (*domain.FiscalYear, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	begin = begin.UTC()
	end = end.UTC()
	if !begin.Before(end) {
		return nil, fmt.Errorf("%w: period begin must be before end", apperrors.ErrValidation)
	}

	if existing, err := s.fiscalRepo.FindOverlappingFiscalYear(ctx, begin, end); err == nil {
		return nil, fmt.Errorf("%w: overlaps period starting %s", apperrors.ErrOverlappingPeriod,
			existing.BeginTime.Format(time.RFC3339))
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	year := domain.FiscalYear{
		FiscalYearID: uuid.NewString(),
		BeginTime:    begin,
		EndTime:      end,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.fiscalRepo.SaveFiscalYear(ctx, year); err != nil {
		logger.Error("Failed to save fiscal year", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save fiscal year: %w", err)
	}

	logger.Info("Fiscal year opened", slog.Time("begin", begin), slog.Time("end", end))
	return &year, nil
}

// ListFiscalYears retrieves all periods ordered by begin time.
func (s *fiscalYearService) ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	years, err := s.fiscalRepo.ListFiscalYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fiscal years: %w", err)
	}
	if years == nil {
		years = []domain.FiscalYear{}
	}
	return years, nil
}

// CloseFiscalYear generates the closing entries for the period starting at
// begin and posts them together with the period's post_time as one atomic
// unit. Two entries are generated: one zeroing every non-zero temporary
// account into the income summary account, and one sweeping the income
// summary into retained earnings. A period whose temporary accounts are all
// zero is closed with no entries.
func (s *fiscalYearService) CloseFiscalYear(ctx context.Context, begin time.Time, postTime *time.Time, userID string) (*domain.FiscalYear, []int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	year, err := s.fiscalRepo.FindFiscalYearByBegin(ctx, begin.UTC())
	if err != nil {
		return nil, nil, err
	}
	if year.Closed() {
		return nil, nil, fmt.Errorf("%w: period starting %s closed at %s", apperrors.ErrAlreadyClosed,
			year.BeginTime.Format(time.RFC3339), year.PostTime.Format(time.RFC3339))
	}

	closeTime := year.EndTime
	if postTime != nil {
		closeTime = postTime.UTC()
	}

	batch, err := s.buildClosingBatch(ctx, year, closeTime, userID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	refs, err := s.fiscalRepo.CloseFiscalYear(ctx, year.FiscalYearID, closeTime, *batch, userID, now)
	if err != nil {
		logger.Error("Failed to close fiscal year", slog.String("error", err.Error()),
			slog.Time("begin", year.BeginTime))
		return nil, nil, err
	}

	year.PostTime = &closeTime
	year.LastUpdatedAt = now
	year.LastUpdatedBy = userID

	logger.Info("Fiscal year closed", slog.Time("begin", year.BeginTime),
		slog.Time("post_time", closeTime), slog.Int("closing_entries", len(refs)))
	return year, refs, nil
}

// buildClosingBatch assembles the closing entries and their balance effects.
// All closing lines are denominated in the functional currency at rate 1.
func (s *fiscalYearService) buildClosingBatch(ctx context.Context, year *domain.FiscalYear, closeTime time.Time, userID string) (*portsrepo.ClosingBatch, error) {
	functional, err := s.currencySvc.GetFunctionalCurrency(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve functional currency: %w", err)
	}

	accountTypes, err := s.accountRepo.ListAccountTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load account types: %w", err)
	}
	types := make(map[string]domain.AccountType, len(accountTypes))
	temporaryNames := make([]string, 0, len(accountTypes))
	for _, accountType := range accountTypes {
		types[accountType.Name] = accountType
		if accountType.IsTemporary {
			temporaryNames = append(temporaryNames, accountType.Name)
		}
	}

	temporaries, err := s.accountRepo.ListAccountsByTypes(ctx, temporaryNames)
	if err != nil {
		return nil, fmt.Errorf("failed to load temporary accounts: %w", err)
	}

	summary, err := s.accountRepo.FindAccountByCode(ctx, s.incomeSummaryCode)
	if err != nil {
		return nil, fmt.Errorf("%w: income summary account %d", apperrors.ErrUnknownAccount, s.incomeSummaryCode)
	}
	retained, err := s.accountRepo.FindAccountByCode(ctx, s.retainedEarningsCode)
	if err != nil {
		return nil, fmt.Errorf("%w: retained earnings account %d", apperrors.ErrUnknownAccount, s.retainedEarningsCode)
	}

	accounts := map[int64]domain.Account{
		summary.Code:  *summary,
		retained.Code: *retained,
	}

	audit := domain.AuditFields{
		CreatedAt:     closeTime,
		CreatedBy:     userID,
		LastUpdatedAt: closeTime,
		LastUpdatedBy: userID,
	}

	// First entry: zero every non-zero temporary account into income summary.
	// A credit-normal balance is zeroed by an equal debit, and vice versa.
	// The income summary picks up the net on the opposite side.
	var sweepLines []domain.JournalEntryLine
	netIncome := decimal.Zero
	expected := make(map[int64]decimal.Decimal)
	order := 0
	for _, account := range temporaries {
		balance := account.BalanceFunctional
		if balance.IsZero() {
			continue
		}
		accountType, ok := types[account.AccountTypeName]
		if !ok {
			return nil, fmt.Errorf("%w: account type %q", apperrors.ErrInternal, account.AccountTypeName)
		}

		line := domain.JournalEntryLine{
			LineID:       uuid.NewString(),
			LineOrder:    order,
			AccountCode:  account.Code,
			ExchangeRate: decimal.NewFromInt(1),
			AuditFields:  audit,
		}
		// Signed contribution to net income: credit-normal temporaries
		// (revenue) add, debit-normal ones (expenses, dividends) subtract.
		if accountType.NormalBalance == domain.NormalCredit {
			line.Debit = balance
			netIncome = netIncome.Add(balance)
		} else {
			line.Credit = balance
			netIncome = netIncome.Sub(balance)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			// An abnormal (negative) balance closes on the opposite side.
			line.Debit, line.Credit = line.Credit.Neg(), line.Debit.Neg()
		}
		line.DebitFunctional = line.Debit
		line.CreditFunctional = line.Credit
		sweepLines = append(sweepLines, line)
		accounts[account.Code] = account
		expected[account.Code] = account.BalanceFunctional
		order++
	}

	if len(sweepLines) == 0 {
		return &portsrepo.ClosingBatch{}, nil
	}

	// A zero net income needs no summary line: the temporary lines already
	// balance among themselves, and the summary never moves.
	if !netIncome.IsZero() {
		sweepLines = append(sweepLines, balancingLine(summary.Code, netIncome, order, audit))
	}

	sweep := domain.JournalEntry{
		TransactionTime:          closeTime,
		Note:                     fmt.Sprintf("Closing entry: temporary accounts for period beginning %s", year.BeginTime.Format("2006-01-02")),
		TransactionCurrencyCode:  functional.CurrencyCode,
		ExchangeRateToFunctional: decimal.NewFromInt(1),
		PostTime:                 &closeTime,
		AuditFields:              audit,
		Lines:                    sweepLines,
	}
	entries := []domain.JournalEntry{sweep}

	// Second entry: move the income summary balance into retained earnings.
	// Skipped when net income is zero, since there is nothing to move.
	if !netIncome.IsZero() {
		entries = append(entries, domain.JournalEntry{
			TransactionTime:          closeTime,
			Note:                     fmt.Sprintf("Closing entry: income summary to retained earnings for period beginning %s", year.BeginTime.Format("2006-01-02")),
			TransactionCurrencyCode:  functional.CurrencyCode,
			ExchangeRateToFunctional: decimal.NewFromInt(1),
			PostTime:                 &closeTime,
			AuditFields:              audit,
			Lines: []domain.JournalEntryLine{
				balancingLine(summary.Code, netIncome.Neg(), 0, audit),
				balancingLine(retained.Code, netIncome, 1, audit),
			},
		})
	}

	changes := make(map[int64]accounting.BalanceDelta)
	for _, entry := range entries {
		// The generated entries go through the same pre-commit checks as any
		// posted entry; a failure here aborts the whole close.
		if err := accounting.ValidateEntryBalance(entry.Lines); err != nil {
			return nil, fmt.Errorf("generated closing entry %q is invalid: %w", entry.Note, err)
		}
		entryChanges, err := accounting.ComputeBalanceChanges(entry, accounts, types, functional.CurrencyCode)
		if err != nil {
			return nil, err
		}
		for code, delta := range entryChanges {
			changes[code] = changes[code].Add(delta)
		}
	}

	return &portsrepo.ClosingBatch{Entries: entries, Changes: changes, ExpectedFunctional: expected}, nil
}

// balancingLine builds a functional-currency line crediting the account when
// amount is positive and debiting it when negative.
func balancingLine(accountCode int64, amount decimal.Decimal, order int, audit domain.AuditFields) domain.JournalEntryLine {
	line := domain.JournalEntryLine{
		LineID:       uuid.NewString(),
		LineOrder:    order,
		AccountCode:  accountCode,
		ExchangeRate: decimal.NewFromInt(1),
		AuditFields:  audit,
	}
	if amount.IsNegative() {
		line.Debit = amount.Neg()
	} else {
		line.Credit = amount
	}
	line.DebitFunctional = line.Debit
	line.CreditFunctional = line.Credit
	return line
}

// ValidateAccountingEquation checks assets = liabilities + equity over all
// current functional balances. Temporary account balances count toward the
// equity side until they are closed.
func (s *fiscalYearService) ValidateAccountingEquation(ctx context.Context) (decimal.Decimal, decimal.Decimal, bool, error) {
	accountTypes, err := s.accountRepo.ListAccountTypes(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("failed to load account types: %w", err)
	}
	types := make(map[string]domain.AccountType, len(accountTypes))
	typeNames := make([]string, 0, len(accountTypes))
	for _, accountType := range accountTypes {
		types[accountType.Name] = accountType
		typeNames = append(typeNames, accountType.Name)
	}

	accounts, err := s.accountRepo.ListAccountsByTypes(ctx, typeNames)
	if err != nil {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("failed to load accounts: %w", err)
	}

	assets := decimal.Zero
	liabilitiesEquity := decimal.Zero
	for _, account := range accounts {
		accountType, ok := types[account.AccountTypeName]
		if !ok {
			return decimal.Zero, decimal.Zero, false,
				fmt.Errorf("%w: account type %q", apperrors.ErrInternal, account.AccountTypeName)
		}

		// Balances are signed by each type's own normal balance. The asset side
		// is debit-natural and the liabilities+equity side credit-natural, so a
		// balance whose normal side disagrees with its category side reduces
		// that side. This covers contra types, expenses and dividends uniformly.
		contribution := account.BalanceFunctional
		if accountType.Category == domain.CategoryAsset {
			if accountType.NormalBalance == domain.NormalCredit {
				contribution = contribution.Neg()
			}
			assets = assets.Add(contribution)
		} else {
			if accountType.NormalBalance == domain.NormalDebit {
				contribution = contribution.Neg()
			}
			liabilitiesEquity = liabilitiesEquity.Add(contribution)
		}
	}

	return assets, liabilitiesEquity, assets.Equal(liabilitiesEquity), nil
}
