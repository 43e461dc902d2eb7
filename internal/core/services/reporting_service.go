package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portsrepo "github.com/ledgerforge/gl_backend/internal/core/ports/repositories"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// reportingService generates read-only projections over posted ledger state.
type reportingService struct {
	reportingRepo portsrepo.ReportingRepository
	accountRepo   portsrepo.AccountRepositoryFacade
	rateSvc       portssvc.ExchangeRateSvcFacade
	currencySvc   portssvc.CurrencySvcFacade
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	reportingRepo portsrepo.ReportingRepository,
	accountRepo portsrepo.AccountRepositoryFacade,
	rateSvc portssvc.ExchangeRateSvcFacade,
	currencySvc portssvc.CurrencySvcFacade,
) portssvc.ReportingSvcFacade {
	return &reportingService{
		reportingRepo: reportingRepo,
		accountRepo:   accountRepo,
		rateSvc:       rateSvc,
		currencySvc:   currencySvc,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// TrialBalance generates the functional-currency trial balance as of a date.
// Total debits always equal total credits over posted entries; the Difference
// field exists so consumers can assert that without re-summing.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*dto.TrialBalanceResponse, error) {
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load trial balance data: %w", err)
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, row := range rows {
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}
	if rows == nil {
		rows = []domain.TrialBalanceRow{}
	}

	return &dto.TrialBalanceResponse{
		AsOf:        asOf.UTC(),
		Rows:        rows,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Difference:  totalDebit.Sub(totalCredit),
	}, nil
}

// IncomeStatement generates an income statement over a posting period.
// Revenue rows arrive net of contra-revenue.
func (s *reportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: period start must be before end", apperrors.ErrValidation)
	}

	revenue, cogs, expenses, err := s.reportingRepo.GetIncomeStatementData(ctx, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load income statement data: %w", err)
	}

	report := &domain.IncomeStatementReport{
		Revenue:     emptyIfNil(revenue),
		CostOfGoods: emptyIfNil(cogs),
		Expenses:    emptyIfNil(expenses),
	}
	for _, row := range revenue {
		report.TotalRevenue = report.TotalRevenue.Add(row.NetAmount)
	}
	for _, row := range cogs {
		report.TotalExpenses = report.TotalExpenses.Add(row.NetAmount)
	}
	for _, row := range expenses {
		report.TotalExpenses = report.TotalExpenses.Add(row.NetAmount)
	}
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)
	return report, nil
}

// BalanceSheet generates a balance sheet as of a point in time.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	assets, liabilities, equity, err := s.reportingRepo.GetBalanceSheetData(ctx, asOf.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load balance sheet data: %w", err)
	}

	report := &domain.BalanceSheetReport{
		Assets:      emptyIfNil(assets),
		Liabilities: emptyIfNil(liabilities),
		Equity:      emptyIfNil(equity),
	}
	for _, row := range assets {
		report.TotalAssets = report.TotalAssets.Add(row.NetAmount)
	}
	for _, row := range liabilities {
		report.TotalLiabilities = report.TotalLiabilities.Add(row.NetAmount)
	}
	for _, row := range equity {
		report.TotalEquity = report.TotalEquity.Add(row.NetAmount)
	}
	return report, nil
}

// ConvertedBalances re-expresses every account's native balance in the target
// currency using the latest rate at or before asOf. Accounts with no rate go
// to the Excluded list; a missing rate never converts at par.
func (s *reportingService) ConvertedBalances(ctx context.Context, targetCurrency string, asOf time.Time) (*domain.ConvertedBalancesReport, error) {
	targetCurrency = strings.ToUpper(targetCurrency)
	if _, err := s.currencySvc.GetCurrencyByCode(ctx, targetCurrency); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidCurrency, targetCurrency)
		}
		return nil, err
	}

	accountTypes, err := s.accountRepo.ListAccountTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load account types: %w", err)
	}
	typeNames := make([]string, 0, len(accountTypes))
	for _, accountType := range accountTypes {
		typeNames = append(typeNames, accountType.Name)
	}

	accounts, err := s.accountRepo.ListAccountsByTypes(ctx, typeNames)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	report := &domain.ConvertedBalancesReport{
		TargetCurrency: targetCurrency,
		Balances:       []domain.ConvertedBalance{},
		Excluded:       []domain.AccountAmount{},
	}

	for _, account := range accounts {
		converted, _, err := s.rateSvc.Convert(ctx, account.Balance, account.CurrencyCode, targetCurrency, asOf)
		if err != nil {
			if errors.Is(err, apperrors.ErrRateUnavailable) {
				report.Excluded = append(report.Excluded, domain.AccountAmount{
					AccountCode: account.Code,
					Name:        account.Name,
					NetAmount:   account.Balance,
				})
				continue
			}
			return nil, err
		}

		report.Balances = append(report.Balances, domain.ConvertedBalance{
			AccountCode: account.Code,
			Name:        account.Name,
			Currency:    account.CurrencyCode,
			Balance:     account.Balance,
			Converted:   converted,
		})
		report.Total = report.Total.Add(converted)
	}

	return report, nil
}

func emptyIfNil(rows []domain.AccountAmount) []domain.AccountAmount {
	if rows == nil {
		return []domain.AccountAmount{}
	}
	return rows
}
