package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockAccountRepo   *MockAccountRepository
	mockRateSvc       *MockExchangeRateService
	mockCurrencySvc   *MockCurrencyService
	service           portssvc.ReportingSvcFacade
	ctx               context.Context
	asOf              time.Time
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockRateSvc = new(MockExchangeRateService)
	suite.mockCurrencySvc = new(MockCurrencyService)
	suite.service = services.NewReportingService(suite.mockReportingRepo, suite.mockAccountRepo, suite.mockRateSvc, suite.mockCurrencySvc)
	suite.ctx = context.Background()
	suite.asOf = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_TotalsAndDifference() {
	rows := []domain.TrialBalanceRow{
		{AccountCode: 1010, AccountName: "Cash", AccountType: domain.TypeAsset, Debit: decimal.NewFromInt(700)},
		{AccountCode: 4000, AccountName: "Sales", AccountType: domain.TypeRevenue, Credit: decimal.NewFromInt(700)},
	}

	suite.mockReportingRepo.On("GetTrialBalanceData", suite.ctx, suite.asOf).Return(rows, nil).Once()

	report, err := suite.service.TrialBalance(suite.ctx, suite.asOf)

	suite.Require().NoError(err)
	suite.Len(report.Rows, 2)
	suite.Equal("700", report.TotalDebit.String())
	suite.Equal("700", report.TotalCredit.String())
	suite.True(report.Difference.IsZero())
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_EmptyLedger() {
	suite.mockReportingRepo.On("GetTrialBalanceData", suite.ctx, suite.asOf).Return(nil, nil).Once()

	report, err := suite.service.TrialBalance(suite.ctx, suite.asOf)

	suite.Require().NoError(err)
	suite.NotNil(report.Rows)
	suite.Empty(report.Rows)
	suite.True(report.TotalDebit.IsZero())
}

func (suite *ReportingServiceTestSuite) TestIncomeStatement_NetIncome() {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	revenue := []domain.AccountAmount{{AccountCode: 4000, Name: "Sales", NetAmount: decimal.NewFromInt(900)}}
	cogs := []domain.AccountAmount{{AccountCode: 5000, Name: "COGS", NetAmount: decimal.NewFromInt(350)}}
	expenses := []domain.AccountAmount{{AccountCode: 6000, Name: "Rent", NetAmount: decimal.NewFromInt(250)}}

	suite.mockReportingRepo.On("GetIncomeStatementData", suite.ctx, from, suite.asOf).Return(revenue, cogs, expenses, nil).Once()

	report, err := suite.service.IncomeStatement(suite.ctx, from, suite.asOf)

	suite.Require().NoError(err)
	suite.Equal("900", report.TotalRevenue.String())
	suite.Equal("600", report.TotalExpenses.String())
	suite.Equal("300", report.NetIncome.String())
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestIncomeStatement_BadPeriod() {
	_, err := suite.service.IncomeStatement(suite.ctx, suite.asOf, suite.asOf)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockReportingRepo.AssertNotCalled(suite.T(), "GetIncomeStatementData", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_Totals() {
	assets := []domain.AccountAmount{{AccountCode: 1010, Name: "Cash", NetAmount: decimal.NewFromInt(1000)}}
	liabilities := []domain.AccountAmount{{AccountCode: 2000, Name: "Loans", NetAmount: decimal.NewFromInt(400)}}
	equity := []domain.AccountAmount{{AccountCode: 3000, Name: "Capital", NetAmount: decimal.NewFromInt(600)}}

	suite.mockReportingRepo.On("GetBalanceSheetData", suite.ctx, suite.asOf).Return(assets, liabilities, equity, nil).Once()

	report, err := suite.service.BalanceSheet(suite.ctx, suite.asOf)

	suite.Require().NoError(err)
	suite.Equal("1000", report.TotalAssets.String())
	suite.Equal("400", report.TotalLiabilities.String())
	suite.Equal("600", report.TotalEquity.String())
}

func (suite *ReportingServiceTestSuite) TestConvertedBalances_ExcludesAccountsWithoutRate() {
	accounts := []domain.Account{
		{Code: 1010, Name: "Cash", AccountTypeName: domain.TypeAsset, CurrencyCode: "USD", Balance: decimal.NewFromInt(1000)},
		{Code: 1020, Name: "EUR Cash", AccountTypeName: domain.TypeAsset, CurrencyCode: "EUR", Balance: decimal.NewFromInt(200)},
	}

	suite.mockCurrencySvc.On("GetCurrencyByCode", suite.ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD", Decimals: 2}, nil).Once()
	suite.mockAccountRepo.On("ListAccountTypes", suite.ctx).Return(domain.StandardAccountTypes, nil).Once()
	suite.mockAccountRepo.On("ListAccountsByTypes", suite.ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockRateSvc.On("Convert", suite.ctx, decimal.NewFromInt(1000), "USD", "USD", suite.asOf).
		Return(decimal.NewFromInt(1000), nil, nil).Once()
	suite.mockRateSvc.On("Convert", suite.ctx, decimal.NewFromInt(200), "EUR", "USD", suite.asOf).
		Return(decimal.Zero, nil, apperrors.ErrRateUnavailable).Once()

	report, err := suite.service.ConvertedBalances(suite.ctx, "usd", suite.asOf)

	suite.Require().NoError(err)
	suite.Equal("USD", report.TargetCurrency)
	suite.Require().Len(report.Balances, 1)
	suite.Equal(int64(1010), report.Balances[0].AccountCode)
	suite.Require().Len(report.Excluded, 1)
	suite.Equal(int64(1020), report.Excluded[0].AccountCode)
	suite.Equal("1000", report.Total.String())
	suite.mockRateSvc.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestConvertedBalances_UnknownTargetCurrency() {
	suite.mockCurrencySvc.On("GetCurrencyByCode", suite.ctx, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ConvertedBalances(suite.ctx, "XXX", suite.asOf)

	suite.ErrorIs(err, apperrors.ErrInvalidCurrency)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "ListAccountsByTypes", mock.Anything, mock.Anything)
}
