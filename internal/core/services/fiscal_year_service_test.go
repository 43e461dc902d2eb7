package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portsrepo "github.com/ledgerforge/gl_backend/internal/core/ports/repositories"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testRetainedEarningsCode int64 = 3900
	testIncomeSummaryCode    int64 = 3999
)

type FiscalYearServiceTestSuite struct {
	suite.Suite
	mockFiscalRepo  *MockFiscalYearRepository
	mockAccountRepo *MockAccountRepository
	mockCurrencySvc *MockCurrencyService
	service         portssvc.FiscalYearSvcFacade
	ctx             context.Context
	userID          string

	begin time.Time
	end   time.Time
	usd   *domain.Currency
}

func (suite *FiscalYearServiceTestSuite) SetupTest() {
	suite.mockFiscalRepo = new(MockFiscalYearRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrencySvc = new(MockCurrencyService)
	suite.service = services.NewFiscalYearService(
		suite.mockFiscalRepo, suite.mockAccountRepo, suite.mockCurrencySvc,
		testRetainedEarningsCode, testIncomeSummaryCode,
	)
	suite.ctx = context.Background()
	suite.userID = "user-1"
	suite.begin = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.usd = &domain.Currency{CurrencyCode: "USD", Decimals: 2, IsFunctional: true}
}

func TestFiscalYearServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FiscalYearServiceTestSuite))
}

func (suite *FiscalYearServiceTestSuite) openYear() *domain.FiscalYear {
	return &domain.FiscalYear{
		FiscalYearID: "fy-2025",
		BeginTime:    suite.begin,
		EndTime:      suite.end,
	}
}

// --- CreateFiscalYear ---

func (suite *FiscalYearServiceTestSuite) TestCreateFiscalYear_Success() {
	suite.mockFiscalRepo.On("FindOverlappingFiscalYear", suite.ctx, suite.begin, suite.end).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockFiscalRepo.On("SaveFiscalYear", suite.ctx, mock.MatchedBy(func(y domain.FiscalYear) bool {
		return y.BeginTime.Equal(suite.begin) && y.EndTime.Equal(suite.end) && y.PostTime == nil && y.FiscalYearID != ""
	})).Return(nil).Once()

	year, err := suite.service.CreateFiscalYear(suite.ctx, suite.begin, suite.end, suite.userID)

	suite.Require().NoError(err)
	suite.False(year.Closed())
	suite.mockFiscalRepo.AssertExpectations(suite.T())
}

func (suite *FiscalYearServiceTestSuite) TestCreateFiscalYear_BeginNotBeforeEnd() {
	_, err := suite.service.CreateFiscalYear(suite.ctx, suite.end, suite.begin, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockFiscalRepo.AssertNotCalled(suite.T(), "SaveFiscalYear", mock.Anything, mock.Anything)
}

func (suite *FiscalYearServiceTestSuite) TestCreateFiscalYear_Overlap() {
	existing := suite.openYear()
	laterBegin := suite.begin.AddDate(0, 6, 0)
	laterEnd := suite.end.AddDate(0, 6, 0)

	suite.mockFiscalRepo.On("FindOverlappingFiscalYear", suite.ctx, laterBegin, laterEnd).Return(existing, nil).Once()

	_, err := suite.service.CreateFiscalYear(suite.ctx, laterBegin, laterEnd, suite.userID)

	suite.ErrorIs(err, apperrors.ErrOverlappingPeriod)
	suite.mockFiscalRepo.AssertNotCalled(suite.T(), "SaveFiscalYear", mock.Anything, mock.Anything)
}

// --- CloseFiscalYear ---

func (suite *FiscalYearServiceTestSuite) expectClosingLookups(temporaries []domain.Account) {
	summary := &domain.Account{Code: testIncomeSummaryCode, Name: "Income Summary", AccountTypeName: domain.TypeEquity, CurrencyCode: "USD"}
	retained := &domain.Account{Code: testRetainedEarningsCode, Name: "Retained Earnings", AccountTypeName: domain.TypeEquity, CurrencyCode: "USD"}

	suite.mockCurrencySvc.On("GetFunctionalCurrency", suite.ctx).Return(suite.usd, nil).Once()
	suite.mockAccountRepo.On("ListAccountTypes", suite.ctx).Return(domain.StandardAccountTypes, nil).Once()
	suite.mockAccountRepo.On("ListAccountsByTypes", suite.ctx, mock.AnythingOfType("[]string")).Return(temporaries, nil).Once()
	suite.mockAccountRepo.On("FindAccountByCode", suite.ctx, testIncomeSummaryCode).Return(summary, nil).Once()
	suite.mockAccountRepo.On("FindAccountByCode", suite.ctx, testRetainedEarningsCode).Return(retained, nil).Once()
}

func (suite *FiscalYearServiceTestSuite) TestCloseFiscalYear_SweepsNetIncome() {
	year := suite.openYear()
	temporaries := []domain.Account{
		{Code: 4000, Name: "Sales", AccountTypeName: domain.TypeRevenue, CurrencyCode: "USD", BalanceFunctional: decimal.NewFromInt(500)},
		{Code: 6000, Name: "Rent", AccountTypeName: domain.TypeExpense, CurrencyCode: "USD", BalanceFunctional: decimal.NewFromInt(300)},
	}

	suite.mockFiscalRepo.On("FindFiscalYearByBegin", suite.ctx, suite.begin).Return(year, nil).Once()
	suite.expectClosingLookups(temporaries)
	suite.mockFiscalRepo.On("CloseFiscalYear", suite.ctx, "fy-2025", suite.end,
		mock.MatchedBy(func(batch portsrepo.ClosingBatch) bool {
			if len(batch.Entries) != 2 {
				return false
			}
			sweep, transfer := batch.Entries[0], batch.Entries[1]
			// Revenue closes with a debit, expense with a credit, and the
			// income summary picks up the 200 net income as a credit.
			if len(sweep.Lines) != 3 ||
				!sweep.Lines[0].Debit.Equal(decimal.NewFromInt(500)) ||
				!sweep.Lines[1].Credit.Equal(decimal.NewFromInt(300)) ||
				sweep.Lines[2].AccountCode != testIncomeSummaryCode ||
				!sweep.Lines[2].Credit.Equal(decimal.NewFromInt(200)) {
				return false
			}
			if len(transfer.Lines) != 2 ||
				!transfer.Lines[0].Debit.Equal(decimal.NewFromInt(200)) ||
				transfer.Lines[1].AccountCode != testRetainedEarningsCode ||
				!transfer.Lines[1].Credit.Equal(decimal.NewFromInt(200)) {
				return false
			}
			// Net balance effect: temporaries zeroed, summary flat, retained
			// earnings up by net income. The batch records the swept balances
			// it was computed from so the repository can re-check them under
			// the account locks.
			return batch.Changes[4000].Functional.Equal(decimal.NewFromInt(-500)) &&
				batch.Changes[6000].Functional.Equal(decimal.NewFromInt(-300)) &&
				batch.Changes[testIncomeSummaryCode].Functional.IsZero() &&
				batch.Changes[testRetainedEarningsCode].Functional.Equal(decimal.NewFromInt(200)) &&
				batch.ExpectedFunctional[4000].Equal(decimal.NewFromInt(500)) &&
				batch.ExpectedFunctional[6000].Equal(decimal.NewFromInt(300))
		}),
		suite.userID, mock.AnythingOfType("time.Time")).Return([]int64{21, 22}, nil).Once()

	closed, refs, err := suite.service.CloseFiscalYear(suite.ctx, suite.begin, nil, suite.userID)

	suite.Require().NoError(err)
	suite.True(closed.Closed())
	suite.True(closed.PostTime.Equal(suite.end))
	suite.Equal([]int64{21, 22}, refs)
	suite.mockFiscalRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *FiscalYearServiceTestSuite) TestCloseFiscalYear_AbnormalBalanceClosesOppositeSide() {
	year := suite.openYear()
	// A revenue account with a negative (abnormal) balance closes with a
	// credit instead of a debit.
	temporaries := []domain.Account{
		{Code: 4000, Name: "Sales", AccountTypeName: domain.TypeRevenue, CurrencyCode: "USD", BalanceFunctional: decimal.NewFromInt(-50)},
	}

	suite.mockFiscalRepo.On("FindFiscalYearByBegin", suite.ctx, suite.begin).Return(year, nil).Once()
	suite.expectClosingLookups(temporaries)
	suite.mockFiscalRepo.On("CloseFiscalYear", suite.ctx, "fy-2025", suite.end,
		mock.MatchedBy(func(batch portsrepo.ClosingBatch) bool {
			sweep := batch.Entries[0]
			return sweep.Lines[0].Debit.IsZero() && sweep.Lines[0].Credit.Equal(decimal.NewFromInt(50)) &&
				sweep.Lines[1].Debit.Equal(decimal.NewFromInt(50))
		}),
		suite.userID, mock.AnythingOfType("time.Time")).Return([]int64{21, 22}, nil).Once()

	_, _, err := suite.service.CloseFiscalYear(suite.ctx, suite.begin, nil, suite.userID)

	suite.Require().NoError(err)
	suite.mockFiscalRepo.AssertExpectations(suite.T())
}

func (suite *FiscalYearServiceTestSuite) TestCloseFiscalYear_ZeroNetIncomeSkipsTransfer() {
	year := suite.openYear()
	// Revenue and expense cancel out exactly. The sweep balances by itself,
	// so there is no summary line and no summary-to-retained transfer; a
	// zero-amount line would never survive posting validation.
	temporaries := []domain.Account{
		{Code: 4000, Name: "Sales", AccountTypeName: domain.TypeRevenue, CurrencyCode: "USD", BalanceFunctional: decimal.NewFromInt(300)},
		{Code: 6000, Name: "Rent", AccountTypeName: domain.TypeExpense, CurrencyCode: "USD", BalanceFunctional: decimal.NewFromInt(300)},
	}

	suite.mockFiscalRepo.On("FindFiscalYearByBegin", suite.ctx, suite.begin).Return(year, nil).Once()
	suite.expectClosingLookups(temporaries)
	suite.mockFiscalRepo.On("CloseFiscalYear", suite.ctx, "fy-2025", suite.end,
		mock.MatchedBy(func(batch portsrepo.ClosingBatch) bool {
			if len(batch.Entries) != 1 {
				return false
			}
			sweep := batch.Entries[0]
			if len(sweep.Lines) != 2 {
				return false
			}
			for _, line := range sweep.Lines {
				if line.Debit.IsZero() && line.Credit.IsZero() {
					return false
				}
			}
			return sweep.Lines[0].Debit.Equal(decimal.NewFromInt(300)) &&
				sweep.Lines[1].Credit.Equal(decimal.NewFromInt(300)) &&
				batch.Changes[4000].Functional.Equal(decimal.NewFromInt(-300)) &&
				batch.Changes[6000].Functional.Equal(decimal.NewFromInt(-300))
		}),
		suite.userID, mock.AnythingOfType("time.Time")).Return([]int64{21}, nil).Once()

	closed, refs, err := suite.service.CloseFiscalYear(suite.ctx, suite.begin, nil, suite.userID)

	suite.Require().NoError(err)
	suite.True(closed.Closed())
	suite.Equal([]int64{21}, refs)
	suite.mockFiscalRepo.AssertExpectations(suite.T())
}

func (suite *FiscalYearServiceTestSuite) TestCloseFiscalYear_AllZeroTemporaries() {
	year := suite.openYear()

	suite.mockFiscalRepo.On("FindFiscalYearByBegin", suite.ctx, suite.begin).Return(year, nil).Once()
	suite.expectClosingLookups([]domain.Account{
		{Code: 4000, Name: "Sales", AccountTypeName: domain.TypeRevenue, CurrencyCode: "USD", BalanceFunctional: decimal.Zero},
	})
	suite.mockFiscalRepo.On("CloseFiscalYear", suite.ctx, "fy-2025", suite.end,
		mock.MatchedBy(func(batch portsrepo.ClosingBatch) bool {
			return len(batch.Entries) == 0
		}),
		suite.userID, mock.AnythingOfType("time.Time")).Return([]int64{}, nil).Once()

	closed, refs, err := suite.service.CloseFiscalYear(suite.ctx, suite.begin, nil, suite.userID)

	suite.Require().NoError(err)
	suite.True(closed.Closed())
	suite.Empty(refs)
	suite.mockFiscalRepo.AssertExpectations(suite.T())
}

func (suite *FiscalYearServiceTestSuite) TestCloseFiscalYear_AlreadyClosed() {
	year := suite.openYear()
	closedAt := suite.end
	year.PostTime = &closedAt

	suite.mockFiscalRepo.On("FindFiscalYearByBegin", suite.ctx, suite.begin).Return(year, nil).Once()

	_, _, err := suite.service.CloseFiscalYear(suite.ctx, suite.begin, nil, suite.userID)

	suite.ErrorIs(err, apperrors.ErrAlreadyClosed)
	suite.mockFiscalRepo.AssertNotCalled(suite.T(), "CloseFiscalYear", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FiscalYearServiceTestSuite) TestCloseFiscalYear_MissingIncomeSummaryAccount() {
	year := suite.openYear()
	temporaries := []domain.Account{
		{Code: 4000, Name: "Sales", AccountTypeName: domain.TypeRevenue, CurrencyCode: "USD", BalanceFunctional: decimal.NewFromInt(500)},
	}

	suite.mockFiscalRepo.On("FindFiscalYearByBegin", suite.ctx, suite.begin).Return(year, nil).Once()
	suite.mockCurrencySvc.On("GetFunctionalCurrency", suite.ctx).Return(suite.usd, nil).Once()
	suite.mockAccountRepo.On("ListAccountTypes", suite.ctx).Return(domain.StandardAccountTypes, nil).Once()
	suite.mockAccountRepo.On("ListAccountsByTypes", suite.ctx, mock.AnythingOfType("[]string")).Return(temporaries, nil).Once()
	suite.mockAccountRepo.On("FindAccountByCode", suite.ctx, testIncomeSummaryCode).Return(nil, apperrors.ErrNotFound).Once()

	_, _, err := suite.service.CloseFiscalYear(suite.ctx, suite.begin, nil, suite.userID)

	suite.ErrorIs(err, apperrors.ErrUnknownAccount)
	suite.mockFiscalRepo.AssertNotCalled(suite.T(), "CloseFiscalYear", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- ValidateAccountingEquation ---

func (suite *FiscalYearServiceTestSuite) TestValidateAccountingEquation_Holds() {
	accounts := []domain.Account{
		{Code: 1010, AccountTypeName: domain.TypeAsset, BalanceFunctional: decimal.NewFromInt(1000)},
		{Code: 1015, AccountTypeName: domain.TypeContraAsset, BalanceFunctional: decimal.NewFromInt(100)},
		{Code: 2000, AccountTypeName: domain.TypeLiability, BalanceFunctional: decimal.NewFromInt(300)},
		{Code: 3000, AccountTypeName: domain.TypeEquity, BalanceFunctional: decimal.NewFromInt(400)},
		{Code: 4000, AccountTypeName: domain.TypeRevenue, BalanceFunctional: decimal.NewFromInt(500)},
		{Code: 6000, AccountTypeName: domain.TypeExpense, BalanceFunctional: decimal.NewFromInt(300)},
	}

	suite.mockAccountRepo.On("ListAccountTypes", suite.ctx).Return(domain.StandardAccountTypes, nil).Once()
	suite.mockAccountRepo.On("ListAccountsByTypes", suite.ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()

	assets, liabilitiesEquity, holds, err := suite.service.ValidateAccountingEquation(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal("900", assets.String())
	suite.Equal("900", liabilitiesEquity.String())
	suite.True(holds)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *FiscalYearServiceTestSuite) TestValidateAccountingEquation_DividendsReduceEquity() {
	// A declared dividend is debit-normal within the equity side: 100 paid
	// out of 1000 contributed capital leaves 900 on each side.
	accounts := []domain.Account{
		{Code: 1010, AccountTypeName: domain.TypeAsset, BalanceFunctional: decimal.NewFromInt(900)},
		{Code: 3000, AccountTypeName: domain.TypeEquity, BalanceFunctional: decimal.NewFromInt(1000)},
		{Code: 3500, AccountTypeName: domain.TypeDividend, BalanceFunctional: decimal.NewFromInt(100)},
	}

	suite.mockAccountRepo.On("ListAccountTypes", suite.ctx).Return(domain.StandardAccountTypes, nil).Once()
	suite.mockAccountRepo.On("ListAccountsByTypes", suite.ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()

	assets, liabilitiesEquity, holds, err := suite.service.ValidateAccountingEquation(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal("900", assets.String())
	suite.Equal("900", liabilitiesEquity.String())
	suite.True(holds)
}

func (suite *FiscalYearServiceTestSuite) TestValidateAccountingEquation_Imbalance() {
	accounts := []domain.Account{
		{Code: 1010, AccountTypeName: domain.TypeAsset, BalanceFunctional: decimal.NewFromInt(1000)},
		{Code: 2000, AccountTypeName: domain.TypeLiability, BalanceFunctional: decimal.NewFromInt(300)},
	}

	suite.mockAccountRepo.On("ListAccountTypes", suite.ctx).Return(domain.StandardAccountTypes, nil).Once()
	suite.mockAccountRepo.On("ListAccountsByTypes", suite.ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()

	assets, liabilitiesEquity, holds, err := suite.service.ValidateAccountingEquation(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal("1000", assets.String())
	suite.Equal("300", liabilitiesEquity.String())
	suite.False(holds)
}
