package services_test

import (
	"context"
	"testing"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/core/services"
	"github.com/ledgerforge/gl_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo        *MockAccountRepository
	mockCurrencySvc *MockCurrencyService
	service         portssvc.AccountSvcFacade
	ctx             context.Context
	userID          string
	assetType       *domain.AccountType
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.mockCurrencySvc = new(MockCurrencyService)
	suite.service = services.NewAccountService(suite.mockRepo, suite.mockCurrencySvc)
	suite.ctx = context.Background()
	suite.userID = "user-1"
	suite.assetType = &domain.AccountType{Name: domain.TypeAsset, NormalBalance: domain.NormalDebit}
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (suite *AccountServiceTestSuite) TestRegisterAccountType_Success() {
	suite.mockRepo.On("SaveAccountType", suite.ctx, mock.MatchedBy(func(t domain.AccountType) bool {
		return t.Name == "deferred_revenue" && t.NormalBalance == domain.NormalCredit
	})).Return(nil).Once()

	accountType, err := suite.service.RegisterAccountType(suite.ctx, "deferred_revenue", domain.NormalCredit, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("deferred_revenue", accountType.Name)
	suite.Equal(suite.userID, accountType.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRegisterAccountType_BadPolarity() {
	_, err := suite.service.RegisterAccountType(suite.ctx, "WEIRD", domain.NormalBalance("SIDEWAYS"), suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccountType", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{Code: 1010, Name: "Cash", AccountType: domain.TypeAsset, CurrencyCode: "USD"}

	suite.mockRepo.On("FindAccountType", suite.ctx, domain.TypeAsset).Return(suite.assetType, nil).Once()
	suite.mockCurrencySvc.On("GetCurrencyByCode", suite.ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD"}, nil).Once()
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Code == 1010 && a.Balance.IsZero() && a.BalanceFunctional.IsZero()
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(suite.ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(int64(1010), account.Code)
	suite.Equal(domain.TypeAsset, account.AccountTypeName)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockCurrencySvc.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownType() {
	req := dto.CreateAccountRequest{Code: 1010, Name: "Cash", AccountType: "TREASURE", CurrencyCode: "USD"}

	suite.mockRepo.On("FindAccountType", suite.ctx, "TREASURE").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateAccount(suite.ctx, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownCurrency() {
	req := dto.CreateAccountRequest{Code: 1010, Name: "Cash", AccountType: domain.TypeAsset, CurrencyCode: "XXX"}

	suite.mockRepo.On("FindAccountType", suite.ctx, domain.TypeAsset).Return(suite.assetType, nil).Once()
	suite.mockCurrencySvc.On("GetCurrencyByCode", suite.ctx, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateAccount(suite.ctx, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrInvalidCurrency)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_OpeningBalanceNeedsFunctionalCurrency() {
	opening := decimal.NewFromInt(500)
	req := dto.CreateAccountRequest{Code: 1020, Name: "EUR Cash", AccountType: domain.TypeAsset, CurrencyCode: "EUR", OpeningBalance: &opening}

	suite.mockRepo.On("FindAccountType", suite.ctx, domain.TypeAsset).Return(suite.assetType, nil).Once()
	suite.mockCurrencySvc.On("GetCurrencyByCode", suite.ctx, "EUR").Return(&domain.Currency{CurrencyCode: "EUR"}, nil).Once()
	suite.mockCurrencySvc.On("GetFunctionalCurrency", suite.ctx).Return(&domain.Currency{CurrencyCode: "USD", IsFunctional: true}, nil).Once()

	_, err := suite.service.CreateAccount(suite.ctx, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
	suite.mockCurrencySvc.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_OpeningBalanceInFunctionalCurrency() {
	opening := decimal.NewFromInt(500)
	req := dto.CreateAccountRequest{Code: 1010, Name: "Cash", AccountType: domain.TypeAsset, CurrencyCode: "USD", OpeningBalance: &opening}

	suite.mockRepo.On("FindAccountType", suite.ctx, domain.TypeAsset).Return(suite.assetType, nil).Once()
	suite.mockCurrencySvc.On("GetCurrencyByCode", suite.ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD", IsFunctional: true}, nil).Once()
	suite.mockCurrencySvc.On("GetFunctionalCurrency", suite.ctx).Return(&domain.Currency{CurrencyCode: "USD", IsFunctional: true}, nil).Once()
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(opening) && a.BalanceFunctional.Equal(opening)
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(suite.ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(account.Balance.Equal(opening))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RenameNoOpWhenSame() {
	existing := &domain.Account{Code: 1010, Name: "Cash", AccountTypeName: domain.TypeAsset, CurrencyCode: "USD"}
	name := "Cash"
	req := dto.UpdateAccountRequest{Name: &name}

	suite.mockRepo.On("FindAccountByCode", suite.ctx, int64(1010)).Return(existing, nil).Once()

	account, err := suite.service.UpdateAccount(suite.ctx, 1010, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("Cash", account.Name)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_Rename() {
	existing := &domain.Account{Code: 1010, Name: "Cash", AccountTypeName: domain.TypeAsset, CurrencyCode: "USD"}
	name := "Cash and Equivalents"
	req := dto.UpdateAccountRequest{Name: &name}

	suite.mockRepo.On("FindAccountByCode", suite.ctx, int64(1010)).Return(existing, nil).Once()
	suite.mockRepo.On("UpdateAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Name == name && a.LastUpdatedBy == suite.userID
	})).Return(nil).Once()

	account, err := suite.service.UpdateAccount(suite.ctx, 1010, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(name, account.Name)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetAccountByCode_NotFound() {
	suite.mockRepo.On("FindAccountByCode", suite.ctx, int64(9999)).Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.GetAccountByCode(suite.ctx, 9999)

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(account)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestNormalBalanceOf() {
	suite.mockRepo.On("FindAccountType", suite.ctx, domain.TypeRevenue).Return(&domain.AccountType{Name: domain.TypeRevenue, NormalBalance: domain.NormalCredit}, nil).Once()

	polarity, err := suite.service.NormalBalanceOf(suite.ctx, domain.TypeRevenue)

	suite.Require().NoError(err)
	suite.Equal(domain.NormalCredit, polarity)
	suite.mockRepo.AssertExpectations(suite.T())
}
