package services_test

import (
	"context"
	"testing"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/core/services"
	"github.com/ledgerforge/gl_backend/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CurrencyServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCurrencyRepository
	service  portssvc.CurrencySvcFacade
	ctx      context.Context
	userID   string
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCurrencyRepository)
	suite.service = services.NewCurrencyService(suite.mockRepo)
	suite.ctx = context.Background()
	suite.userID = "user-1"
}

func TestCurrencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_FirstBecomesFunctional() {
	req := dto.CreateCurrencyRequest{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar"}

	suite.mockRepo.On("FindFunctionalCurrency", suite.ctx).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", suite.ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.CurrencyCode == "USD" && c.IsFunctional && c.Decimals == 2
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(suite.ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(currency)
	suite.True(currency.IsFunctional)
	suite.Equal(2, currency.Decimals)
	suite.Equal(suite.userID, currency.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_SecondIsNotFunctional() {
	decimals := 0
	req := dto.CreateCurrencyRequest{CurrencyCode: "JPY", Symbol: "¥", Name: "Japanese Yen", Decimals: &decimals}
	functional := &domain.Currency{CurrencyCode: "USD", IsFunctional: true}

	suite.mockRepo.On("FindFunctionalCurrency", suite.ctx).Return(functional, nil).Once()
	suite.mockRepo.On("SaveCurrency", suite.ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.CurrencyCode == "JPY" && !c.IsFunctional && c.Decimals == 0
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(suite.ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.False(currency.IsFunctional)
	suite.Equal(0, currency.Decimals)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Duplicate() {
	req := dto.CreateCurrencyRequest{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar"}
	functional := &domain.Currency{CurrencyCode: "USD", IsFunctional: true}

	suite.mockRepo.On("FindFunctionalCurrency", suite.ctx).Return(functional, nil).Once()
	suite.mockRepo.On("SaveCurrency", suite.ctx, mock.AnythingOfType("domain.Currency")).Return(apperrors.ErrDuplicate).Once()

	currency, err := suite.service.CreateCurrency(suite.ctx, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(currency)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_NotFound() {
	suite.mockRepo.On("FindCurrencyByCode", suite.ctx, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	currency, err := suite.service.GetCurrencyByCode(suite.ctx, "XXX")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(currency)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestListCurrencies_EmptyIsNotNil() {
	suite.mockRepo.On("ListCurrencies", suite.ctx).Return(nil, nil).Once()

	currencies, err := suite.service.ListCurrencies(suite.ctx)

	suite.Require().NoError(err)
	suite.NotNil(currencies)
	suite.Empty(currencies)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestSetFunctionalCurrency_Success() {
	eur := &domain.Currency{CurrencyCode: "EUR", Name: "Euro"}

	suite.mockRepo.On("FindCurrencyByCode", suite.ctx, "EUR").Return(eur, nil).Once()
	suite.mockRepo.On("SetFunctionalCurrency", suite.ctx, "EUR", suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.SetFunctionalCurrency(suite.ctx, "EUR", suite.userID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestSetFunctionalCurrency_UnknownCurrency() {
	suite.mockRepo.On("FindCurrencyByCode", suite.ctx, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.SetFunctionalCurrency(suite.ctx, "XXX", suite.userID)

	suite.ErrorIs(err, apperrors.ErrInvalidCurrency)
	suite.mockRepo.AssertNotCalled(suite.T(), "SetFunctionalCurrency", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}
