package dto

import (
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the payload for registering a new account.
type CreateAccountRequest struct {
	Code           int64            `json:"code" binding:"required,gt=0"`
	Name           string           `json:"name" binding:"required"`
	AccountType    string           `json:"accountType" binding:"required"`
	CurrencyCode   string           `json:"currencyCode" binding:"required,len=3,uppercase"`
	OpeningBalance *decimal.Decimal `json:"openingBalance,omitempty"`
}

// UpdateAccountRequest allows renaming an account. Code, type and currency
// are immutable identifiers and are deliberately absent.
type UpdateAccountRequest struct {
	Name *string `json:"name,omitempty"`
}

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	Code              int64           `json:"code"`
	Name              string          `json:"name"`
	AccountType       string          `json:"accountType"`
	CurrencyCode      string          `json:"currencyCode"`
	Balance           decimal.Decimal `json:"balance"`
	BalanceFunctional decimal.Decimal `json:"balanceFunctional"`
}

// ToAccountResponse converts a domain Account to its API representation.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		Code:              a.Code,
		Name:              a.Name,
		AccountType:       a.AccountTypeName,
		CurrencyCode:      a.CurrencyCode,
		Balance:           a.Balance,
		BalanceFunctional: a.BalanceFunctional,
	}
}

// ListAccountsParams holds pagination parameters for listing accounts.
type ListAccountsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListAccountsResponse is a page of accounts plus the next-page token.
type ListAccountsResponse struct {
	Accounts  []AccountResponse `json:"accounts"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// CreateAccountTypeRequest is the payload for registering a custom account
// type beyond the standard set.
type CreateAccountTypeRequest struct {
	Name          string `json:"name" binding:"required"`
	NormalBalance string `json:"normalBalance" binding:"required,oneof=DEBIT CREDIT"`
}

// AccountTypeResponse is the API representation of an account type.
type AccountTypeResponse struct {
	Name          string `json:"name"`
	NormalBalance string `json:"normalBalance"`
	Category      string `json:"category"`
	IsTemporary   bool   `json:"isTemporary"`
}

// ToAccountTypeResponse converts a domain AccountType to its API representation.
func ToAccountTypeResponse(t domain.AccountType) AccountTypeResponse {
	return AccountTypeResponse{
		Name:          t.Name,
		NormalBalance: string(t.NormalBalance),
		Category:      string(t.Category),
		IsTemporary:   t.IsTemporary,
	}
}
