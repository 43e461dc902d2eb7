package dto

import (
	"github.com/ledgerforge/gl_backend/internal/core/domain"
)

// CreateCurrencyRequest is the payload for registering a currency.
type CreateCurrencyRequest struct {
	CurrencyCode string `json:"currencyCode" binding:"required,len=3,uppercase"`
	Symbol       string `json:"symbol" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Decimals     *int   `json:"decimals,omitempty" binding:"omitempty,gte=0,lte=18"`
}

// CurrencyResponse is the API representation of a currency.
type CurrencyResponse struct {
	CurrencyCode string `json:"currencyCode"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Decimals     int    `json:"decimals"`
	IsFunctional bool   `json:"isFunctional"`
}

// ToCurrencyResponse converts a domain Currency to its API representation.
func ToCurrencyResponse(c *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode: c.CurrencyCode,
		Symbol:       c.Symbol,
		Name:         c.Name,
		Decimals:     c.Decimals,
		IsFunctional: c.IsFunctional,
	}
}
