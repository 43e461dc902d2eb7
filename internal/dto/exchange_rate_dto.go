package dto

import (
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordRateRequest is the payload for recording an exchange rate. Recording
// the same (from, to, date) key again amends rate and source in place.
type RecordRateRequest struct {
	FromCurrencyCode string          `json:"fromCurrencyCode" binding:"required,len=3,uppercase"`
	ToCurrencyCode   string          `json:"toCurrencyCode" binding:"required,len=3,uppercase"`
	Rate             decimal.Decimal `json:"rate" binding:"required,decimalgt0"`
	RateDate         time.Time       `json:"rateDate" binding:"required"`
	Source           string          `json:"source"`
}

// UpdateRateRequest amends an existing rate record. Key fields (from, to,
// date), when present, must match the stored record.
type UpdateRateRequest struct {
	FromCurrencyCode *string          `json:"fromCurrencyCode,omitempty"`
	ToCurrencyCode   *string          `json:"toCurrencyCode,omitempty"`
	RateDate         *time.Time       `json:"rateDate,omitempty"`
	Rate             *decimal.Decimal `json:"rate,omitempty"`
	Source           *string          `json:"source,omitempty"`
}

// ExchangeRateResponse is the API representation of an exchange rate.
type ExchangeRateResponse struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	RateDate         time.Time       `json:"rateDate"`
	Source           string          `json:"source"`
}

// ToExchangeRateResponse converts a domain ExchangeRate to its API representation.
func ToExchangeRateResponse(r *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:   r.ExchangeRateID,
		FromCurrencyCode: r.FromCurrencyCode,
		ToCurrencyCode:   r.ToCurrencyCode,
		Rate:             r.Rate,
		RateDate:         r.RateDate,
		Source:           r.Source,
	}
}

// ConvertResponse is the result of a currency conversion.
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Converted decimal.Decimal `json:"converted"`
	Rate      decimal.Decimal `json:"rate"`
	RateDate  time.Time       `json:"rateDate"`
}
