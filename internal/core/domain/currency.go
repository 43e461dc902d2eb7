package domain

// Currency represents a supported currency. Exactly one currency in the
// system is the functional (reporting) currency at any time.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // e.g. "USD"
	Symbol       string `json:"symbol"`       // e.g. "$"
	Name         string `json:"name"`         // e.g. "US Dollar"
	Decimals     int    `json:"decimals"`     // minor-unit precision, e.g. 2
	IsFunctional bool   `json:"isFunctional"`
	AuditFields
}
