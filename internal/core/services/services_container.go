package services

import (
	portsrepo "github.com/ledgerforge/gl_backend/internal/core/ports/repositories"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/platform/config"
	"github.com/shopspring/decimal"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Currency first: almost everything else needs the functional currency.
	container.Currency = NewCurrencyService(repos.CurrencyRepo)

	rateOptions := []ExchangeRateServiceOption{}
	if ceiling, err := decimal.NewFromString(cfg.RateSanityCeiling); err == nil {
		rateOptions = append(rateOptions, WithSanityCeiling(ceiling))
	}
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, container.Currency, rateOptions...)

	container.Account = NewAccountService(repos.AccountRepo, container.Currency)
	container.Journal = NewJournalService(repos.JournalRepo, container.Account, container.Currency, container.ExchangeRate)
	container.FiscalYear = NewFiscalYearService(repos.FiscalYearRepo, repos.AccountRepo, container.Currency,
		cfg.RetainedEarningsCode, cfg.IncomeSummaryCode)
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.AccountRepo, container.ExchangeRate, container.Currency)

	return container
}
