package services

// ServiceContainer bundles all service facades for handler registration.
type ServiceContainer struct {
	Account      AccountSvcFacade
	Currency     CurrencySvcFacade
	ExchangeRate ExchangeRateSvcFacade
	Journal      JournalSvcFacade
	FiscalYear   FiscalYearSvcFacade
	Reporting    ReportingSvcFacade
}
