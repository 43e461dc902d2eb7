package repositories

// RepositoryProvider bundles all repository facades for service construction.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryFacade
	CurrencyRepo     CurrencyRepository
	ExchangeRateRepo ExchangeRateRepository
	JournalRepo      JournalRepositoryFacade
	FiscalYearRepo   FiscalYearRepository
	ReportingRepo    ReportingRepository
}
