package pgsql

import (
	portsrepo "github.com/ledgerforge/gl_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	currencyRepo := newPgxCurrencyRepository(dbPool)
	exchangeRateRepo := newPgxExchangeRateRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo)
	fiscalYearRepo := newPgxFiscalYearRepository(dbPool, accountRepo)
	reportingRepo := newReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:      accountRepo,
		CurrencyRepo:     currencyRepo,
		ExchangeRateRepo: exchangeRateRepo,
		JournalRepo:      journalRepo,
		FiscalYearRepo:   fiscalYearRepo,
		ReportingRepo:    reportingRepo,
	}
}
