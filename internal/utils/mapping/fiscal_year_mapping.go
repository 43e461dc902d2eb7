package mapping

import (
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/ledgerforge/gl_backend/internal/models"
)

// ToModelFiscalYear converts a domain FiscalYear to a model FiscalYear.
func ToModelFiscalYear(d domain.FiscalYear) models.FiscalYear {
	return models.FiscalYear{
		FiscalYearID: d.FiscalYearID,
		BeginTime:    d.BeginTime,
		EndTime:      d.EndTime,
		PostTime:     d.PostTime,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFiscalYear converts a model FiscalYear to a domain FiscalYear.
func ToDomainFiscalYear(m models.FiscalYear) domain.FiscalYear {
	return domain.FiscalYear{
		FiscalYearID: m.FiscalYearID,
		BeginTime:    m.BeginTime,
		EndTime:      m.EndTime,
		PostTime:     m.PostTime,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
