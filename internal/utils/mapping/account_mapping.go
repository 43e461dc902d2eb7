package mapping

import (
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/ledgerforge/gl_backend/internal/models"
)

// ToModelAccount converts a domain Account to a model Account.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		Code:              d.Code,
		Name:              d.Name,
		AccountTypeName:   d.AccountTypeName,
		CurrencyCode:      d.CurrencyCode,
		Balance:           d.Balance,
		BalanceFunctional: d.BalanceFunctional,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		Code:              m.Code,
		Name:              m.Name,
		AccountTypeName:   m.AccountTypeName,
		CurrencyCode:      m.CurrencyCode,
		Balance:           m.Balance,
		BalanceFunctional: m.BalanceFunctional,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountType converts a model AccountType to a domain AccountType.
func ToDomainAccountType(m models.AccountType) domain.AccountType {
	return domain.AccountType{
		Name:          m.Name,
		NormalBalance: domain.NormalBalance(m.NormalBalance),
		Category:      domain.AccountCategory(m.Category),
		IsContra:      m.IsContra,
		IsTemporary:   m.IsTemporary,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAccountType converts a domain AccountType to a model AccountType.
func ToModelAccountType(d domain.AccountType) models.AccountType {
	return models.AccountType{
		Name:          d.Name,
		NormalBalance: string(d.NormalBalance),
		Category:      string(d.Category),
		IsContra:      d.IsContra,
		IsTemporary:   d.IsTemporary,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}
