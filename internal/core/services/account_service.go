package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portsrepo "github.com/ledgerforge/gl_backend/internal/core/ports/repositories"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/dto"
	"github.com/ledgerforge/gl_backend/internal/middleware"
	"github.com/shopspring/decimal"
)

// accountService implements the account registry. It owns the chart of
// accounts and the account type reference set; it never touches balances.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	currencySvc portssvc.CurrencySvcFacade
}

// NewAccountService creates a new account registry service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, currencySvc portssvc.CurrencySvcFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		currencySvc: currencySvc,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// RegisterAccountType registers a new account type. The standard set is
// seeded by migration; this exists for the rare custom type.
func (s *accountService) RegisterAccountType(ctx context.Context, name string, normalBalance domain.NormalBalance, userID string) (*domain.AccountType, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if name == "" {
		return nil, fmt.Errorf("%w: account type name is required", apperrors.ErrValidation)
	}
	if normalBalance != domain.NormalDebit && normalBalance != domain.NormalCredit {
		return nil, fmt.Errorf("%w: normal balance must be DEBIT or CREDIT", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	accountType := domain.AccountType{
		Name:          name,
		NormalBalance: normalBalance,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccountType(ctx, accountType); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save account type", slog.String("error", err.Error()), slog.String("name", name))
		}
		return nil, err
	}

	logger.Info("Account type registered", slog.String("name", name), slog.String("normal_balance", string(normalBalance)))
	return &accountType, nil
}

// ListAccountTypes retrieves the account type reference set.
func (s *accountService) ListAccountTypes(ctx context.Context) ([]domain.AccountType, error) {
	types, err := s.accountRepo.ListAccountTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list account types: %w", err)
	}
	if types == nil {
		return []domain.AccountType{}, nil
	}
	return types, nil
}

// NormalBalanceOf reports the normal balance polarity of an account type.
func (s *accountService) NormalBalanceOf(ctx context.Context, typeName string) (domain.NormalBalance, error) {
	accountType, err := s.accountRepo.FindAccountType(ctx, typeName)
	if err != nil {
		return "", err
	}
	return accountType.NormalBalance, nil
}

// CreateAccount registers a new account. The code is an immutable external
// identifier; a nonzero opening balance is only accepted for accounts
// denominated in the functional currency, since balances are tracked in both.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountType(ctx, req.AccountType); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
		}
		return nil, fmt.Errorf("failed to validate account type: %w", err)
	}

	if _, err := s.currencySvc.GetCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidCurrency, req.CurrencyCode)
		}
		return nil, fmt.Errorf("failed to validate currency %q: %w", req.CurrencyCode, err)
	}

	opening := decimal.Zero
	if req.OpeningBalance != nil && !req.OpeningBalance.IsZero() {
		functional, err := s.currencySvc.GetFunctionalCurrency(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve functional currency: %w", err)
		}
		if functional.CurrencyCode != req.CurrencyCode {
			return nil, fmt.Errorf("%w: opening balance requires a functional-currency account", apperrors.ErrValidation)
		}
		opening = *req.OpeningBalance
	}

	now := time.Now().UTC()
	account := domain.Account{
		Code:              req.Code,
		Name:              req.Name,
		AccountTypeName:   req.AccountType,
		CurrencyCode:      req.CurrencyCode,
		Balance:           opening,
		BalanceFunctional: opening,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save account", slog.String("error", err.Error()), slog.Int64("code", account.Code))
		}
		return nil, err
	}

	logger.Info("Account created", slog.Int64("code", account.Code), slog.String("type", account.AccountTypeName))
	return &account, nil
}

// GetAccountByCode retrieves an account by its numeric code.
func (s *accountService) GetAccountByCode(ctx context.Context, code int64) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by code", slog.String("error", err.Error()), slog.Int64("code", code))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountsByCodes retrieves multiple accounts keyed by code.
func (s *accountService) GetAccountsByCodes(ctx context.Context, codes []int64) (map[int64]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves a paginated list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	accounts, nextToken, err := s.accountRepo.ListAccounts(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	responses := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToAccountResponse(&accounts[i])
	}

	return &dto.ListAccountsResponse{Accounts: responses, NextToken: nextToken}, nil
}

// UpdateAccount updates an account's name. Code, type and currency are
// immutable once the account exists.
func (s *accountService) UpdateAccount(ctx context.Context, code int64, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if req.Name == nil || *req.Name == account.Name {
		return account, nil
	}

	account.Name = *req.Name
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.Int64("code", code))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	logger.Info("Account updated", slog.Int64("code", code))
	return account, nil
}
