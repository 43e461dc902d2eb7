package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portsrepo "github.com/ledgerforge/gl_backend/internal/core/ports/repositories"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/dto"
	"github.com/ledgerforge/gl_backend/internal/middleware"
	"github.com/ledgerforge/gl_backend/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// journalService implements the posting engine and the reversal/correction
// manager on top of it.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	currencySvc portssvc.CurrencySvcFacade
	rateSvc     portssvc.ExchangeRateSvcFacade
}

// NewJournalService creates a new journal service.
func NewJournalService(
	journalRepo portsrepo.JournalRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	currencySvc portssvc.CurrencySvcFacade,
	rateSvc portssvc.ExchangeRateSvcFacade,
) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
		currencySvc: currencySvc,
		rateSvc:     rateSvc,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// CreateEntry validates a draft entry, derives the functional-currency side of
// every line once, and persists the draft. The derived amounts are frozen at
// this point; later rate changes never alter them.
func (s *journalService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	functional, err := s.currencySvc.GetFunctionalCurrency(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve functional currency: %w", err)
	}

	transactionTime := time.Now().UTC()
	if req.TransactionTime != nil {
		transactionTime = req.TransactionTime.UTC()
	}

	currencyCode, rate, err := s.resolveEntryCurrency(ctx, req, functional, transactionTime)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		TransactionTime:          transactionTime,
		Note:                     req.Note,
		TransactionCurrencyCode:  currencyCode,
		ExchangeRateToFunctional: rate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	lines, err := s.buildLines(ctx, req.Lines, currencyCode, rate, functional, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	ref, err := s.journalRepo.SaveDraftEntry(ctx, entry, lines)
	if err != nil {
		logger.Error("Failed to save draft entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save draft entry: %w", err)
	}

	entry.Ref = ref
	for i := range lines {
		lines[i].EntryRef = ref
	}
	entry.Lines = lines

	logger.Info("Draft journal entry created", slog.Int64("ref", ref),
		slog.String("currency", currencyCode), slog.Int("lines", len(lines)))
	return &entry, nil
}

// resolveEntryCurrency determines the entry's transaction currency and its
// rate to the functional currency. Functional-currency entries always carry
// rate 1; foreign-currency entries take the caller's rate or fall back to the
// latest recorded rate at the transaction time. A missing rate is an
// ErrRateUnavailable, never a silent rate of 1.
func (s *journalService) resolveEntryCurrency(ctx context.Context, req dto.CreateEntryRequest, functional *domain.Currency, transactionTime time.Time) (string, decimal.Decimal, error) {
	currencyCode := functional.CurrencyCode
	if req.TransactionCurrencyCode != "" {
		currencyCode = strings.ToUpper(req.TransactionCurrencyCode)
	}

	if currencyCode == functional.CurrencyCode {
		if req.ExchangeRate != nil && !req.ExchangeRate.Equal(decimal.NewFromInt(1)) {
			return "", decimal.Zero, fmt.Errorf("%w: functional-currency entries must use rate 1", apperrors.ErrValidation)
		}
		return currencyCode, decimal.NewFromInt(1), nil
	}

	if _, err := s.currencySvc.GetCurrencyByCode(ctx, currencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrInvalidCurrency, currencyCode)
		}
		return "", decimal.Zero, err
	}

	if req.ExchangeRate != nil {
		if req.ExchangeRate.LessThanOrEqual(decimal.Zero) {
			return "", decimal.Zero, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
		}
		return currencyCode, *req.ExchangeRate, nil
	}

	latest, err := s.rateSvc.LatestRate(ctx, currencyCode, functional.CurrencyCode, transactionTime)
	if err != nil {
		return "", decimal.Zero, err
	}
	return currencyCode, latest.Rate, nil
}

// buildLines validates line amounts, ordering and account currencies, and
// derives the functional amounts for every line.
func (s *journalService) buildLines(ctx context.Context, reqLines []dto.CreateEntryLineRequest, currencyCode string, rate decimal.Decimal, functional *domain.Currency, userID string, now time.Time) ([]domain.JournalEntryLine, error) {
	orders, err := resolveLineOrders(reqLines)
	if err != nil {
		return nil, err
	}

	codes := make([]int64, 0, len(reqLines))
	seen := make(map[int64]struct{}, len(reqLines))
	for _, line := range reqLines {
		if _, ok := seen[line.AccountCode]; !ok {
			seen[line.AccountCode] = struct{}{}
			codes = append(codes, line.AccountCode)
		}
	}

	accounts, err := s.accountSvc.GetAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	foreign := currencyCode != functional.CurrencyCode
	lines := make([]domain.JournalEntryLine, len(reqLines))
	for i, reqLine := range reqLines {
		account, ok := accounts[reqLine.AccountCode]
		if !ok {
			return nil, fmt.Errorf("%w: code %d", apperrors.ErrUnknownAccount, reqLine.AccountCode)
		}
		if account.CurrencyCode != currencyCode && account.CurrencyCode != functional.CurrencyCode {
			return nil, fmt.Errorf("%w: account %d is denominated in %s, entry is in %s",
				apperrors.ErrValidation, account.Code, account.CurrencyCode, currencyCode)
		}

		line := domain.JournalEntryLine{
			LineID:       uuid.NewString(),
			LineOrder:    orders[i],
			AccountCode:  reqLine.AccountCode,
			Debit:        reqLine.Debit,
			Credit:       reqLine.Credit,
			ExchangeRate: rate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := accounting.ValidateLineAmounts(line); err != nil {
			return nil, err
		}

		line.DebitFunctional = accounting.FunctionalAmount(line.Debit, rate, functional.Decimals)
		line.CreditFunctional = accounting.FunctionalAmount(line.Credit, rate, functional.Decimals)
		if foreign {
			line.ForeignCurrencyAmount = line.Debit.Sub(line.Credit)
			line.ForeignCurrencyCode = currencyCode
		}
		lines[i] = line
	}

	return lines, nil
}

// resolveLineOrders assigns or validates explicit line ordering: either no
// line carries an order (assigned 0..n-1 in request order), or every line
// does and the set is a gap-free permutation of 0..n-1.
func resolveLineOrders(reqLines []dto.CreateEntryLineRequest) ([]int, error) {
	orders := make([]int, len(reqLines))
	explicit := 0
	for _, line := range reqLines {
		if line.LineOrder != nil {
			explicit++
		}
	}

	switch explicit {
	case 0:
		for i := range orders {
			orders[i] = i
		}
		return orders, nil
	case len(reqLines):
		used := make(map[int]struct{}, len(reqLines))
		for i, line := range reqLines {
			order := *line.LineOrder
			if order < 0 || order >= len(reqLines) {
				return nil, fmt.Errorf("%w: line order %d out of range", apperrors.ErrValidation, order)
			}
			if _, dup := used[order]; dup {
				return nil, fmt.Errorf("%w: duplicate line order %d", apperrors.ErrValidation, order)
			}
			used[order] = struct{}{}
			orders[i] = order
		}
		return orders, nil
	default:
		return nil, fmt.Errorf("%w: line order must be set on all lines or none", apperrors.ErrValidation)
	}
}

// GetEntry retrieves an entry with its lines by ref.
func (s *journalService) GetEntry(ctx context.Context, ref int64) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: ref %d", apperrors.ErrUnknownEntry, ref)
		}
		return nil, err
	}

	lines, err := s.journalRepo.FindLinesByRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for entry %d: %w", ref, err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a paginated list of entries, optionally with lines.
func (s *journalService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	resp := &dto.ListEntriesResponse{
		Entries:   make([]dto.EntryResponse, 0, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		if params.IncludeLines {
			lines, err := s.journalRepo.FindLinesByRef(ctx, entries[i].Ref)
			if err != nil {
				return nil, fmt.Errorf("failed to load lines for entry %d: %w", entries[i].Ref, err)
			}
			entries[i].Lines = lines
		}
		resp.Entries = append(resp.Entries, dto.ToEntryResponse(&entries[i]))
	}
	return resp, nil
}

// ListAccountLines retrieves the ledger view of an account: posted lines
// touching it, newest entry first. The account must exist.
func (s *journalService) ListAccountLines(ctx context.Context, accountCode int64, params dto.ListAccountLinesParams) (*dto.ListAccountLinesResponse, error) {
	if _, err := s.accountSvc.GetAccountByCode(ctx, accountCode); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	lines, nextToken, err := s.journalRepo.ListLinesByAccountCode(ctx, accountCode, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list lines for account %d: %w", accountCode, err)
	}

	resp := &dto.ListAccountLinesResponse{
		AccountCode: accountCode,
		Lines:       make([]dto.EntryLineResponse, 0, len(lines)),
		NextToken:   nextToken,
	}
	for i := range lines {
		resp.Lines = append(resp.Lines, dto.ToAccountLineResponse(&lines[i]))
	}
	return resp, nil
}

// ReversibleStatus derives the lifecycle state of an entry from its post time
// and its compensating link. The state is never stored; it is always computed
// from these two facts.
func (s *journalService) ReversibleStatus(ctx context.Context, ref int64) (*domain.EntryStatus, error) {
	entry, err := s.journalRepo.FindEntryByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: ref %d", apperrors.ErrUnknownEntry, ref)
		}
		return nil, err
	}

	if !entry.Posted() {
		return &domain.EntryStatus{State: domain.StateUnposted}, nil
	}

	link, err := s.journalRepo.FindLinkByOriginalRef(ctx, ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.EntryStatus{State: domain.StatePosted}, nil
		}
		return nil, err
	}

	state := domain.StateReversed
	if link.Kind == domain.LinkCorrection {
		state = domain.StateCorrected
	}
	return &domain.EntryStatus{State: state, CompensatingRef: &link.CompensatingRef}, nil
}

// UpdateEntry edits a draft entry. Replacing lines swaps the whole line set
// and re-derives the functional amounts.
func (s *journalService) UpdateEntry(ctx context.Context, ref int64, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error) {
	entry, err := s.GetEntry(ctx, ref)
	if err != nil {
		return nil, err
	}
	if entry.Posted() {
		return nil, fmt.Errorf("%w: entry %d", apperrors.ErrPostedImmutable, ref)
	}

	now := time.Now().UTC()
	if req.Note != nil {
		entry.Note = *req.Note
	}
	if req.TransactionTime != nil {
		entry.TransactionTime = req.TransactionTime.UTC()
	}
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID

	lines := entry.Lines
	if req.Lines != nil {
		functional, err := s.currencySvc.GetFunctionalCurrency(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve functional currency: %w", err)
		}
		lines, err = s.buildLines(ctx, req.Lines, entry.TransactionCurrencyCode, entry.ExchangeRateToFunctional, functional, userID, now)
		if err != nil {
			return nil, err
		}
		for i := range lines {
			lines[i].EntryRef = ref
		}
	}

	if err := s.journalRepo.UpdateDraftEntry(ctx, *entry, lines); err != nil {
		return nil, fmt.Errorf("failed to update draft entry %d: %w", ref, err)
	}
	entry.Lines = lines
	return entry, nil
}

// DeleteEntry removes a draft entry. Posted entries are immutable and can
// only be neutralized by a reversal.
func (s *journalService) DeleteEntry(ctx context.Context, ref int64, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: ref %d", apperrors.ErrUnknownEntry, ref)
		}
		return err
	}
	if entry.Posted() {
		return fmt.Errorf("%w: entry %d", apperrors.ErrPostedImmutable, ref)
	}

	if err := s.journalRepo.DeleteDraftEntry(ctx, ref); err != nil {
		return fmt.Errorf("failed to delete draft entry %d: %w", ref, err)
	}

	logger.Info("Draft journal entry deleted", slog.Int64("ref", ref), slog.String("user_id", userID))
	return nil
}

// PostEntry commits a draft entry to the ledger: it re-validates the balance
// invariants, computes the per-account balance effect, and applies everything
// atomically. Posting is one-way; a posted entry can only be neutralized by a
// compensating entry.
func (s *journalService) PostEntry(ctx context.Context, ref int64, req dto.PostEntryRequest, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.GetEntry(ctx, ref)
	if err != nil {
		return nil, err
	}
	if entry.Posted() {
		return nil, fmt.Errorf("%w: entry %d posted at %s", apperrors.ErrAlreadyPosted, ref, entry.PostTime.Format(time.RFC3339))
	}

	if err := accounting.ValidateEntryBalance(entry.Lines); err != nil {
		return nil, err
	}

	changes, err := s.computeChanges(ctx, entry)
	if err != nil {
		return nil, err
	}

	postTime := entry.TransactionTime
	if req.PostTime != nil {
		postTime = req.PostTime.UTC()
	}

	now := time.Now().UTC()
	if err := s.journalRepo.PostEntry(ctx, ref, postTime, entry.LastUpdatedAt, changes, userID, now); err != nil {
		logger.Error("Failed to post entry", slog.String("error", err.Error()), slog.Int64("ref", ref))
		return nil, err
	}

	entry.PostTime = &postTime
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID

	logger.Info("Journal entry posted", slog.Int64("ref", ref),
		slog.Time("post_time", postTime), slog.Int("accounts_affected", len(changes)))
	return entry, nil
}

// computeChanges folds an entry's lines into per-account balance deltas using
// the current account registry and functional currency.
func (s *journalService) computeChanges(ctx context.Context, entry *domain.JournalEntry) (map[int64]accounting.BalanceDelta, error) {
	codes := make([]int64, 0, len(entry.Lines))
	seen := make(map[int64]struct{}, len(entry.Lines))
	for _, line := range entry.Lines {
		if _, ok := seen[line.AccountCode]; !ok {
			seen[line.AccountCode] = struct{}{}
			codes = append(codes, line.AccountCode)
		}
	}

	accounts, err := s.accountSvc.GetAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	accountTypes, err := s.accountSvc.ListAccountTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load account types: %w", err)
	}
	types := make(map[string]domain.AccountType, len(accountTypes))
	for _, accountType := range accountTypes {
		types[accountType.Name] = accountType
	}

	functional, err := s.currencySvc.GetFunctionalCurrency(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve functional currency: %w", err)
	}

	return accounting.ComputeBalanceChanges(*entry, accounts, types, functional.CurrencyCode)
}

// ReverseEntry posts a compensating entry that exactly negates a posted entry
// and links the pair as a reversal. The original entry itself is untouched.
func (s *journalService) ReverseEntry(ctx context.Context, originalRef int64, userID string) (*domain.JournalEntry, error) {
	return s.compensate(ctx, originalRef, domain.LinkReversal, userID)
}

// CorrectEntry is mechanically a reversal linked as a correction: it marks
// the original as superseded, to be followed by a replacement entry.
func (s *journalService) CorrectEntry(ctx context.Context, originalRef int64, userID string) (*domain.JournalEntry, error) {
	return s.compensate(ctx, originalRef, domain.LinkCorrection, userID)
}

func (s *journalService) compensate(ctx context.Context, originalRef int64, kind domain.LinkKind, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.GetEntry(ctx, originalRef)
	if err != nil {
		return nil, err
	}
	if !original.Posted() {
		return nil, fmt.Errorf("%w: entry %d", apperrors.ErrNotPosted, originalRef)
	}

	if link, err := s.journalRepo.FindLinkByOriginalRef(ctx, originalRef); err == nil {
		return nil, fmt.Errorf("%w: entry %d already has %s entry %d",
			apperrors.ErrAlreadyProcessed, originalRef, strings.ToLower(string(link.Kind)), link.CompensatingRef)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	compensating := domain.JournalEntry{
		TransactionTime:          now,
		Note:                     compensatingNote(kind, original),
		TransactionCurrencyCode:  original.TransactionCurrencyCode,
		ExchangeRateToFunctional: original.ExchangeRateToFunctional,
		PostTime:                 &now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	lines := make([]domain.JournalEntryLine, len(original.Lines))
	for i, line := range original.Lines {
		lines[i] = domain.JournalEntryLine{
			LineID:                uuid.NewString(),
			LineOrder:             line.LineOrder,
			AccountCode:           line.AccountCode,
			Debit:                 line.Credit,
			Credit:                line.Debit,
			DebitFunctional:       line.CreditFunctional,
			CreditFunctional:      line.DebitFunctional,
			ForeignCurrencyAmount: line.ForeignCurrencyAmount.Neg(),
			ForeignCurrencyCode:   line.ForeignCurrencyCode,
			ExchangeRate:          line.ExchangeRate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}
	compensating.Lines = lines

	changes, err := s.computeChanges(ctx, &compensating)
	if err != nil {
		return nil, err
	}

	link := domain.EntryLink{
		OriginalRef: originalRef,
		Kind:        kind,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	ref, err := s.journalRepo.SaveCompensatingEntry(ctx, compensating, lines, link, changes)
	if err != nil {
		logger.Error("Failed to save compensating entry", slog.String("error", err.Error()),
			slog.Int64("original_ref", originalRef), slog.String("kind", string(kind)))
		return nil, err
	}

	compensating.Ref = ref
	for i := range compensating.Lines {
		compensating.Lines[i].EntryRef = ref
	}

	logger.Info("Compensating entry posted", slog.Int64("original_ref", originalRef),
		slog.Int64("compensating_ref", ref), slog.String("kind", string(kind)))
	return &compensating, nil
}

func compensatingNote(kind domain.LinkKind, original *domain.JournalEntry) string {
	if kind == domain.LinkCorrection {
		return fmt.Sprintf("Correction of: %s [Corrects Entry #%d]", original.Note, original.Ref)
	}
	return fmt.Sprintf("Reversal of: %s [Reverses Entry #%d]", original.Note, original.Ref)
}
