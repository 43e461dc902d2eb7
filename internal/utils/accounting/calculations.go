package accounting

import (
	"fmt"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceDelta is the effect of a set of lines on a single account, in the
// account's own currency and in the functional currency. Both values are
// signed by the account's normal balance.
type BalanceDelta struct {
	Native     decimal.Decimal
	Functional decimal.Decimal
}

// Add returns the sum of two deltas.
func (d BalanceDelta) Add(o BalanceDelta) BalanceDelta {
	return BalanceDelta{
		Native:     d.Native.Add(o.Native),
		Functional: d.Functional.Add(o.Functional),
	}
}

// FunctionalAmount derives the functional-currency amount of an original
// amount at the given rate, rounded to the functional currency's precision.
// This is computed once at entry creation and stored; later rate changes
// never retroactively alter it.
func FunctionalAmount(amount, rate decimal.Decimal, decimals int) decimal.Decimal {
	return amount.Mul(rate).Round(int32(decimals))
}

// SignedAmount applies normal-balance polarity to a debit/credit pair:
// a debit increases a DEBIT-normal account and decreases a CREDIT-normal one.
func SignedAmount(debit, credit decimal.Decimal, normal domain.NormalBalance) decimal.Decimal {
	if normal == domain.NormalDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// ValidateLineAmounts rejects lines where both debit and credit are set, or
// where either side is negative. A both-zero line is legal in a draft and is
// caught at posting time by ValidateEntryBalance.
func ValidateLineAmounts(line domain.JournalEntryLine) error {
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return fmt.Errorf("%w: line %d amounts must not be negative", apperrors.ErrValidation, line.LineOrder)
	}
	if !line.Debit.IsZero() && !line.Credit.IsZero() {
		return fmt.Errorf("%w: line %d has both debit and credit set", apperrors.ErrValidation, line.LineOrder)
	}
	return nil
}

// ValidateEntryBalance runs the pre-commit checks of the posting engine over
// an entry's lines: every line must have exactly one non-zero side, at least
// one line must be non-zero, and debits must equal credits in both
// transaction-currency and functional-currency units.
func ValidateEntryBalance(lines []domain.JournalEntryLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: entry must have at least two lines", apperrors.ErrValidation)
	}

	debits := decimal.Zero
	credits := decimal.Zero
	debitsFunctional := decimal.Zero
	creditsFunctional := decimal.Zero
	nonZero := false

	for _, line := range lines {
		if err := ValidateLineAmounts(line); err != nil {
			return err
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return fmt.Errorf("%w: line %d", apperrors.ErrZeroAmount, line.LineOrder)
		}
		nonZero = true
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
		debitsFunctional = debitsFunctional.Add(line.DebitFunctional)
		creditsFunctional = creditsFunctional.Add(line.CreditFunctional)
	}

	if !nonZero {
		return apperrors.ErrZeroAmount
	}
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s, credits %s", apperrors.ErrUnbalanced, debits, credits)
	}
	if !debitsFunctional.Equal(creditsFunctional) {
		return fmt.Errorf("%w: functional debits %s, functional credits %s",
			apperrors.ErrUnbalanced, debitsFunctional, creditsFunctional)
	}
	return nil
}

// LineDelta computes the effect of one line on its account. The functional
// component always applies; the native component applies when the line's
// transaction currency matches the account currency (directly, or through
// the line's foreign currency annotation), and falls back to the functional
// amount for accounts denominated in the functional currency.
func LineDelta(line domain.JournalEntryLine, account domain.Account, accountType domain.AccountType, entryCurrency, functionalCurrency string) BalanceDelta {
	functional := SignedAmount(line.DebitFunctional, line.CreditFunctional, accountType.NormalBalance)

	var native decimal.Decimal
	switch account.CurrencyCode {
	case entryCurrency:
		native = SignedAmount(line.Debit, line.Credit, accountType.NormalBalance)
	case functionalCurrency:
		native = functional
	}

	return BalanceDelta{Native: native, Functional: functional}
}

// ComputeBalanceChanges folds an entry's lines into per-account deltas.
// Every referenced account and its type must be present in the maps.
func ComputeBalanceChanges(entry domain.JournalEntry, accounts map[int64]domain.Account, types map[string]domain.AccountType, functionalCurrency string) (map[int64]BalanceDelta, error) {
	changes := make(map[int64]BalanceDelta, len(accounts))
	for _, line := range entry.Lines {
		account, ok := accounts[line.AccountCode]
		if !ok {
			return nil, fmt.Errorf("%w: code %d", apperrors.ErrUnknownAccount, line.AccountCode)
		}
		accountType, ok := types[account.AccountTypeName]
		if !ok {
			return nil, fmt.Errorf("%w: account type %q for account %d", apperrors.ErrInternal, account.AccountTypeName, account.Code)
		}
		delta := LineDelta(line, account, accountType, entry.TransactionCurrencyCode, functionalCurrency)
		changes[line.AccountCode] = changes[line.AccountCode].Add(delta)
	}
	return changes, nil
}
