package accounting

import (
	"testing"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFunctionalAmount(t *testing.T) {
	// 100 EUR at 1.0852 to a 2-decimal functional currency
	got := FunctionalAmount(dec("100"), dec("1.0852"), 2)
	assert.True(t, dec("108.52").Equal(got), "got %s", got)

	// Rounding half up at the currency's precision
	got = FunctionalAmount(dec("10.005"), dec("1"), 2)
	assert.True(t, dec("10.01").Equal(got), "got %s", got)

	// Zero-decimal target currency
	got = FunctionalAmount(dec("1000"), dec("147.31"), 0)
	assert.True(t, dec("147310").Equal(got), "got %s", got)
}

func TestSignedAmount(t *testing.T) {
	assert.True(t, dec("100").Equal(SignedAmount(dec("100"), decimal.Zero, domain.NormalDebit)))
	assert.True(t, dec("-100").Equal(SignedAmount(decimal.Zero, dec("100"), domain.NormalDebit)))
	assert.True(t, dec("100").Equal(SignedAmount(decimal.Zero, dec("100"), domain.NormalCredit)))
	assert.True(t, dec("-100").Equal(SignedAmount(dec("100"), decimal.Zero, domain.NormalCredit)))
}

func TestValidateLineAmounts(t *testing.T) {
	err := ValidateLineAmounts(domain.JournalEntryLine{Debit: dec("100")})
	assert.NoError(t, err)

	err = ValidateLineAmounts(domain.JournalEntryLine{Debit: dec("-1")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = ValidateLineAmounts(domain.JournalEntryLine{Debit: dec("10"), Credit: dec("10")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Both-zero lines are legal in a draft
	err = ValidateLineAmounts(domain.JournalEntryLine{})
	assert.NoError(t, err)
}

func TestValidateEntryBalance(t *testing.T) {
	balanced := []domain.JournalEntryLine{
		{LineOrder: 0, Debit: dec("100"), DebitFunctional: dec("100")},
		{LineOrder: 1, Credit: dec("100"), CreditFunctional: dec("100")},
	}
	assert.NoError(t, ValidateEntryBalance(balanced))

	// Fewer than two lines
	err := ValidateEntryBalance(balanced[:1])
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Zero-amount line
	err = ValidateEntryBalance([]domain.JournalEntryLine{
		{LineOrder: 0, Debit: dec("100"), DebitFunctional: dec("100")},
		{LineOrder: 1},
	})
	assert.ErrorIs(t, err, apperrors.ErrZeroAmount)

	// Unbalanced transaction-currency sides
	err = ValidateEntryBalance([]domain.JournalEntryLine{
		{LineOrder: 0, Debit: dec("100"), DebitFunctional: dec("100")},
		{LineOrder: 1, Credit: dec("90"), CreditFunctional: dec("100")},
	})
	assert.ErrorIs(t, err, apperrors.ErrUnbalanced)

	// Balanced natively but unbalanced functionally
	err = ValidateEntryBalance([]domain.JournalEntryLine{
		{LineOrder: 0, Debit: dec("100"), DebitFunctional: dec("108.52")},
		{LineOrder: 1, Credit: dec("100"), CreditFunctional: dec("108.51")},
	})
	assert.ErrorIs(t, err, apperrors.ErrUnbalanced)
}

func TestLineDelta(t *testing.T) {
	debitType := domain.AccountType{Name: "asset", NormalBalance: domain.NormalDebit}
	creditType := domain.AccountType{Name: "revenue", NormalBalance: domain.NormalCredit}

	line := domain.JournalEntryLine{
		Debit:           dec("100"),
		DebitFunctional: dec("108.52"),
	}

	// Account denominated in the entry currency keeps the native amount
	eurAccount := domain.Account{CurrencyCode: "EUR"}
	delta := LineDelta(line, eurAccount, debitType, "EUR", "USD")
	assert.True(t, dec("100").Equal(delta.Native))
	assert.True(t, dec("108.52").Equal(delta.Functional))

	// Functional-currency account tracks the functional amount on both sides
	usdAccount := domain.Account{CurrencyCode: "USD"}
	delta = LineDelta(line, usdAccount, debitType, "EUR", "USD")
	assert.True(t, dec("108.52").Equal(delta.Native))
	assert.True(t, dec("108.52").Equal(delta.Functional))

	// Credit-normal polarity flips the sign of a debit
	delta = LineDelta(line, usdAccount, creditType, "USD", "USD")
	assert.True(t, dec("-108.52").Equal(delta.Functional))
}

func TestComputeBalanceChanges(t *testing.T) {
	cash := domain.Account{Code: 1000, AccountTypeName: "asset", CurrencyCode: "USD"}
	revenue := domain.Account{Code: 4000, AccountTypeName: "revenue", CurrencyCode: "USD"}
	accounts := map[int64]domain.Account{1000: cash, 4000: revenue}
	types := map[string]domain.AccountType{
		"asset":   {Name: "asset", NormalBalance: domain.NormalDebit},
		"revenue": {Name: "revenue", NormalBalance: domain.NormalCredit},
	}

	entry := domain.JournalEntry{
		TransactionCurrencyCode: "USD",
		Lines: []domain.JournalEntryLine{
			{AccountCode: 1000, Debit: dec("250"), DebitFunctional: dec("250")},
			{AccountCode: 4000, Credit: dec("250"), CreditFunctional: dec("250")},
		},
	}

	changes, err := ComputeBalanceChanges(entry, accounts, types, "USD")
	require.NoError(t, err)
	require.Len(t, changes, 2)

	// Both accounts move in their normal direction: debit grows the asset,
	// credit grows the revenue.
	assert.True(t, dec("250").Equal(changes[1000].Native))
	assert.True(t, dec("250").Equal(changes[1000].Functional))
	assert.True(t, dec("250").Equal(changes[4000].Native))
	assert.True(t, dec("250").Equal(changes[4000].Functional))

	// Lines on the same account accumulate
	entry.Lines = append(entry.Lines,
		domain.JournalEntryLine{AccountCode: 1000, Credit: dec("50"), CreditFunctional: dec("50")},
		domain.JournalEntryLine{AccountCode: 4000, Debit: dec("50"), DebitFunctional: dec("50")},
	)
	changes, err = ComputeBalanceChanges(entry, accounts, types, "USD")
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(changes[1000].Native))
	assert.True(t, dec("200").Equal(changes[4000].Native))

	// Unknown account fails
	entry.Lines = []domain.JournalEntryLine{{AccountCode: 9999, Debit: dec("1")}}
	_, err = ComputeBalanceChanges(entry, accounts, types, "USD")
	assert.ErrorIs(t, err, apperrors.ErrUnknownAccount)
}
