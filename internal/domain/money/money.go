// Package money implements the integer-minor-units value objects used
// throughout the ledger. Amounts are never represented as floats: every
// quantity is an int64 count of the currency's smallest unit, following the
// same "no floats, no maps" discipline the retrieval pack's ledger
// implementations use for deterministic accounting.
package money

import (
	"regexp"
	"strings"

	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency is an ISO-4217 alphabetic code, always upper-case.
type Currency string

func NewCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currencyPattern.MatchString(code) {
		return "", domainerr.New(domainerr.CodeValidation, "currency must be a 3-letter ISO-4217 code")
	}
	return Currency(code), nil
}

func (c Currency) String() string { return string(c) }

// Amount is a non-negative integer count of minor units (cents) in a given
// currency. Balance is an Amount; a transfer amount is also an Amount but
// must additionally be strictly positive (checked by the caller).
type Amount struct {
	Minor    int64
	Currency Currency
}

func New(minor int64, currency Currency) Amount {
	return Amount{Minor: minor, Currency: currency}
}

func (a Amount) IsZero() bool { return a.Minor == 0 }

func (a Amount) SameCurrency(other Amount) bool {
	return a.Currency == other.Currency
}

// Add returns a + b. Mixing currencies is a programmer error, not a domain
// error the caller is expected to recover from: it panics, exactly the way
// the teacher's account.withAccountLock helper treats a broken invariant as
// a bug rather than a flow-control case.
func (a Amount) Add(b Amount) (Amount, error) {
	if !a.SameCurrency(b) {
		panic("money: Add called across currencies")
	}
	sum := a.Minor + b.Minor
	// Overflow check: if signs of operands match but the sign of the sum
	// differs, the addition wrapped around int64's range.
	if (a.Minor > 0 && b.Minor > 0 && sum < 0) || (a.Minor < 0 && b.Minor < 0 && sum > 0) {
		return Amount{}, domainerr.New(domainerr.CodeBalanceOverflow, "balance would overflow the platform's integer range")
	}
	return Amount{Minor: sum, Currency: a.Currency}, nil
}

// Subtract returns a - b, failing with insufficient-funds when the result
// would be negative.
func (a Amount) Subtract(b Amount) (Amount, error) {
	if !a.SameCurrency(b) {
		panic("money: Subtract called across currencies")
	}
	diff := a.Minor - b.Minor
	if diff < 0 {
		return Amount{}, domainerr.New(domainerr.CodeInsufficientFunds, "insufficient funds for this operation")
	}
	return Amount{Minor: diff, Currency: a.Currency}, nil
}

func (a Amount) Equal(b Amount) bool {
	return a.Minor == b.Minor && a.Currency == b.Currency
}

func (a Amount) GreaterThanZero() bool {
	return a.Minor > 0
}

// RequireSameCurrency returns a typed CURRENCY_MISMATCH error when a and b
// carry different currencies; it's the guard every debit/credit call runs
// before touching a balance.
func RequireSameCurrency(a, b Amount) error {
	if !a.SameCurrency(b) {
		return domainerr.New(domainerr.CodeCurrencyMismatch, "currency mismatch: "+string(a.Currency)+" vs "+string(b.Currency))
	}
	return nil
}
