// Package domainerr defines the machine-readable error codes raised by
// aggregates and the account transfer coordinator. It mirrors the teacher's
// internal/pkg/errors split between a typed code and a human message, but
// keeps the domain package free of any HTTP status concern: that mapping
// lives at the transport boundary in internal/api.
package domainerr

// Code is a machine-readable domain error code, e.g. "ACCOUNT_FROZEN".
type Code string

const (
	CodeValidation              Code = "VALIDATION_ERROR"
	CodeAccountNotFound         Code = "ACCOUNT_NOT_FOUND"
	CodeAccountFrozen           Code = "ACCOUNT_FROZEN"
	CodeAccountClosed           Code = "ACCOUNT_CLOSED"
	CodeInvalidAccountState     Code = "INVALID_ACCOUNT_STATE"
	CodeNonZeroBalanceOnClose   Code = "NON_ZERO_BALANCE_ON_CLOSE"
	CodeInsufficientFunds       Code = "INSUFFICIENT_FUNDS"
	CodeCurrencyMismatch        Code = "CURRENCY_MISMATCH"
	CodeBalanceOverflow         Code = "BALANCE_OVERFLOW"
	CodeTransferNotFound        Code = "TRANSFER_NOT_FOUND"
	CodeInvalidTransferState    Code = "INVALID_TRANSFER_STATE"
	CodeInvalidTransferAmount   Code = "INVALID_TRANSFER_AMOUNT"
	CodeSameAccountTransfer     Code = "SAME_ACCOUNT_TRANSFER"
	CodeAccountNotFoundTransfer Code = "ACCOUNT_NOT_FOUND_FOR_TRANSFER"
	CodeAccountRuleViolation    Code = "ACCOUNT_RULE_VIOLATION"
	CodeInvalidDateRange        Code = "INVALID_DATE_RANGE"
)

// Error is the typed domain failure raised by aggregates and the
// coordinator. It is a plain value (not wrapped in fmt.Errorf) so callers
// can type-assert on Code without unwrapping chains.
type Error struct {
	Code    Code
	Message string

	// Cause is set when Code is a boundary-wrapper code (e.g.
	// ACCOUNT_RULE_VIOLATION) standing in for a more specific code raised on
	// the other side of a module boundary. It is a primitive Code value, not
	// a type from the originating module, so wrapping it here never pulls
	// that module's types across the boundary. Callers that want the precise
	// reason (failure persistence, HTTP mapping) should prefer Cause over
	// Code when it is set.
	Cause Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a boundary-wrapper error: code is the generic wrapper code a
// module exposes across its boundary, cause is the specific code the
// underlying failure actually carried.
func Wrap(code, cause Code, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Reason returns Cause when set, otherwise Code — the most specific code
// available for this error.
func (e *Error) Reason() Code {
	if e.Cause != "" {
		return e.Cause
	}
	return e.Code
}

func (e *Error) Error() string {
	return e.Message
}

// As reports whether err is a *domainerr.Error and, if so, assigns it into
// target. It is a plain type assertion on err itself: an *Error wrapped
// inside another error (e.g. via fmt.Errorf("%w")) is not found.
func As(err error, target **Error) bool {
	if de, ok := err.(*Error); ok {
		*target = de
		return true
	}
	return false
}
