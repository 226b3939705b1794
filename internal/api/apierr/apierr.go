// Package apierr maps domain and transport-layer errors onto the HTTP
// status codes and JSON envelope spec.md §6 defines, and carries the
// transport-only error codes domainerr deliberately omits (INVALID_JSON,
// UNSUPPORTED_MEDIA_TYPE, RATE_LIMIT_EXCEEDED, and the idempotency codes).
package apierr

import (
	"net/http"

	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
)

type Code string

const (
	CodeInvalidJSON            Code = "INVALID_JSON"
	CodeUnsupportedMediaType   Code = "UNSUPPORTED_MEDIA_TYPE"
	CodeRateLimitExceeded      Code = "RATE_LIMIT_EXCEEDED"
	CodeIdempotencyKeyRequired Code = "IDEMPOTENCY_KEY_REQUIRED"
	CodeInvalidIdempotencyKey  Code = "INVALID_IDEMPOTENCY_KEY"
	CodeIdempotencyKeyReuse    Code = "IDEMPOTENCY_KEY_REUSE"
	CodeIdempotencyLockTimeout Code = "IDEMPOTENCY_LOCK_TIMEOUT"
	CodeInternal               Code = "INTERNAL_ERROR"
)

// Envelope is the body shape for every response spec.md §6 defines:
// success wraps its payload in "data", error in "error".
type Envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Body       `json:"error,omitempty"`
}

type Body struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

func Data(v interface{}) Envelope { return Envelope{Data: v} }

func Of(code Code, message string) Envelope {
	return Envelope{Error: &Body{Code: string(code), Message: message}}
}

func Validation(message string, violations []string) Envelope {
	return Envelope{Error: &Body{Code: string(domainerr.CodeValidation), Message: message, Violations: violations}}
}

// statusByCode is the fixed table spec.md §6 names. A code absent from this
// table falls back to 422, the documented default for domain errors.
var statusByCode = map[string]int{
	string(domainerr.CodeValidation):             http.StatusBadRequest,
	string(CodeInvalidJSON):                      http.StatusBadRequest,
	string(CodeUnsupportedMediaType):              http.StatusUnsupportedMediaType,
	string(CodeRateLimitExceeded):                 http.StatusTooManyRequests,
	string(CodeIdempotencyKeyRequired):            http.StatusBadRequest,
	string(CodeInvalidIdempotencyKey):             http.StatusBadRequest,
	string(CodeIdempotencyKeyReuse):               http.StatusUnprocessableEntity,
	string(CodeIdempotencyLockTimeout):            http.StatusServiceUnavailable,
	string(domainerr.CodeTransferNotFound):        http.StatusNotFound,
	string(domainerr.CodeAccountNotFound):         http.StatusNotFound,
	string(domainerr.CodeAccountNotFoundTransfer): http.StatusNotFound,
	string(domainerr.CodeAccountFrozen):           http.StatusConflict,
	string(domainerr.CodeAccountClosed):           http.StatusConflict,
	string(domainerr.CodeInvalidAccountState):     http.StatusConflict,
	string(domainerr.CodeInvalidTransferState):    http.StatusConflict,
	string(domainerr.CodeNonZeroBalanceOnClose):   http.StatusUnprocessableEntity,
	string(domainerr.CodeInsufficientFunds):       http.StatusUnprocessableEntity,
	string(domainerr.CodeCurrencyMismatch):        http.StatusUnprocessableEntity,
	string(domainerr.CodeBalanceOverflow):         http.StatusUnprocessableEntity,
	string(domainerr.CodeInvalidTransferAmount):   http.StatusUnprocessableEntity,
	string(domainerr.CodeSameAccountTransfer):     http.StatusUnprocessableEntity,
	string(domainerr.CodeAccountRuleViolation):    http.StatusUnprocessableEntity,
	string(domainerr.CodeInvalidDateRange):        http.StatusBadRequest,
}

// StatusFor returns the HTTP status spec.md §6's mapping table assigns to a
// machine-readable error code, defaulting to 422 for anything unlisted and
// never to 500 — 500 is reserved for genuinely unclassified errors.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}

// FromDomainErr converts a domain error into the envelope and status the
// HTTP layer returns, or false if err is not a *domainerr.Error. It reports
// de.Reason() rather than de.Code so a module-boundary wrapper code (e.g.
// ACCOUNT_RULE_VIOLATION, which isn't in spec.md §6's public error-code
// table) never reaches the client in place of the specific reason
// (INSUFFICIENT_FUNDS, ACCOUNT_FROZEN, ...) it stands in for.
func FromDomainErr(err error) (Envelope, int, bool) {
	var de *domainerr.Error
	if !domainerr.As(err, &de) {
		return Envelope{}, 0, false
	}
	reason := de.Reason()
	return Of(Code(reason), de.Message), StatusFor(string(reason)), true
}

// Internal builds the fallback envelope for unclassified infrastructure
// errors (spec.md §7: "the request layer surfaces 500 for anything
// unclassified").
func Internal() Envelope {
	return Of(CodeInternal, "an unexpected error occurred")
}
