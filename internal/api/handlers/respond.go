package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nsparik/fund-transfer-engine/internal/api/apierr"
	"github.com/nsparik/fund-transfer-engine/internal/application/idempotencysvc"
	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	"github.com/nsparik/fund-transfer-engine/internal/pkg/logging"
)

// jsonDecodeErr wraps a JSON unmarshal failure as a domain error carrying the
// INVALID_JSON code so it flows through the same respondError path as every other bad-input
// case (spec.md §6's INVALID_JSON code).
func jsonDecodeErr(err error) error {
	return domainerr.New(domainerr.Code(apierr.CodeInvalidJSON), "request body is not valid JSON: "+err.Error())
}

// parseDateRange reads from/to query params as RFC3339 timestamps. The
// from >= to check happens in statement.Service.Get, not here, per
// spec.md §9's warning about computing a duration before that check.
func parseDateRange(c *gin.Context) (from, to time.Time, err error) {
	from, err = time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return from, to, domainerr.New(domainerr.CodeInvalidDateRange, "from must be an RFC3339 timestamp")
	}
	to, err = time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return from, to, domainerr.New(domainerr.CodeInvalidDateRange, "to must be an RFC3339 timestamp")
	}
	return from, to, nil
}

func respondError(c *gin.Context, err error) {
	if env, status, ok := apierr.FromDomainErr(err); ok {
		c.JSON(status, env)
		return
	}

	switch {
	case errors.Is(err, idempotencysvc.ErrKeyRequired):
		c.JSON(http.StatusBadRequest, apierr.Of(apierr.CodeIdempotencyKeyRequired, "X-Idempotency-Key header is required"))
	case errors.Is(err, idempotencysvc.ErrKeyTooLong):
		c.JSON(http.StatusBadRequest, apierr.Of(apierr.CodeInvalidIdempotencyKey, "X-Idempotency-Key must be at most 255 characters"))
	case errors.Is(err, idempotencysvc.ErrKeyReuse):
		c.JSON(http.StatusUnprocessableEntity, apierr.Of(apierr.CodeIdempotencyKeyReuse, "idempotency key was already used with a different request body"))
	case errors.Is(err, idempotencysvc.ErrLockTimeout):
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, apierr.Of(apierr.CodeIdempotencyLockTimeout, "could not acquire idempotency lock in time"))
	default:
		logging.Error("unclassified request error", err, map[string]interface{}{"path": c.Request.URL.Path})
		c.JSON(http.StatusInternalServerError, apierr.Internal())
	}
}

func pageParams(c *gin.Context) (page, perPage int) {
	page = 1
	perPage = 20
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil && v >= 1 && v <= 100 {
		perPage = v
	}
	return page, perPage
}
