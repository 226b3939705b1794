package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nsparik/fund-transfer-engine/internal/api/apierr"
	"github.com/nsparik/fund-transfer-engine/internal/pkg/logging"
)

// Recovery converts a panic into a 500 response instead of tearing down the
// whole process, logging the correlation id so the incident can be traced.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Error("panic recovered in request handler", nil, map[string]interface{}{
					"panic":          rec,
					"correlation_id": CorrelationID(c),
					"path":           c.Request.URL.Path,
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierr.Internal())
			}
		}()
		c.Next()
	}
}
