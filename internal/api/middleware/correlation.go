package middleware

import (
	"strings"

	"github.com/google/uuid"

	"github.com/gin-gonic/gin"
)

const CorrelationIDHeader = "X-Correlation-ID"
const correlationIDKey = "correlation_id"

// Correlation assigns a per-request correlation id: the inbound header
// value, sanitised to printable ASCII and truncated to 128 chars, or a
// freshly generated one when absent. It is echoed on the response and
// stashed in the Gin context for logging (spec.md §6).
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := sanitize(c.GetHeader(CorrelationIDHeader))
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(correlationIDKey, id)
		c.Writer.Header().Set(CorrelationIDHeader, id)
		c.Next()
	}
}

func CorrelationID(c *gin.Context) string {
	if v, ok := c.Get(correlationIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			continue
		}
		b.WriteRune(r)
		if b.Len() >= 128 {
			break
		}
	}
	return b.String()
}
