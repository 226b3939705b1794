package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nsparik/fund-transfer-engine/internal/api/apierr"
)

// RequireJSON rejects POST/PUT/PATCH requests whose Content-Type is not
// application/json with 415, per spec.md §6.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := c.GetHeader("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType,
					apierr.Of(apierr.CodeUnsupportedMediaType, "Content-Type must be application/json"))
				return
			}
		}
		c.Next()
	}
}
