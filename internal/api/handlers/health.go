package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nsparik/fund-transfer-engine/internal/api/apierr"
)

type healthStatus struct {
	Status string `json:"status"`
}

// MakeHealthHandler implements GET /health (spec.md §6): 200 when the
// database pool can be reached, 503 degraded otherwise.
func MakeHealthHandler(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, apierr.Data(healthStatus{Status: "degraded"}))
			return
		}
		c.JSON(http.StatusOK, apierr.Data(healthStatus{Status: "healthy"}))
	}
}
