package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Khodkerutuja/WaitlistWizard/internal/api"
)

// Health reports process liveness and database reachability.
func Health(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, api.HealthResponse{Status: "degraded"})
			return
		}
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
	}
}

func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
