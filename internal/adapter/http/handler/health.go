package handler

import (
	"net/http"
	"time"

	"ledger-replay-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck returns a handler that pings every external dependency of
// the configured history backend. The in-memory backend has none, so
// the endpoint simply reports ok.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		deps := make(map[string]string, len(checkers))
		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = "unreachable"
				status = http.StatusServiceUnavailable
				continue
			}
			deps[checker.Name()] = "ok"
		}

		c.JSON(status, gin.H{
			"status":       statusWord(status),
			"dependencies": deps,
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "healthy"
	}
	return "degraded"
}
