package handlers

import (
	"net/http"

	"dinewise/utils"

	"github.com/gin-gonic/gin"
)

// Health reports the latest dependency snapshot. It answers 503 while the
// store is unreachable.
func Health(monitor *utils.HealthMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := monitor.Status()
		code := http.StatusOK
		if !status.Store {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "message": "Hi, I'm DineWise"})
	}
}
