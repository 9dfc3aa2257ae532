// Package admin exposes operational views
package admin

import (
	"net/http"

	"weatherapp/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Queues returns the job queue counters
func Queues(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	stats, err := d.Jobs.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read queue stats", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, stats)
}
