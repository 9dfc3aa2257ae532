// Package dashboard serves the pages behind signin
package dashboard

import (
	"net/http"
	"time"

	"weatherapp/app/page"
	"weatherapp/internal"
	"weatherapp/internal/jobs"
	"weatherapp/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var defaultCities = []string{"Delhi", "Mumbai", "Chennai", "Hyderabad", "Vizianagaram"}

func Dashboard(c *gin.Context, d *internal.Deps) {
	s := middleware.CurrentSession(c)

	// Visits are tracked in the background, a full queue only costs a log line
	task, err := jobs.NewDashboardVisitTask(s.UserID, s.Username, time.Now())
	if err == nil {
		err = d.Jobs.Enqueue(c.Request.Context(), task)
	}
	if err != nil {
		zap.L().Warn("Failed to enqueue dashboard visit", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
	}

	page.Render(c, http.StatusOK, "dashboard.tmpl", gin.H{
		"user":   s,
		"cities": defaultCities,
	})
}

func Profile(c *gin.Context) {
	page.Render(c, http.StatusOK, "profile.tmpl", gin.H{"user": middleware.CurrentSession(c)})
}
