// Package page renders HTML views with the fields every page expects
package page

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Render executes view with data. The request ID is always available to
// templates, and the signed in user too when there is one.
func Render(c *gin.Context, code int, view string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	data["requestID"] = c.GetString("requestID")

	if _, ok := data["user"]; !ok {
		if s, ok := c.Get("session"); ok {
			data["user"] = s
		}
	}

	c.HTML(code, view, data)
}

// Failure logs an infrastructure error and renders msg on view
func Failure(c *gin.Context, code int, view, msg string, err error) {
	zap.L().Error(msg, zap.Error(err), zap.String("requestID", c.GetString("requestID")))
	Render(c, code, view, gin.H{"error": msg})
}

// NotFound is the fallback for unknown routes
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "error.tmpl", gin.H{"error": "Page not found."})
}
