package middleware

import (
	"errors"
	"net/http"

	"weatherapp/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewSessionMiddleware only lets requests with a live session through and
// stores it under "session". Anyone else is sent to the signin page.
func NewSessionMiddleware(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		s, err := m.Load(c)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				c.Redirect(http.StatusFound, "/auth/signin")
				c.Abort()
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to load session", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("session", s)
		c.Set("userID", s.UserID)
		c.Next()
	}
}

// CurrentSession returns the session stored by NewSessionMiddleware
func CurrentSession(c *gin.Context) *session.Data {
	s, _ := c.MustGet("session").(*session.Data)
	return s
}
