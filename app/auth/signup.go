package auth

import (
	"net/http"

	"weatherapp/app/page"
	"weatherapp/internal"
	"weatherapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func AuthSignup(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var in service.SignupInput
	if err := c.ShouldBind(&in); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))

		page.Render(c, http.StatusBadRequest, viewSignup, gin.H{"error": service.MsgMissingFields})
		return
	}

	user, err := d.Auth.Signup(c.Request.Context(), in)
	if err != nil {
		if service.IsUserError(err) {
			page.Render(c, statusFor(err), viewSignup, gin.H{"error": err.Error()})
			return
		}

		page.Failure(c, http.StatusInternalServerError, viewError, service.MsgSignupFailed, err)
		return
	}

	zap.L().Info("New user registered", zap.String("userID", user.ID), zap.String("requestID", requestID))

	page.Render(c, http.StatusOK, viewSuccess, gin.H{
		"name":    user.Username,
		"message": service.MsgSignupOK,
	})
}
