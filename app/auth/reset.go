package auth

import (
	"errors"
	"net/http"

	"weatherapp/app/page"
	"weatherapp/internal"
	"weatherapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthResetForm renders the new password form, but only for a live token
func AuthResetForm(c *gin.Context, d *internal.Deps) {
	token := c.Query("token")

	if _, err := d.Auth.CheckResetToken(c.Request.Context(), token); err != nil {
		if service.IsUserError(err) {
			page.Render(c, statusFor(err), viewError, gin.H{"error": err.Error()})
			return
		}

		page.Failure(c, http.StatusInternalServerError, viewError, service.MsgResetPageFailed, err)
		return
	}

	page.Render(c, http.StatusOK, viewReset, gin.H{"token": token})
}

func AuthResetPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var in service.ResetInput
	if err := c.ShouldBind(&in); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
	}

	user, err := d.Auth.ResetPassword(c.Request.Context(), in)
	if err != nil {
		switch {
		// Form problems keep the user on the form
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrMismatch):
			page.Render(c, statusFor(err), viewReset, gin.H{"token": in.Token, "error": err.Error()})
		case service.IsUserError(err):
			page.Render(c, statusFor(err), viewError, gin.H{"error": err.Error()})
		default:
			page.Failure(c, http.StatusInternalServerError, viewError, service.MsgResetPasswordFailed, err)
		}
		return
	}

	zap.L().Info("Password reset", zap.String("userID", user.ID), zap.String("requestID", requestID))

	page.Render(c, http.StatusOK, viewSuccess, gin.H{
		"name":    user.Username,
		"message": service.MsgPasswordResetOK,
	})
}
