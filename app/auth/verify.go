package auth

import (
	"net/http"

	"weatherapp/app/page"
	"weatherapp/internal"
	"weatherapp/internal/service"

	"github.com/gin-gonic/gin"
)

func AuthVerifyEmail(c *gin.Context, d *internal.Deps) {
	user, err := d.Auth.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		if service.IsUserError(err) {
			page.Render(c, statusFor(err), viewError, gin.H{"error": err.Error()})
			return
		}

		page.Failure(c, http.StatusInternalServerError, viewError, service.MsgVerifyFailed, err)
		return
	}

	page.Render(c, http.StatusOK, viewSuccess, gin.H{
		"name":    user.Username,
		"message": service.MsgVerifiedOK,
	})
}
