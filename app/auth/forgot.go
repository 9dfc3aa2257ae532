package auth

import (
	"errors"
	"net/http"

	"weatherapp/app/page"
	"weatherapp/internal"
	"weatherapp/internal/service"

	"github.com/gin-gonic/gin"
)

type forgotBody struct {
	Email string `form:"email" json:"email"`
}

func AuthForgot(c *gin.Context, d *internal.Deps) {
	var data forgotBody
	_ = c.ShouldBind(&data)

	err := d.Auth.ForgotPassword(c.Request.Context(), data.Email)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			page.Render(c, http.StatusNotFound, viewForgot, gin.H{"error": err.Error()})
			return
		}

		page.Failure(c, http.StatusInternalServerError, viewForgot, service.MsgForgotFailed, err)
		return
	}

	page.Render(c, http.StatusOK, viewForgot, gin.H{"message": service.MsgResetSent})
}
