package auth

import (
	"net/http"

	"weatherapp/app/page"
	"weatherapp/internal"
	"weatherapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type signinBody struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func AuthSignin(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data signinBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))

		page.Render(c, http.StatusBadRequest, viewSignin, gin.H{"error": service.MsgInvalidCredentials})
		return
	}

	user, err := d.Auth.Signin(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		if service.IsUserError(err) {
			page.Render(c, statusFor(err), viewSignin, gin.H{"error": err.Error()})
			return
		}

		page.Failure(c, http.StatusInternalServerError, viewSignin, service.MsgSigninFailed, err)
		return
	}

	if _, err := d.Sessions.Create(c, user); err != nil {
		page.Failure(c, http.StatusInternalServerError, viewSignin, service.MsgSigninFailed, err)
		return
	}

	c.Redirect(http.StatusFound, "/dashboard")
}

func AuthLogout(c *gin.Context, d *internal.Deps) {
	if err := d.Sessions.Destroy(c); err != nil {
		zap.L().Error("Failed to destroy session", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
	}

	page.Render(c, http.StatusOK, viewLogout, gin.H{"user": nil})
}
