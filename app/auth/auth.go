// Package auth serves the account pages: signup, email verification,
// signin, logout and the forgot/reset password flow
package auth

import (
	"errors"
	"net/http"

	"weatherapp/app/page"
	"weatherapp/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	viewSignup  = "signup.tmpl"
	viewSignin  = "signin.tmpl"
	viewForgot  = "forgot.tmpl"
	viewReset   = "reset-password.tmpl"
	viewSuccess = "success.tmpl"
	viewError   = "error.tmpl"
	viewLogout  = "logout.tmpl"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrMismatch),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrExpired):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnverified):
		return http.StatusForbidden
	case errors.Is(err, service.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Form returns a handler rendering an empty form
func Form(view string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page.Render(c, http.StatusOK, view, nil)
	}
}

func SignupForm() gin.HandlerFunc { return Form(viewSignup) }
func SigninForm() gin.HandlerFunc { return Form(viewSignin) }
func ForgotForm() gin.HandlerFunc { return Form(viewForgot) }
