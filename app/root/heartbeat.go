// Package root serves the public pages that don't belong anywhere else
package root

import (
	"net/http"

	"weatherapp/app/page"

	"github.com/gin-gonic/gin"
)

func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

func Index(c *gin.Context) {
	page.Render(c, http.StatusOK, "index.tmpl", nil)
}
