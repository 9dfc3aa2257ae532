// Package app builds the HTTP router and its routes
package app

import (
	"fmt"
	"time"

	"weatherapp/app/admin"
	"weatherapp/app/auth"
	"weatherapp/app/dashboard"
	"weatherapp/app/page"
	"weatherapp/app/root"
	"weatherapp/app/views"
	"weatherapp/config"
	"weatherapp/internal"
	"weatherapp/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxBodySize = 1 << 20

func NewRouter(d *internal.Deps, cfg *config.Config) (*gin.Engine, error) {
	tmpl, err := views.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to parse views, %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.Host.CORS,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.NoRoute(page.NotFound)

	pageCache := persist.NewMemoryStore(time.Minute)
	requireSession := middleware.NewSessionMiddleware(d.Sessions)

	authMw := []gin.HandlerFunc{middleware.BodySizeLimiter(maxBodySize)}
	if cfg.Security.RateLimit > 0 {
		rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.Security.RateLimit,
			Burst:             cfg.Security.RateLimit * 2,
		})

		authMw = append([]gin.HandlerFunc{rl.Middleware()}, authMw...)
	}

	// GET /			-> Landing page
	router.GET("/", root.Index)

	a := router.Group("/auth", authMw...)
	{
		// GET /auth/signup		-> Empty signup form
		a.GET("/signup", cacheFor(pageCache, 60), auth.SignupForm())

		// POST /auth/signup		-> Registers a new unverified user
		a.POST("/signup", func(c *gin.Context) { auth.AuthSignup(c, d) })

		// GET /auth/verify-email	-> Redeems a verification token
		a.GET("/verify-email", func(c *gin.Context) { auth.AuthVerifyEmail(c, d) })

		// GET /auth/signin		-> Empty signin form
		a.GET("/signin", cacheFor(pageCache, 60), auth.SigninForm())

		// POST /auth/signin		-> Checks credentials and starts a session
		a.POST("/signin", func(c *gin.Context) { auth.AuthSignin(c, d) })

		// GET /auth/logout		-> Destroys the session
		a.GET("/logout", func(c *gin.Context) { auth.AuthLogout(c, d) })

		// GET /auth/forgot		-> Empty forgot password form
		a.GET("/forgot", cacheFor(pageCache, 60), auth.ForgotForm())

		// POST /auth/forgot		-> Mails a password reset link
		a.POST("/forgot", func(c *gin.Context) { auth.AuthForgot(c, d) })

		// GET /auth/reset-password	-> New password form for a live reset token
		a.GET("/reset-password", func(c *gin.Context) { auth.AuthResetForm(c, d) })

		// POST /auth/reset-password	-> Sets the new password
		a.POST("/reset-password", func(c *gin.Context) { auth.AuthResetPassword(c, d) })
	}

	// GET /dashboard		-> Weather overview of the signed in user
	router.GET("/dashboard", requireSession, func(c *gin.Context) { dashboard.Dashboard(c, d) })

	// GET /profile			-> Account details of the signed in user
	router.GET("/profile", requireSession, dashboard.Profile)

	// GET /admin/queues		-> Background job counters
	router.GET("/admin/queues", requireSession, func(c *gin.Context) { admin.Queues(c, d) })

	// HEAD /api/heartbeat		-> Used to check if the server is alive
	router.HEAD("/api/heartbeat", root.Heartbeat)

	return router, nil
}

func cacheFor(store persist.CacheStore, sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
