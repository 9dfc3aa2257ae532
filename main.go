package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weatherapp/app"
	"weatherapp/config"
	"weatherapp/db"
	"weatherapp/internal"
	"weatherapp/internal/jobs"
	"weatherapp/internal/service"
	"weatherapp/internal/session"
	"weatherapp/internal/store"
	"weatherapp/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// A .env file is optional, real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		panic(err)
	}

	log, err := app.NewLogger(cfg.App.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.App.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		zap.L().Fatal("Server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var (
		users store.UserStore
		gdb   *gorm.DB
	)

	switch cfg.Database.Driver {
	case "mongo":
		m, err := store.NewMongo(ctx, cfg.Database.DSN, cfg.Database.Name)
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB, %w", err)
		}
		defer m.Close(context.Background())

		users = m
	default:
		var err error

		gdb, err = db.New(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to initialize %s database, %w", cfg.Database.Driver, err)
		}

		users = store.NewGorm(gdb)
	}

	var (
		sessions session.Store
		sweeper  service.Sweeper
	)

	switch cfg.Session.Store {
	case "memory":
		ms := session.NewMemoryStore()
		defer ms.Close()

		sessions = ms
	case "redis":
		rs, err := session.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer rs.Close()

		if err := rs.Ping(ctx); err != nil {
			return fmt.Errorf("failed to reach redis, %w", err)
		}

		sessions = rs
	default:
		ds := session.NewDBStore(gdb)

		sessions = ds
		sweeper = ds
	}

	notifier, err := service.NewNotifier(cfg.Mail)
	if err != nil {
		return err
	}

	queue, err := jobs.New(cfg.Jobs, cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("failed to start job queue, %w", err)
	}
	defer queue.Close()

	d := &internal.Deps{
		Auth: service.NewAuthService(service.AuthDeps{
			Store:    users,
			Notifier: notifier,
			Hasher:   security.New(),
			Tokens:   security.NewTokenIssuer(cfg.Auth.TokenSize, cfg.Auth.ResetTokenTTL),
		}),
		Sessions: session.NewManager(sessions, session.Options{
			Secret: cfg.Session.Secret,
			Cookie: cfg.Session.Cookie,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Host.SSL.Enabled,
		}),
		Jobs: queue,
	}

	sched, err := service.NewCleanup(users, sweeper, nil).Schedule(cfg.Cleanup.Schedule)
	if err != nil {
		return err
	}
	defer sched.Stop()

	router, err := app.NewRouter(d, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Host.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		zap.L().Info("Server starting",
			zap.Int("port", cfg.Host.Port),
			zap.Bool("ssl", cfg.Host.SSL.Enabled),
			zap.String("database", cfg.Database.Driver),
			zap.String("sessions", cfg.Session.Store),
			zap.String("jobs", cfg.Jobs.Backend))

		if cfg.Host.SSL.Enabled {
			errc <- srv.ListenAndServeTLS(cfg.Host.SSL.CertificatePath, cfg.Host.SSL.CertificateKeyPath)
		} else {
			errc <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
