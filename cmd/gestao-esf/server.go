package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/esf/gestao-esf/internal/catalog"
	"github.com/esf/gestao-esf/internal/config"
	"github.com/esf/gestao-esf/internal/platform/auth"
	"github.com/esf/gestao-esf/internal/platform/db"
	"github.com/esf/gestao-esf/internal/platform/middleware"
	"github.com/esf/gestao-esf/internal/platform/notification"
	"github.com/esf/gestao-esf/internal/platform/toast"
	"github.com/esf/gestao-esf/internal/platform/websocket"
)

// app holds everything the HTTP server needs, so tests can build it without
// binding a port.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	pool      *pgxpool.Pool
	store     notification.DocumentStore
	hub       *websocket.Hub
	toasts    *toast.Registry
	publisher *notification.Publisher
	catalog   *catalog.Provider
	revoked   *auth.RevocationList
	echo      *echo.Echo
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("catalog is inconsistent: %w", err)
	}

	store, pool, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	hub := websocket.NewHub(logger)
	toasts := toast.NewRegistry(toast.WithTTL(cfg.ToastTTL))
	toasts.OnChange(func(session string, ts []toast.Toast) {
		ev, err := websocket.NewEvent(websocket.EventToastsChanged, websocket.ToastTopic(session), "", ts)
		if err != nil {
			logger.Warn().Err(err).Str("session", session).Msg("failed to encode toast event")
			return
		}
		hub.Broadcast(ev.Topic, ev)
	})

	a := &app{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		store:     store,
		hub:       hub,
		toasts:    toasts,
		publisher: notification.NewPublisher(store, cfg.AppID, logger, notification.WithEvents(hub)),
		catalog:   catalog.NewProvider(logger),
		revoked:   auth.NewRevocationList(),
	}
	a.echo = a.routes()
	return a, nil
}

func (a *app) authMiddleware() echo.MiddlewareFunc {
	if a.cfg.IsDev() {
		return auth.DevAuthMiddleware()
	}
	return auth.JWTMiddleware(auth.JWTConfig{
		Issuer:      a.cfg.AuthIssuer,
		Audience:    a.cfg.AuthAudience,
		JWKSURL:     a.cfg.AuthJWKSURL,
		SigningKey:  []byte(a.cfg.AuthSigningKey),
		Revocations: a.revoked,
	})
}

func (a *app) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(a.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(a.logger))
	e.Use(middleware.SecurityHeaders(a.cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: a.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.RequestTimeout(a.cfg.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": catalog.App().Version,
			"backend": a.cfg.NotificationBackend,
		})
	})
	if a.pool != nil {
		e.GET("/health/db", db.HealthHandler(a.pool))
	}

	authMW := a.authMiddleware()

	rateLimitCfg := middleware.DefaultRateLimitConfig()
	if a.cfg.RateLimitRPS > 0 {
		rateLimitCfg.RequestsPerSecond = a.cfg.RateLimitRPS
		rateLimitCfg.BurstSize = a.cfg.RateLimitBurst
	}
	apiV1 := e.Group("/api/v1", authMW, middleware.RateLimit(rateLimitCfg))
	catalog.NewHandler(a.catalog).RegisterRoutes(apiV1)
	toast.NewHandler(a.toasts).RegisterRoutes(apiV1)
	notification.NewHandler(a.publisher).RegisterRoutes(apiV1)
	auth.RegisterSessionRoutes(apiV1, a.revoked)

	websocket.NewHandler(a.hub, a.cfg.CORSOrigins).RegisterRoutes(e.Group(""), authMW)

	return e
}

// close releases resources in dependency order: in-flight notification
// writes finish before the store goes away.
func (a *app) close() {
	a.publisher.Wait()
	a.toasts.Close()
	closeStore(a.store, a.pool, a.logger)
}

func runServer(migrate bool) error {
	logger := newLogger(os.Getenv("ENV"), os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger = newLogger(cfg.Env, os.Stdout)
	if cfg.IsDev() {
		logger.Warn().Msg("development mode: authentication is disabled")
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}
	defer a.close()

	if migrate {
		if a.pool == nil {
			logger.Warn().Str("backend", cfg.NotificationBackend).Msg("--migrate ignored: backend has no database")
		} else {
			count, err := db.NewMigrator(a.pool, db.EmbeddedMigrations()).Up(ctx)
			if err != nil {
				logger.Fatal().Err(err).Msg("migration failed")
			}
			logger.Info().Int("applied", count).Msg("migrations applied")
		}
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("backend", cfg.NotificationBackend).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = a.echo.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = a.echo.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
