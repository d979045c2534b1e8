// Package main is the entrypoint for the renderlab server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/renderlab/renderlab/internal/cache"
	"github.com/renderlab/renderlab/internal/config"
	"github.com/renderlab/renderlab/internal/handler"
	"github.com/renderlab/renderlab/internal/metrics"
	"github.com/renderlab/renderlab/internal/middleware"
	"github.com/renderlab/renderlab/internal/render"
	"github.com/renderlab/renderlab/internal/repository"
	"github.com/renderlab/renderlab/internal/server"
	"github.com/renderlab/renderlab/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	databaseURL := cfg.PostgresURL()
	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, databaseURL)),
			slog.String("database_url", redactURL(databaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	renderer, err := render.New()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()
	pageService := service.NewPageService(repo, cacheClient, renderer, logger, recorder, cfg.RevalidateInterval)

	if cfg.SnapshotOnStart {
		count, err := pageService.BuildSnapshot(ctx)
		if err != nil {
			logger.Error("failed to build static snapshot", "error", err)
			os.Exit(1)
		}
		logger.Info("static snapshot ready", "pages", count)
	}

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	pageHandler := handler.NewPageHandler(pageService, logger)
	revalidateHandler := handler.NewRevalidateHandler(pageService, cfg.RevalidateSecret, logger)
	registerHandler := handler.NewRegisterHandler(repo, logger, recorder)
	metricsHandler := handler.NewMetricsHandler(recorder)

	r := setupRouter(h, healthHandler, pageHandler, revalidateHandler, registerHandler, metricsHandler, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Background refresher keeps revalidated pages warm without traffic.
	refresherCtx, stopRefresher := context.WithCancel(ctx)
	refresher := service.NewRefresher(pageService, logger)
	go func() {
		if err := refresher.Run(refresherCtx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()
	srv.OnShutdown("page.refresher", func(ctx context.Context) error {
		stopRefresher()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
		"revalidate_interval", cfg.RevalidateInterval,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	pageHandler *handler.PageHandler,
	revalidateHandler *handler.RevalidateHandler,
	registerHandler *handler.RegisterHandler,
	metricsHandler *handler.MetricsHandler,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Operational endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Post("/revalidate", revalidateHandler.Revalidate)
		r.Post("/users", registerHandler.Register)
		r.NotFound(h.NotFound)
		r.MethodNotAllowed(h.MethodNotAllowed)
	})

	// HTML pages, one route group per rendering strategy
	r.Get("/", pageHandler.Home)
	r.Get("/comparison", pageHandler.Comparison)
	r.Get("/ssg/posts", pageHandler.StaticList)
	r.Get("/ssg/posts/{id}", pageHandler.StaticDetail)
	r.Get("/isr/posts", pageHandler.RevalidatedList)
	r.Get("/isr/posts/{id}", pageHandler.RevalidatedDetail)
	r.Get("/ssr/posts", pageHandler.DynamicList)
	r.Get("/ssr/posts/{id}", pageHandler.DynamicDetail)

	// Everything else is an HTML 404
	r.NotFound(pageHandler.NotFoundPage)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
