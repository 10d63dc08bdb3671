package http

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"todolist/internal/adapter/http/middleware"
	"todolist/internal/adapter/http/routes"
	"todolist/internal/adapter/telemetry"
	"todolist/pkg/config"
	"todolist/pkg/logger"
	"todolist/web"
)

// StartServer wires everything from cfg and serves until SIGINT or SIGTERM,
// then drains in-flight requests.
func StartServer(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryContainer, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		MetricsPort:    cfg.Telemetry.MetricsPort,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	}, log)

	if err != nil {
		return err
	}

	defer telemetryContainer.Shutdown(context.Background())

	telemetryContainer.AppMetrics.StartSystemMetrics(ctx)

	container, err := NewContainer(ctx, cfg, log, telemetryContainer.NewTelemetryProbe(log), telemetryContainer.AppMetrics)

	if err != nil {
		log.Logger.Error("Failed to initialize application", zap.Error(err))
		return err
	}

	defer container.Close()

	templates, err := web.Templates()

	if err != nil {
		return err
	}

	rateLimitStore, closeStore, err := newRateLimitStore(cfg)

	if err != nil {
		return err
	}

	defer closeStore()

	router := routes.SetupRouter(routes.HandlersConfig{
		TodoHandler:    container.TodoHandler,
		CommentHandler: container.CommentHandler,
		PageHandler:    container.PageHandler,
	}, routes.Dependencies{
		Metrics:        telemetryContainer.AppMetrics,
		Logger:         log,
		RateLimitStore: rateLimitStore,
		Templates:      templates,
	}, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routes.WithCORS(router, cfg.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Logger.Info("Server starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("database_driver", cfg.Database.Driver),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	serverErr := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Logger.Error("Server failed to start", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	log.Logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newRateLimitStore(cfg *config.AppConfig) (middleware.RateLimitStore, func(), error) {
	if cfg.RateLimit.Backend != "redis" {
		return middleware.NewMemoryRateLimitStore(), func() {}, nil
	}

	options, err := redis.ParseURL(cfg.RateLimit.RedisURL)

	if err != nil {
		return nil, nil, err
	}

	client := redis.NewClient(options)

	store, err := middleware.NewRedisRateLimitStore(client)

	if err != nil {
		client.Close()
		return nil, nil, err
	}

	return store, func() { client.Close() }, nil
}
