package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/educlove/discovery-engine/config"
	"github.com/educlove/discovery-engine/pkg/jwt"
	"github.com/educlove/discovery-engine/pkg/logger"
	"github.com/educlove/discovery-engine/pkg/metrics"
	"github.com/educlove/discovery-engine/pkg/profiling"
	"github.com/educlove/discovery-engine/pkg/tracing"

	"github.com/educlove/discovery-engine/internal/demoserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.App.Env,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting EducLove demo server",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.App.Env),
	)

	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName+"-demo",
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.App.Env,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	profilerStop, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName+"-demo",
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.App.Env,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	metrics.RecordInfrastructureMetrics()

	secret := cfg.DemoServer.JWTSecret
	if secret == "" {
		if cfg.IsProduction() {
			logger.Fatal("JWT_SECRET is required in production")
		}
		secret = "educlove-demo-insecure-secret"
		logger.Warn("JWT_SECRET not set, using an insecure development secret")
	}
	tokens := jwt.NewTokenManager(secret, cfg.DemoServer.JWTIssuer, cfg.DemoServer.SessionTTL)

	store := demoserver.NewStore(time.Duration(cfg.Discovery.VisitRetentionHours) * time.Hour)
	router := demoserver.NewRouter(cfg, store, tokens)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.DemoServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Demo server started", zap.String("port", cfg.DemoServer.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down demo server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Demo server exited")
}
