package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/RYGhub/ryglfg/internal/config"
	"github.com/RYGhub/ryglfg/internal/infra/database"
	"github.com/RYGhub/ryglfg/internal/infra/repository"
	"github.com/RYGhub/ryglfg/internal/present/rest"
	"github.com/RYGhub/ryglfg/internal/present/rest/middleware"
	"github.com/RYGhub/ryglfg/internal/service"
	"github.com/RYGhub/ryglfg/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to the configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.EnableTrace {
		shutdown, err := setupTracing(ctx, cfg.Server.TraceEndpoint)
		if err != nil {
			return fmt.Errorf("setting up tracing: %w", err)
		}
		defer shutdown()
	}

	db, err := database.NewPostgres(cfg.Server.PostgresDsn)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := database.MigratePostgres(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	var signalService *service.SignalService
	if cfg.Server.RedisAddr != "" {
		rdb := database.NewRedis(cfg.Server.RedisAddr, "", cfg.Server.RedisDB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		signalService = service.NewSignalService(rdb)
	}

	authService, err := service.NewAuthService(ctx, cfg.Auth.Domain, cfg.Auth.Audience)
	if err != nil {
		return fmt.Errorf("setting up authentication: %w", err)
	}

	announcementRepo := repository.NewAnnouncementRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)

	notifier := service.NewNotificationService(webhookRepo, signalService)

	announcementUC := usecase.NewAnnouncementUsecase(announcementRepo, notifier)
	responseUC := usecase.NewResponseUsecase(announcementRepo, notifier)
	webhookUC := usecase.NewWebhookUsecase(webhookRepo, notifier)

	handler := rest.NewHandler(announcementUC, responseUC, webhookUC, signalService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if cfg.Server.EnableTrace {
		e.Use(otelecho.Middleware("ryglfg"))
	}

	handler.RegisterRoutes(e, authMiddleware)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", slog.String("error", err.Error()))
		}
	}()

	slog.Info("starting server", slog.String("listen", cfg.Server.Listen))
	if err := e.Start(cfg.Server.Listen); err != nil {
		slog.Info("server stopped", slog.String("reason", err.Error()))
	}
	return nil
}

func setupTracing(ctx context.Context, endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := sdkresource.New(ctx,
		sdkresource.WithAttributes(attribute.String("service.name", "ryglfg")),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(flushCtx); err != nil {
			slog.Error("trace provider shutdown failed", slog.String("error", err.Error()))
		}
	}, nil
}
