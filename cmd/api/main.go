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

	"golang.org/x/sync/errgroup"

	"moneymanager/internal/calendar"
	"moneymanager/internal/config"
	"moneymanager/internal/database"
	"moneymanager/internal/events"
	"moneymanager/internal/logger"
	"moneymanager/internal/scheduler"
	"moneymanager/internal/server"

	_ "moneymanager/internal/docs" // Import swagger docs
)

// @title           Money Manager API
// @version         1.0
// @description     Money Manager tracks accounts, income and expenses, monthly recurring transactions, budgets and savings goals.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Get().Errorw("api stopped", "error", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run() error {
	// Load first so ENV and LOG_LEVEL from .env reach the logger.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	publisher := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnw("failed to close event publisher", "error", err)
		}
	}()

	svc := server.NewServices(dbManager.DB(), publisher)
	router := server.NewRouter(svc, server.Options{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		PipelineAPIKey:    cfg.PipelineAPIKey,
		RequestLogging:    true,
		Swagger:           true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Starting Money Manager API on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.SchedulerEnabled {
		daily := scheduler.NewDaily("recurring", cfg.RecurringRunHour, cfg.RunOnStart,
			func(ctx context.Context, now time.Time) error {
				result, err := svc.Recurring.RunDueCycle(ctx, calendar.UTCDate(now))
				if err != nil {
					return err
				}
				log.Infow("recurring sweep finished",
					"date", result.Date,
					"due", result.Due,
					"materialized", result.Materialized,
					"failed", result.Failed,
				)
				return nil
			})
		g.Go(func() error { return daily.Run(gctx) })
	} else {
		log.Info("Recurring scheduler disabled, use the pipeline endpoint or recurring-worker")
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped gracefully")
	return nil
}
