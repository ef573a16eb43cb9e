// Command recurring-worker runs the recurring transaction sweep outside the
// API process, for deployments that trigger it from cron.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moneymanager/internal/calendar"
	"moneymanager/internal/config"
	"moneymanager/internal/database"
	"moneymanager/internal/events"
	"moneymanager/internal/logger"
	"moneymanager/internal/scheduler"
	"moneymanager/internal/services"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	date := flag.String("date", "", "sweep date (YYYY-MM-DD) for -once, defaults to today in UTC")
	flag.Parse()

	if err := run(*once, *date); err != nil {
		logger.Get().Errorw("recurring worker stopped", "error", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(once bool, date string) error {
	// Load first so ENV and LOG_LEVEL from .env reach the logger.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Named("recurring-worker")

	today := calendar.UTCDate(time.Now())
	if date != "" {
		if today, err = calendar.ParseDate(date); err != nil {
			return fmt.Errorf("invalid -date %q: %w", date, err)
		}
	}

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

	db := dbManager.DB()
	accountService := services.NewAccountService(db)
	transactionService := services.NewTransactionService(db, accountService, publisher)
	recurringService := services.NewRecurringService(db, accountService, transactionService, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweep := func(ctx context.Context, day time.Time) error {
		result, err := recurringService.RunDueCycle(ctx, day)
		if err != nil {
			return err
		}
		log.Infow("sweep finished",
			"date", result.Date,
			"due", result.Due,
			"materialized", result.Materialized,
			"failed", result.Failed,
		)
		return nil
	}

	if once {
		return sweep(ctx, today)
	}

	daily := scheduler.NewDaily("recurring", cfg.RecurringRunHour, cfg.RunOnStart,
		func(ctx context.Context, now time.Time) error {
			return sweep(ctx, calendar.UTCDate(now))
		})
	return daily.Run(ctx)
}
