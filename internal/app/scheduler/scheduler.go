// Package scheduler собирает приложение фоновых задач: публикацию outbox в RabbitMQ
// и истечение просроченных подписок по расписанию cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/content-marketplace/internal/config"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	schedulerservice "github.com/magabrotheeeer/content-marketplace/internal/services/scheduler"
	"github.com/magabrotheeeer/content-marketplace/internal/services/subscription"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// Jobs задачи, которые запускает планировщик.
type Jobs interface {
	DispatchOutbox(ctx context.Context) int
	ExpireSubscriptions(ctx context.Context)
}

// App представляет приложение планировщика.
type App struct {
	jobs   Jobs
	cfg    config.Scheduler
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(ctx, db)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, models.ExchangeMarketplace, rabbitmq.MarketplaceQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, err
	}

	// Кеш тарифов и проверка прав для истечения подписок не нужны.
	subs := subscription.NewService(db, nil, nil, 0, logger)

	jobs := schedulerservice.NewService(db, rabbitmq.NewPublisher(ch), subs, schedulerservice.Options{
		BatchSize:      cfg.OutboxBatchSize,
		MaxAttempts:    cfg.OutboxMaxAttempts,
		RetryBaseDelay: cfg.OutboxRetryBaseDelay,
		Grace:          cfg.SubscriptionGrace,
	}, logger)

	return &App{
		jobs:   jobs,
		cfg:    cfg.Scheduler,
		db:     db,
		conn:   conn,
		ch:     ch,
		logger: logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// newCron регистрирует задачи по расписаниям из конфига. Задачи получают ctx приложения.
func newCron(ctx context.Context, jobs Jobs, cfg config.Scheduler, logger *slog.Logger) (*cron.Cron, error) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	if _, err := c.AddFunc(cfg.OutboxSchedule, func() { jobs.DispatchOutbox(ctx) }); err != nil {
		return nil, fmt.Errorf("failed to schedule outbox job: %w", err)
	}
	logger.Info("scheduled outbox job", slog.String("schedule", cfg.OutboxSchedule))

	if _, err := c.AddFunc(cfg.ExpirySchedule, func() { jobs.ExpireSubscriptions(ctx) }); err != nil {
		return nil, fmt.Errorf("failed to schedule expiry job: %w", err)
	}
	logger.Info("scheduled expiry job", slog.String("schedule", cfg.ExpirySchedule))

	return c, nil
}

// Run запускает планировщик и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	c, err := newCron(ctx, a.jobs, a.cfg, a.logger)
	if err != nil {
		return err
	}
	c.Start()

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")
	<-c.Stop().Done()
	return nil
}

func (a *App) close() {
	closeResources(a.ch, a.conn, a.logger)
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
