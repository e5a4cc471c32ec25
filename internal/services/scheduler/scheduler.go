// Package scheduler содержит фоновые задачи маркетплейса: отправку событий
// из outbox в брокер и перевод просроченных подписок в expired.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/metrics"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

const (
	claimLease    = time.Minute
	maxRetryDelay = time.Hour
)

// OutboxRepository операции над таблицей outbox.
type OutboxRepository interface {
	ClaimOutboxEvents(ctx context.Context, limit int, lease time.Duration) ([]models.OutboxEvent, error)
	MarkOutboxPublished(ctx context.Context, id int64) error
	MarkOutboxFailed(ctx context.Context, id int64, reason string, retryAt time.Time, terminal bool) error
}

// Publisher отправляет сообщение в брокер.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

// SubscriptionExpirer переводит просроченные подписки в expired.
type SubscriptionExpirer interface {
	ExpireLapsed(ctx context.Context, grace time.Duration) (int64, error)
}

// Options параметры задач.
type Options struct {
	BatchSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
	Grace          time.Duration
}

// Service выполняет фоновые задачи.
type Service struct {
	outbox    OutboxRepository
	publisher Publisher
	subs      SubscriptionExpirer
	opts      Options
	log       *slog.Logger
	now       func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(outbox OutboxRepository, publisher Publisher, subs SubscriptionExpirer, opts Options, log *slog.Logger) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 10
	}
	return &Service{
		outbox:    outbox,
		publisher: publisher,
		subs:      subs,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

// DispatchOutbox забирает пачку событий и публикует их. Возвращает число отправленных.
func (s *Service) DispatchOutbox(ctx context.Context) int {
	const op = "scheduler.DispatchOutbox"
	log := s.log.With(slog.String("op", op))

	events, err := s.outbox.ClaimOutboxEvents(ctx, s.opts.BatchSize, claimLease)
	if err != nil {
		log.Error("failed to claim outbox events", sl.Err(err))
		return 0
	}
	if len(events) == 0 {
		return 0
	}

	sent := 0
	for _, e := range events {
		if err := s.publisher.Publish(ctx, e.Exchange, e.RoutingKey, e.Payload); err != nil {
			s.fail(ctx, log, e, err)
			continue
		}
		if err := s.outbox.MarkOutboxPublished(ctx, e.ID); err != nil {
			// событие уйдёт повторно после истечения аренды
			log.Error("failed to mark event published", slog.Int64("event_id", e.ID), sl.Err(err))
			continue
		}
		metrics.OutboxPublished.WithLabelValues("published").Inc()
		sent++
	}
	log.Info("outbox dispatched", slog.Int("claimed", len(events)), slog.Int("published", sent))
	return sent
}

func (s *Service) fail(ctx context.Context, log *slog.Logger, e models.OutboxEvent, cause error) {
	terminal := e.Attempts >= s.opts.MaxAttempts
	retryAt := s.now().Add(s.backoff(e.Attempts))

	result := "retry"
	if terminal {
		result = "dead"
	}
	metrics.OutboxPublished.WithLabelValues(result).Inc()
	log.Warn("failed to publish event",
		slog.Int64("event_id", e.ID),
		slog.String("routing_key", e.RoutingKey),
		slog.Int("attempts", e.Attempts),
		slog.Bool("terminal", terminal),
		sl.Err(cause),
	)

	if err := s.outbox.MarkOutboxFailed(ctx, e.ID, cause.Error(), retryAt, terminal); err != nil {
		log.Error("failed to record publish failure", slog.Int64("event_id", e.ID), sl.Err(err))
	}
}

func (s *Service) backoff(attempts int) time.Duration {
	d := s.opts.RetryBaseDelay
	for i := 1; i < attempts && d < maxRetryDelay; i++ {
		d *= 2
	}
	return min(d, maxRetryDelay)
}

// ExpireSubscriptions переводит в expired подписки с просроченной оплатой.
func (s *Service) ExpireSubscriptions(ctx context.Context) {
	const op = "scheduler.ExpireSubscriptions"
	log := s.log.With(slog.String("op", op))

	n, err := s.subs.ExpireLapsed(ctx, s.opts.Grace)
	if err != nil {
		log.Error("failed to expire subscriptions", sl.Err(err))
		return
	}
	if n == 0 {
		log.Info("no lapsed subscriptions found")
		return
	}
	log.Info("expired lapsed subscriptions", slog.Int64("count", n))
}
