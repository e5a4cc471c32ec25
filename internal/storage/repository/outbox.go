package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// enqueueEventTx записывает событие в outbox в рамках текущей транзакции.
func enqueueEventTx(ctx context.Context, q queryer, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	if _, err = q.ExecContext(ctx, `
		INSERT INTO event_outbox (exchange, routing_key, payload)
		VALUES ($1, $2, $3)`, models.ExchangeMarketplace, routingKey, body); err != nil {
		return fmt.Errorf("enqueue outbox event: %w", err)
	}
	return nil
}

// ClaimOutboxEvents забирает пачку готовых к отправке событий. Забранные строки
// откладываются на lease, поэтому параллельные диспетчеры их не получат.
func (s *Storage) ClaimOutboxEvents(ctx context.Context, limit int, lease time.Duration) ([]models.OutboxEvent, error) {
	const op = "storage.ClaimOutboxEvents"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		UPDATE event_outbox SET
			attempts        = attempts + 1,
			next_attempt_at = now() + make_interval(secs => $2)
		WHERE id IN (
			SELECT id FROM event_outbox
			WHERE status = 'pending' AND next_attempt_at <= now()
			ORDER BY id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, exchange, routing_key, payload, attempts, created_at`, limit, lease.Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var events []models.OutboxEvent
	for rows.Next() {
		var e models.OutboxEvent
		if err := rows.Scan(&e.ID, &e.Exchange, &e.RoutingKey, &e.Payload, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

// MarkOutboxPublished отмечает событие как отправленное.
func (s *Storage) MarkOutboxPublished(ctx context.Context, id int64) error {
	const op = "storage.MarkOutboxPublished"
	if _, err := s.DB.ExecContext(ctx, `
		UPDATE event_outbox SET status = 'published', published_at = now(), last_error = ''
		WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkOutboxFailed сохраняет ошибку отправки. Если terminal, событие больше не забирается.
func (s *Storage) MarkOutboxFailed(ctx context.Context, id int64, reason string, retryAt time.Time, terminal bool) error {
	const op = "storage.MarkOutboxFailed"
	status := "pending"
	if terminal {
		status = "failed"
	}
	if _, err := s.DB.ExecContext(ctx, `
		UPDATE event_outbox SET status = $2, last_error = $3, next_attempt_at = $4
		WHERE id = $1`, id, status, reason, retryAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
