package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

const subscriptionColumns = `id, user_id, creator_id, tier_id, status, start_date, next_billing_date,
	amount_cents, cancelled_at, created_at, updated_at`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	var sub models.Subscription
	var status string
	var cancelledAt sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.CreatorID, &sub.TierID, &status, &sub.StartDate,
		&sub.NextBillingDate, &sub.AmountCents, &cancelledAt, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	sub.Status = models.SubscriptionStatus(status)
	sub.CancelledAt = timePtr(cancelledAt)
	return &sub, nil
}

// countsAsSubscriber сообщает, учитывается ли подписка в счётчике тарифа.
func countsAsSubscriber(st models.SubscriptionStatus) bool {
	return st == models.SubscriptionActive || st == models.SubscriptionTrial
}

func adjustTierCounterTx(ctx context.Context, q queryer, tierID string, delta int) error {
	if delta == 0 {
		return nil
	}
	_, err := q.ExecContext(ctx, `
		UPDATE subscription_tiers
		SET subscriber_count = GREATEST(subscriber_count + $2, 0), updated_at = now()
		WHERE id = $1`, tierID, delta)
	if err != nil {
		return fmt.Errorf("adjust tier counter: %w", err)
	}
	return nil
}

// ListSubscriptionsByUser возвращает все подписки пользователя в любом статусе.
func (s *Storage) ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptionsByUser"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// GetSubscription возвращает подписку по id.
func (s *Storage) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return sub, nil
}

// Subscribe оформляет подписку пользователя на тариф. У пары пользователь–автор
// одна строка: прежняя отменённая или истёкшая подписка переоформляется на новый тариф,
// действующая приводит к ErrAlreadyExists.
func (s *Storage) Subscribe(ctx context.Context, userID string, tier models.SubscriptionTier,
	start, nextBilling time.Time) (*models.Subscription, error) {
	const op = "storage.Subscribe"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result *models.Subscription
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := scanSubscription(tx.QueryRowContext(ctx, `
			SELECT `+subscriptionColumns+` FROM subscriptions
			WHERE user_id = $1 AND creator_id = $2
			FOR UPDATE`, userID, tier.CreatorID))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			result, err = scanSubscription(tx.QueryRowContext(ctx, `
				INSERT INTO subscriptions (user_id, creator_id, tier_id, status, start_date, next_billing_date, amount_cents)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING `+subscriptionColumns,
				userID, tier.CreatorID, tier.ID, string(models.SubscriptionActive), start, nextBilling, tier.PriceCents))
			if err != nil {
				return mapError(err)
			}
		case err != nil:
			return mapError(err)
		case countsAsSubscriber(existing.Status):
			return ErrAlreadyExists
		default:
			result, err = scanSubscription(tx.QueryRowContext(ctx, `
				UPDATE subscriptions SET
					tier_id = $2, status = $3, start_date = $4, next_billing_date = $5,
					amount_cents = $6, cancelled_at = NULL, updated_at = now()
				WHERE id = $1
				RETURNING `+subscriptionColumns,
				existing.ID, tier.ID, string(models.SubscriptionActive), start, nextBilling, tier.PriceCents))
			if err != nil {
				return mapError(err)
			}
		}
		return adjustTierCounterTx(ctx, tx, tier.ID, 1)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ChangeSubscriptionStatus меняет статус подписки. decide получает заблокированную строку
// и возвращает новый статус; счётчик подписчиков тарифа меняется в той же транзакции.
func (s *Storage) ChangeSubscriptionStatus(ctx context.Context, id string, at time.Time,
	decide func(current models.Subscription) (models.SubscriptionStatus, error)) (*models.Subscription, error) {
	const op = "storage.ChangeSubscriptionStatus"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result *models.Subscription
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := scanSubscription(tx.QueryRowContext(ctx,
			`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return mapError(err)
		}
		next, err := decide(*current)
		if err != nil {
			return err
		}

		var cancelledAt any
		if next == models.SubscriptionCancelled {
			cancelledAt = at
		}
		nextBilling := current.NextBillingDate
		if next == models.SubscriptionActive && !nextBilling.After(at) {
			nextBilling = at.AddDate(0, 1, 0)
		}

		result, err = scanSubscription(tx.QueryRowContext(ctx, `
			UPDATE subscriptions SET status = $2, cancelled_at = $3, next_billing_date = $4, updated_at = now()
			WHERE id = $1
			RETURNING `+subscriptionColumns,
			id, string(next), cancelledAt, nextBilling))
		if err != nil {
			return mapError(err)
		}

		delta := 0
		switch was, now := countsAsSubscriber(current.Status), countsAsSubscriber(next); {
		case was && !now:
			delta = -1
		case !was && now:
			delta = 1
		}
		return adjustTierCounterTx(ctx, tx, current.TierID, delta)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ExpireLapsedSubscriptions переводит в expired подписки, срок оплаты которых прошёл до cutoff,
// и возвращает их количество.
func (s *Storage) ExpireLapsedSubscriptions(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "storage.ExpireLapsedSubscriptions"
	if err := ctxDone(ctx); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var expired int64
	err := s.DB.QueryRowContext(ctx, `
		WITH expired AS (
			UPDATE subscriptions SET status = 'expired', updated_at = now()
			WHERE status IN ('active', 'trial') AND next_billing_date < $1
			RETURNING tier_id
		), counts AS (
			SELECT tier_id, count(*) AS n FROM expired GROUP BY tier_id
		), bump AS (
			UPDATE subscription_tiers t
			SET subscriber_count = GREATEST(t.subscriber_count - counts.n, 0), updated_at = now()
			FROM counts WHERE t.id = counts.tier_id
			RETURNING t.id
		)
		SELECT COALESCE(SUM(n), 0)::bigint FROM counts`, cutoff).Scan(&expired)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return expired, nil
}
