package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

const tierColumns = `id, creator_id, name, price_cents, benefits, is_active, popular, subscriber_count, created_at, updated_at`

func scanTier(row interface{ Scan(...any) error }) (*models.SubscriptionTier, error) {
	var t models.SubscriptionTier
	var benefits []byte
	if err := row.Scan(&t.ID, &t.CreatorID, &t.Name, &t.PriceCents, &benefits,
		&t.IsActive, &t.Popular, &t.SubscriberCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(benefits, &t.Benefits); err != nil {
		return nil, fmt.Errorf("decode benefits: %w", err)
	}
	if t.Benefits == nil {
		t.Benefits = []string{}
	}
	return &t, nil
}

func encodeBenefits(b []string) ([]byte, error) {
	if b == nil {
		b = []string{}
	}
	return json.Marshal(b)
}

// CreateTier сохраняет тариф автора.
func (s *Storage) CreateTier(ctx context.Context, t models.SubscriptionTier) (*models.SubscriptionTier, error) {
	const op = "storage.CreateTier"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	benefits, err := encodeBenefits(t.Benefits)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := scanTier(s.DB.QueryRowContext(ctx, `
		INSERT INTO subscription_tiers (creator_id, name, price_cents, benefits, is_active, popular)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+tierColumns,
		t.CreatorID, t.Name, t.PriceCents, benefits, t.IsActive, t.Popular))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// UpdateTier изменяет тариф. Изменение возможно только от имени автора тарифа.
func (s *Storage) UpdateTier(ctx context.Context, t models.SubscriptionTier) (*models.SubscriptionTier, error) {
	const op = "storage.UpdateTier"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	benefits, err := encodeBenefits(t.Benefits)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := scanTier(s.DB.QueryRowContext(ctx, `
		UPDATE subscription_tiers SET
			name = $3, price_cents = $4, benefits = $5, is_active = $6, popular = $7, updated_at = now()
		WHERE id = $1 AND creator_id = $2
		RETURNING `+tierColumns,
		t.ID, t.CreatorID, t.Name, t.PriceCents, benefits, t.IsActive, t.Popular))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return updated, nil
}

// GetTier возвращает тариф по id.
func (s *Storage) GetTier(ctx context.Context, id string) (*models.SubscriptionTier, error) {
	const op = "storage.GetTier"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	t, err := scanTier(s.DB.QueryRowContext(ctx, `SELECT `+tierColumns+` FROM subscription_tiers WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return t, nil
}

// ListTiersByCreator возвращает тарифы автора по возрастанию цены.
func (s *Storage) ListTiersByCreator(ctx context.Context, creatorID string) ([]models.SubscriptionTier, error) {
	const op = "storage.ListTiersByCreator"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+tierColumns+` FROM subscription_tiers
		WHERE creator_id = $1
		ORDER BY price_cents, created_at`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tiers := []models.SubscriptionTier{}
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tiers = append(tiers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tiers, nil
}
