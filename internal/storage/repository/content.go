package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

const contentColumns = `id, creator_id, title, description, price_cents, file_ref, thumbnail_ref, created_at`

func scanContent(row interface{ Scan(...any) error }) (*models.Content, error) {
	var c models.Content
	if err := row.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.PriceCents,
		&c.FileRef, &c.ThumbnailRef, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateContent сохраняет опубликованный контент.
func (s *Storage) CreateContent(ctx context.Context, c models.Content) (*models.Content, error) {
	const op = "storage.CreateContent"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := scanContent(s.DB.QueryRowContext(ctx, `
		INSERT INTO content (creator_id, title, description, price_cents, file_ref, thumbnail_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+contentColumns,
		c.CreatorID, c.Title, c.Description, c.PriceCents, c.FileRef, c.ThumbnailRef))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetContent возвращает контент по id.
func (s *Storage) GetContent(ctx context.Context, id string) (*models.Content, error) {
	const op = "storage.GetContent"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := scanContent(s.DB.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return c, nil
}
