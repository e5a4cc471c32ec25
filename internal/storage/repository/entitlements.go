package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

const entitlementColumns = `id, user_id, content_id, transaction_ref, access_granted, expires_at, created_at`

func scanEntitlement(row interface{ Scan(...any) error }) (*models.ContentEntitlement, error) {
	var e models.ContentEntitlement
	if err := row.Scan(&e.ID, &e.UserID, &e.ContentID, &e.TransactionRef,
		&e.AccessGranted, &e.ExpiresAt, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEntitlement сохраняет право доступа по покупке. Повторный вызов с той же
// transaction_ref возвращает существующую строку и created == false.
func (s *Storage) CreateEntitlement(ctx context.Context, e models.ContentEntitlement) (*models.ContentEntitlement, bool, error) {
	const op = "storage.CreateEntitlement"
	if err := ctxDone(ctx); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	var (
		result  *models.ContentEntitlement
		created bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		inserted, err := scanEntitlement(tx.QueryRowContext(ctx, `
			INSERT INTO content_entitlements (user_id, content_id, transaction_ref, access_granted, expires_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (transaction_ref) DO NOTHING
			RETURNING `+entitlementColumns,
			e.UserID, e.ContentID, e.TransactionRef, e.AccessGranted, e.ExpiresAt))
		if errors.Is(err, sql.ErrNoRows) {
			result, err = scanEntitlement(tx.QueryRowContext(ctx,
				`SELECT `+entitlementColumns+` FROM content_entitlements WHERE transaction_ref = $1`, e.TransactionRef))
			return mapError(err)
		}
		if err != nil {
			return mapError(err)
		}

		result, created = inserted, true
		return enqueueEventTx(ctx, tx, models.RoutingEntitlementGranted, models.EntitlementGrantedEvent{
			UserID:         inserted.UserID,
			ContentID:      inserted.ContentID,
			TransactionRef: inserted.TransactionRef,
			ExpiresAt:      inserted.ExpiresAt,
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return result, created, nil
}

// ListEntitlementsByUser возвращает все права доступа пользователя по покупкам,
// включая истёкшие: истечение вычисляется при проверке.
func (s *Storage) ListEntitlementsByUser(ctx context.Context, userID string) ([]models.ContentEntitlement, error) {
	const op = "storage.ListEntitlementsByUser"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+entitlementColumns+` FROM content_entitlements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []models.ContentEntitlement
	for rows.Next() {
		e, err := scanEntitlement(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
