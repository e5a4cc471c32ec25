package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// ListPendingReviews возвращает страницу очереди проверки после курсора,
// новые загрузки первыми. Нулевой курсор означает начало очереди.
func (s *Storage) ListPendingReviews(ctx context.Context, after models.ReviewCursor, limit int) ([]models.PendingReview, error) {
	const op = "storage.ListPendingReviews"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var afterAt, afterID any
	if !after.IsZero() {
		afterAt, afterID = after.SubmittedAt, after.ProgressID
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT p.id, p.user_id, u.username, u.email, u.account_status,
		       p.identity_status, p.identity_document_ref, p.identity_submitted_at, p.identity_review_notes,
		       (SELECT count(*) FROM identity_review_log l
		        WHERE l.progress_id = p.id AND l.to_status <> 'submitted')
		FROM onboarding_progress p
		JOIN users u ON u.id = p.user_id
		WHERE p.identity_status IN ('submitted', 'under_review')
		  AND p.identity_submitted_at IS NOT NULL
		  AND ($1::timestamptz IS NULL OR (p.identity_submitted_at, p.id) < ($1::timestamptz, $2::uuid))
		ORDER BY p.identity_submitted_at DESC, p.id DESC
		LIMIT $3`, afterAt, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var reviews []models.PendingReview
	for rows.Next() {
		var r models.PendingReview
		var accStatus, idStatus string
		if err := rows.Scan(&r.ProgressID, &r.UserID, &r.Username, &r.Email, &accStatus,
			&idStatus, &r.DocumentRef, &r.SubmittedAt, &r.ReviewNotes, &r.PreviousDecisions); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		r.AccountStatus = models.AccountStatus(accStatus)
		r.IdentityStatus = models.IdentityStatus(idStatus)
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}

// CommitReview применяет решение администратора одной транзакцией: статус проверки,
// заметки и время рассмотрения в onboarding_progress, account_status в users,
// строку журнала и событие outbox. decide вызывается над заблокированной записью и
// возвращает итоговый статус проверки. При любой ошибке изменения откатываются целиком.
func (s *Storage) CommitReview(ctx context.Context, d models.ReviewDecision,
	decide func(current models.OnboardingProgress) (models.IdentityStatus, error)) (*models.ReviewResult, error) {
	const op = "storage.CommitReview"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result models.ReviewResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := scanProgress(tx.QueryRowContext(ctx,
			`SELECT `+progressColumns+` FROM onboarding_progress WHERE id = $1 FOR UPDATE`, d.ProgressID))
		if err != nil {
			return mapError(err)
		}

		next, err := decide(*current)
		if err != nil {
			return err
		}

		updated, err := scanProgress(tx.QueryRowContext(ctx, `
			UPDATE onboarding_progress SET
				identity_status       = $2,
				identity_review_notes = $3,
				identity_reviewed_at  = $4,
				updated_at            = now()
			WHERE id = $1
			RETURNING `+progressColumns,
			current.ID, string(next), d.Notes, d.ReviewedAt))
		if err != nil {
			return fmt.Errorf("update identity: %w", mapError(err))
		}

		var accStatus string
		err = tx.QueryRowContext(ctx, `
			UPDATE users SET account_status = $2, updated_at = now()
			WHERE id = $1
			RETURNING account_status`,
			current.UserID, string(d.AccountStatus)).Scan(&accStatus)
		if err != nil {
			return fmt.Errorf("update account status: %w", mapError(err))
		}

		if err = insertReviewLogTx(ctx, tx, models.IdentityReviewEntry{
			ProgressID:    current.ID,
			ActorID:       d.ReviewerID,
			FromStatus:    current.IdentityStatus,
			ToStatus:      next,
			Notes:         d.Notes,
			AccountStatus: d.AccountStatus,
			DocumentRef:   current.IdentityDocumentRef,
			CreatedAt:     d.ReviewedAt,
		}); err != nil {
			return err
		}

		if err = enqueueEventTx(ctx, tx, models.RoutingReviewDecided, models.ReviewDecidedEvent{
			UserID:         current.UserID,
			ProgressID:     current.ID,
			ReviewerID:     d.ReviewerID,
			IdentityStatus: next,
			AccountStatus:  models.AccountStatus(accStatus),
			ReviewedAt:     d.ReviewedAt,
		}); err != nil {
			return err
		}

		result = models.ReviewResult{Progress: *updated, AccountStatus: models.AccountStatus(accStatus)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
