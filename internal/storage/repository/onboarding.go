package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

const progressColumns = `id, user_id, terms_accepted, terms_accepted_at, identity_status,
	identity_document_ref, identity_submitted_at, identity_reviewed_at, identity_review_notes,
	payments_setup, payments_setup_at, created_at, updated_at`

func scanProgress(row interface{ Scan(...any) error }) (*models.OnboardingProgress, error) {
	var p models.OnboardingProgress
	var status string
	var termsAt, submittedAt, reviewedAt, paymentsAt sql.NullTime
	if err := row.Scan(&p.ID, &p.UserID, &p.TermsAccepted, &termsAt, &status,
		&p.IdentityDocumentRef, &submittedAt, &reviewedAt, &p.IdentityReviewNotes,
		&p.PaymentsSetup, &paymentsAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.IdentityStatus = models.IdentityStatus(status)
	p.TermsAcceptedAt = timePtr(termsAt)
	p.IdentitySubmittedAt = timePtr(submittedAt)
	p.IdentityReviewedAt = timePtr(reviewedAt)
	p.PaymentsSetupAt = timePtr(paymentsAt)
	return &p, nil
}

// GetProgress возвращает запись онбординга пользователя или ErrNotFound, если её ещё нет.
func (s *Storage) GetProgress(ctx context.Context, userID string) (*models.OnboardingProgress, error) {
	const op = "storage.GetProgress"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := scanProgress(s.DB.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM onboarding_progress WHERE user_id = $1`, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// GetProgressByID возвращает запись онбординга по её id.
func (s *Storage) GetProgressByID(ctx context.Context, id string) (*models.OnboardingProgress, error) {
	const op = "storage.GetProgressByID"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := scanProgress(s.DB.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM onboarding_progress WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// AcceptTerms отмечает принятие условий. Флаг монотонен, первая отметка времени сохраняется.
func (s *Storage) AcceptTerms(ctx context.Context, userID string, at time.Time) (*models.OnboardingProgress, error) {
	return s.markStep(ctx, "storage.AcceptTerms", `
		INSERT INTO onboarding_progress (user_id, terms_accepted, terms_accepted_at)
		VALUES ($1, TRUE, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			terms_accepted    = TRUE,
			terms_accepted_at = COALESCE(onboarding_progress.terms_accepted_at, EXCLUDED.terms_accepted_at),
			updated_at        = now()
		RETURNING `+progressColumns, userID, at)
}

// CompletePaymentsSetup отмечает настройку выплат. Флаг монотонен.
func (s *Storage) CompletePaymentsSetup(ctx context.Context, userID string, at time.Time) (*models.OnboardingProgress, error) {
	return s.markStep(ctx, "storage.CompletePaymentsSetup", `
		INSERT INTO onboarding_progress (user_id, payments_setup, payments_setup_at)
		VALUES ($1, TRUE, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			payments_setup    = TRUE,
			payments_setup_at = COALESCE(onboarding_progress.payments_setup_at, EXCLUDED.payments_setup_at),
			updated_at        = now()
		RETURNING `+progressColumns, userID, at)
}

func (s *Storage) markStep(ctx context.Context, op, query, userID string, at time.Time) (*models.OnboardingProgress, error) {
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := scanProgress(s.DB.QueryRowContext(ctx, query, userID, at))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// SubmitIdentityDocument переводит проверку личности в submitted с новой ссылкой на документ.
//
// Запись блокируется на время транзакции; guard получает текущее состояние и может отклонить
// загрузку. Вместе с изменением пишутся строка журнала и событие outbox.
func (s *Storage) SubmitIdentityDocument(ctx context.Context, userID, documentRef string, at time.Time,
	guard func(current models.IdentityStatus) error) (*models.OnboardingProgress, error) {
	const op = "storage.SubmitIdentityDocument"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var updated *models.OnboardingProgress
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO onboarding_progress (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
			return mapError(err)
		}

		current, err := scanProgress(tx.QueryRowContext(ctx,
			`SELECT `+progressColumns+` FROM onboarding_progress WHERE user_id = $1 FOR UPDATE`, userID))
		if err != nil {
			return mapError(err)
		}
		if err = guard(current.IdentityStatus); err != nil {
			return err
		}

		updated, err = scanProgress(tx.QueryRowContext(ctx, `
			UPDATE onboarding_progress SET
				identity_status       = $2,
				identity_document_ref = $3,
				identity_submitted_at = $4,
				updated_at            = now()
			WHERE id = $1
			RETURNING `+progressColumns,
			current.ID, string(models.IdentitySubmitted), documentRef, at))
		if err != nil {
			return mapError(err)
		}

		if err = insertReviewLogTx(ctx, tx, models.IdentityReviewEntry{
			ProgressID:  current.ID,
			ActorID:     userID,
			FromStatus:  current.IdentityStatus,
			ToStatus:    models.IdentitySubmitted,
			DocumentRef: documentRef,
			CreatedAt:   at,
		}); err != nil {
			return err
		}

		return enqueueEventTx(ctx, tx, models.RoutingIdentitySubmitted, models.IdentitySubmittedEvent{
			UserID:      userID,
			ProgressID:  current.ID,
			DocumentRef: documentRef,
			SubmittedAt: at,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

func insertReviewLogTx(ctx context.Context, q queryer, e models.IdentityReviewEntry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO identity_review_log
			(progress_id, actor_id, from_status, to_status, notes, account_status, document_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ProgressID, e.ActorID, string(e.FromStatus), string(e.ToStatus), e.Notes,
		string(e.AccountStatus), e.DocumentRef, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert review log: %w", mapError(err))
	}
	return nil
}

// ReviewLog возвращает историю загрузок и решений по записи, новые сверху.
func (s *Storage) ReviewLog(ctx context.Context, progressID string) ([]models.IdentityReviewEntry, error) {
	const op = "storage.ReviewLog"
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, progress_id, actor_id, from_status, to_status, notes, account_status, document_ref, created_at
		FROM identity_review_log
		WHERE progress_id = $1
		ORDER BY created_at DESC, id DESC`, progressID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []models.IdentityReviewEntry
	for rows.Next() {
		var e models.IdentityReviewEntry
		var from, to, accStatus string
		if err := rows.Scan(&e.ID, &e.ProgressID, &e.ActorID, &from, &to, &e.Notes,
			&accStatus, &e.DocumentRef, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.FromStatus = models.IdentityStatus(from)
		e.ToStatus = models.IdentityStatus(to)
		e.AccountStatus = models.AccountStatus(accStatus)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}
