// Package review реализует консоль проверки документов: очередь ожидающих проверки,
// вынесение решения и просмотр документа по временной ссылке.
package review

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/metrics"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/services/accessgate"
	"github.com/magabrotheeeer/content-marketplace/internal/services/identity"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	documentPrefix  = "identity/"
)

// Store операции хранилища, нужные консоли.
type Store interface {
	ListPendingReviews(ctx context.Context, after models.ReviewCursor, limit int) ([]models.PendingReview, error)
	CommitReview(ctx context.Context, d models.ReviewDecision,
		decide func(current models.OnboardingProgress) (models.IdentityStatus, error)) (*models.ReviewResult, error)
	ReviewLog(ctx context.Context, progressID string) ([]models.IdentityReviewEntry, error)
}

// Gate проверяет право оператора на действие.
type Gate interface {
	Check(ctx context.Context, userID string, action accessgate.Action) (*models.User, error)
}

// Presigner выдаёт временные ссылки на приватные объекты.
type Presigner interface {
	PresignedURL(ref string, ttl time.Duration) (string, error)
}

// Console единственный источник решений по проверке личности и статусу аккаунта.
type Console struct {
	store      Store
	gate       Gate
	docs       Presigner
	presignTTL time.Duration
	pageSize   int
	log        *slog.Logger
	now        func() time.Time
}

// NewConsole создаёт Console.
func NewConsole(store Store, gate Gate, docs Presigner, presignTTL time.Duration, log *slog.Logger) *Console {
	return &Console{
		store:      store,
		gate:       gate,
		docs:       docs,
		presignTTL: presignTTL,
		pageSize:   defaultPageSize,
		log:        log,
		now:        time.Now,
	}
}

// PendingReviews возвращает ленивую последовательность записей, ожидающих проверки,
// от самых свежих к старым, начиная после курсора from. Страницы читаются по мере
// потребления; прерванную последовательность можно продолжить с курсора последней записи.
func (c *Console) PendingReviews(ctx context.Context, from models.ReviewCursor) iter.Seq2[models.PendingReview, error] {
	return func(yield func(models.PendingReview, error) bool) {
		cursor := from
		for {
			page, err := c.store.ListPendingReviews(ctx, cursor, c.pageSize)
			if err != nil {
				yield(models.PendingReview{}, err)
				return
			}
			for _, r := range page {
				if !yield(r, nil) {
					return
				}
			}
			if len(page) < c.pageSize {
				return
			}
			last := page[len(page)-1]
			cursor = CursorOf(last)
		}
	}
}

// Page возвращает не более limit записей очереди после курсора и курсор продолжения.
// next == nil, если очередь исчерпана.
func (c *Console) Page(ctx context.Context, operatorID string, after models.ReviewCursor, limit int) ([]models.PendingReview, *models.ReviewCursor, error) {
	const op = "review.Page"

	if _, err := c.gate.Check(ctx, operatorID, accessgate.ActionReviewIdentity); err != nil {
		return nil, nil, err
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)

	items := make([]models.PendingReview, 0, limit)
	var next *models.ReviewCursor
	for r, err := range c.PendingReviews(ctx, after) {
		if err != nil {
			return nil, nil, apperr.Remote(op, err)
		}
		if len(items) == limit {
			cur := CursorOf(items[len(items)-1])
			next = &cur
			break
		}
		items = append(items, r)
	}
	return items, next, nil
}

// SubmitReview применяет решение оператора: статус проверки, заметки и время
// рассмотрения записываются вместе со статусом аккаунта в одной транзакции.
func (c *Console) SubmitReview(ctx context.Context, operatorID, progressID string, req models.SubmitReviewRequest) (*models.ReviewResult, error) {
	const op = "review.SubmitReview"
	log := c.log.With(slog.String("op", op), slog.String("progress_id", progressID), slog.String("operator_id", operatorID))

	if _, err := c.gate.Check(ctx, operatorID, accessgate.ActionReviewIdentity); err != nil {
		return nil, err
	}

	target, err := models.ParseIdentityStatus(req.IdentityStatus)
	if err != nil {
		return nil, apperr.Validation(op, err.Error())
	}
	if !identity.ReviewerSettable(target) {
		return nil, apperr.Validation(op, fmt.Sprintf("identity status %s cannot be set by a reviewer", target))
	}
	account, err := models.ParseAccountStatus(req.AccountStatus)
	if err != nil {
		return nil, apperr.Validation(op, err.Error())
	}

	res, err := c.store.CommitReview(ctx, models.ReviewDecision{
		ProgressID:     progressID,
		ReviewerID:     operatorID,
		IdentityStatus: target,
		Notes:          req.Notes,
		AccountStatus:  account,
		ReviewedAt:     c.now().UTC(),
	}, func(current models.OnboardingProgress) (models.IdentityStatus, error) {
		if current.UserID == operatorID {
			return "", apperr.Conflict(op, "reviewers cannot decide on their own document")
		}
		next, err := identity.Review(current.IdentityStatus, target)
		if err != nil {
			return "", apperr.Conflict(op, fmt.Sprintf("cannot move identity verification from %s to %s", current.IdentityStatus, target))
		}
		return next, nil
	})
	if err != nil {
		metrics.ReviewDecisions.WithLabelValues(string(target), "failed").Inc()
		switch {
		case apperr.KindOf(err) != apperr.KindUnknown:
			return nil, err
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound(op, "onboarding record not found", err)
		default:
			log.Error("review commit failed, nothing was applied", sl.Err(err))
			return nil, apperr.Remote(op, err)
		}
	}

	metrics.ReviewDecisions.WithLabelValues(string(res.Progress.IdentityStatus), "committed").Inc()
	log.Info("review committed",
		slog.String("identity_status", string(res.Progress.IdentityStatus)),
		slog.String("account_status", string(res.AccountStatus)),
	)
	return res, nil
}

// History возвращает журнал загрузок и решений по записи онбординга.
func (c *Console) History(ctx context.Context, operatorID, progressID string) ([]models.IdentityReviewEntry, error) {
	const op = "review.History"

	if _, err := c.gate.Check(ctx, operatorID, accessgate.ActionReviewIdentity); err != nil {
		return nil, err
	}
	entries, err := c.store.ReviewLog(ctx, progressID)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	return entries, nil
}

// ViewDocument возвращает временную ссылку на документ. Состояние не меняется.
func (c *Console) ViewDocument(ctx context.Context, operatorID, ref string) (string, error) {
	const op = "review.ViewDocument"

	if _, err := c.gate.Check(ctx, operatorID, accessgate.ActionReviewIdentity); err != nil {
		return "", err
	}
	if !strings.HasPrefix(ref, documentPrefix) || strings.Contains(ref, "..") {
		return "", apperr.Validation(op, "reference does not point to an identity document")
	}
	url, err := c.docs.PresignedURL(ref, c.presignTTL)
	if err != nil {
		return "", apperr.Remote(op, err)
	}
	return url, nil
}

// CursorOf возвращает курсор, указывающий на запись.
func CursorOf(r models.PendingReview) models.ReviewCursor {
	return models.ReviewCursor{SubmittedAt: r.SubmittedAt, ProgressID: r.ProgressID}
}

// EncodeCursor кодирует курсор для передачи в запросе.
func EncodeCursor(c models.ReviewCursor) string {
	raw := c.SubmittedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ProgressID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor разбирает курсор. Пустая строка означает начало очереди.
func DecodeCursor(s string) (models.ReviewCursor, error) {
	if s == "" {
		return models.ReviewCursor{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return models.ReviewCursor{}, fmt.Errorf("invalid cursor: %w", err)
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return models.ReviewCursor{}, errors.New("invalid cursor")
	}
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return models.ReviewCursor{}, fmt.Errorf("invalid cursor: %w", err)
	}
	return models.ReviewCursor{SubmittedAt: at, ProgressID: id}, nil
}
