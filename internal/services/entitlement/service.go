package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/metrics"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// Store строки, из которых вычисляется доступ.
type Store interface {
	ListEntitlementsByUser(ctx context.Context, userID string) ([]models.ContentEntitlement, error)
	ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	GetContent(ctx context.Context, id string) (*models.Content, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateEntitlement(ctx context.Context, e models.ContentEntitlement) (*models.ContentEntitlement, bool, error)
}

// Service читает текущие строки и применяет к ним резолвер. Результаты не кешируются.
type Service struct {
	store  Store
	window time.Duration
	log    *slog.Logger
	now    func() time.Time
}

// NewService создаёт Service. window задаёт срок доступа по разовой покупке.
func NewService(store Store, window time.Duration, log *slog.Logger) *Service {
	return &Service{store: store, window: window, log: log, now: time.Now}
}

// CanAccess проверяет доступ пользователя к контенту в текущий момент.
func (s *Service) CanAccess(ctx context.Context, userID, contentID string) (*models.AccessDecision, error) {
	const op = "entitlement.CanAccess"

	c, err := s.store.GetContent(ctx, contentID)
	if err != nil {
		metrics.EntitlementChecks.WithLabelValues("error").Inc()
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(op, "content not found", err)
		}
		return nil, apperr.Remote(op, err)
	}

	purchased, subscribed, err := s.load(ctx, userID)
	if err != nil {
		metrics.EntitlementChecks.WithLabelValues("error").Inc()
		return nil, apperr.Remote(op, err)
	}

	allowed, via := CanAccess(purchased, subscribed, *c)
	if allowed {
		metrics.EntitlementChecks.WithLabelValues("allowed").Inc()
	} else {
		metrics.EntitlementChecks.WithLabelValues("denied").Inc()
	}
	return &models.AccessDecision{ContentID: c.ID, Allowed: allowed, Via: via}, nil
}

// Library возвращает купленный контент и авторов с действующей подпиской.
func (s *Service) Library(ctx context.Context, userID string) (*models.Library, error) {
	const op = "entitlement.Library"

	purchased, subscribed, err := s.load(ctx, userID)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	return &models.Library{
		Purchased:  purchased.Sorted(),
		Subscribed: subscribed.Sorted(),
	}, nil
}

func (s *Service) load(ctx context.Context, userID string) (Set, Set, error) {
	now := s.now()
	ents, err := s.store.ListEntitlementsByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load entitlements: %w", err)
	}
	subs, err := s.store.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load subscriptions: %w", err)
	}
	return Purchased(ents, userID, now), Subscribed(subs, userID), nil
}

// GrantPurchase создаёт право доступа по успешной оплате. Повторное уведомление
// с той же transaction_ref возвращает уже выданное право; created == false.
func (s *Service) GrantPurchase(ctx context.Context, cb models.PaymentCallback) (*models.ContentEntitlement, bool, error) {
	const op = "entitlement.GrantPurchase"
	log := s.log.With(slog.String("op", op), slog.String("transaction_ref", cb.TransactionRef))

	if cb.Status != models.PaymentSucceeded {
		return nil, false, apperr.Validation(op, fmt.Sprintf("payment status %q does not grant access", cb.Status))
	}
	if _, err := s.store.GetUserByID(ctx, cb.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, apperr.NotFound(op, "user not found", err)
		}
		return nil, false, apperr.Remote(op, err)
	}
	if _, err := s.store.GetContent(ctx, cb.ContentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, apperr.NotFound(op, "content not found", err)
		}
		return nil, false, apperr.Remote(op, err)
	}

	e, created, err := s.store.CreateEntitlement(ctx, models.ContentEntitlement{
		UserID:         cb.UserID,
		ContentID:      cb.ContentID,
		TransactionRef: cb.TransactionRef,
		AccessGranted:  true,
		ExpiresAt:      s.now().UTC().Add(s.window),
	})
	if err != nil {
		log.Error("failed to create entitlement", sl.Err(err))
		return nil, false, apperr.Remote(op, err)
	}

	if created {
		metrics.EntitlementGrants.Inc()
		log.Info("entitlement granted", sl.UserID(e.UserID), slog.String("content_id", e.ContentID))
	} else {
		log.Info("duplicate payment callback")
	}
	return e, created, nil
}
