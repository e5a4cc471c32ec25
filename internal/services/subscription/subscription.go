// Package subscription содержит бизнес-логику подписок на авторов и тарифов авторов,
// включая кеширование каталога тарифов.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/services/accessgate"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// Repository определяет методы хранилища подписок и тарифов.
type Repository interface {
	// Subscribe оформляет или переоформляет подписку на тариф.
	Subscribe(ctx context.Context, userID string, tier models.SubscriptionTier, start, nextBilling time.Time) (*models.Subscription, error)
	// ChangeSubscriptionStatus меняет статус подписки под блокировкой строки.
	ChangeSubscriptionStatus(ctx context.Context, id string, at time.Time,
		decide func(current models.Subscription) (models.SubscriptionStatus, error)) (*models.Subscription, error)
	// ListSubscriptionsByUser возвращает подписки пользователя.
	ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	// ExpireLapsedSubscriptions переводит просроченные подписки в expired.
	ExpireLapsedSubscriptions(ctx context.Context, cutoff time.Time) (int64, error)
	// CreateTier сохраняет тариф.
	CreateTier(ctx context.Context, t models.SubscriptionTier) (*models.SubscriptionTier, error)
	// UpdateTier изменяет тариф автора.
	UpdateTier(ctx context.Context, t models.SubscriptionTier) (*models.SubscriptionTier, error)
	// GetTier возвращает тариф по id.
	GetTier(ctx context.Context, id string) (*models.SubscriptionTier, error)
	// ListTiersByCreator возвращает тарифы автора.
	ListTiersByCreator(ctx context.Context, creatorID string) ([]models.SubscriptionTier, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// Gate проверяет право пользователя на действие.
type Gate interface {
	Check(ctx context.Context, userID string, action accessgate.Action) (*models.User, error)
}

// Service реализует бизнес-логику подписок и тарифов.
type Service struct {
	repo     Repository
	cache    Cache
	gate     Gate
	tiersTTL time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, gate Gate, tiersTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		gate:     gate,
		tiersTTL: tiersTTL,
		log:      log,
		now:      time.Now,
	}
}

func tiersKey(creatorID string) string {
	return "tiers:" + creatorID
}

// Subscribe оформляет подписку пользователя на тариф.
func (s *Service) Subscribe(ctx context.Context, userID string, req models.SubscribeRequest) (*models.Subscription, error) {
	const op = "subscription.Subscribe"

	tier, err := s.repo.GetTier(ctx, req.TierID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(op, "tier not found", err)
		}
		return nil, apperr.Remote(op, err)
	}
	if !tier.IsActive {
		return nil, apperr.Conflict(op, "this tier is not available for new subscriptions")
	}
	if tier.CreatorID == userID {
		return nil, apperr.Conflict(op, "you cannot subscribe to yourself")
	}

	start := s.now().UTC()
	sub, err := s.repo.Subscribe(ctx, userID, *tier, start, start.AddDate(0, 1, 0))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperr.Conflict(op, "you already have an active subscription to this creator")
		}
		return nil, apperr.Remote(op, err)
	}

	s.invalidateTiers(ctx, tier.CreatorID)
	s.log.Info("subscribed", slog.String("op", op), sl.UserID(userID), slog.String("tier_id", tier.ID))
	return sub, nil
}

// Cancel отменяет подписку. Доступ к контенту автора прекращается сразу.
func (s *Service) Cancel(ctx context.Context, userID, subscriptionID string) (*models.Subscription, error) {
	return s.change(ctx, "subscription.Cancel", userID, subscriptionID, ActionCancel)
}

// Reactivate возобновляет отменённую или истёкшую подписку.
func (s *Service) Reactivate(ctx context.Context, userID, subscriptionID string) (*models.Subscription, error) {
	return s.change(ctx, "subscription.Reactivate", userID, subscriptionID, ActionReactivate)
}

func (s *Service) change(ctx context.Context, op, userID, subscriptionID string, action Action) (*models.Subscription, error) {
	sub, err := s.repo.ChangeSubscriptionStatus(ctx, subscriptionID, s.now().UTC(),
		func(cur models.Subscription) (models.SubscriptionStatus, error) {
			if cur.UserID != userID {
				return "", apperr.NotFound(op, "subscription not found", nil)
			}
			next, err := NextStatus(cur.Status, action)
			if err != nil {
				return "", apperr.Conflict(op, err.Error())
			}
			return next, nil
		})
	if err != nil {
		switch {
		case apperr.KindOf(err) != apperr.KindUnknown:
			return nil, err
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound(op, "subscription not found", err)
		default:
			return nil, apperr.Remote(op, err)
		}
	}

	s.invalidateTiers(ctx, sub.CreatorID)
	s.log.Info("subscription status changed",
		slog.String("op", op), sl.UserID(userID), slog.String("status", string(sub.Status)))
	return sub, nil
}

// List возвращает подписки пользователя.
func (s *Service) List(ctx context.Context, userID string) ([]models.Subscription, error) {
	const op = "subscription.List"
	subs, err := s.repo.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	return subs, nil
}

// ExpireLapsed переводит в expired подписки, оплата которых просрочена дольше grace.
func (s *Service) ExpireLapsed(ctx context.Context, grace time.Duration) (int64, error) {
	const op = "subscription.ExpireLapsed"
	n, err := s.repo.ExpireLapsedSubscriptions(ctx, s.now().UTC().Add(-grace))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// CreateTier создаёт тариф автора.
func (s *Service) CreateTier(ctx context.Context, creatorID string, req models.TierRequest) (*models.SubscriptionTier, error) {
	const op = "subscription.CreateTier"

	if _, err := s.gate.Check(ctx, creatorID, accessgate.ActionManageTiers); err != nil {
		return nil, err
	}
	t, err := s.repo.CreateTier(ctx, tierFromRequest(creatorID, req))
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	s.invalidateTiers(ctx, creatorID)
	return t, nil
}

// UpdateTier изменяет тариф. Чужой тариф не найден для вызывающего.
func (s *Service) UpdateTier(ctx context.Context, creatorID, tierID string, req models.TierRequest) (*models.SubscriptionTier, error) {
	const op = "subscription.UpdateTier"

	if _, err := s.gate.Check(ctx, creatorID, accessgate.ActionManageTiers); err != nil {
		return nil, err
	}
	t := tierFromRequest(creatorID, req)
	t.ID = tierID
	updated, err := s.repo.UpdateTier(ctx, t)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(op, "tier not found", err)
		}
		return nil, apperr.Remote(op, err)
	}
	s.invalidateTiers(ctx, creatorID)
	return updated, nil
}

// ListTiers возвращает тарифы автора, используя кеш.
func (s *Service) ListTiers(ctx context.Context, creatorID string) ([]models.SubscriptionTier, error) {
	const op = "subscription.ListTiers"
	key := tiersKey(creatorID)

	var cached []models.SubscriptionTier
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read tiers from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	tiers, err := s.repo.ListTiersByCreator(ctx, creatorID)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	if err := s.cache.Set(ctx, key, tiers, s.tiersTTL); err != nil {
		s.log.Warn("failed to cache tiers", slog.String("key", key), sl.Err(err))
	}
	return tiers, nil
}

func (s *Service) invalidateTiers(ctx context.Context, creatorID string) {
	key := tiersKey(creatorID)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
	}
}

func tierFromRequest(creatorID string, req models.TierRequest) models.SubscriptionTier {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	benefits := req.Benefits
	if benefits == nil {
		benefits = []string{}
	}
	return models.SubscriptionTier{
		CreatorID:  creatorID,
		Name:       req.Name,
		PriceCents: *req.PriceCents,
		Benefits:   benefits,
		IsActive:   active,
		Popular:    req.Popular,
	}
}
