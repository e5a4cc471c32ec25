package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/services/accessgate"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
	current models.Subscription
}

func (m *RepoMock) Subscribe(ctx context.Context, userID string, tier models.SubscriptionTier, start, next time.Time) (*models.Subscription, error) {
	args := m.Called(ctx, userID, tier, start, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) ChangeSubscriptionStatus(ctx context.Context, id string, at time.Time,
	decide func(models.Subscription) (models.SubscriptionStatus, error)) (*models.Subscription, error) {
	args := m.Called(ctx, id, at)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	next, err := decide(m.current)
	if err != nil {
		return nil, err
	}
	updated := m.current
	updated.Status = next
	return &updated, nil
}

func (m *RepoMock) ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *RepoMock) ExpireLapsedSubscriptions(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) CreateTier(ctx context.Context, t models.SubscriptionTier) (*models.SubscriptionTier, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionTier), args.Error(1)
}

func (m *RepoMock) UpdateTier(ctx context.Context, t models.SubscriptionTier) (*models.SubscriptionTier, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionTier), args.Error(1)
}

func (m *RepoMock) GetTier(ctx context.Context, id string) (*models.SubscriptionTier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionTier), args.Error(1)
}

func (m *RepoMock) ListTiersByCreator(ctx context.Context, creatorID string) ([]models.SubscriptionTier, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).([]models.SubscriptionTier), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type GateMock struct{ mock.Mock }

func (m *GateMock) Check(ctx context.Context, userID string, action accessgate.Action) (*models.User, error) {
	args := m.Called(ctx, userID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var now = time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

func newTestService(r *RepoMock, c *CacheMock, g *GateMock) *Service {
	s := NewService(r, c, g, 10*time.Minute, NewNoopLogger())
	s.now = func() time.Time { return now }
	return s
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from    models.SubscriptionStatus
		action  Action
		want    models.SubscriptionStatus
		wantErr bool
	}{
		{models.SubscriptionActive, ActionCancel, models.SubscriptionCancelled, false},
		{models.SubscriptionActive, ActionReactivate, "", true},
		{models.SubscriptionTrial, ActionCancel, models.SubscriptionCancelled, false},
		{models.SubscriptionTrial, ActionReactivate, models.SubscriptionActive, false},
		{models.SubscriptionCancelled, ActionReactivate, models.SubscriptionActive, false},
		{models.SubscriptionCancelled, ActionCancel, "", true},
		{models.SubscriptionExpired, ActionReactivate, models.SubscriptionActive, false},
		{models.SubscriptionStatus("paused"), ActionReactivate, "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, err := NextStatus(tt.from, tt.action)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Subscribe(t *testing.T) {
	tier := &models.SubscriptionTier{ID: "t1", CreatorID: "creator-a", PriceCents: 900, IsActive: true}

	tests := []struct {
		name       string
		userID     string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantKind   apperr.Kind
	}{
		{
			name:   "new subscription",
			userID: "u1",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("GetTier", mock.Anything, "t1").Return(tier, nil).Once()
				r.On("Subscribe", mock.Anything, "u1", *tier, now, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)).
					Return(&models.Subscription{ID: "s1", Status: models.SubscriptionActive}, nil).Once()
				c.On("Invalidate", mock.Anything, "tiers:creator-a").Return(nil).Once()
			},
		},
		{
			name:   "already subscribed",
			userID: "u1",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("GetTier", mock.Anything, "t1").Return(tier, nil).Once()
				r.On("Subscribe", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, repository.ErrAlreadyExists).Once()
			},
			wantKind: apperr.KindConflict,
		},
		{
			name:   "own tier",
			userID: "creator-a",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("GetTier", mock.Anything, "t1").Return(tier, nil).Once()
			},
			wantKind: apperr.KindConflict,
		},
		{
			name:   "inactive tier",
			userID: "u1",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("GetTier", mock.Anything, "t1").
					Return(&models.SubscriptionTier{ID: "t1", CreatorID: "creator-a"}, nil).Once()
			},
			wantKind: apperr.KindConflict,
		},
		{
			name:   "unknown tier",
			userID: "u1",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("GetTier", mock.Anything, "t1").Return(nil, repository.ErrNotFound).Once()
			},
			wantKind: apperr.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c := new(RepoMock), new(CacheMock)
			tt.setupMocks(r, c)

			sub, err := newTestService(r, c, new(GateMock)).Subscribe(context.Background(), tt.userID, models.SubscribeRequest{TierID: "t1"})
			if tt.wantKind != apperr.KindUnknown {
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "s1", sub.ID)
			r.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestService_Cancel(t *testing.T) {
	r, c := &RepoMock{current: models.Subscription{ID: "s1", UserID: "u1", CreatorID: "creator-a", Status: models.SubscriptionActive}}, new(CacheMock)
	r.On("ChangeSubscriptionStatus", mock.Anything, "s1", now).Return(nil, nil).Once()
	c.On("Invalidate", mock.Anything, "tiers:creator-a").Return(errors.New("redis down")).Once()

	sub, err := newTestService(r, c, new(GateMock)).Cancel(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionCancelled, sub.Status)
}

func TestService_Cancel_Refusals(t *testing.T) {
	t.Run("someone else's subscription", func(t *testing.T) {
		r := &RepoMock{current: models.Subscription{ID: "s1", UserID: "u2", Status: models.SubscriptionActive}}
		r.On("ChangeSubscriptionStatus", mock.Anything, "s1", now).Return(nil, nil).Once()

		_, err := newTestService(r, new(CacheMock), new(GateMock)).Cancel(context.Background(), "u1", "s1")
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("already cancelled", func(t *testing.T) {
		r := &RepoMock{current: models.Subscription{ID: "s1", UserID: "u1", Status: models.SubscriptionCancelled}}
		r.On("ChangeSubscriptionStatus", mock.Anything, "s1", now).Return(nil, nil).Once()

		_, err := newTestService(r, new(CacheMock), new(GateMock)).Cancel(context.Background(), "u1", "s1")
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("missing row", func(t *testing.T) {
		r := new(RepoMock)
		r.On("ChangeSubscriptionStatus", mock.Anything, "s1", now).Return(nil, repository.ErrNotFound).Once()

		_, err := newTestService(r, new(CacheMock), new(GateMock)).Reactivate(context.Background(), "u1", "s1")
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestService_ExpireLapsed(t *testing.T) {
	r := new(RepoMock)
	r.On("ExpireLapsedSubscriptions", mock.Anything, now.Add(-72*time.Hour)).Return(int64(3), nil).Once()

	n, err := newTestService(r, new(CacheMock), new(GateMock)).ExpireLapsed(context.Background(), 72*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestService_ListTiers_Cache(t *testing.T) {
	tiers := []models.SubscriptionTier{{ID: "t1", Name: "Basic"}}

	t.Run("miss fills cache", func(t *testing.T) {
		r, c := new(RepoMock), new(CacheMock)
		c.On("Get", mock.Anything, "tiers:creator-a", mock.Anything).Return(false, nil).Once()
		r.On("ListTiersByCreator", mock.Anything, "creator-a").Return(tiers, nil).Once()
		c.On("Set", mock.Anything, "tiers:creator-a", tiers, 10*time.Minute).Return(nil).Once()

		got, err := newTestService(r, c, new(GateMock)).ListTiers(context.Background(), "creator-a")
		require.NoError(t, err)
		assert.Equal(t, tiers, got)
		c.AssertExpectations(t)
	})

	t.Run("hit skips repository", func(t *testing.T) {
		r, c := new(RepoMock), new(CacheMock)
		c.On("Get", mock.Anything, "tiers:creator-a", mock.Anything).Return(true, nil).Once()

		_, err := newTestService(r, c, new(GateMock)).ListTiers(context.Background(), "creator-a")
		require.NoError(t, err)
		r.AssertNotCalled(t, "ListTiersByCreator", mock.Anything, mock.Anything)
	})
}

func TestService_UpdateTier(t *testing.T) {
	price := int64(1500)
	req := models.TierRequest{Name: "Pro", PriceCents: &price}

	t.Run("gate refuses paused creator", func(t *testing.T) {
		r, g := new(RepoMock), new(GateMock)
		g.On("Check", mock.Anything, "creator-a", accessgate.ActionManageTiers).
			Return(nil, apperr.Authorization("accessgate.Check", "your account is paused; publishing is temporarily disabled")).Once()

		_, err := newTestService(r, new(CacheMock), g).UpdateTier(context.Background(), "creator-a", "t1", req)
		assert.True(t, apperr.Is(err, apperr.KindAuthorization))
		r.AssertNotCalled(t, "UpdateTier", mock.Anything, mock.Anything)
	})

	t.Run("not owner", func(t *testing.T) {
		r, g := new(RepoMock), new(GateMock)
		g.On("Check", mock.Anything, "creator-b", accessgate.ActionManageTiers).
			Return(&models.User{ID: "creator-b"}, nil).Once()
		r.On("UpdateTier", mock.Anything, models.SubscriptionTier{
			ID: "t1", CreatorID: "creator-b", Name: "Pro", PriceCents: 1500, Benefits: []string{}, IsActive: true,
		}).Return(nil, repository.ErrNotFound).Once()

		_, err := newTestService(r, new(CacheMock), g).UpdateTier(context.Background(), "creator-b", "t1", req)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestService_CreateTier(t *testing.T) {
	price := int64(0)
	inactive := false
	r, c, g := new(RepoMock), new(CacheMock), new(GateMock)
	g.On("Check", mock.Anything, "creator-a", accessgate.ActionManageTiers).Return(&models.User{ID: "creator-a"}, nil).Once()
	r.On("CreateTier", mock.Anything, models.SubscriptionTier{
		CreatorID: "creator-a", Name: "Free", PriceCents: 0, Benefits: []string{"chat"}, IsActive: false, Popular: true,
	}).Return(&models.SubscriptionTier{ID: "t9"}, nil).Once()
	c.On("Invalidate", mock.Anything, "tiers:creator-a").Return(nil).Once()

	tier, err := newTestService(r, c, g).CreateTier(context.Background(), "creator-a", models.TierRequest{
		Name: "Free", PriceCents: &price, Benefits: []string{"chat"}, IsActive: &inactive, Popular: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "t9", tier.ID)
	r.AssertExpectations(t)
	c.AssertExpectations(t)
}
