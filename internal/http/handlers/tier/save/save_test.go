package save

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreateTier(ctx context.Context, creatorID string, req models.TierRequest) (*models.SubscriptionTier, error) {
	args := m.Called(ctx, creatorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionTier), args.Error(1)
}

func (m *ServiceMock) UpdateTier(ctx context.Context, creatorID, tierID string, req models.TierRequest) (*models.SubscriptionTier, error) {
	args := m.Called(ctx, creatorID, tierID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionTier), args.Error(1)
}

func TestSaveHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		setupMocks func(*ServiceMock)
		wantStatus int
	}{
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/tiers",
			body:   `{"name":"Gold","price_cents":500,"benefits":["early access"]}`,
			setupMocks: func(m *ServiceMock) {
				m.On("CreateTier", mock.Anything, "creator-1", mock.MatchedBy(func(r models.TierRequest) bool {
					return r.Name == "Gold" && *r.PriceCents == 500 && len(r.Benefits) == 1
				})).Return(&models.SubscriptionTier{ID: "t-1", Name: "Gold"}, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:   "update",
			method: http.MethodPut,
			path:   "/tiers/t-1",
			body:   `{"name":"Gold+","price_cents":700}`,
			setupMocks: func(m *ServiceMock) {
				m.On("UpdateTier", mock.Anything, "creator-1", "t-1", mock.Anything).
					Return(&models.SubscriptionTier{ID: "t-1", Name: "Gold+"}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "negative price",
			method:     http.MethodPost,
			path:       "/tiers",
			body:       `{"name":"Gold","price_cents":-1}`,
			setupMocks: func(_ *ServiceMock) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:   "paused creator",
			method: http.MethodPost,
			path:   "/tiers",
			body:   `{"name":"Gold","price_cents":500}`,
			setupMocks: func(m *ServiceMock) {
				m.On("CreateTier", mock.Anything, "creator-1", mock.Anything).
					Return(nil, apperr.Authorization("accessgate.Check", "your account is paused; publishing is temporarily disabled")).Once()
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMocks(svc)

			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
			r := chi.NewRouter()
			r.Post("/tiers", h.ServeHTTP)
			r.Put("/tiers/{id}", h.ServeHTTP)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithUserID(req.Context(), "creator-1"))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
