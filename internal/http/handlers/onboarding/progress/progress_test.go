package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Get(ctx context.Context, userID string) (*models.OnboardingView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnboardingView), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestProgressHandler(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		setupMocks func(*ServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "progress with completion",
			userID: "u-1",
			setupMocks: func(m *ServiceMock) {
				p := models.OnboardingProgress{UserID: "u-1", TermsAccepted: true, IdentityStatus: models.IdentityPending}
				m.On("Get", mock.Anything, "u-1").Return(&models.OnboardingView{
					Progress:   p,
					Steps:      map[models.Step]bool{models.StepTerms: true, models.StepIdentity: false, models.StepPayments: false},
					Completion: p.Completion(),
				}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"terms":true`,
		},
		{
			name:       "no user in context",
			setupMocks: func(_ *ServiceMock) {},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `user identification missing`,
		},
		{
			name:   "store down",
			userID: "u-1",
			setupMocks: func(m *ServiceMock) {
				m.On("Get", mock.Anything, "u-1").Return(nil, apperr.Remote("onboarding.Get", errors.New("dial tcp: timeout"))).Once()
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   `dial tcp: timeout`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMocks(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/onboarding", nil)
			if tt.userID != "" {
				req = req.WithContext(middlewarectx.WithUserID(req.Context(), tt.userID))
			}
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
