package decide

import (
	"bytes"
	"context"
	"errors"
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

func (m *ServiceMock) SubmitReview(ctx context.Context, operatorID, progressID string, req models.SubmitReviewRequest) (*models.ReviewResult, error) {
	args := m.Called(ctx, operatorID, progressID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewResult), args.Error(1)
}

func TestDecideHandler(t *testing.T) {
	approveAndBlock := models.SubmitReviewRequest{IdentityStatus: "approved", Notes: "ok", AccountStatus: "blocked"}

	tests := []struct {
		name       string
		body       string
		setupMocks func(*ServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name: "approved yet blocked",
			body: `{"identity_status":"approved","notes":"ok","account_status":"blocked"}`,
			setupMocks: func(m *ServiceMock) {
				m.On("SubmitReview", mock.Anything, "admin-1", "p-1", approveAndBlock).Return(&models.ReviewResult{
					Progress:      models.OnboardingProgress{ID: "p-1", IdentityStatus: models.IdentityApproved},
					AccountStatus: models.AccountBlocked,
				}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"account_status":"blocked"`,
		},
		{
			name:       "account status is required",
			body:       `{"identity_status":"approved"}`,
			setupMocks: func(_ *ServiceMock) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "write failed midway",
			body: `{"identity_status":"approved","notes":"ok","account_status":"blocked"}`,
			setupMocks: func(m *ServiceMock) {
				m.On("SubmitReview", mock.Anything, "admin-1", "p-1", approveAndBlock).Return(nil,
					apperr.Remote("review.SubmitReview", errors.New("storage.CommitReview: update account status: connection reset by peer"))).Once()
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   `"error":"storage.CommitReview: update account status: connection reset by peer"`,
		},
		{
			name: "illegal transition",
			body: `{"identity_status":"approved","account_status":"good_standing"}`,
			setupMocks: func(m *ServiceMock) {
				m.On("SubmitReview", mock.Anything, "admin-1", "p-1", mock.Anything).
					Return(nil, apperr.Conflict("review.SubmitReview", `cannot move identity from "pending" to "approved"`)).Once()
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMocks(svc)

			r := chi.NewRouter()
			r.Post("/admin/reviews/{progressID}", New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP)

			req := httptest.NewRequest(http.MethodPost, "/admin/reviews/p-1", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithUserID(req.Context(), "admin-1"))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
