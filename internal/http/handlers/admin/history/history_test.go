package history

import (
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
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) History(ctx context.Context, operatorID, progressID string) ([]models.IdentityReviewEntry, error) {
	args := m.Called(ctx, operatorID, progressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.IdentityReviewEntry), args.Error(1)
}

func TestHistoryHandler(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("History", mock.Anything, "admin-1", "p-1").Return([]models.IdentityReviewEntry{
		{ID: 1, ToStatus: models.IdentitySubmitted, DocumentRef: "identity/u-1/a.pdf"},
		{ID: 2, FromStatus: models.IdentitySubmitted, ToStatus: models.IdentityResubmitRequired, Notes: "blurry photo"},
	}, nil).Once()

	r := chi.NewRouter()
	r.Get("/admin/reviews/{progressID}/history", New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP)

	req := httptest.NewRequest(http.MethodGet, "/admin/reviews/p-1/history", nil)
	req = req.WithContext(middlewarectx.WithUserID(req.Context(), "admin-1"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"notes":"blurry photo"`)
	svc.AssertExpectations(t)
}
