package identity

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Upload(ctx context.Context, userID string, doc models.Upload) (*models.OnboardingProgress, error) {
	args := m.Called(ctx, userID, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnboardingProgress), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func documentRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("document", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/onboarding/identity", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req.WithContext(middlewarectx.WithUserID(req.Context(), "u-1"))
}

func TestIdentityHandler(t *testing.T) {
	pdf := []byte("%PDF-1.7 passport")
	isPDF := mock.MatchedBy(func(d models.Upload) bool { return d.Ext == "pdf" && bytes.Equal(d.Data, pdf) })

	tests := []struct {
		name       string
		filename   string
		data       []byte
		setupMocks func(*ServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name:     "submitted",
			filename: "passport.pdf",
			data:     pdf,
			setupMocks: func(m *ServiceMock) {
				m.On("Upload", mock.Anything, "u-1", isPDF).Return(&models.OnboardingProgress{
					UserID:              "u-1",
					IdentityStatus:      models.IdentitySubmitted,
					IdentityDocumentRef: "identity/u-1/20240501120000-0a1b2c3d.pdf",
				}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"identity_status":"submitted"`,
		},
		{
			name: "missing document reaches validation",
			setupMocks: func(m *ServiceMock) {
				m.On("Upload", mock.Anything, "u-1", models.Upload{}).
					Return(nil, apperr.Validation("identity.Upload", "missing required fields: document")).Once()
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `missing required fields: document`,
		},
		{
			name:     "state refuses upload",
			filename: "passport.pdf",
			data:     pdf,
			setupMocks: func(m *ServiceMock) {
				m.On("Upload", mock.Anything, "u-1", isPDF).
					Return(nil, apperr.Conflict("identity.Upload", "document already submitted and awaiting review")).Once()
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:     "second collision",
			filename: "passport.pdf",
			data:     pdf,
			setupMocks: func(m *ServiceMock) {
				m.On("Upload", mock.Anything, "u-1", isPDF).
					Return(nil, apperr.StorageConflict("identity.store", "storage name collision", errors.New("exists"))).Once()
			},
			wantStatus: http.StatusConflict,
			wantBody:   `"kind":"storage_conflict"`,
		},
		{
			name:       "too large",
			filename:   "passport.pdf",
			data:       bytes.Repeat([]byte("x"), 8192),
			setupMocks: func(_ *ServiceMock) {},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMocks(svc)

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc, 4096).ServeHTTP(rec, documentRequest(t, tt.filename, tt.data))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
