package callback

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) GrantPurchase(ctx context.Context, cb models.PaymentCallback) (*models.ContentEntitlement, bool, error) {
	args := m.Called(ctx, cb)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.ContentEntitlement), args.Bool(1), args.Error(2)
}

const (
	secret    = "whsec_test"
	userID    = "6f1c2a3e-9a0b-4c1d-8e2f-3a4b5c6d7e8f"
	contentID = "0b7e8c5d-1f2a-4b3c-9d4e-5f6a7b8c9d0e"
)

func TestCallbackHandler(t *testing.T) {
	body := []byte(`{"transaction_ref":"tx-1","user_id":"` + userID + `","content_id":"` + contentID + `","status":"succeeded"}`)
	cb := models.PaymentCallback{TransactionRef: "tx-1", UserID: userID, ContentID: contentID, Status: "succeeded"}
	ent := &models.ContentEntitlement{ID: "e-1", UserID: userID, ContentID: contentID, AccessGranted: true,
		ExpiresAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}

	tests := []struct {
		name       string
		body       []byte
		signature  string
		signed     bool
		setupMocks func(*ServiceMock)
		wantStatus int
	}{
		{
			name:      "granted",
			body:      body,
			signed:    true,
			setupMocks: func(m *ServiceMock) {
				m.On("GrantPurchase", mock.Anything, cb).Return(ent, true, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:      "duplicate delivery",
			body:      body,
			signed:    true,
			setupMocks: func(m *ServiceMock) {
				m.On("GrantPurchase", mock.Anything, cb).Return(ent, false, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing signature",
			body:       body,
			setupMocks: func(_ *ServiceMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "signature of another body",
			body:       body,
			signature:  Sign([]byte(secret), []byte(`{}`)),
			setupMocks: func(_ *ServiceMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid user id",
			body:       []byte(`{"transaction_ref":"tx-1","user_id":"nope","content_id":"` + contentID + `","status":"succeeded"}`),
			signed:     true,
			setupMocks: func(_ *ServiceMock) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:      "failed payment",
			body:      []byte(`{"transaction_ref":"tx-2","user_id":"` + userID + `","content_id":"` + contentID + `","status":"canceled"}`),
			signed:    true,
			setupMocks: func(m *ServiceMock) {
				m.On("GrantPurchase", mock.Anything, mock.Anything).
					Return(nil, false, apperr.Validation("entitlement.GrantPurchase", `payment status "canceled" does not grant access`)).Once()
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMocks(svc)

			signature := tt.signature
			if tt.signed {
				signature = Sign([]byte(secret), tt.body)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewReader(tt.body))
			if signature != "" {
				req.Header.Set(SignatureHeader, signature)
			}
			rec := httptest.NewRecorder()
			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, secret).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCallbackHandler_EmptySecretRejectsEverything(t *testing.T) {
	body := []byte(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, Sign(nil, body))
	rec := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), new(ServiceMock), "").ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
