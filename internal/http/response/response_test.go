package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
)

func TestStatusOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := StatusOKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something went wrong", resp.Error)
	assert.Empty(t, resp.Kind)
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Name  string `validate:"required,alphanum"`
		Email string `validate:"email"`
		Role  string `validate:"oneof=consumer creator"`
	}

	err := validator.New().Struct(TestStruct{Name: "!!!", Email: "nope", Role: "admin"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "validation", resp.Kind)
	assert.Contains(t, resp.Error, "field Name can contain only numbers and letters")
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Role must be one of: consumer creator")
}

func TestRenderAppError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantError  string
	}{
		{
			name:       "validation",
			err:        apperr.Validation("op", "missing required fields: title"),
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "validation",
			wantError:  "missing required fields: title",
		},
		{
			name:       "authorization",
			err:        apperr.Authorization("op", "your account is on hold pending review by our team"),
			wantStatus: http.StatusForbidden,
			wantKind:   "authorization",
			wantError:  "your account is on hold pending review by our team",
		},
		{
			name:       "remote error text is passed through",
			err:        apperr.Remote("op", errors.New("storage.CommitReview: connection reset by peer")),
			wantStatus: http.StatusBadGateway,
			wantKind:   "remote_service",
			wantError:  "storage.CommitReview: connection reset by peer",
		},
		{
			name:       "plain error is hidden",
			err:        errors.New("pq: secret details"),
			wantStatus: http.StatusInternalServerError,
			wantKind:   "unknown",
			wantError:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			RenderAppError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, StatusError, got.Status)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantError, got.Error)
		})
	}
}

func TestRenderValidation_NonValidatorError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	RenderValidation(rec, req, errors.New("bad tag"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
