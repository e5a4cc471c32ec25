package marketplace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type stubOnboarding struct{ calls []string }

func (s *stubOnboarding) Get(_ context.Context, userID string) (*models.OnboardingView, error) {
	s.calls = append(s.calls, "get:"+userID)
	p := models.NewOnboardingProgress(userID)
	return &models.OnboardingView{Progress: p, Steps: map[models.Step]bool{}}, nil
}

func (s *stubOnboarding) AcceptTerms(_ context.Context, userID string) (*models.OnboardingView, error) {
	s.calls = append(s.calls, "terms:"+userID)
	p := models.NewOnboardingProgress(userID)
	p.TermsAccepted = true
	return &models.OnboardingView{Progress: p, Steps: map[models.Step]bool{models.StepTerms: true}}, nil
}

func (s *stubOnboarding) CompletePaymentsSetup(_ context.Context, userID string) (*models.OnboardingView, error) {
	s.calls = append(s.calls, "payments:"+userID)
	return &models.OnboardingView{Progress: models.NewOnboardingProgress(userID)}, nil
}

func newTestRouter(t *testing.T, onboarding OnboardingService, db stubPinger) (http.Handler, *jwt.MakerImpl) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwt.NewJWTMaker("routes-secret", time.Hour)

	r := chi.NewRouter()
	RegisterRoutes(r, logger, Services{
		Onboarding: onboarding,
		DB:         db,
		Tokens:     tokens,
		Limiter:    middlewarectx.NewUserLimiter(60, 1),
	}, RouteOptions{
		AllowedOrigins: []string{"https://app.example.com"},
		MaxUploadBytes: 1 << 20,
	})
	return r, tokens
}

func TestRoutes_ProtectedRequireToken(t *testing.T) {
	router, _ := newTestRouter(t, &stubOnboarding{}, stubPinger{})

	for _, target := range []string{
		"/api/v1/onboarding",
		"/api/v1/library",
		"/api/v1/subscriptions",
		"/api/v1/admin/reviews",
	} {
		t.Run(target, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRoutes_OnboardingWithToken(t *testing.T) {
	onboarding := &stubOnboarding{}
	router, tokens := newTestRouter(t, onboarding, stubPinger{})

	token, err := tokens.GenerateToken("user-1", string(models.RoleCreator))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/onboarding", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/onboarding/terms", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, []string{"get:user-1", "terms:user-1"}, onboarding.calls)
}

func TestRoutes_Health(t *testing.T) {
	router, _ := newTestRouter(t, &stubOnboarding{}, stubPinger{})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	router, _ = newTestRouter(t, &stubOnboarding{}, stubPinger{err: errors.New("db down")})
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRoutes_MetricsAndCORS(t *testing.T) {
	router, _ := newTestRouter(t, &stubOnboarding{}, stubPinger{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}
