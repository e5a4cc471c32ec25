// Package step реализует HTTP-обработчик отметки шагов онбординга:
// принятие условий и настройку выплат. Обе отметки монотонны.
package step

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Service описывает отметку шагов онбординга.
type Service interface {
	AcceptTerms(ctx context.Context, userID string) (*models.OnboardingView, error)
	CompletePaymentsSetup(ctx context.Context, userID string) (*models.OnboardingView, error)
}

// Handler обрабатывает POST /onboarding/{step}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отметить шаг онбординга
// @Tags Onboarding
// @Produce json
// @Security BearerAuth
// @Param step path string true "terms или payments"
// @Success 200 {object} response.Response{data=models.OnboardingView}
// @Failure 404 {object} response.ErrorResponse "Неизвестный шаг"
// @Router /api/v1/onboarding/{step} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.onboarding.step"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		log.Error("user identification missing")
		response.RenderError(w, r, http.StatusUnauthorized, "user identification missing")
		return
	}

	var (
		view *models.OnboardingView
		err  error
	)
	switch step := chi.URLParam(r, "step"); step {
	case "terms":
		view, err = h.service.AcceptTerms(r.Context(), userID)
	case "payments":
		view, err = h.service.CompletePaymentsSetup(r.Context(), userID)
	default:
		log.Warn("unknown onboarding step", slog.String("step", step))
		response.RenderError(w, r, http.StatusNotFound, "unknown onboarding step")
		return
	}
	if err != nil {
		log.Error("failed to mark onboarding step", sl.UserID(userID), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}

	log.Info("onboarding step marked", sl.UserID(userID), slog.Float64("completion", view.Completion))
	render.JSON(w, r, response.StatusOKWithData(view))
}
