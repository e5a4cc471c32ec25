// Package progress реализует HTTP-обработчик чтения прогресса онбординга автора.
package progress

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Service описывает чтение прогресса онбординга.
type Service interface {
	Get(ctx context.Context, userID string) (*models.OnboardingView, error)
}

// Handler отдаёт прогресс, отметки шагов и долю выполнения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прогресс онбординга
// @Tags Onboarding
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.OnboardingView}
// @Failure 401 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/onboarding [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.onboarding.progress"

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

	view, err := h.service.Get(r.Context(), userID)
	if err != nil {
		log.Error("failed to read onboarding progress", sl.UserID(userID), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(view))
}
