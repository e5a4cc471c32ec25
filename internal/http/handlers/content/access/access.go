// Package access реализует HTTP-обработчик проверки доступа текущего пользователя к контенту.
package access

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

// Service описывает проверку доступа.
type Service interface {
	CanAccess(ctx context.Context, userID, contentID string) (*models.AccessDecision, error)
}

// Handler обрабатывает GET /content/{id}/access.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверить доступ к контенту
// @Description Вычисляет доступ заново при каждом запросе по текущим покупкам и подпискам.
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID контента"
// @Success 200 {object} response.Response{data=models.AccessDecision}
// @Failure 404 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/content/{id}/access [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.access"

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

	contentID := chi.URLParam(r, "id")
	decision, err := h.service.CanAccess(r.Context(), userID, contentID)
	if err != nil {
		log.Error("failed to resolve access", sl.UserID(userID), slog.String("content_id", contentID), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(decision))
}
