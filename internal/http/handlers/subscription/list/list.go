// Package list реализует HTTP-обработчик списка подписок текущего пользователя.
package list

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

// Service описывает чтение подписок пользователя.
type Service interface {
	List(ctx context.Context, userID string) ([]models.Subscription, error)
}

// Handler обрабатывает GET /subscriptions.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подписки пользователя
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

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

	subs, err := h.service.List(r.Context(), userID)
	if err != nil {
		log.Error("failed to list subscriptions", sl.UserID(userID), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}

	log.Info("success to list subscriptions", slog.Int("count", len(subs)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscriptions": subs,
	}))
}
