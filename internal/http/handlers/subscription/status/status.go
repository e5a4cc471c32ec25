// Package status реализует HTTP-обработчик отмены и возобновления подписки.
//
// Отмена закрывает доступ к контенту автора сразу, без льготного периода.
package status

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

// Service описывает изменение статуса подписки её владельцем.
type Service interface {
	Cancel(ctx context.Context, userID, subscriptionID string) (*models.Subscription, error)
	Reactivate(ctx context.Context, userID, subscriptionID string) (*models.Subscription, error)
}

// Handler обрабатывает POST /subscriptions/{id}/{action}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить или возобновить подписку
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID подписки"
// @Param action path string true "cancel или reactivate"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Переход недопустим"
// @Router /api/v1/subscriptions/{id}/{action} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"

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

	id := chi.URLParam(r, "id")
	action := chi.URLParam(r, "action")

	var (
		sub     *models.Subscription
		err     error
		message string
	)
	switch action {
	case "cancel":
		sub, err = h.service.Cancel(r.Context(), userID, id)
		message = "subscription cancelled; access to the creator's content ends now"
	case "reactivate":
		sub, err = h.service.Reactivate(r.Context(), userID, id)
		message = "subscription reactivated"
	default:
		log.Warn("unknown subscription action", slog.String("action", action))
		response.RenderError(w, r, http.StatusNotFound, "unknown subscription action")
		return
	}
	if err != nil {
		log.Warn("subscription status not changed", sl.UserID(userID), slog.String("subscription_id", id), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}

	log.Info("subscription status changed", slog.String("subscription_id", id), slog.String("status", string(sub.Status)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": sub,
		"message":      message,
	}))
}
