// Package list реализует HTTP-обработчик каталога тарифов автора.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Service описывает чтение тарифов автора.
type Service interface {
	ListTiers(ctx context.Context, creatorID string) ([]models.SubscriptionTier, error)
}

// Handler обрабатывает GET /creators/{id}/tiers.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Тарифы автора
// @Tags Tiers
// @Produce json
// @Param id path string true "ID автора"
// @Success 200 {object} response.Response
// @Router /api/v1/creators/{id}/tiers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tier.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	creatorID := chi.URLParam(r, "id")
	tiers, err := h.service.ListTiers(r.Context(), creatorID)
	if err != nil {
		log.Error("failed to list tiers", slog.String("creator_id", creatorID), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tiers": tiers,
	}))
}
