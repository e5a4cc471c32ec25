// Package history реализует HTTP-обработчик журнала загрузок и решений по документу.
package history

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

// Service описывает чтение журнала.
type Service interface {
	History(ctx context.Context, operatorID, progressID string) ([]models.IdentityReviewEntry, error)
}

// Handler обрабатывает GET /admin/reviews/{progressID}/history.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Журнал проверки
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param progressID path string true "ID записи онбординга"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/reviews/{progressID}/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.history"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	operatorID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		log.Error("user identification missing")
		response.RenderError(w, r, http.StatusUnauthorized, "user identification missing")
		return
	}

	progressID := chi.URLParam(r, "progressID")
	entries, err := h.service.History(r.Context(), operatorID, progressID)
	if err != nil {
		log.Warn("failed to read review history", slog.String("progress_id", progressID), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"entries": entries,
	}))
}
