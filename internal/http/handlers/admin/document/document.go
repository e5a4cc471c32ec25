// Package document реализует HTTP-обработчик временной ссылки на документ,
// удостоверяющий личность. Ссылка действует ограниченное время.
package document

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
)

// Service описывает выдачу ссылки на документ.
type Service interface {
	ViewDocument(ctx context.Context, operatorID, ref string) (string, error)
}

// Handler обрабатывает GET /admin/documents?ref=.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Ссылка на документ
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param ref query string true "Ссылка на объект в хранилище"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/admin/documents [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.document"

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

	ref := r.URL.Query().Get("ref")
	url, err := h.service.ViewDocument(r.Context(), operatorID, ref)
	if err != nil {
		log.Warn("document link refused", slog.String("ref", ref), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}

	log.Info("document link issued", slog.String("operator_id", operatorID), slog.String("ref", ref))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"url": url,
	}))
}
