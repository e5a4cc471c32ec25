// Package reviews реализует HTTP-обработчик очереди проверки документов.
//
// Очередь отдаётся страницами по keyset-курсору (submitted_at, progress_id);
// курсор следующей страницы возвращается в поле next_cursor.
package reviews

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/services/review"
)

// Service описывает постраничное чтение очереди.
type Service interface {
	Page(ctx context.Context, operatorID string, after models.ReviewCursor, limit int) ([]models.PendingReview, *models.ReviewCursor, error)
}

// Handler обрабатывает GET /admin/reviews.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Page страница очереди проверки.
type Page struct {
	Items      []models.PendingReview `json:"items"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// ServeHTTP godoc
// @Summary Очередь проверки документов
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Курсор продолжения"
// @Param limit query int false "Размер страницы (до 200)"
// @Success 200 {object} response.Response{data=Page}
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/admin/reviews [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.reviews"

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

	after, err := review.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		log.Warn("bad cursor", sl.Err(err))
		response.RenderAppError(w, r, apperr.Validation(op, "invalid cursor"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			log.Warn("bad limit", slog.String("limit", raw))
			response.RenderAppError(w, r, apperr.Validation(op, "limit must be a positive integer"))
			return
		}
	}

	items, next, err := h.service.Page(r.Context(), operatorID, after, limit)
	if err != nil {
		log.Warn("failed to read review queue", slog.String("operator_id", operatorID), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}

	page := Page{Items: items}
	if next != nil {
		page.NextCursor = review.EncodeCursor(*next)
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}
