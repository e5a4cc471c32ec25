// Package library реализует HTTP-обработчик библиотеки пользователя: купленный контент
// и авторы, на которых оформлена активная подписка.
package library

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

// Service описывает чтение библиотеки.
type Service interface {
	Library(ctx context.Context, userID string) (*models.Library, error)
}

// Handler обрабатывает GET /library.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Библиотека пользователя
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Library}
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/library [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.library"

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

	lib, err := h.service.Library(r.Context(), userID)
	if err != nil {
		log.Error("failed to load library", sl.UserID(userID), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(lib))
}
