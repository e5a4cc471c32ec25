// Package create реализует HTTP-обработчик публикации контента автором.
//
// Запрос передаётся multipart-формой: title, description, price_cents, file, thumbnail.
// Публикация является действием с правами записи и проходит проверку статуса аккаунта.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/http/upload"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Service описывает публикацию контента.
type Service interface {
	Create(ctx context.Context, creatorID string, req models.CreateContentRequest) (*models.Content, error)
}

// Handler обрабатывает POST /content.
type Handler struct {
	log      *slog.Logger
	service  Service
	maxBytes int64
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, maxBytes int64) *Handler {
	return &Handler{log: log, service: service, maxBytes: maxBytes}
}

// ServeHTTP godoc
// @Summary Опубликовать контент
// @Tags Content
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Название"
// @Param description formData string false "Описание"
// @Param price_cents formData int true "Цена в копейках"
// @Param file formData file true "Файл контента"
// @Param thumbnail formData file true "Обложка"
// @Success 201 {object} response.Response{data=models.Content}
// @Failure 403 {object} response.ErrorResponse "Публикация запрещена статусом аккаунта"
// @Failure 409 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/content [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.create"

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

	if err := upload.Parse(w, r, h.maxBytes); err != nil {
		log.Warn("failed to parse multipart form", sl.Err(err))
		if errors.Is(err, upload.ErrTooLarge) {
			response.RenderError(w, r, http.StatusRequestEntityTooLarge, "upload is too large")
			return
		}
		response.RenderError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := models.CreateContentRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if raw := strings.TrimSpace(r.FormValue("price_cents")); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Warn("invalid price", slog.String("price_cents", raw))
			response.RenderAppError(w, r, apperr.Validation(op, "field price_cents must be an integer"))
			return
		}
		req.PriceCents = &price
	}

	var err error
	if req.File, err = upload.File(r, "file"); err != nil {
		log.Warn("failed to read file", sl.Err(err))
		response.RenderError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if req.Thumbnail, err = upload.File(r, "thumbnail"); err != nil {
		log.Warn("failed to read thumbnail", sl.Err(err))
		response.RenderError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	content, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		log.Warn("content was not published", sl.UserID(userID), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(content))
}
