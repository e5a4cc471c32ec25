// Package identity реализует HTTP-обработчик загрузки документа, удостоверяющего личность.
//
// Документ передаётся multipart-полем "document"; расширение берётся из поля
// "document_ext" или из имени файла. После сохранения статус верификации
// становится submitted, и запись попадает в очередь проверки администраторов.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/http/upload"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Service описывает загрузку документа.
type Service interface {
	Upload(ctx context.Context, userID string, doc models.Upload) (*models.OnboardingProgress, error)
}

// Handler обрабатывает POST /onboarding/identity.
type Handler struct {
	log      *slog.Logger
	service  Service
	maxBytes int64
}

// New создает новый Handler с ограничением размера запроса maxBytes.
func New(log *slog.Logger, service Service, maxBytes int64) *Handler {
	return &Handler{log: log, service: service, maxBytes: maxBytes}
}

// ServeHTTP godoc
// @Summary Загрузить документ для верификации
// @Tags Onboarding
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param document formData file true "Документ (png, jpg, jpeg, webp, pdf)"
// @Param document_ext formData string false "Расширение документа"
// @Success 200 {object} response.Response{data=models.OnboardingProgress}
// @Failure 403 {object} response.ErrorResponse "Действие запрещено"
// @Failure 409 {object} response.ErrorResponse "Загрузка недоступна в текущем статусе или коллизия имени"
// @Failure 413 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/onboarding/identity [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.onboarding.identity"

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
			response.RenderError(w, r, http.StatusRequestEntityTooLarge, "document is too large")
			return
		}
		response.RenderError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	doc, err := upload.File(r, "document")
	if err != nil {
		log.Warn("failed to read document", sl.Err(err))
		response.RenderError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if doc == nil {
		doc = &models.Upload{}
	}

	progress, err := h.service.Upload(r.Context(), userID, *doc)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindRemoteService {
			log.Error("identity upload failed", sl.UserID(userID), sl.Err(err))
		} else {
			log.Warn("identity upload refused", sl.UserID(userID), sl.Err(err))
		}
		response.RenderAppError(w, r, err)
		return
	}

	log.Info("identity document submitted", sl.UserID(userID), slog.String("ref", progress.IdentityDocumentRef))
	render.JSON(w, r, response.StatusOKWithData(progress))
}
