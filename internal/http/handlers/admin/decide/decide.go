// Package decide реализует HTTP-обработчик решения администратора по документу.
//
// Решение задаёт статус проверки, заметки и статус аккаунта; всё записывается
// одной транзакцией. Ошибка записи возвращается пользователю как есть.
package decide

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Service описывает применение решения.
type Service interface {
	SubmitReview(ctx context.Context, operatorID, progressID string, req models.SubmitReviewRequest) (*models.ReviewResult, error)
}

// Handler обрабатывает POST /admin/reviews/{progressID}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вынести решение по документу
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param progressID path string true "ID записи онбординга"
// @Param request body models.SubmitReviewRequest true "Решение"
// @Success 200 {object} response.Response{data=models.ReviewResult}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Переход недопустим"
// @Failure 422 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse "Ошибка записи, изменения откатены"
// @Router /api/v1/admin/reviews/{progressID} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.decide"

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

	var req models.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.RenderValidation(w, r, err)
		return
	}

	progressID := chi.URLParam(r, "progressID")
	result, err := h.service.SubmitReview(r.Context(), operatorID, progressID, req)
	if err != nil {
		log.Warn("review was not applied", slog.String("progress_id", progressID), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}

	log.Info("review applied",
		slog.String("progress_id", progressID),
		slog.String("identity_status", string(result.Progress.IdentityStatus)),
		slog.String("account_status", string(result.AccountStatus)),
	)
	render.JSON(w, r, response.StatusOKWithData(result))
}
