// Package save реализует HTTP-обработчик создания и изменения тарифа автора.
//
// Без параметра {id} в пути создаётся новый тариф, с ним изменяется существующий.
// Изменять тариф может только автор, который его создал.
package save

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

// Service описывает изменение тарифов автора.
type Service interface {
	CreateTier(ctx context.Context, creatorID string, req models.TierRequest) (*models.SubscriptionTier, error)
	UpdateTier(ctx context.Context, creatorID, tierID string, req models.TierRequest) (*models.SubscriptionTier, error)
}

// Handler обрабатывает POST /tiers и PUT /tiers/{id}.
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
// @Summary Создать или изменить тариф
// @Tags Tiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TierRequest true "Тариф"
// @Success 200 {object} response.Response{data=models.SubscriptionTier}
// @Success 201 {object} response.Response{data=models.SubscriptionTier}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/tiers [post]
// @Router /api/v1/tiers/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tier.save"

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

	var req models.TierRequest
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

	var (
		tier *models.SubscriptionTier
		err  error
	)
	tierID := chi.URLParam(r, "id")
	if tierID == "" {
		tier, err = h.service.CreateTier(r.Context(), userID, req)
	} else {
		tier, err = h.service.UpdateTier(r.Context(), userID, tierID, req)
	}
	if err != nil {
		log.Warn("tier was not saved", sl.UserID(userID), slog.String("tier_id", tierID), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}

	log.Info("tier saved", slog.String("tier_id", tier.ID))
	if tierID == "" {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, response.StatusOKWithData(tier))
}
