// Package callback реализует HTTP-обработчик уведомления платёжного провайдера
// об успешной оплате контента.
//
// Тело запроса подписывается HMAC-SHA256 общим секретом; подпись в hex
// передаётся в заголовке X-Signature. Повторное уведомление с той же
// transaction_ref не создаёт второе право доступа.
package callback

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/content-marketplace/internal/http/response"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// SignatureHeader заголовок с подписью тела запроса.
const SignatureHeader = "X-Signature"

const maxBodyBytes = 64 << 10

// Service описывает выдачу права доступа по оплате.
type Service interface {
	GrantPurchase(ctx context.Context, cb models.PaymentCallback) (*models.ContentEntitlement, bool, error)
}

// Handler обрабатывает POST /payments/callback.
type Handler struct {
	log      *slog.Logger
	service  Service
	secret   []byte
	validate *validator.Validate
}

// New создает новый Handler с секретом для проверки подписи.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		secret:   []byte(secret),
		validate: validator.New(),
	}
}

// Sign возвращает подпись тела в формате заголовка X-Signature.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (h *Handler) verifySignature(body []byte, signature string) bool {
	if len(h.secret) == 0 || signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(h.secret, body)), []byte(signature))
}

// ServeHTTP godoc
// @Summary Уведомление об успешной оплате
// @Tags Payments
// @Accept json
// @Produce json
// @Param X-Signature header string true "HMAC-SHA256 тела запроса в hex"
// @Param request body models.PaymentCallback true "Уведомление"
// @Success 201 {object} response.Response{data=models.ContentEntitlement} "Доступ выдан"
// @Success 200 {object} response.Response{data=models.ContentEntitlement} "Повторное уведомление"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/payments/callback [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.callback"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read callback body", sl.Err(err))
		response.RenderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.verifySignature(body, r.Header.Get(SignatureHeader)) {
		log.Warn("invalid or missing callback signature")
		response.RenderError(w, r, http.StatusUnauthorized, "invalid signature")
		return
	}

	var cb models.PaymentCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		log.Error("failed to decode callback", sl.Err(err))
		response.RenderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(cb); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.RenderValidation(w, r, err)
		return
	}

	ent, created, err := h.service.GrantPurchase(r.Context(), cb)
	if err != nil {
		log.Error("failed to grant purchase", slog.String("transaction_ref", cb.TransactionRef), sl.Err(err))
		response.RenderAppError(w, r, err)
		return
	}

	if created {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, response.StatusOKWithData(ent))
}
