package models

import "time"

// ExchangeMarketplace exchange RabbitMQ для доменных событий.
const ExchangeMarketplace = "marketplace"

// Ключи маршрутизации доменных событий.
const (
	RoutingIdentitySubmitted  = "identity.submitted"
	RoutingReviewDecided      = "identity.reviewed"
	RoutingEntitlementGranted = "entitlement.granted"
)

// OutboxEvent событие, записанное в той же транзакции, что и изменение состояния.
type OutboxEvent struct {
	ID         int64
	Exchange   string
	RoutingKey string
	Payload    []byte
	Attempts   int
	CreatedAt  time.Time
}

// IdentitySubmittedEvent публикуется после успешной загрузки документа.
type IdentitySubmittedEvent struct {
	UserID      string    `json:"user_id"`
	ProgressID  string    `json:"progress_id"`
	DocumentRef string    `json:"document_ref"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ReviewDecidedEvent публикуется после фиксации решения администратора.
type ReviewDecidedEvent struct {
	UserID         string         `json:"user_id"`
	ProgressID     string         `json:"progress_id"`
	ReviewerID     string         `json:"reviewer_id"`
	IdentityStatus IdentityStatus `json:"identity_status"`
	AccountStatus  AccountStatus  `json:"account_status"`
	ReviewedAt     time.Time      `json:"reviewed_at"`
}

// EntitlementGrantedEvent публикуется после выдачи доступа по покупке.
type EntitlementGrantedEvent struct {
	UserID         string    `json:"user_id"`
	ContentID      string    `json:"content_id"`
	TransactionRef string    `json:"transaction_ref"`
	ExpiresAt      time.Time `json:"expires_at"`
}
