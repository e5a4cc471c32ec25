package models

import "time"

// ContentEntitlement право доступа к единице контента, полученное покупкой.
// После создания строка не изменяется: истечение вычисляется по ExpiresAt.
type ContentEntitlement struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ContentID      string    `json:"content_id"`
	TransactionRef string    `json:"transaction_ref"`
	AccessGranted  bool      `json:"access_granted"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// PaymentCallback уведомление платёжного провайдера об успешной оплате.
type PaymentCallback struct {
	TransactionRef string `json:"transaction_ref" validate:"required"`
	UserID         string `json:"user_id" validate:"required,uuid"`
	ContentID      string `json:"content_id" validate:"required,uuid"`
	Status         string `json:"status" validate:"required"`
}

// PaymentSucceeded значение PaymentCallback.Status для успешной оплаты.
const PaymentSucceeded = "succeeded"

// Library множества купленного контента и авторов, на которых оформлена подписка.
type Library struct {
	Purchased  []string `json:"purchased"`
	Subscribed []string `json:"subscribed"`
}

// AccessDecision результат проверки доступа к контенту.
type AccessDecision struct {
	ContentID string `json:"content_id"`
	Allowed   bool   `json:"allowed"`
	Via       string `json:"via,omitempty"`
}

const (
	AccessViaPurchase     = "purchase"
	AccessViaSubscription = "subscription"
	AccessViaFree         = "free"
)
