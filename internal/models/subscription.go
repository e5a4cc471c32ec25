package models

import (
	"fmt"
	"time"
)

// SubscriptionStatus состояние регулярной подписки.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionTrial     SubscriptionStatus = "trial"
)

// Valid сообщает, входит ли статус в закрытый набор.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionCancelled, SubscriptionExpired, SubscriptionTrial:
		return true
	default:
		return false
	}
}

// ParseSubscriptionStatus преобразует строку в SubscriptionStatus.
func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	st := SubscriptionStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown subscription status %q", s)
	}
	return st, nil
}

// Subscription подписка пользователя на автора.
type Subscription struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	CreatorID       string             `json:"creator_id"`
	TierID          string             `json:"tier_id"`
	Status          SubscriptionStatus `json:"status"`
	StartDate       time.Time          `json:"start_date"`
	NextBillingDate time.Time          `json:"next_billing_date"`
	AmountCents     int64              `json:"amount_cents"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// SubscriptionTier тарифный план автора.
type SubscriptionTier struct {
	ID              string    `json:"id"`
	CreatorID       string    `json:"creator_id"`
	Name            string    `json:"name"`
	PriceCents      int64     `json:"price_cents"`
	Benefits        []string  `json:"benefits"`
	IsActive        bool      `json:"is_active"`
	Popular         bool      `json:"popular"`
	SubscriberCount int       `json:"subscriber_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TierRequest данные для создания или изменения тарифа.
type TierRequest struct {
	Name       string   `json:"name" validate:"required,max=80"`
	PriceCents *int64   `json:"price_cents" validate:"required,min=0"`
	Benefits   []string `json:"benefits" validate:"max=20,dive,required,max=200"`
	IsActive   *bool    `json:"is_active"`
	Popular    bool     `json:"popular"`
}

// SubscribeRequest запрос на оформление подписки.
type SubscribeRequest struct {
	TierID string `json:"tier_id" validate:"required,uuid"`
}
