package subscription

import (
	"fmt"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Action действие подписчика над подпиской.
type Action string

const (
	ActionCancel     Action = "cancel"
	ActionReactivate Action = "reactivate"
)

// NextStatus возвращает статус подписки после действия.
//
//	active          --cancel-->     cancelled
//	trial           --cancel-->     cancelled
//	trial           --reactivate--> active
//	cancelled       --reactivate--> active
//	expired         --reactivate--> active
func NextStatus(from models.SubscriptionStatus, action Action) (models.SubscriptionStatus, error) {
	switch from {
	case models.SubscriptionActive:
		if action == ActionCancel {
			return models.SubscriptionCancelled, nil
		}
	case models.SubscriptionTrial:
		switch action {
		case ActionCancel:
			return models.SubscriptionCancelled, nil
		case ActionReactivate:
			return models.SubscriptionActive, nil
		}
	case models.SubscriptionCancelled, models.SubscriptionExpired:
		if action == ActionReactivate {
			return models.SubscriptionActive, nil
		}
	default:
		return "", fmt.Errorf("unknown subscription status %q", from)
	}
	return "", fmt.Errorf("cannot %s a subscription that is %s", action, from)
}
