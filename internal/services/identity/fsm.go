package identity

import (
	"errors"
	"fmt"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Event событие конвейера проверки личности.
type Event string

const (
	EventUpload          Event = "upload"
	EventOpenReview      Event = "open_review"
	EventApprove         Event = "approve"
	EventReject          Event = "reject"
	EventRequestResubmit Event = "request_resubmit"
)

// ErrTransition возвращается, если событие недопустимо в текущем состоянии.
var ErrTransition = errors.New("identity: transition not allowed")

// Next возвращает состояние после события.
//
//	pending           --upload--> submitted
//	submitted         --open_review--> under_review
//	submitted         --approve|reject|request_resubmit--> approved|rejected|resubmit_required
//	under_review      --approve|reject|request_resubmit--> approved|rejected|resubmit_required
//	approved          --reject|request_resubmit--> rejected|resubmit_required
//	rejected          --upload--> submitted
//	resubmit_required --upload--> submitted
func Next(from models.IdentityStatus, ev Event) (models.IdentityStatus, error) {
	switch from {
	case models.IdentityPending, models.IdentityRejected, models.IdentityResubmitRequired:
		if ev == EventUpload {
			return models.IdentitySubmitted, nil
		}
	case models.IdentitySubmitted:
		if ev == EventOpenReview {
			return models.IdentityUnderReview, nil
		}
		if to, ok := decision(ev); ok {
			return to, nil
		}
	case models.IdentityUnderReview:
		if to, ok := decision(ev); ok {
			return to, nil
		}
	case models.IdentityApproved:
		// Повторная проверка одобренного автора начинается с решения администратора.
		if ev == EventReject || ev == EventRequestResubmit {
			to, _ := decision(ev)
			return to, nil
		}
	default:
		return "", fmt.Errorf("%w: unknown state %q", ErrTransition, from)
	}
	return "", fmt.Errorf("%w: %s from %s", ErrTransition, ev, from)
}

func decision(ev Event) (models.IdentityStatus, bool) {
	switch ev {
	case EventApprove:
		return models.IdentityApproved, true
	case EventReject:
		return models.IdentityRejected, true
	case EventRequestResubmit:
		return models.IdentityResubmitRequired, true
	default:
		return "", false
	}
}

// CanUpload сообщает, принимается ли новый документ в текущем состоянии.
func CanUpload(from models.IdentityStatus) bool {
	_, err := Next(from, EventUpload)
	return err == nil
}

// eventForTarget сопоставляет выбранный администратором статус событию.
func eventForTarget(target models.IdentityStatus) (Event, bool) {
	switch target {
	case models.IdentityUnderReview:
		return EventOpenReview, true
	case models.IdentityApproved:
		return EventApprove, true
	case models.IdentityRejected:
		return EventReject, true
	case models.IdentityResubmitRequired:
		return EventRequestResubmit, true
	default:
		return "", false
	}
}

// Review вычисляет состояние после решения администратора, выбравшего target.
// Повторный выбор текущего статуса не меняет состояние. pending и submitted
// администратор выбрать не может.
func Review(from, target models.IdentityStatus) (models.IdentityStatus, error) {
	ev, ok := eventForTarget(target)
	if !ok {
		return "", fmt.Errorf("%w: %s cannot be set by a reviewer", ErrTransition, target)
	}
	if from == target {
		return from, nil
	}
	return Next(from, ev)
}

// ReviewerSettable сообщает, может ли администратор выбрать этот статус.
func ReviewerSettable(target models.IdentityStatus) bool {
	_, ok := eventForTarget(target)
	return ok
}
