// Package accessgate реализует единую политику доступа к действиям с правами записи.
//
// Роль и статус аккаунта проверяются независимо; статус проверки личности в решении не участвует.
package accessgate

import "github.com/magabrotheeeer/content-marketplace/internal/models"

// Action действие, требующее проверки прав.
type Action string

const (
	ActionUploadContent  Action = "upload_content"
	ActionManageTiers    Action = "manage_tiers"
	ActionSubmitIdentity Action = "submit_identity"
	ActionReviewIdentity Action = "review_identity"
)

// Reason машиночитаемая причина отказа.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonRole          Reason = "role"
	ReasonPaused        Reason = "paused"
	ReasonHold          Reason = "hold"
	ReasonBlocked       Reason = "blocked"
	ReasonUnknownStatus Reason = "unknown_status"
	ReasonUnknownAction Reason = "unknown_action"
)

// Decision результат применения политики.
type Decision struct {
	Allowed bool
	Reason  Reason
	Message string
}

var allowedRoles = map[Action][]models.Role{
	ActionUploadContent:  {models.RoleCreator, models.RoleAdmin},
	ActionManageTiers:    {models.RoleCreator, models.RoleAdmin},
	ActionSubmitIdentity: {models.RoleCreator},
	ActionReviewIdentity: {models.RoleAdmin, models.RoleOwner},
}

// Authorize применяет политику к пользователю в его текущем состоянии.
func Authorize(u models.User, action Action) Decision {
	roles, ok := allowedRoles[action]
	if !ok {
		return deny(ReasonUnknownAction, "this action is not available")
	}
	if !hasRole(roles, u.Role) {
		return deny(ReasonRole, roleMessage(action))
	}

	switch u.AccountStatus {
	case models.AccountGoodStanding:
		return Decision{Allowed: true}
	case models.AccountPaused:
		return deny(ReasonPaused, "your account is paused; publishing is temporarily disabled")
	case models.AccountHold:
		return deny(ReasonHold, "your account is on hold pending review by our team")
	case models.AccountBlocked:
		return deny(ReasonBlocked, "your account has been blocked; contact support")
	default:
		return deny(ReasonUnknownStatus, "your account status does not allow this action")
	}
}

// UploadAllowed сообщает, может ли пользователь публиковать контент.
func UploadAllowed(u models.User) bool {
	return Authorize(u, ActionUploadContent).Allowed
}

func deny(reason Reason, msg string) Decision {
	return Decision{Reason: reason, Message: msg}
}

func hasRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func roleMessage(action Action) string {
	switch action {
	case ActionReviewIdentity:
		return "only administrators can review identity documents"
	case ActionSubmitIdentity:
		return "only creators submit identity documents"
	default:
		return "only creators and administrators can perform this action"
	}
}
