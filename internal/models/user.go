// Package models содержит доменные типы маркетплейса: пользователей, онбординг,
// контент, подписки и права доступа, а также структуры запросов API.
package models

import (
	"fmt"
	"time"
)

// Role роль пользователя на платформе.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleCreator  Role = "creator"
	RoleAdmin    Role = "admin"
	RoleOwner    Role = "owner"
)

// Valid сообщает, входит ли роль в закрытый набор.
func (r Role) Valid() bool {
	switch r {
	case RoleConsumer, RoleCreator, RoleAdmin, RoleOwner:
		return true
	default:
		return false
	}
}

// ParseRole преобразует строку в Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// AccountStatus административный статус аккаунта, не зависящий от верификации личности.
type AccountStatus string

const (
	AccountGoodStanding AccountStatus = "good_standing"
	AccountPaused       AccountStatus = "paused"
	AccountHold         AccountStatus = "hold"
	AccountBlocked      AccountStatus = "blocked"
)

// Valid сообщает, входит ли статус в закрытый набор.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountGoodStanding, AccountPaused, AccountHold, AccountBlocked:
		return true
	default:
		return false
	}
}

// ParseAccountStatus преобразует строку в AccountStatus.
func ParseAccountStatus(s string) (AccountStatus, error) {
	st := AccountStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown account status %q", s)
	}
	return st, nil
}

// User учётная запись пользователя.
type User struct {
	ID            string        `json:"id"`
	Email         string        `json:"email"`
	Username      string        `json:"username"`
	PasswordHash  string        `json:"-"`
	Role          Role          `json:"role"`
	AccountStatus AccountStatus `json:"account_status"`
	DisplayName   string        `json:"display_name,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// RegisterRequest данные регистрации. Роли admin и owner выдаются только вручную.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required,alphanum"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        string `json:"role" validate:"required,oneof=consumer creator"`
	DisplayName string `json:"display_name"`
}

// LoginRequest данные для входа.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
