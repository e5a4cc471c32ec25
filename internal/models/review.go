package models

import "time"

// PendingReview запись очереди проверки с минимальными данными пользователя.
type PendingReview struct {
	ProgressID     string         `json:"progress_id"`
	UserID         string         `json:"user_id"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	AccountStatus  AccountStatus  `json:"account_status"`
	IdentityStatus IdentityStatus `json:"identity_status"`
	DocumentRef    string         `json:"document_ref"`
	SubmittedAt    time.Time      `json:"submitted_at"`
	// ReviewNotes заметки последнего решения; полный журнал отдаёт /admin/reviews/{id}/history.
	ReviewNotes       string `json:"review_notes,omitempty"`
	PreviousDecisions int    `json:"previous_decisions"`
}

// ReviewCursor позиция в очереди проверки (keyset). Нулевое значение означает начало.
type ReviewCursor struct {
	SubmittedAt time.Time
	ProgressID  string
}

// IsZero сообщает, указывает ли курсор на начало очереди.
func (c ReviewCursor) IsZero() bool {
	return c.SubmittedAt.IsZero() && c.ProgressID == ""
}

// ReviewDecision решение администратора, применяемое одной транзакцией.
type ReviewDecision struct {
	ProgressID     string
	ReviewerID     string
	IdentityStatus IdentityStatus
	Notes          string
	AccountStatus  AccountStatus
	ReviewedAt     time.Time
}

// SubmitReviewRequest тело запроса на вынесение решения.
type SubmitReviewRequest struct {
	IdentityStatus string `json:"identity_status" validate:"required"`
	Notes          string `json:"notes" validate:"max=2000"`
	AccountStatus  string `json:"account_status" validate:"required"`
}

// ReviewResult состояние после применения решения.
type ReviewResult struct {
	Progress      OnboardingProgress `json:"progress"`
	AccountStatus AccountStatus      `json:"account_status"`
}
