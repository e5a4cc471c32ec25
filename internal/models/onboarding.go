package models

import (
	"fmt"
	"time"
)

// IdentityStatus состояние проверки документа, удостоверяющего личность автора.
type IdentityStatus string

const (
	IdentityPending          IdentityStatus = "pending"
	IdentitySubmitted        IdentityStatus = "submitted"
	IdentityUnderReview      IdentityStatus = "under_review"
	IdentityApproved         IdentityStatus = "approved"
	IdentityRejected         IdentityStatus = "rejected"
	IdentityResubmitRequired IdentityStatus = "resubmit_required"
)

// Valid сообщает, входит ли состояние в закрытый набор.
func (s IdentityStatus) Valid() bool {
	switch s {
	case IdentityPending, IdentitySubmitted, IdentityUnderReview,
		IdentityApproved, IdentityRejected, IdentityResubmitRequired:
		return true
	default:
		return false
	}
}

// ParseIdentityStatus преобразует строку в IdentityStatus.
func ParseIdentityStatus(s string) (IdentityStatus, error) {
	st := IdentityStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown identity status %q", s)
	}
	return st, nil
}

// Step идентификатор шага онбординга.
type Step string

const (
	StepTerms    Step = "terms"
	StepIdentity Step = "identity"
	StepPayments Step = "payments"
)

// Steps возвращает закрытый набор шагов онбординга.
func Steps() []Step {
	return []Step{StepTerms, StepIdentity, StepPayments}
}

// OnboardingProgress единственная запись о квалификации автора, одна на пользователя.
type OnboardingProgress struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"user_id"`
	TermsAccepted       bool           `json:"terms_accepted"`
	TermsAcceptedAt     *time.Time     `json:"terms_accepted_at,omitempty"`
	IdentityStatus      IdentityStatus `json:"identity_status"`
	IdentityDocumentRef string         `json:"identity_document_ref,omitempty"`
	IdentitySubmittedAt *time.Time     `json:"identity_submitted_at,omitempty"`
	IdentityReviewedAt  *time.Time     `json:"identity_reviewed_at,omitempty"`
	IdentityReviewNotes string         `json:"identity_review_notes,omitempty"`
	PaymentsSetup       bool           `json:"payments_setup"`
	PaymentsSetupAt     *time.Time     `json:"payments_setup_at,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// NewOnboardingProgress возвращает прогресс пользователя, для которого записи ещё нет.
func NewOnboardingProgress(userID string) OnboardingProgress {
	return OnboardingProgress{
		UserID:         userID,
		IdentityStatus: IdentityPending,
	}
}

// StepDone вычисляет признак завершения шага по полям записи.
func (p OnboardingProgress) StepDone(step Step) bool {
	switch step {
	case StepTerms:
		return p.TermsAccepted
	case StepIdentity:
		return p.IdentityStatus == IdentityApproved
	case StepPayments:
		return p.PaymentsSetup
	default:
		return false
	}
}

// Completion возвращает долю завершённых шагов.
func (p OnboardingProgress) Completion() float64 {
	steps := Steps()
	done := 0
	for _, s := range steps {
		if p.StepDone(s) {
			done++
		}
	}
	return float64(done) / float64(len(steps))
}

// OnboardingView прогресс онбординга вместе с вычисленными полями.
type OnboardingView struct {
	Progress   OnboardingProgress `json:"progress"`
	Steps      map[Step]bool      `json:"steps"`
	Completion float64            `json:"completion"`
}

// IdentityReviewEntry строка журнала загрузок и решений по документу.
type IdentityReviewEntry struct {
	ID            int64          `json:"id"`
	ProgressID    string         `json:"progress_id"`
	ActorID       string         `json:"actor_id"`
	FromStatus    IdentityStatus `json:"from_status"`
	ToStatus      IdentityStatus `json:"to_status"`
	Notes         string         `json:"notes,omitempty"`
	AccountStatus AccountStatus  `json:"account_status,omitempty"`
	DocumentRef   string         `json:"document_ref,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
