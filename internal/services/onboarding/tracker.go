// Package onboarding ведёт прогресс квалификации автора: принятие условий,
// проверку личности и настройку выплат.
package onboarding

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// Store операции хранилища над записью онбординга.
type Store interface {
	GetProgress(ctx context.Context, userID string) (*models.OnboardingProgress, error)
	AcceptTerms(ctx context.Context, userID string, at time.Time) (*models.OnboardingProgress, error)
	CompletePaymentsSetup(ctx context.Context, userID string, at time.Time) (*models.OnboardingProgress, error)
}

// Tracker отдаёт прогресс онбординга и отмечает завершение шагов.
type Tracker struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// NewTracker создаёт Tracker.
func NewTracker(store Store, log *slog.Logger) *Tracker {
	return &Tracker{store: store, log: log, now: time.Now}
}

// View вычисляет признаки шагов и долю завершения по записи.
func View(p models.OnboardingProgress) models.OnboardingView {
	steps := make(map[models.Step]bool, len(models.Steps()))
	for _, s := range models.Steps() {
		steps[s] = p.StepDone(s)
	}
	return models.OnboardingView{
		Progress:   p,
		Steps:      steps,
		Completion: p.Completion(),
	}
}

// Get возвращает прогресс пользователя. Если записи ещё нет, возвращается
// прогресс с незавершёнными шагами; запись при этом не создаётся.
func (t *Tracker) Get(ctx context.Context, userID string) (*models.OnboardingView, error) {
	const op = "onboarding.Get"

	p, err := t.store.GetProgress(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		empty := models.NewOnboardingProgress(userID)
		p, err = &empty, nil
	}
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	v := View(*p)
	return &v, nil
}

// AcceptTerms отмечает принятие условий. Повторный вызов не меняет время принятия.
func (t *Tracker) AcceptTerms(ctx context.Context, userID string) (*models.OnboardingView, error) {
	return t.mark(ctx, "onboarding.AcceptTerms", userID, models.StepTerms, t.store.AcceptTerms)
}

// CompletePaymentsSetup отмечает настройку выплат.
func (t *Tracker) CompletePaymentsSetup(ctx context.Context, userID string) (*models.OnboardingView, error) {
	return t.mark(ctx, "onboarding.CompletePaymentsSetup", userID, models.StepPayments, t.store.CompletePaymentsSetup)
}

func (t *Tracker) mark(ctx context.Context, op, userID string, step models.Step,
	write func(context.Context, string, time.Time) (*models.OnboardingProgress, error)) (*models.OnboardingView, error) {
	p, err := write(ctx, userID, t.now().UTC())
	if err != nil {
		t.log.Error("failed to mark onboarding step",
			slog.String("op", op), sl.UserID(userID), slog.String("step", string(step)), sl.Err(err))
		return nil, apperr.Remote(op, err)
	}
	v := View(*p)
	return &v, nil
}
