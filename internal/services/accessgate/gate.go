package accessgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/metrics"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// UserReader читает пользователя из основного хранилища.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Gate проверяет право на действие по свежему состоянию пользователя.
// Роль и статус никогда не берутся из токена или кеша.
type Gate struct {
	users UserReader
	log   *slog.Logger
}

// New создаёт Gate.
func New(users UserReader, log *slog.Logger) *Gate {
	return &Gate{users: users, log: log}
}

// Check читает пользователя и применяет политику. При отказе возвращается
// ошибка вида Authorization с сообщением, соответствующим статусу аккаунта.
func (g *Gate) Check(ctx context.Context, userID string, action Action) (*models.User, error) {
	const op = "accessgate.Check"

	u, err := g.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(op, "user not found", err)
		}
		return nil, apperr.Remote(op, fmt.Errorf("load user: %w", err))
	}

	d := Authorize(*u, action)
	if !d.Allowed {
		metrics.GateRefusals.WithLabelValues(string(d.Reason)).Inc()
		g.log.Info("action refused",
			slog.String("op", op),
			sl.UserID(userID),
			slog.String("action", string(action)),
			slog.String("reason", string(d.Reason)),
		)
		return nil, apperr.Authorization(op, d.Message)
	}
	return u, nil
}
