package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

const userColumns = `id, email, username, password_hash, role, account_status, display_name, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var role, status string
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role, &status,
		&u.DisplayName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.AccountStatus = models.AccountStatus(status)
	return &u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его с присвоенным id.
func (s *Storage) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.AccountStatus == "" {
		u.AccountStatus = models.AccountGoodStanding
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, username, password_hash, role, account_status, display_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		u.Email, u.Username, u.PasswordHash, string(u.Role), string(u.AccountStatus), u.DisplayName)
	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetUserByID читает пользователя напрямую из БД, без кеша.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUserByUsername ищет пользователя по имени для входа.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}
