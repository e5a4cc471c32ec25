// Package auth содержит логику регистрации, входа и создания учётной записи владельца.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/password"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)

	// GetUserByUsername возвращает пользователя по имени или ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service отвечает за регистрацию и выдачу JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает пользователя с ролью consumer или creator в статусе good_standing.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "auth.Register"

	role, err := models.ParseRole(req.Role)
	if err != nil || (role != models.RoleConsumer && role != models.RoleCreator) {
		return nil, apperr.Validation(op, "role must be consumer or creator")
	}
	return s.create(ctx, op, models.User{
		Email:       req.Email,
		Username:    req.Username,
		Role:        role,
		DisplayName: req.DisplayName,
	}, req.Password)
}

func (s *Service) create(ctx context.Context, op string, u models.User, rawPassword string) (*models.User, error) {
	hashed, err := password.GetHash(rawPassword)
	if errors.Is(err, password.ErrTooLong) {
		return nil, apperr.Validation(op, "password is too long")
	}
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	u.PasswordHash = hashed
	u.AccountStatus = models.AccountGoodStanding

	created, err := s.users.CreateUser(ctx, u)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, apperr.Conflict(op, "username or email is already taken")
	}
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	return created, nil
}

// Login проверяет пароль пользователя и выдаёт JWT.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (string, *models.User, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, apperr.Authorization(op, "invalid credentials")
	}
	if err != nil {
		return "", nil, apperr.Remote(op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, apperr.Authorization(op, "invalid credentials")
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return "", nil, apperr.Remote(op, err)
	}
	return token, user, nil
}

// EnsureOwner создаёт учётную запись владельца платформы, если её ещё нет.
// Роли owner и admin не выдаются через регистрацию.
func (s *Service) EnsureOwner(ctx context.Context, email, username, rawPassword string) (bool, error) {
	const op = "auth.EnsureOwner"

	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, apperr.Remote(op, err)
	}

	if _, err = s.create(ctx, op, models.User{
		Email:    email,
		Username: username,
		Role:     models.RoleOwner,
	}, rawPassword); err != nil {
		return false, err
	}
	s.log.Info("owner account created", slog.String("op", op), slog.String("username", username))
	return true, nil
}
