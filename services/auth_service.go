package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/repositories"
)

const minPasswordLength = 8

type AuthService interface {
	// Register создаёт пользователя. Пока пользователей нет, регистрация открыта
	// и первый пользователь становится администратором; дальше - только admin.
	Register(ctx context.Context, input RegisterInput, callerRole models.UserRole) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

type RegisterInput struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role,omitempty"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput, callerRole models.UserRole) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidationFailed)
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := input.Role
	if callerRole == models.RoleAdmin {
		switch {
		case role == "":
			role = models.RoleOperator
		case role != models.RoleAdmin && role != models.RoleOperator:
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, role)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if callerRole != models.RoleAdmin {
		// Без администратора можно создать только первого пользователя;
		// проверка пустоты и вставка выполняются репозиторием атомарно.
		created, err := s.userRepo.CreateFirstAdmin(ctx, user)
		if err != nil {
			return nil, mapUserCreateError(err)
		}
		if !created {
			return nil, ErrForbiddenOperation
		}
		return user, nil
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, mapUserCreateError(err)
	}
	return user, nil
}

func mapUserCreateError(err error) error {
	if errors.Is(err, repositories.ErrUserUsernameConflict) {
		return ErrUsernameConflict
	}
	return fmt.Errorf("failed to create user: %w", err)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return user, nil
}
