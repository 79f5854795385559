package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/romanchykov-webdev/pizzeria/internal/auth"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/storage"
)

// UserService определяет вход в админку.
type UserService interface {
	Login(ctx context.Context, login, password string) (*models.User, string, error)
	EnsureAdmin(ctx context.Context, login, password string) (bool, error)
}

// UserServiceImpl реализует UserService.
type UserServiceImpl struct {
	userStorage     UserStorage
	jwtSecret       string
	tokenExpiration time.Duration
}

// NewUserService создаёт новый экземпляр UserService.
func NewUserService(userStorage UserStorage, jwtSecret string, tokenExpiration time.Duration) *UserServiceImpl {
	return &UserServiceImpl{
		userStorage:     userStorage,
		jwtSecret:       jwtSecret,
		tokenExpiration: tokenExpiration,
	}
}

// Login аутентифицирует пользователя.
func (s *UserServiceImpl) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	if login == "" || password == "" {
		return nil, "", ErrEmptyCredentials
	}

	user, err := s.userStorage.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// EnsureAdmin создаёт администратора, если его ещё нет. Существующий пароль
// не перезаписывается. Возвращает true, если пользователь создан.
func (s *UserServiceImpl) EnsureAdmin(ctx context.Context, login, password string) (bool, error) {
	if login == "" || password == "" {
		return false, ErrEmptyCredentials
	}

	_, err := s.userStorage.GetByLogin(ctx, login)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Login:        login,
		PasswordHash: passwordHash,
		Role:         models.UserRoleAdmin,
	}
	if err := s.userStorage.Create(ctx, user); err != nil {
		// Другой экземпляр успел создать того же пользователя.
		if errors.Is(err, storage.ErrLoginExists) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create user: %w", err)
	}

	return true, nil
}

// generateToken генерирует JWT токен для пользователя.
func (s *UserServiceImpl) generateToken(user *models.User) (string, error) {
	exp := s.tokenExpiration
	if exp <= 0 {
		exp = 24 * time.Hour
	}
	return auth.GenerateToken(user, s.jwtSecret, exp)
}
