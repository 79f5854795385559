package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole роль пользователя админки.
type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
)

// User представляет пользователя админ-панели.
type User struct {
	ID           uuid.UUID `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	Role         UserRole  `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// LoginRequest - запрос на аутентификацию.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
