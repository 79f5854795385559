package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
)

// ContextKey - тип для ключей контекста.
type ContextKey string

const (
	UserIDKey    ContextKey = "user_id"
	UserLoginKey ContextKey = "user_login"
	UserRoleKey  ContextKey = "user_role"
)

// CookieName имя cookie с токеном админки.
const CookieName = "Authorization"

// JWTMiddleware проверяет токен из заголовка Authorization или из cookie.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				if cookie, err := c.Cookie(CookieName); err == nil {
					token = cookie.Value
				}
			}

			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(string(UserIDKey), claims.UserID)
			c.Set(string(UserLoginKey), claims.Login)
			c.Set(string(UserRoleKey), claims.Role)

			return next(c)
		}
	}
}

// RequireRole пропускает только пользователей с указанной ролью.
// Ставится после JWTMiddleware.
func RequireRole(role models.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got, ok := c.Get(string(UserRoleKey)).(models.UserRole)
			if !ok || got != role {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// bearerToken извлекает токен из значения "Bearer <token>".
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// GetUserIDFromContext извлекает ID пользователя из контекста.
func GetUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(string(UserIDKey)).(uuid.UUID)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	return userID, nil
}

// GetUserLoginFromContext извлекает логин пользователя из контекста.
func GetUserLoginFromContext(c echo.Context) (string, error) {
	login, ok := c.Get(string(UserLoginKey)).(string)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	return login, nil
}
