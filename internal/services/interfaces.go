package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/storage"
)

// OrderStorage определяет интерфейс для работы с заказами.
type OrderStorage interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetBrief(ctx context.Context, id string) (*models.OrderBrief, error)
	MarkPaid(ctx context.Context, id, paymentID string) error
	Transition(ctx context.Context, id string, upd storage.TransitionUpdate) (*models.OrderBrief, error)
	List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
	Delete(ctx context.Context, id string) error
	ListAwaitingKitchen(ctx context.Context, createdBefore time.Time) ([]*models.Order, error)
	MarkReminded(ctx context.Context, id string) error
}

// CartStorage определяет интерфейс для работы с корзинами.
type CartStorage interface {
	ClearByToken(ctx context.Context, token string) error
}

// UserStorage определяет интерфейс для работы с пользователями.
type UserStorage interface {
	Create(ctx context.Context, user *models.User) error
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Notifier доставляет сообщения о заказах персоналу.
type Notifier interface {
	NotifyNewOrder(ctx context.Context, order *models.Order) error
	NotifyReminder(ctx context.Context, order *models.Order) error
}

// StatusPublisher рассылает события смены статуса.
type StatusPublisher interface {
	Publish(ctx context.Context, event models.StatusEvent) error
}

var (
	_ OrderStorage = (*storage.PostgresOrderStorage)(nil)
	_ CartStorage  = (*storage.PostgresCartStorage)(nil)
	_ UserStorage  = (*storage.PostgresUserStorage)(nil)
)
