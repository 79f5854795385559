package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
)

// MockUserStorage - мок для тестирования (экспортируемый для использования в других пакетах)
type MockUserStorage struct {
	CreateFunc     func(ctx context.Context, user *models.User) error
	GetByLoginFunc func(ctx context.Context, login string) (*models.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func (m *MockUserStorage) Create(ctx context.Context, user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserStorage) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if m.GetByLoginFunc != nil {
		return m.GetByLoginFunc(ctx, login)
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

// MockOrderStorage - мок хранилища заказов.
type MockOrderStorage struct {
	CreateFunc              func(ctx context.Context, order *models.Order) error
	GetByIDFunc             func(ctx context.Context, id string) (*models.Order, error)
	GetBriefFunc            func(ctx context.Context, id string) (*models.OrderBrief, error)
	MarkPaidFunc            func(ctx context.Context, id, paymentID string) error
	TransitionFunc          func(ctx context.Context, id string, upd TransitionUpdate) (*models.OrderBrief, error)
	ListFunc                func(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
	ListAwaitingKitchenFunc func(ctx context.Context, createdBefore time.Time) ([]*models.Order, error)
	MarkRemindedFunc        func(ctx context.Context, id string) error
	DeleteFunc              func(ctx context.Context, id string) error
}

func (m *MockOrderStorage) Create(ctx context.Context, order *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	return nil
}

func (m *MockOrderStorage) GetByID(ctx context.Context, id string) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) GetBrief(ctx context.Context, id string) (*models.OrderBrief, error) {
	if m.GetBriefFunc != nil {
		return m.GetBriefFunc(ctx, id)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) MarkPaid(ctx context.Context, id, paymentID string) error {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, id, paymentID)
	}
	return nil
}

func (m *MockOrderStorage) Transition(ctx context.Context, id string, upd TransitionUpdate) (*models.OrderBrief, error) {
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, id, upd)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockOrderStorage) ListAwaitingKitchen(ctx context.Context, createdBefore time.Time) ([]*models.Order, error) {
	if m.ListAwaitingKitchenFunc != nil {
		return m.ListAwaitingKitchenFunc(ctx, createdBefore)
	}
	return nil, nil
}

func (m *MockOrderStorage) MarkReminded(ctx context.Context, id string) error {
	if m.MarkRemindedFunc != nil {
		return m.MarkRemindedFunc(ctx, id)
	}
	return nil
}

func (m *MockOrderStorage) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockCartStorage - мок хранилища корзин.
type MockCartStorage struct {
	ClearByTokenFunc func(ctx context.Context, token string) error
	GetByTokenFunc   func(ctx context.Context, token string) (*models.Cart, error)
}

func (m *MockCartStorage) ClearByToken(ctx context.Context, token string) error {
	if m.ClearByTokenFunc != nil {
		return m.ClearByTokenFunc(ctx, token)
	}
	return nil
}

func (m *MockCartStorage) GetByToken(ctx context.Context, token string) (*models.Cart, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	return nil, ErrCartNotFound
}
