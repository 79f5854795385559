package handlers

import (
	"context"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/payments"
	"github.com/romanchykov-webdev/pizzeria/internal/services"
	"github.com/romanchykov-webdev/pizzeria/internal/telegram"
)

// MockPaymentService - мок для тестирования handlers
type MockPaymentService struct {
	ConfirmPaymentFunc func(ctx context.Context, in services.ConfirmPaymentInput) error
	CancelPaymentFunc  func(ctx context.Context, orderID string) error

	confirmed []services.ConfirmPaymentInput
	cancelled []string
}

func (m *MockPaymentService) ConfirmPayment(ctx context.Context, in services.ConfirmPaymentInput) error {
	m.confirmed = append(m.confirmed, in)
	if m.ConfirmPaymentFunc != nil {
		return m.ConfirmPaymentFunc(ctx, in)
	}
	return nil
}

func (m *MockPaymentService) CancelPayment(ctx context.Context, orderID string) error {
	m.cancelled = append(m.cancelled, orderID)
	if m.CancelPaymentFunc != nil {
		return m.CancelPaymentFunc(ctx, orderID)
	}
	return nil
}

// MockEventParser возвращает заранее заданное событие.
type MockEventParser struct {
	Event *payments.Event
	Err   error

	calls int
}

func (m *MockEventParser) Parse(payload []byte, signatureHeader string) (*payments.Event, error) {
	m.calls++
	return m.Event, m.Err
}

// MockOrderService - мок OrderService
type MockOrderService struct {
	GetStatusFunc func(ctx context.Context, orderID string) (*models.OrderStatusResponse, error)
	ListFunc      func(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
	GetFunc       func(ctx context.Context, orderID string) (*models.Order, error)
	DeleteFunc    func(ctx context.Context, orderID string) error
}

func (m *MockOrderService) GetStatus(ctx context.Context, orderID string) (*models.OrderStatusResponse, error) {
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(ctx, orderID)
	}
	return nil, services.ErrOrderNotFound
}

func (m *MockOrderService) List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.Order{}, nil
}

func (m *MockOrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, orderID)
	}
	return nil, services.ErrOrderNotFound
}

func (m *MockOrderService) Delete(ctx context.Context, orderID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, orderID)
	}
	return nil
}

// MockUserService - мок UserService
type MockUserService struct {
	LoginFunc       func(ctx context.Context, login, password string) (*models.User, string, error)
	EnsureAdminFunc func(ctx context.Context, login, password string) (bool, error)
}

func (m *MockUserService) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, login, password)
	}
	return nil, "", nil
}

func (m *MockUserService) EnsureAdmin(ctx context.Context, login, password string) (bool, error) {
	if m.EnsureAdminFunc != nil {
		return m.EnsureAdminFunc(ctx, login, password)
	}
	return false, nil
}

// recordingCallbacks запоминает переданные нажатия.
type recordingCallbacks struct {
	queries []*telegram.CallbackQuery
}

func (r *recordingCallbacks) Handle(ctx context.Context, q *telegram.CallbackQuery) {
	r.queries = append(r.queries, q)
}
