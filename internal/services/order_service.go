package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/storage"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// OrderService определяет чтение заказов и операции админки.
type OrderService interface {
	GetStatus(ctx context.Context, orderID string) (*models.OrderStatusResponse, error)
	List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
	Get(ctx context.Context, orderID string) (*models.Order, error)
	Delete(ctx context.Context, orderID string) error
}

// OrderServiceImpl реализует OrderService.
type OrderServiceImpl struct {
	orders OrderStorage
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(orders OrderStorage) *OrderServiceImpl {
	return &OrderServiceImpl{orders: orders}
}

// GetStatus возвращает состояние заказа для страницы отслеживания.
func (s *OrderServiceImpl) GetStatus(ctx context.Context, orderID string) (*models.OrderStatusResponse, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItemResponse, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, models.OrderItemResponse{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			Size:      it.Size,
			DoughType: it.DoughType,
		})
	}

	return &models.OrderStatusResponse{
		ID:              order.ID,
		Status:          order.Status,
		ExpectedReadyAt: order.ExpectedReadyAt,
		ReadyAt:         order.ReadyAt,
		TotalAmount:     order.TotalAmount,
		Type:            order.Type,
		FullName:        order.FullName,
		Paid:            order.IsPaid(),
		Items:           items,
		PollIntervalMs:  models.PollInterval(order.Status).Milliseconds(),
	}, nil
}

// List возвращает страницу заказов. Неверный фильтр статуса отбрасывается.
func (s *OrderServiceImpl) List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		filter.Status = ""
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		return []*models.Order{}, nil
	}
	return orders, nil
}

// Get возвращает заказ целиком.
func (s *OrderServiceImpl) Get(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// Delete удаляет заказ.
func (s *OrderServiceImpl) Delete(ctx context.Context, orderID string) error {
	if err := s.orders.Delete(ctx, orderID); err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}
