package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/storage"
	"github.com/sirupsen/logrus"
)

// ConfirmPaymentInput данные подтверждённой оплаты.
type ConfirmPaymentInput struct {
	OrderID   string
	CartToken string
	PaymentID string
}

// PaymentService обрабатывает исходы оплаты.
type PaymentService interface {
	ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) error
	CancelPayment(ctx context.Context, orderID string) error
}

// PaymentServiceImpl реализует PaymentService.
type PaymentServiceImpl struct {
	orders    OrderStorage
	carts     CartStorage
	notifier  Notifier
	publisher StatusPublisher
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewPaymentService создаёт сервис оплат. notifier и publisher могут быть nil.
func NewPaymentService(orders OrderStorage, carts CartStorage, notifier Notifier, publisher StatusPublisher, logger logrus.FieldLogger) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		orders:    orders,
		carts:     carts,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger.WithField("component", "payment_service"),
		now:       time.Now,
	}
}

// ConfirmPayment фиксирует оплату, очищает корзину и уведомляет кухню.
// Статус заказа остаётся PENDING до решения кухни. Повторная доставка
// того же события безопасна: запись платежа и очистка корзины идемпотентны.
func (s *PaymentServiceImpl) ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) error {
	if in.OrderID == "" {
		return ErrMissingMetadata
	}

	log := s.logger.WithFields(logrus.Fields{
		"order_id":   in.OrderID,
		"payment_id": in.PaymentID,
	})

	if err := s.orders.MarkPaid(ctx, in.OrderID, in.PaymentID); err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("mark order paid: %w", err)
	}

	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("get order: %w", err)
	}

	cartToken := in.CartToken
	if cartToken == "" {
		cartToken = order.CartToken
	}
	if cartToken != "" {
		if err := s.carts.ClearByToken(ctx, cartToken); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
	}

	log.Info("payment confirmed")

	if s.notifier != nil {
		if err := s.notifier.NotifyNewOrder(ctx, order); err != nil {
			log.WithError(err).Warn("failed to notify kitchen about new order")
		}
	}

	return nil
}

// CancelPayment отменяет неоплаченный заказ после неудачной оплаты.
func (s *PaymentServiceImpl) CancelPayment(ctx context.Context, orderID string) error {
	if orderID == "" {
		return ErrMissingMetadata
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("get order: %w", err)
	}

	// Оплаченный заказ не отменяется более поздней неудачной попыткой.
	if order.IsPaid() || !models.CanTransition(order.Status, models.OrderStatusCancelled) {
		return &TransitionError{OrderID: orderID, From: order.Status, To: models.OrderStatusCancelled}
	}

	brief, err := s.orders.Transition(ctx, orderID, storage.TransitionUpdate{
		From: models.SourcesFor(models.OrderStatusCancelled),
		To:   models.OrderStatusCancelled,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrOrderNotFound):
			return ErrOrderNotFound
		case errors.Is(err, storage.ErrStatusConflict):
			return &TransitionError{OrderID: orderID, To: models.OrderStatusCancelled}
		}
		return fmt.Errorf("cancel order: %w", err)
	}

	s.logger.WithField("order_id", orderID).Info("order cancelled after failed payment")
	publish(ctx, s.publisher, s.logger, models.NewStatusEvent(brief, s.now()))
	return nil
}
