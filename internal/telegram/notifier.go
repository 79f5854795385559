package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/sirupsen/logrus"
)

// OrderNotifier публикует заказы в чат кухни.
type OrderNotifier struct {
	messenger Messenger
	logger    logrus.FieldLogger
	now       func() time.Time
}

func NewOrderNotifier(messenger Messenger, logger logrus.FieldLogger) *OrderNotifier {
	return &OrderNotifier{
		messenger: messenger,
		logger:    logger.WithField("component", "order_notifier"),
		now:       time.Now,
	}
}

// NotifyNewOrder отправляет сводку заказа с кнопками управления.
func (n *OrderNotifier) NotifyNewOrder(ctx context.Context, order *models.Order) error {
	return n.send(ctx, order, FormatOrderSummary(order))
}

// NotifyReminder повторно отправляет заказ, который кухня ещё не взяла.
func (n *OrderNotifier) NotifyReminder(ctx context.Context, order *models.Order) error {
	return n.send(ctx, order, FormatReminder(order, n.now()))
}

func (n *OrderNotifier) send(ctx context.Context, order *models.Order, text string) error {
	keyboard, err := OrderKeyboard(order.ID)
	if err != nil {
		return fmt.Errorf("build keyboard for order %s: %w", order.ID, err)
	}

	messageID, err := n.messenger.SendMessage(ctx, text, keyboard)
	if err != nil {
		return err
	}

	n.logger.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"message_id": messageID,
	}).Info("order sent to kitchen chat")
	return nil
}
