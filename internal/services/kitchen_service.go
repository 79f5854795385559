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

const (
	MinETAMinutes = 1
	MaxETAMinutes = 240
)

// KitchenService определяет действия кухни над заказом.
type KitchenService interface {
	SetETA(ctx context.Context, orderID string, minutes int) (*models.OrderBrief, error)
	MarkCooking(ctx context.Context, orderID string) (*models.OrderBrief, error)
	MarkReady(ctx context.Context, orderID string) (*models.OrderBrief, error)
}

// KitchenServiceImpl реализует KitchenService.
type KitchenServiceImpl struct {
	orders    OrderStorage
	publisher StatusPublisher
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewKitchenService создаёт сервис кухни. publisher может быть nil.
func NewKitchenService(orders OrderStorage, publisher StatusPublisher, logger logrus.FieldLogger) *KitchenServiceImpl {
	return &KitchenServiceImpl{
		orders:    orders,
		publisher: publisher,
		logger:    logger.WithField("component", "kitchen_service"),
		now:       time.Now,
	}
}

// SetETA переводит заказ в PROCESSING и выставляет ожидаемое время готовности.
func (s *KitchenServiceImpl) SetETA(ctx context.Context, orderID string, minutes int) (*models.OrderBrief, error) {
	if minutes < MinETAMinutes || minutes > MaxETAMinutes {
		return nil, ErrInvalidETA
	}
	eta := s.now().Add(time.Duration(minutes) * time.Minute)
	return s.transition(ctx, orderID, storage.TransitionUpdate{
		To:              models.OrderStatusProcessing,
		ExpectedReadyAt: &eta,
	})
}

// MarkCooking переводит заказ в PROCESSING без изменения ETA.
func (s *KitchenServiceImpl) MarkCooking(ctx context.Context, orderID string) (*models.OrderBrief, error) {
	return s.transition(ctx, orderID, storage.TransitionUpdate{To: models.OrderStatusProcessing})
}

// MarkReady переводит заказ в READY и фиксирует время готовности.
func (s *KitchenServiceImpl) MarkReady(ctx context.Context, orderID string) (*models.OrderBrief, error) {
	readyAt := s.now()
	return s.transition(ctx, orderID, storage.TransitionUpdate{
		To:      models.OrderStatusReady,
		ReadyAt: &readyAt,
	})
}

func (s *KitchenServiceImpl) transition(ctx context.Context, orderID string, upd storage.TransitionUpdate) (*models.OrderBrief, error) {
	current, err := s.orders.GetBrief(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if !models.CanTransition(current.Status, upd.To) {
		return nil, &TransitionError{OrderID: orderID, From: current.Status, To: upd.To}
	}

	upd.From = models.SourcesFor(upd.To)
	brief, err := s.orders.Transition(ctx, orderID, upd)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrOrderNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, storage.ErrStatusConflict):
			return nil, &TransitionError{OrderID: orderID, To: upd.To}
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     current.Status,
		"to":       brief.Status,
	}).Info("order status changed")

	publish(ctx, s.publisher, s.logger, models.NewStatusEvent(brief, s.now()))
	return brief, nil
}

// publish отправляет событие; ошибка только логируется.
func publish(ctx context.Context, publisher StatusPublisher, logger logrus.FieldLogger, event models.StatusEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WithError(err).WithField("order_id", event.OrderID).Warn("failed to publish status event")
	}
}
