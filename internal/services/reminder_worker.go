package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ReminderWorker периодически напоминает кухне об оплаченных заказах,
// которые так и не взяли в работу.
type ReminderWorker struct {
	orders   OrderStorage
	notifier Notifier
	after    time.Duration
	interval time.Duration
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewReminderWorker создаёт воркер. after - возраст заказа, после которого
// отправляется напоминание.
func NewReminderWorker(orders OrderStorage, notifier Notifier, after, interval time.Duration, logger logrus.FieldLogger) *ReminderWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderWorker{
		orders:   orders,
		notifier: notifier,
		after:    after,
		interval: interval,
		logger:   logger.WithField("component", "reminder_worker"),
		now:      time.Now,
	}
}

// Start запускает воркер в отдельной горутине и останавливается по ctx.Done().
func (w *ReminderWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.processBatch(ctx); err != nil {
					w.logger.WithError(err).Error("reminder batch failed")
				}
			}
		}
	}()
}

func (w *ReminderWorker) processBatch(ctx context.Context) error {
	orders, err := w.orders.ListAwaitingKitchen(ctx, w.now().Add(-w.after))
	if err != nil {
		return err
	}

	for _, o := range orders {
		log := w.logger.WithField("order_id", o.ID)

		// Без успешной доставки заказ не помечается и попадёт в следующий проход.
		if err := w.notifier.NotifyReminder(ctx, o); err != nil {
			log.WithError(err).Warn("failed to send reminder")
			continue
		}
		if err := w.orders.MarkReminded(ctx, o.ID); err != nil {
			log.WithError(err).Error("failed to mark order reminded")
			continue
		}
		log.Info("kitchen reminded about order")
	}
	return nil
}
