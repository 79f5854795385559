package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/sirupsen/logrus"
)

// Tracker решает, когда опрашивать статус снова.
// Празднование срабатывает один раз, при первом появлении READY.
type Tracker struct {
	celebrated bool
}

// Observe возвращает паузу до следующего запроса (0 означает остановку)
// и признак того, что нужно показать празднование.
func (t *Tracker) Observe(status models.OrderStatus) (time.Duration, bool) {
	celebrate := false
	if status == models.OrderStatusReady && !t.celebrated {
		t.celebrated = true
		celebrate = true
	}
	return models.PollInterval(status), celebrate
}

// Update результат одного опроса.
type Update struct {
	Status    *models.OrderStatusResponse
	Next      time.Duration
	Celebrate bool
}

// Poller опрашивает статус заказа до конечного состояния.
type Poller struct {
	client     StatusClient
	orderID    string
	tracker    Tracker
	refresh    chan struct{}
	onUpdate   func(Update)
	retryDelay time.Duration
	logger     logrus.FieldLogger
}

func NewPoller(client StatusClient, orderID string, onUpdate func(Update), logger logrus.FieldLogger) *Poller {
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}
	return &Poller{
		client:     client,
		orderID:    orderID,
		refresh:    make(chan struct{}, 1),
		onUpdate:   onUpdate,
		retryDelay: models.PendingPollInterval,
		logger:     logger.WithFields(logrus.Fields{"component": "status_poller", "order_id": orderID}),
	}
}

// Refresh запрашивает внеочередной опрос. Не блокируется.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run опрашивает статус, пока заказ не станет READY или CANCELLED.
// Возвращает ErrNotFound для неизвестного заказа и ошибку контекста при отмене.
func (p *Poller) Run(ctx context.Context) error {
	for {
		wait, done, err := p.poll(ctx)
		if err != nil || done {
			return err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-p.refresh:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) (time.Duration, bool, error) {
	status, err := p.client.GetOrderStatus(ctx, p.orderID)
	if err != nil {
		var rl RateLimitError
		switch {
		case errors.Is(err, ErrNotFound):
			return 0, true, err
		case ctx.Err() != nil:
			return 0, true, ctx.Err()
		case errors.As(err, &rl):
			p.logger.WithField("retry_after", rl.RetryAfter).Warn("status endpoint rate limited")
			if rl.RetryAfter <= 0 {
				return p.retryDelay, false, nil
			}
			return rl.RetryAfter, false, nil
		default:
			p.logger.WithError(err).Warn("failed to fetch order status")
			return p.retryDelay, false, nil
		}
	}

	next, celebrate := p.tracker.Observe(status.Status)
	p.onUpdate(Update{Status: status, Next: next, Celebrate: celebrate})
	return next, next == 0, nil
}
