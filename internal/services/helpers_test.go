package services

import (
	"context"
	"sync"
	"time"

	"github.com/romanchykov-webdev/pizzeria/internal/logging"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/storage"
	"github.com/sirupsen/logrus"
)

// memOrderStore хранилище заказов в памяти с той же семантикой
// compare-and-set, что и PostgresOrderStorage.
type memOrderStore struct {
	storage.MockOrderStorage
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newMemOrderStore(orders ...*models.Order) *memOrderStore {
	s := &memOrderStore{orders: map[string]*models.Order{}}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *memOrderStore) GetByID(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *memOrderStore) GetBrief(_ context.Context, id string) (*models.OrderBrief, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return briefOf(o), nil
}

func (s *memOrderStore) MarkPaid(_ context.Context, id, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return storage.ErrOrderNotFound
	}
	o.PaymentID = &paymentID
	return nil
}

func (s *memOrderStore) Transition(_ context.Context, id string, upd storage.TransitionUpdate) (*models.OrderBrief, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}

	allowed := false
	for _, from := range upd.From {
		if o.Status == from {
			allowed = true
		}
	}
	if !allowed {
		return nil, storage.ErrStatusConflict
	}

	o.Status = upd.To
	if upd.ExpectedReadyAt != nil {
		o.ExpectedReadyAt = upd.ExpectedReadyAt
	}
	if upd.ReadyAt != nil {
		o.ReadyAt = upd.ReadyAt
	}
	return briefOf(o), nil
}

func (s *memOrderStore) status(id string) models.OrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id].Status
}

func briefOf(o *models.Order) *models.OrderBrief {
	return &models.OrderBrief{
		ID:              o.ID,
		Status:          o.Status,
		Address:         o.Address,
		Type:            o.Type,
		ExpectedReadyAt: o.ExpectedReadyAt,
		ReadyAt:         o.ReadyAt,
	}
}

// memCartStore корзины в памяти: token -> количество позиций.
type memCartStore struct {
	mu    sync.Mutex
	items map[string]int
	calls int
}

func (s *memCartStore) ClearByToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if _, ok := s.items[token]; ok {
		s.items[token] = 0
	}
	return nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	newOrders []string
	reminders []string
	err       error
}

func (n *recordingNotifier) NotifyNewOrder(_ context.Context, o *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newOrders = append(n.newOrders, o.ID)
	return n.err
}

func (n *recordingNotifier) NotifyReminder(_ context.Context, o *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, o.ID)
	return n.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.StatusEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e models.StatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func testLogger() *logrus.Logger {
	return logging.Discard()
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newOrder(id string, status models.OrderStatus) *models.Order {
	return &models.Order{
		ID:        id,
		Status:    status,
		Address:   "Киев, ул. Крещатик, 1",
		Type:      models.DeliveryTypeDelivery,
		CartToken: "cart-" + id,
	}
}
