package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/sirupsen/logrus"
)

const sendBuffer = 16

type subscriber struct {
	send   chan []byte
	closed bool
}

// Hub рассылает события статуса подписчикам конкретного заказа.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	logger logrus.FieldLogger
}

func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: logger.WithField("component", "realtime_hub"),
	}
}

// Subscribe возвращает канал событий заказа и функцию отписки.
// Канал закрывается при отписке, при закрытии хаба и если подписчик не успевает читать.
func (h *Hub) Subscribe(orderID string) (<-chan []byte, func()) {
	s := &subscriber{send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	set, ok := h.subs[orderID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[orderID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	return s.send, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.drop(orderID, s)
	}
}

// Publish отправляет событие подписчикам заказа без блокировки.
func (h *Hub) Publish(_ context.Context, event models.StatusEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs[event.OrderID] {
		select {
		case s.send <- msg:
		default:
			h.logger.WithField("order_id", event.OrderID).Warn("slow subscriber dropped")
			h.drop(event.OrderID, s)
		}
	}
	return nil
}

// Subscribers возвращает число подписчиков заказа.
func (h *Hub) Subscribers(orderID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[orderID])
}

// Close отключает всех подписчиков.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for orderID, set := range h.subs {
		for s := range set {
			h.drop(orderID, s)
		}
	}
}

// drop вызывается под h.mu.
func (h *Hub) drop(orderID string, s *subscriber) {
	set, ok := h.subs[orderID]
	if !ok {
		return
	}
	if _, exists := set[s]; exists {
		delete(set, s)
		if !s.closed {
			s.closed = true
			close(s.send)
		}
	}
	if len(set) == 0 {
		delete(h.subs, orderID)
	}
}
