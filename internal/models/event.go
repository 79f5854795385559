package models

import "time"

// StatusEvent публикуется после каждого успешного перехода статуса.
type StatusEvent struct {
	OrderID         string      `json:"orderId"`
	Status          OrderStatus `json:"status"`
	ExpectedReadyAt *time.Time  `json:"expectedReadyAt,omitempty"`
	ReadyAt         *time.Time  `json:"readyAt,omitempty"`
	OccurredAt      time.Time   `json:"occurredAt"`
}

// NewStatusEvent собирает событие из проекции заказа.
func NewStatusEvent(o *OrderBrief, at time.Time) StatusEvent {
	return StatusEvent{
		OrderID:         o.ID,
		Status:          o.Status,
		ExpectedReadyAt: o.ExpectedReadyAt,
		ReadyAt:         o.ReadyAt,
		OccurredAt:      at,
	}
}
