package models

import "time"

const (
	PendingPollInterval    = 4 * time.Second
	ProcessingPollInterval = 15 * time.Second
)

// PollInterval возвращает интервал опроса статуса клиентом.
// Ноль означает, что опрос нужно прекратить.
func PollInterval(status OrderStatus) time.Duration {
	switch status {
	case OrderStatusProcessing:
		return ProcessingPollInterval
	case OrderStatusReady, OrderStatusCancelled:
		return 0
	default:
		return PendingPollInterval
	}
}
