package services

import (
	"errors"
	"fmt"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrInvalidETA         = errors.New("eta must be between 1 and 240 minutes")
	ErrMissingMetadata    = errors.New("payment event has no order id")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyCredentials   = errors.New("login and password are required")
)

// TransitionError отказ в смене статуса. From пуст, если статус изменился
// конкурентно и текущее значение неизвестно.
type TransitionError struct {
	OrderID string
	From    models.OrderStatus
	To      models.OrderStatus
}

func (e *TransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("order %s: status changed concurrently, cannot move to %s", e.OrderID, e.To)
	}
	return fmt.Sprintf("order %s: cannot move from %s to %s", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
