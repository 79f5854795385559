package events

import (
	"context"
	"errors"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
)

// Publisher получатель событий статуса.
type Publisher interface {
	Publish(ctx context.Context, event models.StatusEvent) error
}

// MultiPublisher отправляет событие всем получателям по очереди.
// Ошибка одного получателя не мешает остальным.
type MultiPublisher []Publisher

// NewMultiPublisher пропускает nil-получателей.
func NewMultiPublisher(publishers ...Publisher) MultiPublisher {
	out := make(MultiPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (m MultiPublisher) Publish(ctx context.Context, event models.StatusEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
