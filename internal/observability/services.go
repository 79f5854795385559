package observability

import (
	"context"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/services"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/romanchykov-webdev/pizzeria/internal/observability"

// PaymentService добавляет спаны и счётчики к services.PaymentService.
type PaymentService struct {
	inner    services.PaymentService
	tracer   trace.Tracer
	outcomes metric.Int64Counter
}

func NewPaymentService(inner services.PaymentService, in *Instruments) *PaymentService {
	outcomes, _ := in.Meter(tracerName).Int64Counter("pizzeria.payments.outcomes",
		metric.WithDescription("Processed payment outcomes"))
	return &PaymentService{
		inner:    inner,
		tracer:   in.Tracer(tracerName),
		outcomes: outcomes,
	}
}

func (s *PaymentService) ConfirmPayment(ctx context.Context, in services.ConfirmPaymentInput) error {
	ctx, span := s.tracer.Start(ctx, "PaymentService.ConfirmPayment",
		trace.WithAttributes(attribute.String("order.id", in.OrderID)))
	defer span.End()

	err := s.inner.ConfirmPayment(ctx, in)
	s.record(ctx, span, "confirmed", err)
	return err
}

func (s *PaymentService) CancelPayment(ctx context.Context, orderID string) error {
	ctx, span := s.tracer.Start(ctx, "PaymentService.CancelPayment",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	err := s.inner.CancelPayment(ctx, orderID)
	s.record(ctx, span, "cancelled", err)
	return err
}

func (s *PaymentService) record(ctx context.Context, span trace.Span, outcome string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		markError(span, err)
	}
	if s.outcomes != nil {
		s.outcomes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", outcome),
			attribute.String("result", result),
		))
	}
}

// KitchenService добавляет спаны и счётчики к services.KitchenService.
type KitchenService struct {
	inner       services.KitchenService
	tracer      trace.Tracer
	transitions metric.Int64Counter
}

func NewKitchenService(inner services.KitchenService, in *Instruments) *KitchenService {
	transitions, _ := in.Meter(tracerName).Int64Counter("pizzeria.orders.transitions",
		metric.WithDescription("Order status transitions requested by the kitchen"))
	return &KitchenService{
		inner:       inner,
		tracer:      in.Tracer(tracerName),
		transitions: transitions,
	}
}

func (s *KitchenService) SetETA(ctx context.Context, orderID string, minutes int) (*models.OrderBrief, error) {
	ctx, span := s.tracer.Start(ctx, "KitchenService.SetETA", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.Int("order.eta_minutes", minutes),
	))
	defer span.End()

	brief, err := s.inner.SetETA(ctx, orderID, minutes)
	s.record(ctx, span, "set_eta", brief, err)
	return brief, err
}

func (s *KitchenService) MarkCooking(ctx context.Context, orderID string) (*models.OrderBrief, error) {
	ctx, span := s.tracer.Start(ctx, "KitchenService.MarkCooking",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	brief, err := s.inner.MarkCooking(ctx, orderID)
	s.record(ctx, span, "mark_cooking", brief, err)
	return brief, err
}

func (s *KitchenService) MarkReady(ctx context.Context, orderID string) (*models.OrderBrief, error) {
	ctx, span := s.tracer.Start(ctx, "KitchenService.MarkReady",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	brief, err := s.inner.MarkReady(ctx, orderID)
	s.record(ctx, span, "mark_ready", brief, err)
	return brief, err
}

func (s *KitchenService) record(ctx context.Context, span trace.Span, action string, brief *models.OrderBrief, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		markError(span, err)
	} else if brief != nil {
		span.SetAttributes(attribute.String("order.status", string(brief.Status)))
	}
	if s.transitions != nil {
		s.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("action", action),
			attribute.String("result", result),
		))
	}
}

func markError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

var (
	_ services.PaymentService = (*PaymentService)(nil)
	_ services.KitchenService = (*KitchenService)(nil)
)
