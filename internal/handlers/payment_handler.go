package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/romanchykov-webdev/pizzeria/internal/payments"
	"github.com/romanchykov-webdev/pizzeria/internal/services"
	"github.com/sirupsen/logrus"
)

// maxWebhookBody ограничение на размер тела события платёжной системы.
const maxWebhookBody = 1 << 16

// EventParser проверяет подпись и разбирает событие платёжной системы.
type EventParser interface {
	Parse(payload []byte, signatureHeader string) (*payments.Event, error)
}

// PaymentHandler обрабатывает вебхук платёжной системы.
type PaymentHandler struct {
	parser   EventParser
	payments services.PaymentService
	logger   logrus.FieldLogger
}

func NewPaymentHandler(parser EventParser, paymentService services.PaymentService, logger logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{
		parser:   parser,
		payments: paymentService,
		logger:   logger.WithField("component", "payment_webhook"),
	}
}

// Webhook обрабатывает POST /api/webhooks/payment.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody)
	payload, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.WithField("limit", tooLarge.Limit).Warn("payment event body too large")
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "payload too large")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read body")
	}

	event, err := h.parser.Parse(payload, c.Request().Header.Get(payments.SignatureHeader))
	if err != nil {
		h.logger.WithError(err).Warn("rejected payment event")
		if errors.Is(err, payments.ErrInvalidSignature) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "malformed event")
	}

	log := h.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"order_id":   event.OrderID,
	})

	ctx := c.Request().Context()
	switch event.Kind {
	case payments.EventCheckoutCompleted:
		if err := h.checkoutCompleted(ctx, log, event); err != nil {
			return err
		}
	case payments.EventPaymentFailed:
		if err := h.paymentFailed(ctx, log, event); err != nil {
			return err
		}
	default:
		log.Info("payment event ignored")
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

func (h *PaymentHandler) checkoutCompleted(ctx context.Context, log logrus.FieldLogger, event *payments.Event) error {
	if event.OrderID == "" || event.CartToken == "" {
		log.Warn("checkout event without order metadata")
		return echo.NewHTTPError(http.StatusBadRequest, "missing orderId or cartToken metadata")
	}

	err := h.payments.ConfirmPayment(ctx, services.ConfirmPaymentInput{
		OrderID:   event.OrderID,
		CartToken: event.CartToken,
		PaymentID: event.PaymentID,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrMissingMetadata):
		return echo.NewHTTPError(http.StatusBadRequest, "missing orderId or cartToken metadata")
	case errors.Is(err, services.ErrOrderNotFound):
		// Повторная доставка не поможет: подтверждаем приём.
		log.Warn("paid order not found")
		return nil
	default:
		log.WithError(err).Error("failed to confirm payment")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func (h *PaymentHandler) paymentFailed(ctx context.Context, log logrus.FieldLogger, event *payments.Event) error {
	err := h.payments.CancelPayment(ctx, event.OrderID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrMissingMetadata),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrInvalidTransition):
		log.WithError(err).Info("failed payment event not applied")
		return nil
	default:
		log.WithError(err).Error("failed to cancel order")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
