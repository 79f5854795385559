// Package payments проверяет и разбирает вебхуки платёжного провайдера.
package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// SignatureHeader заголовок с подписью запроса.
const SignatureHeader = "Stripe-Signature"

// Ключи metadata, которые магазин кладёт в checkout-сессию.
const (
	MetadataOrderID   = "orderId"
	MetadataCartToken = "cartToken"
)

const (
	typeCheckoutCompleted     = "checkout.session.completed"
	typeAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	typePaymentIntentFailed   = "payment_intent.payment_failed"
	defaultSignatureTolerance = webhook.DefaultTolerance
)

var (
	// ErrInvalidSignature подпись отсутствует, повреждена или устарела.
	ErrInvalidSignature = errors.New("invalid payment webhook signature")
	// ErrMalformedEvent подпись верна, но тело события не разбирается.
	ErrMalformedEvent = errors.New("malformed payment event")
)

// EventKind нормализованный вид события.
type EventKind int

const (
	EventIgnored EventKind = iota
	EventCheckoutCompleted
	EventPaymentFailed
)

func (k EventKind) String() string {
	switch k {
	case EventCheckoutCompleted:
		return "checkout_completed"
	case EventPaymentFailed:
		return "payment_failed"
	default:
		return "ignored"
	}
}

// Event событие провайдера, сведённое к полям, которые нужны заказам.
type Event struct {
	ID        string
	Type      string
	Kind      EventKind
	OrderID   string
	CartToken string
	PaymentID string
}

// Verifier проверяет подпись и разбирает событие.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

// NewVerifier создаёт Verifier. tolerance <= 0 означает значение по умолчанию провайдера.
func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = defaultSignatureTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance}
}

// Parse проверяет подпись до разбора тела и возвращает нормализованное событие.
func (v *Verifier) Parse(payload []byte, signatureHeader string) (*Event, error) {
	if v.secret == "" || signatureHeader == "" {
		return nil, ErrInvalidSignature
	}

	raw, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	event := &Event{ID: raw.ID, Type: string(raw.Type)}
	if raw.Data == nil {
		return event, nil
	}

	switch event.Type {
	case typeCheckoutCompleted, typeAsyncPaymentFailed:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(raw.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		event.Kind = EventPaymentFailed
		if event.Type == typeCheckoutCompleted {
			event.Kind = EventCheckoutCompleted
		}
		event.OrderID = session.Metadata[MetadataOrderID]
		event.CartToken = session.Metadata[MetadataCartToken]
		event.PaymentID = session.ID
		if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
			event.PaymentID = session.PaymentIntent.ID
		}
	case typePaymentIntentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(raw.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		event.Kind = EventPaymentFailed
		event.OrderID = intent.Metadata[MetadataOrderID]
		event.CartToken = intent.Metadata[MetadataCartToken]
		event.PaymentID = intent.ID
	}

	return event, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
