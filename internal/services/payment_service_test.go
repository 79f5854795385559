package services

import (
	"context"
	"errors"
	"testing"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/storage"
)

func TestPaymentService_ConfirmPayment(t *testing.T) {
	store := newMemOrderStore(newOrder("o1", models.OrderStatusPending))
	carts := &memCartStore{items: map[string]int{"cart-o1": 3}}
	notifier := &recordingNotifier{}
	svc := NewPaymentService(store, carts, notifier, nil, testLogger())

	err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		OrderID:   "o1",
		CartToken: "cart-o1",
		PaymentID: "pi_1",
	})
	if err != nil {
		t.Fatalf("ConfirmPayment() error = %v", err)
	}

	order, _ := store.GetByID(context.Background(), "o1")
	if !order.IsPaid() || *order.PaymentID != "pi_1" {
		t.Errorf("PaymentID = %v, want pi_1", order.PaymentID)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("Status = %v, payment must not move the order out of PENDING", order.Status)
	}
	if carts.items["cart-o1"] != 0 {
		t.Errorf("cart items = %d, want 0", carts.items["cart-o1"])
	}
	if len(notifier.newOrders) != 1 || notifier.newOrders[0] != "o1" {
		t.Errorf("notified = %v, want [o1]", notifier.newOrders)
	}
}

// Повторная доставка события оставляет корзину пустой и не возвращает ошибку.
func TestPaymentService_ConfirmPaymentRedelivery(t *testing.T) {
	store := newMemOrderStore(newOrder("o1", models.OrderStatusPending))
	carts := &memCartStore{items: map[string]int{"cart-o1": 2}}
	svc := NewPaymentService(store, carts, &recordingNotifier{}, nil, testLogger())

	in := ConfirmPaymentInput{OrderID: "o1", CartToken: "cart-o1", PaymentID: "pi_1"}
	for i := 0; i < 3; i++ {
		if err := svc.ConfirmPayment(context.Background(), in); err != nil {
			t.Fatalf("delivery %d: ConfirmPayment() error = %v", i+1, err)
		}
		if carts.items["cart-o1"] != 0 {
			t.Fatalf("delivery %d: cart not empty", i+1)
		}
	}
	if carts.calls != 3 {
		t.Errorf("ClearByToken calls = %d, want 3", carts.calls)
	}
}

func TestPaymentService_ConfirmPaymentUsesOrderCartToken(t *testing.T) {
	store := newMemOrderStore(newOrder("o1", models.OrderStatusPending))
	carts := &memCartStore{items: map[string]int{"cart-o1": 1}}
	svc := NewPaymentService(store, carts, nil, nil, testLogger())

	if err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{OrderID: "o1", PaymentID: "pi_1"}); err != nil {
		t.Fatalf("ConfirmPayment() error = %v", err)
	}
	if carts.items["cart-o1"] != 0 {
		t.Error("cart from the order record was not cleared")
	}
}

func TestPaymentService_ConfirmPaymentErrors(t *testing.T) {
	dbErr := errors.New("db down")

	tests := []struct {
		name    string
		in      ConfirmPaymentInput
		orders  OrderStorage
		carts   CartStorage
		wantErr error
	}{
		{
			name:    "missing order id",
			in:      ConfirmPaymentInput{PaymentID: "pi_1"},
			orders:  newMemOrderStore(),
			carts:   &memCartStore{},
			wantErr: ErrMissingMetadata,
		},
		{
			name:    "unknown order",
			in:      ConfirmPaymentInput{OrderID: "nope", PaymentID: "pi_1"},
			orders:  newMemOrderStore(),
			carts:   &memCartStore{},
			wantErr: ErrOrderNotFound,
		},
		{
			name: "storage failure",
			in:   ConfirmPaymentInput{OrderID: "o1", PaymentID: "pi_1"},
			orders: &storage.MockOrderStorage{
				MarkPaidFunc: func(ctx context.Context, id, paymentID string) error { return dbErr },
			},
			carts:   &memCartStore{},
			wantErr: dbErr,
		},
		{
			name:   "cart failure",
			in:     ConfirmPaymentInput{OrderID: "o1", CartToken: "c", PaymentID: "pi_1"},
			orders: newMemOrderStore(newOrder("o1", models.OrderStatusPending)),
			carts: &storage.MockCartStorage{
				ClearByTokenFunc: func(ctx context.Context, token string) error { return dbErr },
			},
			wantErr: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &recordingNotifier{}
			svc := NewPaymentService(tt.orders, tt.carts, notifier, nil, testLogger())

			err := svc.ConfirmPayment(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ConfirmPayment() error = %v, want %v", err, tt.wantErr)
			}
			if len(notifier.newOrders) != 0 {
				t.Error("kitchen must not be notified when confirmation fails")
			}
		})
	}
}

func TestPaymentService_NotifierFailureIsNotFatal(t *testing.T) {
	store := newMemOrderStore(newOrder("o1", models.OrderStatusPending))
	notifier := &recordingNotifier{err: errors.New("telegram unavailable")}
	svc := NewPaymentService(store, &memCartStore{}, notifier, nil, testLogger())

	if err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{OrderID: "o1", PaymentID: "pi_1"}); err != nil {
		t.Fatalf("ConfirmPayment() error = %v, notifier failures must be swallowed", err)
	}
}

func TestPaymentService_CancelPayment(t *testing.T) {
	store := newMemOrderStore(newOrder("o1", models.OrderStatusPending))
	pub := &recordingPublisher{}
	svc := NewPaymentService(store, &memCartStore{}, nil, pub, testLogger())

	if err := svc.CancelPayment(context.Background(), "o1"); err != nil {
		t.Fatalf("CancelPayment() error = %v", err)
	}
	if got := store.status("o1"); got != models.OrderStatusCancelled {
		t.Errorf("status = %v, want CANCELLED", got)
	}
	if len(pub.events) != 1 || pub.events[0].Status != models.OrderStatusCancelled {
		t.Errorf("events = %+v, want one CANCELLED event", pub.events)
	}
}

func TestPaymentService_CancelPaymentRejected(t *testing.T) {
	paid := newOrder("paid", models.OrderStatusPending)
	ref := "pi_ok"
	paid.PaymentID = &ref

	store := newMemOrderStore(
		paid,
		newOrder("cooking", models.OrderStatusProcessing),
		newOrder("ready", models.OrderStatusReady),
		newOrder("cancelled", models.OrderStatusCancelled),
	)
	svc := NewPaymentService(store, &memCartStore{}, nil, nil, testLogger())

	for _, id := range []string{"paid", "cooking", "ready", "cancelled"} {
		before := store.status(id)
		if err := svc.CancelPayment(context.Background(), id); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("CancelPayment(%s) error = %v, want ErrInvalidTransition", id, err)
		}
		if got := store.status(id); got != before {
			t.Errorf("%s: status changed %v -> %v", id, before, got)
		}
	}

	if err := svc.CancelPayment(context.Background(), "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("CancelPayment(missing) error = %v, want ErrOrderNotFound", err)
	}
	if err := svc.CancelPayment(context.Background(), ""); !errors.Is(err, ErrMissingMetadata) {
		t.Errorf("CancelPayment(\"\") error = %v, want ErrMissingMetadata", err)
	}
}
