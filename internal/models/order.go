package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает статус выполнения заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusReady      OrderStatus = "READY"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Допустимые переходы статусов. Из READY и CANCELLED переходов нет.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {
		OrderStatusProcessing: true,
		OrderStatusReady:      true,
		OrderStatusCancelled:  true,
	},
	OrderStatusProcessing: {
		OrderStatusProcessing: true,
		OrderStatusReady:      true,
	},
	OrderStatusReady:     {},
	OrderStatusCancelled: {},
}

// CanTransition проверяет, разрешён ли переход from -> to.
func CanTransition(from, to OrderStatus) bool {
	next, ok := allowedTransitions[from]
	return ok && next[to]
}

// SourcesFor возвращает статусы, из которых допустим переход в to.
func SourcesFor(to OrderStatus) []OrderStatus {
	var from []OrderStatus
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusReady, OrderStatusCancelled} {
		if CanTransition(s, to) {
			from = append(from, s)
		}
	}
	return from
}

// Valid сообщает, является ли значение известным статусом.
func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// IsTerminal сообщает, является ли статус конечным.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReady || s == OrderStatusCancelled
}

// DeliveryType способ получения заказа.
type DeliveryType string

const (
	DeliveryTypePickup   DeliveryType = "PICKUP"
	DeliveryTypeDelivery DeliveryType = "DELIVERY"
)

// Order представляет заказ клиента.
type Order struct {
	ID              string          `db:"id" json:"id"`
	Status          OrderStatus     `db:"status" json:"status"`
	PaymentID       *string         `db:"payment_id" json:"paymentId,omitempty"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Items           []OrderItem     `db:"items" json:"items"`
	FullName        string          `db:"full_name" json:"fullName"`
	Phone           string          `db:"phone" json:"phone"`
	Email           string          `db:"email" json:"email"`
	Address         string          `db:"address" json:"address"`
	Comment         string          `db:"comment" json:"comment,omitempty"`
	Type            DeliveryType    `db:"type" json:"type"`
	CartToken       string          `db:"cart_token" json:"-"`
	ExpectedReadyAt *time.Time      `db:"expected_ready_at" json:"expectedReadyAt,omitempty"`
	ReadyAt         *time.Time      `db:"ready_at" json:"readyAt,omitempty"`
	RemindedAt      *time.Time      `db:"reminded_at" json:"remindedAt,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsPaid сообщает, пришло ли подтверждение онлайн-оплаты.
func (o *Order) IsPaid() bool {
	return o.PaymentID != nil && *o.PaymentID != ""
}

// OrderItem позиция заказа. Хранится в orders.items (JSONB).
type OrderItem struct {
	ProductName string            `json:"productName"`
	Quantity    int               `json:"quantity"`
	Price       decimal.Decimal   `json:"price"`
	Size        *int              `json:"size,omitempty"`
	DoughType   *int              `json:"doughType,omitempty"`
	Ingredients []OrderIngredient `json:"ingredients,omitempty"`
}

// OrderIngredient добавка к позиции.
type OrderIngredient struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// LineTotal стоимость позиции с добавками.
func (i OrderItem) LineTotal() decimal.Decimal {
	unit := i.Price
	for _, ing := range i.Ingredients {
		unit = unit.Add(ing.Price)
	}
	return unit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderBrief минимальная проекция заказа для обработки кнопок кухни.
type OrderBrief struct {
	ID              string
	Status          OrderStatus
	Address         string
	Type            DeliveryType
	ExpectedReadyAt *time.Time
	ReadyAt         *time.Time
}

// OrderFilter параметры выборки заказов в админке.
type OrderFilter struct {
	Status OrderStatus
	Limit  int
	Offset int
}

// OrderStatusResponse ответ эндпоинта статуса заказа.
type OrderStatusResponse struct {
	ID              string              `json:"id"`
	Status          OrderStatus         `json:"status"`
	ExpectedReadyAt *time.Time          `json:"expectedReadyAt,omitempty"`
	ReadyAt         *time.Time          `json:"readyAt,omitempty"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	Type            DeliveryType        `json:"type"`
	FullName        string              `json:"fullName"`
	Paid            bool                `json:"paid"`
	Items           []OrderItemResponse `json:"items"`
	PollIntervalMs  int64               `json:"pollIntervalMs"`
}

// OrderItemResponse краткая позиция для страницы статуса.
type OrderItemResponse struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Size      *int   `json:"size,omitempty"`
	DoughType *int   `json:"doughType,omitempty"`
}
