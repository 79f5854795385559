package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart корзина покупателя, определяется токеном из cookie.
type Cart struct {
	ID          uuid.UUID       `db:"id"`
	Token       string          `db:"token"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Items       []CartItem      `db:"-"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// CartItem позиция корзины.
type CartItem struct {
	ID            uuid.UUID `db:"id"`
	CartID        uuid.UUID `db:"cart_id"`
	ProductItemID int64     `db:"product_item_id"`
	Quantity      int       `db:"quantity"`
	CreatedAt     time.Time `db:"created_at"`
}
