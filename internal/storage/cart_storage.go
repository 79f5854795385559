package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrCartNotFound = errors.New("cart not found")
)

// PostgresCartStorage реализует хранилище корзин для PostgreSQL.
type PostgresCartStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresCartStorage создаёт новый экземпляр.
func NewPostgresCartStorage(pool *pgxpool.Pool) *PostgresCartStorage {
	return &PostgresCartStorage{pool: pool}
}

// Create создаёт корзину вместе с позициями.
func (s *PostgresCartStorage) Create(ctx context.Context, cart *models.Cart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO carts (id, token, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at
	`, cart.ID, cart.Token, cart.TotalAmount).Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}

	for i := range cart.Items {
		item := &cart.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.CartID = cart.ID
		_, err := tx.Exec(ctx, `
			INSERT INTO cart_items (id, cart_id, product_item_id, quantity, created_at)
			VALUES ($1, $2, $3, $4, NOW())
		`, item.ID, item.CartID, item.ProductItemID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to create cart item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cart: %w", err)
	}
	return nil
}

// GetByToken возвращает корзину с позициями.
func (s *PostgresCartStorage) GetByToken(ctx context.Context, token string) (*models.Cart, error) {
	var cart models.Cart
	err := s.pool.QueryRow(ctx, `
		SELECT id, token, total_amount, created_at, updated_at
		FROM carts
		WHERE token = $1
	`, token).Scan(&cart.ID, &cart.Token, &cart.TotalAmount, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, cart_id, product_item_id, quantity, created_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at
	`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductItemID, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return &cart, nil
}

// ClearByToken удаляет позиции корзины и обнуляет сумму.
// Повторный вызов и отсутствующая корзина не считаются ошибкой.
func (s *PostgresCartStorage) ClearByToken(ctx context.Context, token string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var cartID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM carts WHERE token = $1 FOR UPDATE`, token).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("failed to lock cart: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE carts
		SET total_amount = $2, updated_at = NOW()
		WHERE id = $1
	`, cartID, decimal.Zero)
	if err != nil {
		return fmt.Errorf("failed to reset cart total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cart clear: %w", err)
	}
	return nil
}
