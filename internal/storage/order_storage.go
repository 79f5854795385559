package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrStatusConflict возвращается, когда заказ есть, но его текущий статус
	// не входит в список допустимых исходных статусов перехода.
	ErrStatusConflict = errors.New("order status conflict")
)

// TransitionUpdate описывает изменение статуса заказа.
type TransitionUpdate struct {
	From            []models.OrderStatus
	To              models.OrderStatus
	ExpectedReadyAt *time.Time
	ReadyAt         *time.Time
}

// PostgresOrderStorage реализует хранилище заказов для PostgreSQL.
type PostgresOrderStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStorage создаёт новый экземпляр PostgresOrderStorage.
func NewPostgresOrderStorage(pool *pgxpool.Pool) *PostgresOrderStorage {
	return &PostgresOrderStorage{pool: pool}
}

const orderColumns = `id, status, payment_id, total_amount, items, full_name, phone, email, address,
	comment, type, cart_token, expected_ready_at, ready_at, reminded_at, created_at, updated_at`

// Create создаёт новый заказ.
func (s *PostgresOrderStorage) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, status, payment_id, total_amount, items, full_name, phone, email,
			address, comment, type, cart_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	err = s.pool.QueryRow(ctx, query,
		order.ID,
		order.Status,
		order.PaymentID,
		order.TotalAmount,
		items,
		order.FullName,
		order.Phone,
		order.Email,
		order.Address,
		order.Comment,
		order.Type,
		order.CartToken,
	).Scan(&order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrOrderAlreadyExists
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByID возвращает заказ целиком.
func (s *PostgresOrderStorage) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(s.pool.QueryRow(ctx, query, id))
}

// GetBrief возвращает только поля, нужные для обработки кнопок кухни.
func (s *PostgresOrderStorage) GetBrief(ctx context.Context, id string) (*models.OrderBrief, error) {
	query := `
		SELECT id, status, address, type, expected_ready_at, ready_at
		FROM orders
		WHERE id = $1
	`

	var brief models.OrderBrief
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&brief.ID,
		&brief.Status,
		&brief.Address,
		&brief.Type,
		&brief.ExpectedReadyAt,
		&brief.ReadyAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order brief: %w", err)
	}

	return &brief, nil
}

// MarkPaid сохраняет ссылку на платёж. Статус не меняется.
func (s *PostgresOrderStorage) MarkPaid(ctx context.Context, id, paymentID string) error {
	query := `
		UPDATE orders
		SET payment_id = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query, id, paymentID)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Transition меняет статус, только если текущий статус входит в upd.From.
// Возвращает обновлённую проекцию заказа.
func (s *PostgresOrderStorage) Transition(ctx context.Context, id string, upd TransitionUpdate) (*models.OrderBrief, error) {
	query := `
		UPDATE orders
		SET status = $2,
			expected_ready_at = COALESCE($3, expected_ready_at),
			ready_at = COALESCE($4, ready_at),
			updated_at = NOW()
		WHERE id = $1 AND status = ANY($5)
		RETURNING id, status, address, type, expected_ready_at, ready_at
	`

	from := make([]string, 0, len(upd.From))
	for _, st := range upd.From {
		from = append(from, string(st))
	}

	var brief models.OrderBrief
	err := s.pool.QueryRow(ctx, query, id, upd.To, upd.ExpectedReadyAt, upd.ReadyAt, from).Scan(
		&brief.ID,
		&brief.Status,
		&brief.Address,
		&brief.Type,
		&brief.ExpectedReadyAt,
		&brief.ReadyAt,
	)
	if err == nil {
		return &brief, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	// Ни одна строка не обновлена: либо заказа нет, либо статус уже другой.
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check order existence: %w", err)
	}
	if !exists {
		return nil, ErrOrderNotFound
	}
	return nil, ErrStatusConflict
}

// List возвращает заказы для админки (новые первыми).
func (s *PostgresOrderStorage) List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, query, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListAwaitingKitchen возвращает оплаченные заказы, которые кухня ещё не взяла
// в работу и по которым не отправлялось напоминание.
func (s *PostgresOrderStorage) ListAwaitingKitchen(ctx context.Context, createdBefore time.Time) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = 'PENDING'
			AND payment_id IS NOT NULL
			AND reminded_at IS NULL
			AND created_at < $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to query awaiting orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// MarkReminded отмечает, что напоминание по заказу отправлено.
func (s *PostgresOrderStorage) MarkReminded(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, `UPDATE orders SET reminded_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark order reminded: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Delete удаляет заказ.
func (s *PostgresOrderStorage) Delete(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func collectOrders(rows pgx.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return orders, nil
}

// scanOrder помогает читать заказ из строки результата.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order models.Order
		items []byte
	)

	err := row.Scan(
		&order.ID,
		&order.Status,
		&order.PaymentID,
		&order.TotalAmount,
		&items,
		&order.FullName,
		&order.Phone,
		&order.Email,
		&order.Address,
		&order.Comment,
		&order.Type,
		&order.CartToken,
		&order.ExpectedReadyAt,
		&order.ReadyAt,
		&order.RemindedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, fmt.Errorf("failed to decode order items: %w", err)
		}
	}

	return &order, nil
}
