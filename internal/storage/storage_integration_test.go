//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/romanchykov-webdev/pizzeria/internal/migrations"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("pizzeria_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	require.NoError(t, migrations.Run(db, nil))
	require.NoError(t, db.Close())

	return pool
}

func newTestOrder() *models.Order {
	size, dough := 30, 1
	return &models.Order{
		ID:          uuid.NewString(),
		TotalAmount: decimal.NewFromInt(420),
		Items: []models.OrderItem{
			{ProductName: "Маргарита", Quantity: 1, Price: decimal.NewFromInt(420), Size: &size, DoughType: &dough},
		},
		FullName:  "Иван Петров",
		Phone:     "+380501112233",
		Email:     "ivan@example.com",
		Address:   "Киев, ул. Крещатик, 1",
		Type:      models.DeliveryTypeDelivery,
		CartToken: uuid.NewString(),
	}
}

func TestPostgresUserStorage(t *testing.T) {
	pool := setupPostgres(t)
	storage := NewPostgresUserStorage(pool)
	ctx := context.Background()

	user := &models.User{Login: "admin", PasswordHash: "hash"}
	require.NoError(t, storage.Create(ctx, user))
	assert.Equal(t, models.UserRoleAdmin, user.Role)

	got, err := storage.GetByLogin(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = storage.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Login)

	err = storage.Create(ctx, &models.User{Login: "admin", PasswordHash: "other"})
	assert.ErrorIs(t, err, ErrLoginExists)

	_, err = storage.GetByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPostgresOrderStorage_Lifecycle(t *testing.T) {
	pool := setupPostgres(t)
	storage := NewPostgresOrderStorage(pool)
	ctx := context.Background()

	order := newTestOrder()
	require.NoError(t, storage.Create(ctx, order))
	assert.ErrorIs(t, storage.Create(ctx, order), ErrOrderAlreadyExists)

	require.NoError(t, storage.MarkPaid(ctx, order.ID, "pi_123"))
	assert.ErrorIs(t, storage.MarkPaid(ctx, "missing", "pi_1"), ErrOrderNotFound)

	got, err := storage.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
	require.NotNil(t, got.PaymentID)
	assert.Equal(t, "pi_123", *got.PaymentID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Маргарита", got.Items[0].ProductName)

	eta := time.Now().Add(20 * time.Minute).UTC().Truncate(time.Second)
	brief, err := storage.Transition(ctx, order.ID, TransitionUpdate{
		From:            models.SourcesFor(models.OrderStatusProcessing),
		To:              models.OrderStatusProcessing,
		ExpectedReadyAt: &eta,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, brief.Status)
	require.NotNil(t, brief.ExpectedReadyAt)
	assert.True(t, brief.ExpectedReadyAt.Equal(eta))

	readyAt := time.Now().UTC().Truncate(time.Second)
	brief, err = storage.Transition(ctx, order.ID, TransitionUpdate{
		From:    models.SourcesFor(models.OrderStatusReady),
		To:      models.OrderStatusReady,
		ReadyAt: &readyAt,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReady, brief.Status)
	require.NotNil(t, brief.ExpectedReadyAt, "ETA must survive the READY transition")

	// READY терминален: никакой переход больше не применяется.
	_, err = storage.Transition(ctx, order.ID, TransitionUpdate{
		From: models.SourcesFor(models.OrderStatusProcessing),
		To:   models.OrderStatusProcessing,
	})
	assert.ErrorIs(t, err, ErrStatusConflict)

	_, err = storage.Transition(ctx, "missing", TransitionUpdate{
		From: models.SourcesFor(models.OrderStatusReady),
		To:   models.OrderStatusReady,
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	orders, err := storage.List(ctx, models.OrderFilter{Status: models.OrderStatusReady, Limit: 10})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	require.NoError(t, storage.Delete(ctx, order.ID))
	assert.ErrorIs(t, storage.Delete(ctx, order.ID), ErrOrderNotFound)
}

func TestPostgresOrderStorage_AwaitingKitchen(t *testing.T) {
	pool := setupPostgres(t)
	storage := NewPostgresOrderStorage(pool)
	ctx := context.Background()

	paid := newTestOrder()
	require.NoError(t, storage.Create(ctx, paid))
	require.NoError(t, storage.MarkPaid(ctx, paid.ID, "pi_paid"))

	unpaid := newTestOrder()
	require.NoError(t, storage.Create(ctx, unpaid))

	orders, err := storage.ListAwaitingKitchen(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, paid.ID, orders[0].ID)

	require.NoError(t, storage.MarkReminded(ctx, paid.ID))

	orders, err = storage.ListAwaitingKitchen(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPostgresCartStorage_ClearByTokenIsIdempotent(t *testing.T) {
	pool := setupPostgres(t)
	storage := NewPostgresCartStorage(pool)
	ctx := context.Background()

	cart := &models.Cart{
		Token:       uuid.NewString(),
		TotalAmount: decimal.NewFromInt(840),
		Items: []models.CartItem{
			{ProductItemID: 1, Quantity: 2},
			{ProductItemID: 7, Quantity: 1},
		},
	}
	require.NoError(t, storage.Create(ctx, cart))

	for i := 0; i < 2; i++ {
		require.NoError(t, storage.ClearByToken(ctx, cart.Token))

		got, err := storage.GetByToken(ctx, cart.Token)
		require.NoError(t, err)
		assert.Empty(t, got.Items)
		assert.True(t, got.TotalAmount.IsZero())
	}

	assert.NoError(t, storage.ClearByToken(ctx, "unknown-token"))
}
