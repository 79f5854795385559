package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderNotifier_NotifyNewOrder(t *testing.T) {
	messenger := newFakeMessenger()
	n := NewOrderNotifier(messenger, quietLogger())

	order := sampleOrder()
	require.NoError(t, n.NotifyNewOrder(context.Background(), order))

	require.Len(t, messenger.sent, 1)
	assert.Equal(t, FormatOrderSummary(order), messenger.sent[0].text)
	require.Len(t, messenger.sent[0].markup.InlineKeyboard, 2)
	assert.Equal(t, "order_status:cooking:clx1", messenger.sent[0].markup.InlineKeyboard[0][0].CallbackData)
}

func TestOrderNotifier_NotifyReminder(t *testing.T) {
	messenger := newFakeMessenger()
	n := NewOrderNotifier(messenger, quietLogger())

	order := sampleOrder()
	order.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return order.CreatedAt.Add(11 * time.Minute) }

	require.NoError(t, n.NotifyReminder(context.Background(), order))
	require.Len(t, messenger.sent, 1)
	assert.Contains(t, messenger.sent[0].text, "11 мин")
	assert.NotNil(t, messenger.sent[0].markup)
}

func TestOrderNotifier_Errors(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.sendErr = ErrNotConfigured
	n := NewOrderNotifier(messenger, quietLogger())

	err := n.NotifyNewOrder(context.Background(), sampleOrder())
	assert.True(t, errors.Is(err, ErrNotConfigured))

	order := sampleOrder()
	order.ID = "x-" + string(make([]byte, 60))
	assert.Error(t, NewOrderNotifier(newFakeMessenger(), quietLogger()).NotifyNewOrder(context.Background(), order))
}
