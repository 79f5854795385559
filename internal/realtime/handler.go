package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/services"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// StatusReader отдаёт текущий статус заказа.
type StatusReader interface {
	GetStatus(ctx context.Context, orderID string) (*models.OrderStatusResponse, error)
}

// Handler отдаёт поток событий статуса по websocket.
type Handler struct {
	hub      *Hub
	orders   StatusReader
	upgrader websocket.Upgrader
	logger   logrus.FieldLogger
}

func NewHandler(hub *Hub, orders StatusReader, logger logrus.FieldLogger) *Handler {
	return &Handler{
		hub:    hub,
		orders: orders,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.WithField("component", "realtime_handler"),
	}
}

// Serve обрабатывает GET /api/orders/:id/ws. Первым сообщением уходит текущий
// статус, затем каждое изменение. Соединение закрывается после конечного статуса.
func (h *Handler) Serve(c echo.Context) error {
	orderID := c.Param("id")

	// Подписка до чтения статуса: событие между чтением и upgrade не теряется.
	updates, unsubscribe := h.hub.Subscribe(orderID)
	defer unsubscribe()

	current, err := h.orders.GetStatus(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		h.logger.WithError(err).WithField("order_id", orderID).Error("failed to load order status")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrader уже ответил клиенту.
		h.logger.WithError(err).Debug("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	initial, err := json.Marshal(models.StatusEvent{
		OrderID:         current.ID,
		Status:          current.Status,
		ExpectedReadyAt: current.ExpectedReadyAt,
		ReadyAt:         current.ReadyAt,
		OccurredAt:      time.Now(),
	})
	if err != nil {
		return nil
	}
	if err := write(conn, websocket.TextMessage, initial); err != nil {
		return nil
	}
	if current.Status.IsTerminal() {
		closeNormally(conn)
		return nil
	}

	done := make(chan struct{})
	go readPump(conn, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-updates:
			if !ok {
				closeNormally(conn)
				return nil
			}
			if err := write(conn, websocket.TextMessage, msg); err != nil {
				return nil
			}
			var event models.StatusEvent
			if json.Unmarshal(msg, &event) == nil && event.Status.IsTerminal() {
				closeNormally(conn)
				return nil
			}
		case <-ticker.C:
			if err := write(conn, websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}

// readPump читает входящие кадры, чтобы обрабатывались pong и закрытие.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func write(conn *websocket.Conn, messageType int, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, data)
}

func closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
