package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/romanchykov-webdev/pizzeria/internal/telegram"
	"github.com/sirupsen/logrus"
)

// CallbackProcessor выполняет нажатие кнопки в чате.
type CallbackProcessor interface {
	Handle(ctx context.Context, q *telegram.CallbackQuery)
}

// TelegramHandler принимает обновления бота.
type TelegramHandler struct {
	callbacks CallbackProcessor
	secret    string
	logger    logrus.FieldLogger
}

// NewTelegramHandler создаёт обработчик. Пустой secret отключает проверку заголовка.
func NewTelegramHandler(callbacks CallbackProcessor, secret string, logger logrus.FieldLogger) *TelegramHandler {
	return &TelegramHandler{
		callbacks: callbacks,
		secret:    secret,
		logger:    logger.WithField("component", "telegram_webhook"),
	}
}

// Webhook обрабатывает POST /api/webhooks/telegram.
// Отвечает 200 на любое обновление, чтобы Telegram не повторял доставку.
func (h *TelegramHandler) Webhook(c echo.Context) error {
	if h.secret != "" {
		got := c.Request().Header.Get(telegram.SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid secret token")
		}
	}

	var update telegram.Update
	if err := c.Bind(&update); err != nil {
		h.logger.WithError(err).Warn("failed to decode telegram update")
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	}

	if update.CallbackQuery != nil {
		h.callbacks.Handle(c.Request().Context(), update.CallbackQuery)
	} else {
		h.logger.WithField("update_id", update.UpdateID).Debug("update without callback ignored")
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
