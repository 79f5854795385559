package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
)

// SecretHeader заголовок, которым Telegram подписывает запросы вебхука.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

const defaultCallTimeout = 10 * time.Second

// ErrNotConfigured возвращается всеми вызовами, если не заданы токен или чат.
var ErrNotConfigured = errors.New("telegram is not configured")

// botAPI подмножество методов *bot.Bot, которое нужно клиенту.
type botAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*tgmodels.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SetWebhook(ctx context.Context, params *bot.SetWebhookParams) (bool, error)
}

// Messenger исходящие вызовы, которые используют уведомления и обработчик кнопок.
type Messenger interface {
	SendMessage(ctx context.Context, text string, markup *tgmodels.InlineKeyboardMarkup) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup *tgmodels.InlineKeyboardMarkup) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Client обёртка над Bot API с фиксированным чатом кухни.
type Client struct {
	api     botAPI
	chatID  int64
	timeout time.Duration
	logger  logrus.FieldLogger
}

// NewClient создаёт клиента. Без токена или чата возвращается выключенный
// клиент: каждый вызов пишет предупреждение и возвращает ErrNotConfigured.
func NewClient(token string, chatID int64, logger logrus.FieldLogger) (*Client, error) {
	c := &Client{
		chatID:  chatID,
		timeout: defaultCallTimeout,
		logger:  logger.WithField("component", "telegram"),
	}
	if token == "" || chatID == 0 {
		c.logger.Warn("telegram token or chat id is missing, notifications are disabled")
		return c, nil
	}

	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	c.api = b
	return c, nil
}

func newClientWithAPI(api botAPI, chatID int64, logger logrus.FieldLogger) *Client {
	return &Client{api: api, chatID: chatID, timeout: defaultCallTimeout, logger: logger}
}

// Enabled сообщает, настроен ли клиент.
func (c *Client) Enabled() bool {
	return c.api != nil
}

func (c *Client) disabled(call string) error {
	c.logger.WithField("call", call).Warn("telegram call skipped: not configured")
	return ErrNotConfigured
}

// SendMessage отправляет сообщение в чат кухни и возвращает его message_id.
func (c *Client) SendMessage(ctx context.Context, text string, markup *tgmodels.InlineKeyboardMarkup) (int, error) {
	if !c.Enabled() {
		return 0, c.disabled("sendMessage")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := &bot.SendMessageParams{ChatID: c.chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	msg, err := c.api.SendMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("telegram sendMessage: %w", err)
	}
	return msg.ID, nil
}

// EditMessage заменяет текст и клавиатуру сообщения.
func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup *tgmodels.InlineKeyboardMarkup) error {
	if !c.Enabled() {
		return c.disabled("editMessageText")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := &bot.EditMessageTextParams{ChatID: chatID, MessageID: messageID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := c.api.EditMessageText(ctx, params); err != nil {
		return fmt.Errorf("telegram editMessageText: %w", err)
	}
	return nil
}

// AnswerCallback закрывает "часики" на кнопке коротким уведомлением.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if !c.Enabled() {
		return c.disabled("answerCallbackQuery")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}); err != nil {
		return fmt.Errorf("telegram answerCallbackQuery: %w", err)
	}
	return nil
}

// SetWebhook регистрирует URL вебхука, принимающего только нажатия кнопок.
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	if !c.Enabled() {
		return c.disabled("setWebhook")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.api.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:            webhookURL,
		SecretToken:    secret,
		AllowedUpdates: []string{"callback_query"},
	}); err != nil {
		return fmt.Errorf("telegram setWebhook: %w", err)
	}
	return nil
}
