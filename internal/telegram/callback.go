package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/services"
	"github.com/sirupsen/logrus"
)

// Тексты всплывающих уведомлений на кнопках.
const (
	toastNotFound   = "❌ Заказ не найден"
	toastFinished   = "⚠️ Заказ уже завершён"
	toastError      = "⚠️ Ошибка, попробуйте ещё раз"
	toastReady      = "✅ Заказ отмечен готовым"
	toastCooking    = "👨‍🍳 Заказ готовится"
	toastETAPattern = "⏱ Время установлено: %d мин"
)

// CallbackHandler обрабатывает нажатия кнопок под сообщениями о заказах.
type CallbackHandler struct {
	kitchen   services.KitchenService
	messenger Messenger
	loc       *time.Location
	logger    logrus.FieldLogger
}

func NewCallbackHandler(kitchen services.KitchenService, messenger Messenger, loc *time.Location, logger logrus.FieldLogger) *CallbackHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CallbackHandler{
		kitchen:   kitchen,
		messenger: messenger,
		loc:       loc,
		logger:    logger.WithField("component", "telegram_callback"),
	}
}

// Handle выполняет действие кнопки. Ошибки не возвращаются: на каждое нажатие
// отвечает всплывающее уведомление, иначе кнопка остаётся в состоянии загрузки.
func (h *CallbackHandler) Handle(ctx context.Context, q *CallbackQuery) {
	log := h.logger.WithFields(logrus.Fields{
		"callback_id": q.ID,
		"data":        q.Data,
		"from":        q.From.ID,
	})

	action, err := ParseAction(q.Data)
	if err != nil {
		log.WithError(err).Warn("unrecognized callback payload")
		h.answer(ctx, log, q.ID, toastError)
		return
	}
	log = log.WithFields(logrus.Fields{"order_id": action.OrderID, "action": action.Kind.String()})

	brief, err := h.apply(ctx, action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			log.Info("callback for unknown order")
			h.answer(ctx, log, q.ID, toastNotFound)
		case errors.Is(err, services.ErrInvalidTransition):
			log.WithError(err).Info("callback rejected for finished order")
			h.answer(ctx, log, q.ID, toastFinished)
		default:
			log.WithError(err).Error("callback action failed")
			h.answer(ctx, log, q.ID, toastError)
		}
		return
	}

	text, keyboard, toast, err := h.render(q, action, brief)
	if err != nil {
		log.WithError(err).Error("failed to render order message")
		h.answer(ctx, log, q.ID, toastError)
		return
	}

	if q.Message != nil {
		if err := h.messenger.EditMessage(ctx, q.Message.Chat.ID, q.Message.MessageID, text, keyboard); err != nil {
			// Статус уже сохранён; сообщение догонит при следующем нажатии.
			log.WithError(err).Warn("failed to edit order message")
		}
	}

	h.answer(ctx, log, q.ID, toast)
}

func (h *CallbackHandler) apply(ctx context.Context, a Action) (*models.OrderBrief, error) {
	switch a.Kind {
	case ActionSetETA:
		return h.kitchen.SetETA(ctx, a.OrderID, a.Minutes)
	case ActionMarkReady:
		return h.kitchen.MarkReady(ctx, a.OrderID)
	case ActionMarkCooking:
		return h.kitchen.MarkCooking(ctx, a.OrderID)
	}
	return nil, fmt.Errorf("%w: kind %d", ErrInvalidAction, a.Kind)
}

func (h *CallbackHandler) render(q *CallbackQuery, a Action, brief *models.OrderBrief) (string, *tgmodels.InlineKeyboardMarkup, string, error) {
	var original string
	if q.Message != nil {
		original = q.Message.Text
	}

	switch a.Kind {
	case ActionSetETA:
		readyAt := time.Now()
		if brief.ExpectedReadyAt != nil {
			readyAt = *brief.ExpectedReadyAt
		}
		keyboard, err := ReadyKeyboard(brief.ID)
		if err != nil {
			return "", nil, "", err
		}
		text := Annotate(original, ETAFooter(a.Minutes, readyAt, h.loc), MapBlock(brief.Type, brief.Address))
		return text, keyboard, fmt.Sprintf(toastETAPattern, a.Minutes), nil

	case ActionMarkCooking:
		keyboard, err := ReadyKeyboard(brief.ID)
		if err != nil {
			return "", nil, "", err
		}
		text := Annotate(original, CookingFooter(), MapBlock(brief.Type, brief.Address))
		return text, keyboard, toastCooking, nil

	case ActionMarkReady:
		// Ссылка на карту у готового заказа не добавляется.
		return Annotate(original, ReadyFooter()), EmptyKeyboard(), toastReady, nil
	}

	return "", nil, "", ErrInvalidAction
}

func (h *CallbackHandler) answer(ctx context.Context, log logrus.FieldLogger, callbackID, text string) {
	if err := h.messenger.AnswerCallback(ctx, callbackID, text); err != nil {
		log.WithError(err).Warn("failed to answer callback")
	}
}
