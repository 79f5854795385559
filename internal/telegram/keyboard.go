package telegram

import (
	"fmt"

	tgmodels "github.com/go-telegram/bot/models"
)

const (
	labelCooking   = "👨‍🍳 Готовится"
	labelReady     = "✅ Готов"
	labelMarkReady = "✅ Заказ готов"
)

// OrderKeyboard клавиатура нового заказа: статусы в первом ряду, ETA во втором.
func OrderKeyboard(orderID string) (*tgmodels.InlineKeyboardMarkup, error) {
	cooking, err := button(labelCooking, MarkCooking(orderID))
	if err != nil {
		return nil, err
	}
	ready, err := button(labelReady, MarkReady(orderID))
	if err != nil {
		return nil, err
	}

	etaRow := make([]tgmodels.InlineKeyboardButton, 0, len(ETAOptions))
	for _, minutes := range ETAOptions {
		b, err := button(fmt.Sprintf("⏱ %d мин", minutes), SetETA(orderID, minutes))
		if err != nil {
			return nil, err
		}
		etaRow = append(etaRow, b)
	}

	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{cooking, ready},
			etaRow,
		},
	}, nil
}

// ReadyKeyboard единственная кнопка "заказ готов".
func ReadyKeyboard(orderID string) (*tgmodels.InlineKeyboardMarkup, error) {
	ready, err := button(labelMarkReady, MarkReady(orderID))
	if err != nil {
		return nil, err
	}
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{{ready}},
	}, nil
}

// EmptyKeyboard убирает кнопки у сообщения.
func EmptyKeyboard() *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: [][]tgmodels.InlineKeyboardButton{}}
}

func button(text string, a Action) (tgmodels.InlineKeyboardButton, error) {
	data, err := a.Encode()
	if err != nil {
		return tgmodels.InlineKeyboardButton{}, fmt.Errorf("button %q: %w", text, err)
	}
	return tgmodels.InlineKeyboardButton{Text: text, CallbackData: data}, nil
}
