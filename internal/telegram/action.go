// Package telegram отправляет заказы в чат кухни и обрабатывает нажатия кнопок.
package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxCallbackDataLen ограничение Telegram на callback_data.
const MaxCallbackDataLen = 64

const (
	prefixTime   = "order_time"
	prefixStatus = "order_status"

	statusReady   = "ready"
	statusCooking = "cooking"
)

// ETAOptions варианты времени приготовления на кнопках, в минутах.
var ETAOptions = []int{10, 15, 20, 30, 45}

var (
	ErrInvalidAction  = errors.New("invalid callback action")
	ErrPayloadTooLong = errors.New("callback payload exceeds 64 bytes")
)

// ActionKind вид действия кухни.
type ActionKind int

const (
	ActionSetETA ActionKind = iota + 1
	ActionMarkReady
	ActionMarkCooking
)

func (k ActionKind) String() string {
	switch k {
	case ActionSetETA:
		return "set_eta"
	case ActionMarkReady:
		return "mark_ready"
	case ActionMarkCooking:
		return "mark_cooking"
	default:
		return "unknown"
	}
}

// Action разобранное нажатие кнопки. Minutes заполнен только для ActionSetETA.
type Action struct {
	Kind    ActionKind
	Minutes int
	OrderID string
}

func SetETA(orderID string, minutes int) Action {
	return Action{Kind: ActionSetETA, Minutes: minutes, OrderID: orderID}
}

func MarkReady(orderID string) Action {
	return Action{Kind: ActionMarkReady, OrderID: orderID}
}

func MarkCooking(orderID string) Action {
	return Action{Kind: ActionMarkCooking, OrderID: orderID}
}

// Encode возвращает callback_data для кнопки.
func (a Action) Encode() (string, error) {
	var data string
	switch a.Kind {
	case ActionSetETA:
		data = fmt.Sprintf("%s:%d:%s", prefixTime, a.Minutes, a.OrderID)
	case ActionMarkReady:
		data = fmt.Sprintf("%s:%s:%s", prefixStatus, statusReady, a.OrderID)
	case ActionMarkCooking:
		data = fmt.Sprintf("%s:%s:%s", prefixStatus, statusCooking, a.OrderID)
	default:
		return "", ErrInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return "", ErrPayloadTooLong
	}
	return data, nil
}

// ParseAction разбирает callback_data вида "глагол:значение:id заказа".
func ParseAction(data string) (Action, error) {
	if len(data) > MaxCallbackDataLen {
		return Action{}, ErrPayloadTooLong
	}

	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, data)
	}
	verb, value, orderID := parts[0], parts[1], parts[2]

	switch verb {
	case prefixTime:
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes < 1 || minutes > 240 {
			return Action{}, fmt.Errorf("%w: bad minutes %q", ErrInvalidAction, value)
		}
		return SetETA(orderID, minutes), nil
	case prefixStatus:
		switch value {
		case statusReady:
			return MarkReady(orderID), nil
		case statusCooking:
			return MarkCooking(orderID), nil
		}
	}

	return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, data)
}
