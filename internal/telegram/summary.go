package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/shopspring/decimal"
)

const currency = "₴"

var doughNames = map[int]string{
	1: "традиционное",
	2: "тонкое",
}

// FormatOrderSummary текст уведомления о новом оплаченном заказе.
func FormatOrderSummary(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🍕 Новый заказ #%s\n\n", order.ID)
	fmt.Fprintf(&b, "👤 Клиент: %s\n", customerText(order.FullName))
	fmt.Fprintf(&b, "📞 Телефон: %s\n", customerText(order.Phone))
	if order.Email != "" {
		fmt.Fprintf(&b, "✉️ Email: %s\n", customerText(order.Email))
	}

	if order.Type == models.DeliveryTypeDelivery {
		b.WriteString("🚚 Доставка\n")
		fmt.Fprintf(&b, "🏠 Адрес: %s\n", customerText(order.Address))
	} else {
		b.WriteString("🏃 Самовывоз\n")
	}
	if c := strings.TrimSpace(order.Comment); c != "" {
		fmt.Fprintf(&b, "💬 Комментарий: %s\n", customerText(c))
	}

	b.WriteString("\n🧾 Состав:\n")
	for i, item := range order.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, formatItem(item))
	}

	fmt.Fprintf(&b, "\n💰 Итого: %s\n", money(order.TotalAmount))
	if order.IsPaid() {
		b.WriteString("💳 Оплачено онлайн")
	} else {
		b.WriteString("💵 Оплата при получении")
	}

	return b.String()
}

// FormatReminder текст напоминания о заказе, который ждёт кухню.
func FormatReminder(order *models.Order, now time.Time) string {
	waiting := now.Sub(order.CreatedAt).Round(time.Minute)
	return fmt.Sprintf("⏰ Заказ #%s ждёт ответа кухни уже %d мин\n\n%s",
		order.ID, int(waiting.Minutes()), FormatOrderSummary(order))
}

// customerText убирает из полей клиента символ разделителя блока статуса.
func customerText(s string) string {
	return strings.ReplaceAll(s, separatorRune, "-")
}

func formatItem(item models.OrderItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ×%d", item.ProductName, item.Quantity)

	var details []string
	if item.Size != nil {
		details = append(details, fmt.Sprintf("%d см", *item.Size))
	}
	if item.DoughType != nil {
		if name, ok := doughNames[*item.DoughType]; ok {
			details = append(details, name+" тесто")
		}
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
	}

	if len(item.Ingredients) > 0 {
		names := make([]string, 0, len(item.Ingredients))
		for _, ing := range item.Ingredients {
			names = append(names, ing.Name)
		}
		fmt.Fprintf(&b, " + %s", strings.Join(names, ", "))
	}

	fmt.Fprintf(&b, " = %s", money(item.LineTotal()))
	return b.String()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2) + " " + currency
}
