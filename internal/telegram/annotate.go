package telegram

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/romanchykov-webdev/pizzeria/internal/models"
)

const (
	// Separator отделяет сводку заказа от блока статуса.
	Separator     = "━━━━━━━━━━━━━━━━"
	separatorRune = "━"
)

const (
	etaMarker     = "⏱ Время приготовления:"
	readyMarker   = "✅ ЗАКАЗ ГОТОВ!"
	cookingMarker = "👨‍🍳 Готовится..."
	mapMarker     = "📍 Карта:"

	mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="
)

// Блоки, дописанные до появления разделителя, вырезаются по шаблону.
var (
	legacyStatusBlock = regexp.MustCompile(`(?s)\n*(?:` + regexp.QuoteMeta(etaMarker) + `|` +
		regexp.QuoteMeta(readyMarker) + `|` + regexp.QuoteMeta(cookingMarker) + `).*$`)
	legacyMapBlock = regexp.MustCompile(`(?m)\n*^` + regexp.QuoteMeta(mapMarker) + `.*$`)
)

// ETAFooter блок с ожидаемым временем готовности.
func ETAFooter(minutes int, readyAt time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("%s %d мин\n🕐 Будет готов к: %s\n%s",
		etaMarker, minutes, readyAt.In(loc).Format("15:04"), cookingMarker)
}

// ReadyFooter блок готового заказа.
func ReadyFooter() string {
	return readyMarker
}

// CookingFooter блок заказа в работе без ETA.
func CookingFooter() string {
	return cookingMarker
}

// MapBlock ссылка на адрес доставки. Для самовывоза пусто.
func MapBlock(deliveryType models.DeliveryType, address string) string {
	address = strings.TrimSpace(address)
	if deliveryType != models.DeliveryTypeDelivery || address == "" {
		return ""
	}
	return mapMarker + " " + mapsSearchURL + url.QueryEscape(address)
}

// StripAnnotations возвращает текст сводки без блока статуса и ссылки на карту.
func StripAnnotations(text string) string {
	if idx := strings.LastIndex(text, Separator); idx >= 0 {
		return strings.TrimRight(text[:idx], " \n")
	}
	text = legacyMapBlock.ReplaceAllString(text, "")
	text = legacyStatusBlock.ReplaceAllString(text, "")
	return strings.TrimRight(text, " \n")
}

// Annotate заменяет блок статуса сообщения на новый. Пустые блоки пропускаются.
func Annotate(text string, blocks ...string) string {
	var b strings.Builder
	b.WriteString(StripAnnotations(text))
	b.WriteString("\n\n")
	b.WriteString(Separator)
	for _, block := range blocks {
		if block == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(block)
	}
	return b.String()
}
