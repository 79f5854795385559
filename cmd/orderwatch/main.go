// Команда orderwatch следит за статусом заказа так же, как страница
// отслеживания: опрашивает сервер с адаптивным интервалом до конечного статуса.
// SIGUSR1 запускает внеочередной опрос.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romanchykov-webdev/pizzeria/internal/logging"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/tracking"
	"github.com/sirupsen/logrus"
)

func main() {
	baseURL := flag.String("a", "http://localhost:8080", "адрес сервиса")
	orderID := flag.String("order", "", "id заказа")
	logLevel := flag.String("log-level", "warn", "уровень логирования")
	flag.Parse()

	if *orderID == "" {
		fmt.Fprintln(os.Stderr, "usage: orderwatch -order <id> [-a http://host:port]")
		os.Exit(2)
	}

	logger, err := logging.New(*logLevel, os.Stderr)
	if err != nil {
		logrus.Fatalf("failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := tracking.NewHTTPStatusClient(*baseURL, 5*time.Second)
	poller := tracking.NewPoller(client, *orderID, printUpdate, logger)

	refocus := make(chan os.Signal, 1)
	signal.Notify(refocus, syscall.SIGUSR1)
	go func() {
		for {
			select {
			case <-refocus:
				poller.Refresh()
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("tracking stopped")
		os.Exit(1)
	}
}

func printUpdate(u tracking.Update) {
	s := u.Status
	line := fmt.Sprintf("%s  заказ #%s: %s", time.Now().Format("15:04:05"), s.ID, statusLabel(s.Status))
	if s.ExpectedReadyAt != nil && s.Status == models.OrderStatusProcessing {
		line += fmt.Sprintf(" (будет готов к %s)", s.ExpectedReadyAt.Local().Format("15:04"))
	}
	fmt.Println(line)

	if u.Celebrate {
		fmt.Println("🎉🍕 Ваш заказ готов! Приятного аппетита! 🍕🎉")
	}
}

func statusLabel(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusPending:
		return "ожидает подтверждения"
	case models.OrderStatusProcessing:
		return "готовится"
	case models.OrderStatusReady:
		return "готов"
	case models.OrderStatusCancelled:
		return "отменён"
	}
	return string(status)
}
