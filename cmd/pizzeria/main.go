package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romanchykov-webdev/pizzeria/internal/config"
	"github.com/romanchykov-webdev/pizzeria/internal/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, os.Stdout)
	if err != nil {
		logrus.Fatalf("failed to create logger: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Инициализация приложения
	app, err := NewApp(rootCtx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize application")
	}

	// Запуск сервера в отдельной горутине
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Start(rootCtx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			logger.WithError(err).Error("server error")
		}
	}
	rootCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("shutdown failed")
	}
}
