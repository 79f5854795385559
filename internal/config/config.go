package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"
)

const (
	defaultRunAddress      = "localhost:8080"
	defaultJWTSecret       = "default-secret-change-in-production"
	defaultTokenExpiration = 24 * time.Hour
	defaultTimezone        = "Europe/Kyiv"
	defaultReminderAfter   = 10 * time.Minute
	defaultExchange        = "order_status"
	defaultLogLevel        = "info"
)

var (
	ErrMissingDatabaseURI   = errors.New("DATABASE_URI is required")
	ErrMissingStripeSecret  = errors.New("STRIPE_WEBHOOK_SECRET is required")
	ErrInvalidTokenLifetime = errors.New("TOKEN_EXPIRATION must be positive")
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress  string
	DatabaseURI string

	StripeWebhookSecret string

	TelegramBotToken      string
	TelegramChatID        int64
	TelegramWebhookURL    string
	TelegramWebhookSecret string

	JWTSecret       string
	TokenExpiration time.Duration
	AdminLogin      string
	AdminPassword   string

	RabbitMQURL      string
	RabbitMQExchange string

	OTLPEndpoint string
	Timezone     string
	// ReminderAfter задержка напоминания кухне; 0 выключает воркер.
	ReminderAfter time.Duration
	LogLevel      string
}

// Load загружает конфигурацию из флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
func Load() (*Config, error) {
	return parse(os.Args[0], os.Args[1:], os.Getenv)
}

func parse(name string, args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "адрес и порт запуска сервиса")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	fs.DurationVar(&cfg.TokenExpiration, "t", defaultTokenExpiration, "время жизни токена админки")
	fs.DurationVar(&cfg.ReminderAfter, "reminder", defaultReminderAfter, "через сколько напомнить кухне о заказе")
	fs.StringVar(&cfg.LogLevel, "log-level", defaultLogLevel, "уровень логирования")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	setString(&cfg.RunAddress, getenv("RUN_ADDRESS"))
	setString(&cfg.DatabaseURI, getenv("DATABASE_URI"))
	setString(&cfg.LogLevel, getenv("LOG_LEVEL"))

	cfg.StripeWebhookSecret = getenv("STRIPE_WEBHOOK_SECRET")

	cfg.TelegramBotToken = getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramWebhookURL = getenv("TELEGRAM_WEBHOOK_URL")
	cfg.TelegramWebhookSecret = getenv("TELEGRAM_WEBHOOK_SECRET")
	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	cfg.JWTSecret = getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
	}
	if v := getenv("TOKEN_EXPIRATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_EXPIRATION: %w", err)
		}
		cfg.TokenExpiration = d
	}
	cfg.AdminLogin = getenv("ADMIN_LOGIN")
	cfg.AdminPassword = getenv("ADMIN_PASSWORD")

	cfg.RabbitMQURL = getenv("RABBITMQ_URL")
	cfg.RabbitMQExchange = defaultExchange
	setString(&cfg.RabbitMQExchange, getenv("RABBITMQ_EXCHANGE"))

	cfg.OTLPEndpoint = getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	cfg.Timezone = defaultTimezone
	setString(&cfg.Timezone, getenv("TIMEZONE"))

	if v := getenv("REMINDER_AFTER"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REMINDER_AFTER: %w", err)
		}
		cfg.ReminderAfter = d
	}

	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURI == "" {
		errs = append(errs, ErrMissingDatabaseURI)
	}
	if c.StripeWebhookSecret == "" {
		errs = append(errs, ErrMissingStripeSecret)
	}
	if c.TokenExpiration <= 0 {
		errs = append(errs, ErrInvalidTokenLifetime)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err))
	}
	return errors.Join(errs...)
}

// Warnings возвращает замечания, с которыми сервис всё же может работать.
func (c *Config) Warnings() []string {
	var warnings []string
	if !c.TelegramEnabled() {
		warnings = append(warnings, "TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID is not set, kitchen notifications are disabled")
	}
	if c.TelegramEnabled() && c.TelegramWebhookSecret == "" {
		warnings = append(warnings, "TELEGRAM_WEBHOOK_SECRET is not set, telegram webhook requests are not authenticated")
	}
	if c.JWTSecret == defaultJWTSecret {
		warnings = append(warnings, "JWT_SECRET is not set, using the default secret")
	}
	if c.AdminLogin == "" || c.AdminPassword == "" {
		warnings = append(warnings, "ADMIN_LOGIN or ADMIN_PASSWORD is not set, admin account is not provisioned")
	}
	return warnings
}

// TelegramEnabled сообщает, хватает ли настроек для отправки в Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// Location возвращает часовой пояс для текстов уведомлений.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
