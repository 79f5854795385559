package config

import (
	"errors"
	"testing"
	"time"
)

func envFrom(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		env          map[string]string
		wantAddress  string
		wantDBURI    string
		wantSecret   string
		wantTokenExp time.Duration
		wantReminder time.Duration
	}{
		{
			name:         "default values",
			wantAddress:  "localhost:8080",
			wantSecret:   "default-secret-change-in-production",
			wantTokenExp: 24 * time.Hour,
			wantReminder: 10 * time.Minute,
		},
		{
			name:         "flags only",
			args:         []string{"-a", "localhost:9090", "-d", "postgresql://db", "-t", "36h", "-reminder", "5m"},
			wantAddress:  "localhost:9090",
			wantDBURI:    "postgresql://db",
			wantSecret:   "default-secret-change-in-production",
			wantTokenExp: 36 * time.Hour,
			wantReminder: 5 * time.Minute,
		},
		{
			name: "env overrides flags",
			args: []string{"-a", "localhost:9090", "-d", "postgresql://flag", "-t", "36h"},
			env: map[string]string{
				"RUN_ADDRESS":      ":8081",
				"DATABASE_URI":     "postgresql://env",
				"JWT_SECRET":       "secret",
				"TOKEN_EXPIRATION": "2h",
				"REMINDER_AFTER":   "0s",
			},
			wantAddress:  ":8081",
			wantDBURI:    "postgresql://env",
			wantSecret:   "secret",
			wantTokenExp: 2 * time.Hour,
			wantReminder: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse("cmd", tt.args, envFrom(tt.env))
			if err != nil {
				t.Fatalf("parse() error = %v", err)
			}
			if cfg.RunAddress != tt.wantAddress {
				t.Errorf("RunAddress = %v, want %v", cfg.RunAddress, tt.wantAddress)
			}
			if cfg.DatabaseURI != tt.wantDBURI {
				t.Errorf("DatabaseURI = %v, want %v", cfg.DatabaseURI, tt.wantDBURI)
			}
			if cfg.JWTSecret != tt.wantSecret {
				t.Errorf("JWTSecret = %v, want %v", cfg.JWTSecret, tt.wantSecret)
			}
			if cfg.TokenExpiration != tt.wantTokenExp {
				t.Errorf("TokenExpiration = %v, want %v", cfg.TokenExpiration, tt.wantTokenExp)
			}
			if cfg.ReminderAfter != tt.wantReminder {
				t.Errorf("ReminderAfter = %v, want %v", cfg.ReminderAfter, tt.wantReminder)
			}
			if cfg.Timezone != "Europe/Kyiv" {
				t.Errorf("Timezone = %v, want Europe/Kyiv", cfg.Timezone)
			}
			if cfg.RabbitMQExchange != "order_status" {
				t.Errorf("RabbitMQExchange = %v, want order_status", cfg.RabbitMQExchange)
			}
		})
	}
}

func TestParse_Telegram(t *testing.T) {
	cfg, err := parse("cmd", nil, envFrom(map[string]string{
		"TELEGRAM_BOT_TOKEN": "123:abc",
		"TELEGRAM_CHAT_ID":   "-100200300",
	}))
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}
	if cfg.TelegramChatID != -100200300 {
		t.Errorf("TelegramChatID = %d, want -100200300", cfg.TelegramChatID)
	}
	if !cfg.TelegramEnabled() {
		t.Error("TelegramEnabled() = false, want true")
	}
}

func TestParse_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "chat id", env: map[string]string{"TELEGRAM_CHAT_ID": "chat"}},
		{name: "token expiration", env: map[string]string{"TOKEN_EXPIRATION": "tomorrow"}},
		{name: "reminder", env: map[string]string{"REMINDER_AFTER": "soon"}},
		{name: "unknown flag", args: []string{"-x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parse("cmd", tt.args, envFrom(tt.env)); err == nil {
				t.Error("parse() expected error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseURI:         "postgresql://db",
			StripeWebhookSecret: "whsec_test",
			TokenExpiration:     time.Hour,
			Timezone:            "Europe/Kyiv",
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cfg := valid()
	cfg.DatabaseURI = ""
	cfg.StripeWebhookSecret = ""
	err := cfg.Validate()
	if !errors.Is(err, ErrMissingDatabaseURI) || !errors.Is(err, ErrMissingStripeSecret) {
		t.Errorf("Validate() error = %v, want both required errors", err)
	}

	cfg = valid()
	cfg.TokenExpiration = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidTokenLifetime) {
		t.Errorf("Validate() error = %v, want ErrInvalidTokenLifetime", err)
	}

	cfg = valid()
	cfg.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for unknown timezone")
	}
}

func TestWarnings(t *testing.T) {
	cfg := &Config{JWTSecret: "secret", AdminLogin: "admin", AdminPassword: "pass"}
	if got := cfg.Warnings(); len(got) != 1 {
		t.Errorf("Warnings() = %v, want only the telegram warning", got)
	}

	cfg.TelegramBotToken = "123:abc"
	cfg.TelegramChatID = 1
	cfg.TelegramWebhookSecret = "s"
	if got := cfg.Warnings(); len(got) != 0 {
		t.Errorf("Warnings() = %v, want none", got)
	}
}
