package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Telegram
	TelegramToken string  `env:"TELEGRAM_BOT_TOKEN,required"`
	AdminIDs      []int64 `env:"ADMIN_IDS"` // operator allow-list

	// Disposable addresses
	MailDomain string `env:"MAIL_DOMAIN,required"` // e.g. vanish.example.com
	PageSize   int    `env:"INBOX_PAGE_SIZE" envDefault:"5"`

	// Database
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/vanishbot.db"`

	// Inbound SMTP
	SMTPListenAddr string `env:"SMTP_LISTEN_ADDR" envDefault:":2525"`

	// Outbound forwarding relay (optional; forwarding is disabled when unset)
	SMTPRelayAddr     string `env:"SMTP_RELAY_ADDR"`
	SMTPRelayUsername string `env:"SMTP_RELAY_USERNAME"`
	SMTPRelayPassword string `env:"SMTP_RELAY_PASSWORD"`

	// Admin operations
	BroadcastDelay    time.Duration `env:"BROADCAST_DELAY" envDefault:"50ms"`
	BroadcastDraftTTL time.Duration `env:"BROADCAST_DRAFT_TTL" envDefault:"10m"`
	StatsCacheTTL     time.Duration `env:"STATS_CACHE_TTL" envDefault:"5m"`
	InactiveAge       time.Duration `env:"INACTIVE_CLEANUP_AGE" envDefault:"2160h"` // 90 days

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// ForwardingEnabled returns true if an outbound relay is configured
func (c *Config) ForwardingEnabled() bool {
	return c.SMTPRelayAddr != ""
}

// IsAdmin reports whether the chat ID is on the operator allow-list
func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Addresses are stored and matched lowercase throughout
	cfg.MailDomain = strings.ToLower(strings.TrimSpace(cfg.MailDomain))

	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("INBOX_PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}

	return cfg, nil
}
