package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath   string `envconfig:"DB_PATH" default:"./data/controller.db"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":4046"` // CRM webhook + healthz
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error

	// Business calendar. Every timestamp in the ledger is interpreted in
	// BusinessTZ; timestamps before DayBoundaryHour belong to the
	// previous business day.
	BusinessTZ      string `envconfig:"BUSINESS_TZ" default:"Asia/Makassar"`
	DayBoundaryHour int    `envconfig:"DAY_BOUNDARY_HOUR" default:"0"`

	// Scheduled jobs, business-local HH:MM.
	AutoCloseAt string `envconfig:"AUTO_CLOSE_AT" default:"23:59"`
	ExportAt    string `envconfig:"EXPORT_AT" default:"01:00"`
	ReminderAt  string `envconfig:"REMINDER_AT" default:"12:00"` // weekdays only

	ExportPath string `envconfig:"EXPORT_PATH" default:"./data/stats.xlsx"`

	// AdminIDs may manage staff and trigger exports from chat.
	AdminIDs  []int64 `envconfig:"ADMIN_IDS"`
	LogChatID int64   `envconfig:"LOG_CHAT_ID"` // chat all worker messages are mirrored to
}

// Load reads environment variables into Config and validates the fields
// that would otherwise fail deep inside the app.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if _, err := time.LoadLocation(cfg.BusinessTZ); err != nil {
		return cfg, fmt.Errorf("BUSINESS_TZ: %w", err)
	}
	if cfg.DayBoundaryHour < 0 || cfg.DayBoundaryHour > 23 {
		return cfg, fmt.Errorf("DAY_BOUNDARY_HOUR out of range: %d", cfg.DayBoundaryHour)
	}
	for _, v := range []struct{ name, val string }{
		{"AUTO_CLOSE_AT", cfg.AutoCloseAt},
		{"EXPORT_AT", cfg.ExportAt},
		{"REMINDER_AT", cfg.ReminderAt},
	} {
		if _, _, err := ParseHHMM(v.val); err != nil {
			return cfg, fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return cfg, nil
}

// IsAdmin reports whether the given Telegram user may use admin flows.
func (c Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ParseHHMM parses a "HH:MM" clock value.
func ParseHHMM(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
