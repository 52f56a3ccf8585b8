package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config keeps runtime settings for the tracker binaries.
type Config struct {
	TelegramToken string `toml:"telegram_token"`
	OwnerID       int64  `toml:"owner_id"`
	DatabaseURL   string `toml:"database_url"`
	Timezone      string `toml:"timezone"`
	DigestTime    string `toml:"digest_time"`
	LogDir        string `toml:"log_dir"`
	Debug         bool   `toml:"debug"`
}

const (
	defaultDatabaseURL = "tracker.db"
	defaultDigestTime  = "20:00"
	defaultLogDir      = "logs"
)

// Load reads the optional TOML file named by TRACKER_CONFIG, then applies
// environment variables on top, then fills defaults.
func Load() (Config, error) {
	var cfg Config

	if path := strings.TrimSpace(os.Getenv("TRACKER_CONFIG")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if cfg.DigestTime == "" {
		cfg.DigestTime = defaultDigestTime
	}
	if cfg.LogDir == "" {
		cfg.LogDir = defaultLogDir
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	return cfg, nil
}

// RequireBot checks the settings only the Telegram front end needs.
func (c Config) RequireBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.OwnerID == 0 {
		return fmt.Errorf("TELEGRAM_OWNER_ID is required")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); v != "" {
		cfg.TelegramToken = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_OWNER_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_OWNER_ID must be a number: %w", err)
		}
		cfg.OwnerID = id
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TRACKER_TIMEZONE")); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(os.Getenv("DIGEST_TIME")); v != "" {
		cfg.DigestTime = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_DIR")); v != "" {
		cfg.LogDir = v
	}
	if v := strings.TrimSpace(os.Getenv("DEBUG")); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DEBUG must be a boolean: %w", err)
		}
		cfg.Debug = debug
	}
	return nil
}
