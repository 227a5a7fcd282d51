package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string
	WSAddr   string

	RedisURL    string
	DatabaseURL string

	// AllowedAreas restricts which area ids may be opened. Empty allows any.
	AllowedAreas []string
	MessagesDir  string

	SnapshotTTLSec int
	HistoryLimit   int
	PingInterval   time.Duration
}

// SnapshotTTL is the lifetime of a persisted area record.
func (c *AppConfig) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLSec) * time.Second
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:       ":8080",
		WSAddr:         ":8081",
		SnapshotTTLSec: 86400,
		HistoryLimit:   20,
		PingInterval:   30 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("WS_ADDR")); v != "" {
		cfg.WSAddr = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))
	cfg.AllowedAreas = splitList(os.Getenv("ALLOWED_AREAS"))

	if v := strings.TrimSpace(os.Getenv("SNAPSHOT_TTL_SEC")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("SNAPSHOT_TTL_SEC must be a positive integer, got %q", v)
		}
		cfg.SnapshotTTLSec = n
	}
	if v := strings.TrimSpace(os.Getenv("HISTORY_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("HISTORY_LIMIT must be a positive integer, got %q", v)
		}
		cfg.HistoryLimit = n
	}
	if v := strings.TrimSpace(os.Getenv("WS_PING_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("WS_PING_INTERVAL must be a positive duration, got %q", v)
		}
		cfg.PingInterval = d
	}

	if cfg.HTTPAddr == cfg.WSAddr {
		return nil, errors.New("HTTP_ADDR and WS_ADDR must differ")
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
