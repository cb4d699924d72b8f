package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	DatabaseURL string
	// External rate sync
	RateAPIURL     string
	RateAPIKey     string
	RateAPITimeout time.Duration
	// Messaging
	TelegramAPIBase string
	TelegramToken   string
	// Rendering
	Renderer      string
	RenderAPIBase string
	// Publish behavior
	AllowRebroadcast bool
	// Publish lock
	LockBackend    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	PublishLockTTL time.Duration
	// Dashboard cache
	SnapshotCacheSize int64
	SnapshotCacheTTL  time.Duration
	// Caption decoration
	ContactLines []string
	FooterNote   string
	// BoardButtons entries are "text,url" pairs; each pair becomes one
	// inline keyboard row under the published board.
	BoardButtons []string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func durMS(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defMS)), defMS)) * time.Millisecond
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:               getEnv("ENV", "local"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RateAPIURL:        getEnv("RATE_API_URL", ""),
		RateAPIKey:        getEnv("RATE_API_KEY", ""),
		RateAPITimeout:    durMS("RATE_API_TIMEOUT_MS", 10000),
		TelegramAPIBase:   getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
		TelegramToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		Renderer:          getEnv("RENDERER", "fake"),
		RenderAPIBase:     getEnv("RENDER_API_BASE", ""),
		AllowRebroadcast:  boolDef(getEnv("PUBLISH_ALLOW_REBROADCAST", "true"), true),
		LockBackend:       getEnv("LOCK_BACKEND", "redis"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           atoiDef(getEnv("REDIS_DB", "0"), 0),
		PublishLockTTL:    durMS("PUBLISH_LOCK_TTL_MS", 60000),
		SnapshotCacheSize: int64(atoiDef(getEnv("SNAPSHOT_CACHE_SIZE", "256"), 256)),
		SnapshotCacheTTL:  durMS("SNAPSHOT_CACHE_TTL_MS", 5000),
		ContactLines:      splitLines(getEnv("CAPTION_CONTACT_LINES", "")),
		FooterNote:        getEnv("CAPTION_FOOTER_NOTE", ""),
		BoardButtons:      splitLines(getEnv("BOARD_BUTTONS", "")),
	}
}
