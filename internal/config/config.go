// Package config loads process configuration from the environment, the
// same os.Getenv-with-fallback pattern the teacher's cmd/main.go uses,
// sourced from a .env file via joho/godotenv when one is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every knob orderbookd and feedsim need at boot.
type Config struct {
	// FeedAddr is the TCP address (host:port) the length-prefixed binary
	// feed reader dials, or a file path when FeedMode is "file".
	FeedAddr string
	FeedMode string

	// AdminAddr is the listen address for the admin HTTP API.
	AdminAddr string

	// GridTickInterval is how often griddriver evicts the trade window
	// and recomputes signals for every active symbol.
	GridTickInterval time.Duration

	// WindowCapacity is read and checked to be a power of two. It is not
	// passed to the book engines: each symbol's trade window uses
	// window.New's fixed 1<<16 capacity.
	WindowCapacity int

	// JWTSecret signs admin bearer tokens. Must be >= 32 bytes.
	JWTSecret string

	// SignalCSVPath is where sigwriter appends grid-tick rows.
	SignalCSVPath string

	// SigWriterFlushRows/SigWriterFlushInterval control sigwriter's
	// batching thresholds.
	SigWriterFlushRows     int
	SigWriterFlushInterval time.Duration

	// WSHubSendBuffer is read but not passed to wsfeed: each websocket
	// client's outbound buffer depth is wsfeed's fixed default of 256.
	WSHubSendBuffer int

	// InboxBufferSize is read but not passed to dispatch: each per-symbol
	// inbox has dispatch's fixed depth of 1024.
	InboxBufferSize int
}

// Load reads a .env file if present (missing is not an error, matching
// godotenv's common usage, though the teacher treats it as fatal) and
// falls back to hardcoded defaults for anything unset, the same
// os.Getenv-or-default shape the teacher's cmd/main.go uses per variable.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		FeedAddr:               getenv("FEED_ADDR", "localhost:9009"),
		FeedMode:               getenv("FEED_MODE", "tcp"),
		AdminAddr:              getenv("ADMIN_ADDR", ":8080"),
		JWTSecret:              getenv("JWT_SECRET", ""),
		SignalCSVPath:          getenv("SIGNAL_CSV_PATH", "signals.csv"),
		SigWriterFlushRows:     getenvInt("SIGWRITER_FLUSH_ROWS", 100),
		WSHubSendBuffer:        getenvInt("WS_SEND_BUFFER", 256),
		InboxBufferSize:        getenvInt("INBOX_BUFFER_SIZE", 1024),
		WindowCapacity:         getenvInt("WINDOW_CAPACITY", 1<<16),
	}

	tickSeconds := getenvInt("GRID_TICK_SECONDS", 1)
	cfg.GridTickInterval = time.Duration(tickSeconds) * time.Second

	flushSeconds := getenvInt("SIGWRITER_FLUSH_SECONDS", 5)
	cfg.SigWriterFlushInterval = time.Duration(flushSeconds) * time.Second

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("config: JWT_SECRET must be set")
	}
	if cfg.WindowCapacity <= 0 || cfg.WindowCapacity&(cfg.WindowCapacity-1) != 0 {
		return cfg, fmt.Errorf("config: WINDOW_CAPACITY must be a positive power of two, got %d", cfg.WindowCapacity)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
