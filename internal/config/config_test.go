package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"FEED_ADDR", "FEED_MODE", "ADMIN_ADDR", "JWT_SECRET", "SIGNAL_CSV_PATH",
		"SIGWRITER_FLUSH_ROWS", "SIGWRITER_FLUSH_SECONDS", "WS_SEND_BUFFER",
		"INBOX_BUFFER_SIZE", "WINDOW_CAPACITY", "GRID_TICK_SECONDS",
	} {
		os.Unsetenv(k)
	}
}

func TestLoadFailsWithoutJWTSecret(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is unset")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearEnv(t)
	os.Setenv("JWT_SECRET", "this-is-a-32-byte-or-longer-secret!")
	defer os.Unsetenv("JWT_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AdminAddr != ":8080" {
		t.Fatalf("expected default admin addr, got %q", cfg.AdminAddr)
	}
	if cfg.WindowCapacity != 1<<16 {
		t.Fatalf("expected default window capacity 65536, got %d", cfg.WindowCapacity)
	}
}

func TestLoadRejectsNonPowerOfTwoWindowCapacity(t *testing.T) {
	clearEnv(t)
	os.Setenv("JWT_SECRET", "this-is-a-32-byte-or-longer-secret!")
	os.Setenv("WINDOW_CAPACITY", "100")
	defer os.Unsetenv("JWT_SECRET")
	defer os.Unsetenv("WINDOW_CAPACITY")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-power-of-two window capacity")
	}
}

func TestLoadHonorsOverrides(t *testing.T) {
	clearEnv(t)
	os.Setenv("JWT_SECRET", "this-is-a-32-byte-or-longer-secret!")
	os.Setenv("ADMIN_ADDR", ":9090")
	os.Setenv("GRID_TICK_SECONDS", "2")
	defer clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AdminAddr != ":9090" {
		t.Fatalf("expected overridden admin addr, got %q", cfg.AdminAddr)
	}
	if cfg.GridTickInterval.Seconds() != 2 {
		t.Fatalf("expected 2s tick interval, got %v", cfg.GridTickInterval)
	}
}
