package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "12212" {
		t.Errorf("default port = %s", cfg.Port)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("default poll = %s", cfg.PollInterval)
	}
	if cfg.Debounce != 350*time.Millisecond {
		t.Errorf("default debounce = %s", cfg.Debounce)
	}
	if cfg.Addr() != "0.0.0.0:12212" {
		t.Errorf("addr = %s", cfg.Addr())
	}
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("PRINTSTUDIO_PORT", "9000")
	t.Setenv("KOT_POLL_INTERVAL", "5s")
	t.Setenv("KOT_DEBOUNCE", "garbage")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("port = %s", cfg.Port)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("poll = %s", cfg.PollInterval)
	}
	if cfg.Debounce != 350*time.Millisecond {
		t.Errorf("unparseable duration must fall back, got %s", cfg.Debounce)
	}
}
