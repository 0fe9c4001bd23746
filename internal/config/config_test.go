package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Bind != "127.0.0.1" || cfg.Server.Port != 37711 {
		t.Errorf("server = %s:%d, want 127.0.0.1:37711", cfg.Server.Bind, cfg.Server.Port)
	}
	if cfg.Database.Path != "" {
		t.Errorf("db path = %q, want empty (resolved at open)", cfg.Database.Path)
	}
	if cfg.Temporal.ProactiveThresholdDays != 14 {
		t.Errorf("ProactiveThresholdDays = %d, want 14", cfg.Temporal.ProactiveThresholdDays)
	}
	if cfg.Temporal.StaleThresholdDays != 30 {
		t.Errorf("StaleThresholdDays = %d, want 30", cfg.Temporal.StaleThresholdDays)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PSYCHE_PORT", "4400")
	t.Setenv("PSYCHE_DB", "/tmp/psyche-test.db")
	t.Setenv("PSYCHE_PROACTIVE_DAYS", "21")
	t.Setenv("PSYCHE_WISDOM_DECAY_RATE", "0.1")

	cfg := Load()
	if cfg.Server.Port != 4400 {
		t.Errorf("Port = %d, want 4400", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/psyche-test.db" {
		t.Errorf("Path = %q, want /tmp/psyche-test.db", cfg.Database.Path)
	}
	if cfg.Temporal.ProactiveThresholdDays != 21 {
		t.Errorf("ProactiveThresholdDays = %d, want 21", cfg.Temporal.ProactiveThresholdDays)
	}
	if cfg.Temporal.WisdomDecayRate != 0.1 {
		t.Errorf("WisdomDecayRate = %v, want 0.1", cfg.Temporal.WisdomDecayRate)
	}
	if cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("Bind = %q, want untouched default", cfg.Server.Bind)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("PSYCHE_PORT", "not-a-port")
	t.Setenv("PSYCHE_DECAY_FLOOR", "much")

	cfg := Load()
	if cfg.Server.Port != 37711 {
		t.Errorf("Port = %d, want default 37711", cfg.Server.Port)
	}
	if cfg.Temporal.DecayFloor != 0.1 {
		t.Errorf("DecayFloor = %v, want default 0.1", cfg.Temporal.DecayFloor)
	}
}

func TestListenAddr(t *testing.T) {
	cfg := Default()
	if got := cfg.ListenAddr(); got != "127.0.0.1:37711" {
		t.Errorf("ListenAddr = %q, want 127.0.0.1:37711", got)
	}
}
