package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
game:
  uri: wss://backend.example.io/socket.io/?EIO=4&transport=websocket
  origin: https://game.example.io
trading:
  stake: 0.02
  profit_target: 1.05
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Game.URI != "wss://backend.example.io/socket.io/?EIO=4&transport=websocket" {
		t.Errorf("Game.URI = %q", cfg.Game.URI)
	}
	if cfg.Game.Origin != "https://game.example.io" {
		t.Errorf("Game.Origin = %q", cfg.Game.Origin)
	}
	if cfg.Trading.Stake != 0.02 {
		t.Errorf("Trading.Stake = %v, want 0.02", cfg.Trading.Stake)
	}
	if cfg.Trading.ProfitTarget != 1.05 {
		t.Errorf("Trading.ProfitTarget = %v, want 1.05", cfg.Trading.ProfitTarget)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_GAME_URI", "wss://backend.example.io/socket.io/")
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
game:
  uri: ${TEST_GAME_URI}
journal:
  database:
    host: localhost
    name: rugsbot
    user: bot
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Game.URI != "wss://backend.example.io/socket.io/" {
		t.Errorf("Game.URI = %q", cfg.Game.URI)
	}
	if cfg.Journal.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want secret123", cfg.Journal.Database.Password)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
game:
  uri: wss://backend.example.io/socket.io/
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Game.Events.StateUpdate != DefaultEventStateUpdate {
		t.Errorf("Events.StateUpdate = %q, want default %q", cfg.Game.Events.StateUpdate, DefaultEventStateUpdate)
	}
	if cfg.Connection.PingInterval != DefaultPingInterval {
		t.Errorf("Connection.PingInterval = %v, want default %v", cfg.Connection.PingInterval, DefaultPingInterval)
	}
	if cfg.Connection.ReconnectMaxDelay != DefaultReconnectMaxDelay {
		t.Errorf("Connection.ReconnectMaxDelay = %v, want default %v", cfg.Connection.ReconnectMaxDelay, DefaultReconnectMaxDelay)
	}
	if cfg.Trading.ProfitTarget != DefaultProfitTarget {
		t.Errorf("Trading.ProfitTarget = %v, want default %v", cfg.Trading.ProfitTarget, DefaultProfitTarget)
	}
	if cfg.Journal.CSVPath != DefaultCSVPath {
		t.Errorf("Journal.CSVPath = %q, want default %q", cfg.Journal.CSVPath, DefaultCSVPath)
	}
	if cfg.Journal.Database.Enabled() {
		t.Error("Database.Enabled() = true without a host")
	}
	if cfg.Health.Port != DefaultHealthPort {
		t.Errorf("Health.Port = %d, want default %d", cfg.Health.Port, DefaultHealthPort)
	}

	// Database defaults apply only when a host is configured.
	if cfg.Journal.Database.Port != 0 {
		t.Errorf("Database.Port = %d, want 0 when disabled", cfg.Journal.Database.Port)
	}
}

func TestValidate(t *testing.T) {
	base := func() *BotConfig {
		cfg := &BotConfig{}
		cfg.Game.URI = "wss://backend.example.io/socket.io/"
		cfg.applyDefaults()
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*BotConfig)
	}{
		{"missing_uri", func(c *BotConfig) { c.Game.URI = "" }},
		{"http_scheme", func(c *BotConfig) { c.Game.URI = "https://backend.example.io" }},
		{"no_host", func(c *BotConfig) { c.Game.URI = "wss://" }},
		{"empty_event_name", func(c *BotConfig) { c.Game.Events.PlaceBet = "" }},
		{"zero_stake", func(c *BotConfig) { c.Trading.Stake = -1 }},
		{"profit_target_at_one", func(c *BotConfig) { c.Trading.ProfitTarget = 1.0 }},
		{"stop_loss_above_one", func(c *BotConfig) { c.Trading.StopLoss = 1.2 }},
		{"negative_session_target", func(c *BotConfig) { c.Trading.SessionTarget = -0.5 }},
		{"max_below_base_delay", func(c *BotConfig) {
			c.Connection.ReconnectBaseDelay = 10 * time.Second
			c.Connection.ReconnectMaxDelay = time.Second
		}},
		{"db_missing_user", func(c *BotConfig) {
			c.Journal.Database = DBConfig{Host: "localhost", Name: "rugsbot", Password: "x", MaxConns: 5}
		}},
		{"bad_health_port", func(c *BotConfig) { c.Health.Port = 99999 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}

func TestLoadAndValidate_MissingURI(t *testing.T) {
	path := writeTempFile(t, "trading:\n  stake: 0.01\n")

	if _, err := LoadAndValidate(path); err == nil {
		t.Error("LoadAndValidate accepted a config without a game URI")
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
