package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *BotConfig) Validate() error {
	if c.Game.URI == "" {
		return errors.New("game.uri is required")
	}
	parsed, err := url.Parse(c.Game.URI)
	if err != nil {
		return fmt.Errorf("game.uri is not a valid URL: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return fmt.Errorf("game.uri must use ws:// or wss:// scheme, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("game.uri must include a hostname")
	}

	if err := c.Game.Events.validate(); err != nil {
		return err
	}

	if c.Connection.PingInterval <= 0 {
		return errors.New("connection.ping_interval must be positive")
	}
	if c.Connection.PongTimeout <= 0 {
		return errors.New("connection.pong_timeout must be positive")
	}
	if c.Connection.ReconnectBaseDelay <= 0 {
		return errors.New("connection.reconnect_base_delay must be positive")
	}
	if c.Connection.ReconnectMaxDelay < c.Connection.ReconnectBaseDelay {
		return fmt.Errorf("connection.reconnect_max_delay (%v) cannot be below reconnect_base_delay (%v)",
			c.Connection.ReconnectMaxDelay, c.Connection.ReconnectBaseDelay)
	}
	if c.Connection.BufferSize < 1 {
		return errors.New("connection.buffer_size must be >= 1")
	}

	if c.Trading.Stake <= 0 {
		return fmt.Errorf("trading.stake must be positive, got %v", c.Trading.Stake)
	}
	if c.Trading.ProfitTarget <= 1.0 {
		return fmt.Errorf("trading.profit_target must be > 1.0, got %v", c.Trading.ProfitTarget)
	}
	if c.Trading.StopLoss <= 0 || c.Trading.StopLoss >= 1.0 {
		return fmt.Errorf("trading.stop_loss must be in (0, 1), got %v", c.Trading.StopLoss)
	}
	if c.Trading.SessionTarget <= 0 {
		return fmt.Errorf("trading.session_target must be positive, got %v", c.Trading.SessionTarget)
	}
	if c.Trading.BuyWindow <= 0 {
		return errors.New("trading.buy_window must be positive")
	}
	if c.Trading.PriceCeiling <= 0 {
		return fmt.Errorf("trading.price_ceiling must be positive, got %v", c.Trading.PriceCeiling)
	}
	if c.Trading.MaxDailyLoss < 0 {
		return fmt.Errorf("trading.max_daily_loss cannot be negative, got %v", c.Trading.MaxDailyLoss)
	}
	if c.Trading.MaxConsecutiveLosses < 0 {
		return fmt.Errorf("trading.max_consecutive_losses cannot be negative, got %d", c.Trading.MaxConsecutiveLosses)
	}

	if c.Journal.Database.Enabled() {
		if err := c.Journal.Database.validate("journal.database"); err != nil {
			return err
		}
	}
	if c.Journal.BatchSize < 1 {
		return errors.New("journal.batch_size must be >= 1")
	}
	if c.Journal.BufferSize < 1 {
		return errors.New("journal.buffer_size must be >= 1")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (e EventNames) validate() error {
	named := []struct {
		key   string
		value string
	}{
		{"game.events.state_update", e.StateUpdate},
		{"game.events.place_bet", e.PlaceBet},
		{"game.events.sell_bet", e.SellBet},
		{"game.events.bet_placed", e.BetPlaced},
		{"game.events.bet_sold", e.BetSold},
		{"game.events.bet_lost", e.BetLost},
	}
	for _, n := range named {
		if n.value == "" {
			return fmt.Errorf("%s is required", n.key)
		}
	}
	return nil
}

func (db DBConfig) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
