package config

import "time"

// BotConfig is the root configuration for a bot run.
type BotConfig struct {
	Game       GameConfig       `yaml:"game"`
	Connection ConnectionConfig `yaml:"connection"`
	Trading    TradingConfig    `yaml:"trading"`
	Journal    JournalConfig    `yaml:"journal"`
	Health     HealthConfig     `yaml:"health"`
	LogLevel   string           `yaml:"log_level"`
}

// GameConfig identifies the game endpoint and its event vocabulary.
type GameConfig struct {
	// URI is the Socket.IO WebSocket endpoint (ws:// or wss://).
	URI       string            `yaml:"uri"`
	Origin    string            `yaml:"origin"`
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
	Events    EventNames        `yaml:"events"`
}

// EventNames holds the Socket.IO event names the game uses. All of them are
// opaque strings as far as the connection layer is concerned.
type EventNames struct {
	StateUpdate string `yaml:"state_update"`
	PlaceBet    string `yaml:"place_bet"`
	SellBet     string `yaml:"sell_bet"`
	BetPlaced   string `yaml:"bet_placed"`
	BetSold     string `yaml:"bet_sold"`
	BetLost     string `yaml:"bet_lost"`
}

// ConnectionConfig holds WebSocket supervisor settings.
type ConnectionConfig struct {
	PingInterval        time.Duration `yaml:"ping_interval"`
	PongTimeout         time.Duration `yaml:"pong_timeout"`
	HandshakeTimeout    time.Duration `yaml:"handshake_timeout"`
	WriteTimeout        time.Duration `yaml:"write_timeout"`
	ReconnectBaseDelay  time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay   time.Duration `yaml:"reconnect_max_delay"`
	ReconnectResetAfter time.Duration `yaml:"reconnect_reset_after"`
	BufferSize          int           `yaml:"buffer_size"`
}

// TradingConfig holds the threshold strategy parameters.
type TradingConfig struct {
	// Stake is the amount placed per bet, in game currency.
	Stake float64 `yaml:"stake"`

	// ProfitTarget is the sell multiplier relative to entry price (> 1.0).
	ProfitTarget float64 `yaml:"profit_target"`

	// StopLoss is the forced-sell multiplier relative to entry price (< 1.0).
	StopLoss float64 `yaml:"stop_loss"`

	// SessionTarget stops the bot once accumulated profit reaches it.
	SessionTarget float64 `yaml:"session_target"`

	// BuyWindow is how long after round start a buy is still allowed.
	BuyWindow time.Duration `yaml:"buy_window"`

	// PriceCeiling blocks buys when the price is already above it.
	PriceCeiling float64 `yaml:"price_ceiling"`

	// MaxPositionTime force-sells a position held longer than this.
	MaxPositionTime time.Duration `yaml:"max_position_time"`

	// MaxDailyLoss triggers an emergency stop once cumulative daily loss
	// reaches it. Zero disables the check.
	MaxDailyLoss float64 `yaml:"max_daily_loss"`

	// MaxConsecutiveLosses triggers an emergency stop after this many
	// losses in a row. Zero disables the check.
	MaxConsecutiveLosses int `yaml:"max_consecutive_losses"`

	// InitialBalance seeds the running balance reported in journal entries.
	InitialBalance float64 `yaml:"initial_balance"`

	// DryRun journals and logs decisions without emitting bet commands.
	DryRun bool `yaml:"dry_run"`
}

// JournalConfig holds session log settings. The Postgres trade log is
// enabled only when Database.Host is set.
type JournalConfig struct {
	CSVPath       string        `yaml:"csv_path"`
	Database      DBConfig      `yaml:"database"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a database target is configured.
func (db DBConfig) Enabled() bool {
	return db.Host != ""
}

// HealthConfig holds the status endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
