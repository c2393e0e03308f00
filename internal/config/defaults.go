package config

import "time"

// Default values for optional configuration fields. Event names and the
// browser-facing headers default to what the game's web client uses.
const (
	DefaultOrigin    = "https://rugs.fun"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	DefaultEventStateUpdate = "gameStateUpdate"
	DefaultEventPlaceBet    = "placeBet"
	DefaultEventSellBet     = "sellBet"
	DefaultEventBetPlaced   = "betPlaced"
	DefaultEventBetSold     = "betSold"
	DefaultEventBetLost     = "betLost"

	DefaultPingInterval        = 25 * time.Second
	DefaultPongTimeout         = 20 * time.Second
	DefaultHandshakeTimeout    = 10 * time.Second
	DefaultWriteTimeout        = 5 * time.Second
	DefaultReconnectBaseDelay  = 1 * time.Second
	DefaultReconnectMaxDelay   = 60 * time.Second
	DefaultReconnectResetAfter = 30 * time.Second
	DefaultBufferSize          = 1000

	DefaultStake           = 0.01
	DefaultProfitTarget    = 1.03
	DefaultStopLoss        = 0.90
	DefaultSessionTarget   = 0.05
	DefaultBuyWindow       = 5 * time.Second
	DefaultPriceCeiling    = 1.5
	DefaultMaxPositionTime = 30 * time.Second

	DefaultCSVPath       = "session.csv"
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultBatchSize     = 100
	DefaultFlushInterval = 1 * time.Second
	DefaultJournalBuffer = 1000

	DefaultHealthPort = 8080
	DefaultHealthPath = "/healthz"
	DefaultLogLevel   = "info"
)

func (c *BotConfig) applyDefaults() {
	// Game defaults
	if c.Game.Origin == "" {
		c.Game.Origin = DefaultOrigin
	}
	if c.Game.UserAgent == "" {
		c.Game.UserAgent = DefaultUserAgent
	}
	applyEventDefaults(&c.Game.Events)

	// Connection defaults
	if c.Connection.PingInterval == 0 {
		c.Connection.PingInterval = DefaultPingInterval
	}
	if c.Connection.PongTimeout == 0 {
		c.Connection.PongTimeout = DefaultPongTimeout
	}
	if c.Connection.HandshakeTimeout == 0 {
		c.Connection.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connection.ReconnectBaseDelay == 0 {
		c.Connection.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Connection.ReconnectMaxDelay == 0 {
		c.Connection.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Connection.ReconnectResetAfter == 0 {
		c.Connection.ReconnectResetAfter = DefaultReconnectResetAfter
	}
	if c.Connection.BufferSize == 0 {
		c.Connection.BufferSize = DefaultBufferSize
	}

	// Trading defaults
	if c.Trading.Stake == 0 {
		c.Trading.Stake = DefaultStake
	}
	if c.Trading.ProfitTarget == 0 {
		c.Trading.ProfitTarget = DefaultProfitTarget
	}
	if c.Trading.StopLoss == 0 {
		c.Trading.StopLoss = DefaultStopLoss
	}
	if c.Trading.SessionTarget == 0 {
		c.Trading.SessionTarget = DefaultSessionTarget
	}
	if c.Trading.BuyWindow == 0 {
		c.Trading.BuyWindow = DefaultBuyWindow
	}
	if c.Trading.PriceCeiling == 0 {
		c.Trading.PriceCeiling = DefaultPriceCeiling
	}
	if c.Trading.MaxPositionTime == 0 {
		c.Trading.MaxPositionTime = DefaultMaxPositionTime
	}

	// Journal defaults
	if c.Journal.CSVPath == "" {
		c.Journal.CSVPath = DefaultCSVPath
	}
	if c.Journal.Database.Enabled() {
		applyDBDefaults(&c.Journal.Database)
	}
	if c.Journal.BatchSize == 0 {
		c.Journal.BatchSize = DefaultBatchSize
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = DefaultFlushInterval
	}
	if c.Journal.BufferSize == 0 {
		c.Journal.BufferSize = DefaultJournalBuffer
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

func applyEventDefaults(e *EventNames) {
	if e.StateUpdate == "" {
		e.StateUpdate = DefaultEventStateUpdate
	}
	if e.PlaceBet == "" {
		e.PlaceBet = DefaultEventPlaceBet
	}
	if e.SellBet == "" {
		e.SellBet = DefaultEventSellBet
	}
	if e.BetPlaced == "" {
		e.BetPlaced = DefaultEventBetPlaced
	}
	if e.BetSold == "" {
		e.BetSold = DefaultEventBetSold
	}
	if e.BetLost == "" {
		e.BetLost = DefaultEventBetLost
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
