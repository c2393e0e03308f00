package strategy

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Trade is one position, open or closed.
type Trade struct {
	ID         uuid.UUID
	BetID      string // backend bet id, empty when not provided
	EntryTime  time.Time
	EntryPrice float64
	Stake      float64
	ExitTime   time.Time
	ExitPrice  float64
	Profit     float64
	Active     bool
}

// LedgerStats summarizes the session for logs and the health endpoint.
type LedgerStats struct {
	TotalTrades       int     `json:"total_trades"`
	ProfitableTrades  int     `json:"profitable_trades"`
	WinRate           float64 `json:"win_rate"`
	DailyProfit       float64 `json:"daily_profit"`
	DailyLoss         float64 `json:"daily_loss"`
	NetProfit         float64 `json:"net_profit"`
	Balance           float64 `json:"balance"`
	ConsecutiveWins   int     `json:"consecutive_wins"`
	ConsecutiveLosses int     `json:"consecutive_losses"`
	EmergencyStop     bool    `json:"emergency_stop"`
	StopReason        string  `json:"stop_reason,omitempty"`
}

// Ledger tracks positions and risk state. Daily profit and loss roll over
// 24 hours after the previous roll, not at midnight.
type Ledger struct {
	logger *slog.Logger

	// now is swapped in tests.
	now func() time.Time

	mu                sync.Mutex
	dayStart          time.Time
	dailyProfit       float64
	dailyLoss         float64
	consecutiveWins   int
	consecutiveLosses int
	closed            []Trade
	current           *Trade
	balance           float64
	emergencyStop     bool
	stopReason        string
}

// NewLedger creates a ledger seeded with the starting balance.
func NewLedger(initialBalance float64, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		logger:   logger,
		now:      time.Now,
		dayStart: time.Now(),
		balance:  initialBalance,
	}
}

// Open starts a new position. An already-open position is logged and
// replaced; the backend is the source of truth for confirmations.
func (l *Ledger) Open(entryPrice, stake float64, betID string) Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil && l.current.Active {
		l.logger.Warn("opening trade while previous trade still active", "bet_id", l.current.BetID)
	}

	trade := Trade{
		ID:         uuid.New(),
		BetID:      betID,
		EntryTime:  l.now(),
		EntryPrice: entryPrice,
		Stake:      stake,
		Active:     true,
	}
	l.current = &trade

	l.logger.Info("trade opened",
		"trade_id", trade.ID,
		"bet_id", betID,
		"entry_price", entryPrice,
		"stake", stake,
	)
	return trade
}

// Current returns the open position, if any.
func (l *Ledger) Current() (Trade, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil || !l.current.Active {
		return Trade{}, false
	}
	return *l.current, true
}

// Close settles the open position with the given exit price and realized
// profit (negative for a loss). Returns false when nothing is open.
func (l *Ledger) Close(exitPrice, profit float64) (Trade, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil || !l.current.Active {
		l.logger.Warn("closing trade but no trade is open")
		return Trade{}, false
	}

	l.rollDayLocked()

	trade := *l.current
	trade.ExitTime = l.now()
	trade.ExitPrice = exitPrice
	trade.Profit = profit
	trade.Active = false
	l.current = nil
	l.closed = append(l.closed, trade)

	if profit > 0 {
		l.dailyProfit += profit
		l.consecutiveWins++
		l.consecutiveLosses = 0
	} else {
		l.dailyLoss += -profit
		l.consecutiveLosses++
		l.consecutiveWins = 0
	}
	l.balance += profit

	l.logger.Info("trade closed",
		"trade_id", trade.ID,
		"profit", profit,
		"exit_price", exitPrice,
		"duration", trade.ExitTime.Sub(trade.EntryTime),
	)
	l.logStatsLocked()

	return trade, true
}

// TriggerStop arms the emergency stop. The first reason wins.
func (l *Ledger) TriggerStop(reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.emergencyStop {
		return
	}
	l.emergencyStop = true
	l.stopReason = reason
	l.logger.Error("emergency stop triggered", "reason", reason)
}

// Stopped reports whether the emergency stop is armed, and why.
func (l *Ledger) Stopped() (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.emergencyStop, l.stopReason
}

// Balance returns the running balance.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Stats returns a snapshot of the session.
func (l *Ledger) Stats() LedgerStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollDayLocked()

	stats := LedgerStats{
		TotalTrades:       len(l.closed),
		DailyProfit:       l.dailyProfit,
		DailyLoss:         l.dailyLoss,
		NetProfit:         l.dailyProfit - l.dailyLoss,
		Balance:           l.balance,
		ConsecutiveWins:   l.consecutiveWins,
		ConsecutiveLosses: l.consecutiveLosses,
		EmergencyStop:     l.emergencyStop,
		StopReason:        l.stopReason,
	}
	for _, t := range l.closed {
		if t.Profit > 0 {
			stats.ProfitableTrades++
		}
	}
	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.ProfitableTrades) / float64(stats.TotalTrades) * 100
	}
	return stats
}

func (l *Ledger) rollDayLocked() {
	if l.now().Sub(l.dayStart) < 24*time.Hour {
		return
	}
	l.logger.Info("resetting daily statistics")
	l.dayStart = l.now()
	l.dailyProfit = 0
	l.dailyLoss = 0
}

func (l *Ledger) logStatsLocked() {
	total := len(l.closed)
	if total == 0 {
		return
	}
	profitable := 0
	for _, t := range l.closed {
		if t.Profit > 0 {
			profitable++
		}
	}
	l.logger.Info("session stats",
		"trades", total,
		"win_rate", float64(profitable)/float64(total)*100,
		"net_pnl", l.dailyProfit-l.dailyLoss,
		"balance", l.balance,
		"consecutive_wins", l.consecutiveWins,
		"consecutive_losses", l.consecutiveLosses,
	)
}
