package strategy

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a manually advanced clock shared between ledger and evaluator.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestLedger_CloseUpdatesBalanceAndStreaks(t *testing.T) {
	l := NewLedger(1.0, quietLogger())

	l.Open(1.0, 0.01, "bet-1")
	if _, ok := l.Current(); !ok {
		t.Fatal("no current trade after Open")
	}
	if _, ok := l.Close(1.05, 0.0005); !ok {
		t.Fatal("Close failed with open trade")
	}

	l.Open(1.0, 0.01, "bet-2")
	l.Close(0.0, -0.01)

	stats := l.Stats()
	if stats.TotalTrades != 2 {
		t.Errorf("TotalTrades = %d, want 2", stats.TotalTrades)
	}
	if stats.ProfitableTrades != 1 {
		t.Errorf("ProfitableTrades = %d, want 1", stats.ProfitableTrades)
	}
	if stats.WinRate != 50 {
		t.Errorf("WinRate = %v, want 50", stats.WinRate)
	}
	if stats.ConsecutiveLosses != 1 || stats.ConsecutiveWins != 0 {
		t.Errorf("streaks = %d wins, %d losses, want 0/1", stats.ConsecutiveWins, stats.ConsecutiveLosses)
	}

	want := 1.0 + 0.0005 - 0.01
	if got := l.Balance(); got != want {
		t.Errorf("Balance = %v, want %v", got, want)
	}
}

func TestLedger_CloseWithoutOpenTrade(t *testing.T) {
	l := NewLedger(1.0, quietLogger())
	if _, ok := l.Close(1.0, 0.01); ok {
		t.Error("Close succeeded with no open trade")
	}
}

func TestLedger_DailyStatsResetAfter24Hours(t *testing.T) {
	clk := newFakeClock()
	l := NewLedger(1.0, quietLogger())
	l.now = clk.Now
	l.dayStart = clk.Now()

	l.Open(1.0, 0.01, "")
	l.Close(0, -0.01)

	if stats := l.Stats(); stats.DailyLoss != 0.01 {
		t.Fatalf("DailyLoss = %v, want 0.01", stats.DailyLoss)
	}

	clk.Advance(25 * time.Hour)

	stats := l.Stats()
	if stats.DailyLoss != 0 || stats.DailyProfit != 0 {
		t.Errorf("daily stats not reset: profit=%v loss=%v", stats.DailyProfit, stats.DailyLoss)
	}
	// The loss streak survives the daily roll.
	if stats.ConsecutiveLosses != 1 {
		t.Errorf("ConsecutiveLosses = %d, want 1", stats.ConsecutiveLosses)
	}
	// The balance is cumulative, never reset.
	if got := l.Balance(); got != 0.99 {
		t.Errorf("Balance = %v, want 0.99", got)
	}
}

func TestLedger_TriggerStopKeepsFirstReason(t *testing.T) {
	l := NewLedger(1.0, quietLogger())

	l.TriggerStop("daily loss limit reached")
	l.TriggerStop("max consecutive losses reached")

	stopped, reason := l.Stopped()
	if !stopped {
		t.Fatal("ledger not stopped after TriggerStop")
	}
	if reason != "daily loss limit reached" {
		t.Errorf("reason = %q, want the first trigger", reason)
	}
}
