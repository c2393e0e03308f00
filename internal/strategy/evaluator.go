package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avelis/rugsbot/internal/config"
	"github.com/avelis/rugsbot/internal/game"
	"github.com/avelis/rugsbot/internal/journal"
	"github.com/avelis/rugsbot/internal/protocol"
	"github.com/avelis/rugsbot/internal/router"
)

// Emitter sends an outbound event on the live connection.
type Emitter interface {
	Emit(event string, payload any) error
}

// Evaluator applies the threshold rules to routed game events.
//
// Buys happen only while a round is active, no position is open or pending,
// the round is younger than the buy window, and the price is at or under the
// ceiling. Sells fire on profit target, stop loss, position age, a rug pull,
// or the emergency stop. The session ends once accumulated profit reaches
// the session target.
type Evaluator struct {
	cfg     config.TradingConfig
	events  config.EventNames
	emitter Emitter
	journal journal.Recorder
	ledger  *Ledger
	logger  *slog.Logger

	// now is swapped in tests.
	now func() time.Time

	// stop ends the session. Called at most once.
	stop     func(reason string)
	stopOnce sync.Once

	mu            sync.Mutex
	roundActive   bool
	roundStart    time.Time
	lastPrice     float64
	pendingBet    bool // placeBet sent, betPlaced not yet received
	pendingSell   bool // sellBet sent, betSold/betLost not yet received
	sessionProfit float64
}

// NewEvaluator creates an evaluator. The recorder may be nil (no journal);
// stop may be nil (session target only logs).
func NewEvaluator(
	cfg config.TradingConfig,
	events config.EventNames,
	emitter Emitter,
	rec journal.Recorder,
	ledger *Ledger,
	logger *slog.Logger,
	stop func(reason string),
) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		cfg:     cfg,
		events:  events,
		emitter: emitter,
		journal: rec,
		ledger:  ledger,
		logger:  logger,
		now:     time.Now,
		stop:    stop,
	}
}

// Bind registers the evaluator's handlers on the router under the configured
// event names.
func (e *Evaluator) Bind(r *router.Router) {
	r.Register(e.events.StateUpdate, e.handleStateUpdate)
	r.Register(e.events.BetPlaced, e.handleBetPlaced)
	r.Register(e.events.BetSold, e.handleBetSold)
	r.Register(e.events.BetLost, e.handleBetLost)
}

// SessionProfit returns the accumulated profit since start.
func (e *Evaluator) SessionProfit() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionProfit
}

func (e *Evaluator) handleStateUpdate(ctx context.Context, frame protocol.Frame) error {
	var st game.StateUpdate
	if err := protocol.UnmarshalPayload(frame, &st); err != nil {
		return fmt.Errorf("state update: %w", err)
	}
	now := e.now()

	e.mu.Lock()
	if st.Price > 0 {
		e.lastPrice = st.Price
	}
	if st.Active && !e.roundActive {
		e.roundActive = true
		e.roundStart = now
		e.logger.Info("round started", "game_id", st.GameID, "price", st.Price)
	} else if !st.Active && e.roundActive {
		e.roundActive = false
		e.pendingBet = false
		e.pendingSell = false
		e.logger.Info("round ended", "game_id", st.GameID)
	}
	roundActive := e.roundActive
	sinceStart := now.Sub(e.roundStart)
	pendingBet := e.pendingBet
	pendingSell := e.pendingSell
	e.mu.Unlock()

	if !roundActive {
		return nil
	}

	if trade, ok := e.ledger.Current(); ok {
		if pendingSell {
			return nil
		}
		return e.maybeSell(st, trade, now)
	}
	if pendingBet {
		return nil
	}
	return e.maybeBuy(st, sinceStart)
}

// maybeBuy places a bet when every buy rule passes.
func (e *Evaluator) maybeBuy(st game.StateUpdate, sinceStart time.Duration) error {
	if stopped, reason := e.ledger.Stopped(); stopped {
		e.logger.Debug("buy blocked by emergency stop", "reason", reason)
		return nil
	}
	if e.riskLimitHit() {
		return nil
	}
	if sinceStart > e.cfg.BuyWindow {
		e.logger.Debug("buy window closed", "since_round_start", sinceStart)
		return nil
	}
	if st.Price > e.cfg.PriceCeiling {
		e.logger.Debug("price above ceiling", "price", st.Price, "ceiling", e.cfg.PriceCeiling)
		return nil
	}

	if e.cfg.DryRun {
		e.logger.Info("dry run: would place bet", "price", st.Price, "stake", e.cfg.Stake)
		e.ledger.Open(st.Price, e.cfg.Stake, "")
		e.record(journal.ActionBuy, st.Price, e.cfg.Stake)
		return nil
	}

	cmd := game.PlaceBetCommand{Amount: e.cfg.Stake}
	if err := e.emitter.Emit(e.events.PlaceBet, cmd); err != nil {
		return fmt.Errorf("place bet: %w", err)
	}

	e.mu.Lock()
	e.pendingBet = true
	e.mu.Unlock()

	e.logger.Info("bet placed", "price", st.Price, "stake", e.cfg.Stake)
	return nil
}

// maybeSell closes the position when a sell rule fires.
func (e *Evaluator) maybeSell(st game.StateUpdate, trade Trade, now time.Time) error {
	if trade.EntryPrice <= 0 {
		return nil
	}
	multiplier := st.Price / trade.EntryPrice

	var reason string
	switch {
	case st.Rugged:
		reason = "rug pull"
	case multiplier >= e.cfg.ProfitTarget:
		reason = fmt.Sprintf("profit target reached: %.4fx", multiplier)
	case e.cfg.StopLoss > 0 && multiplier <= e.cfg.StopLoss:
		reason = fmt.Sprintf("stop loss triggered: %.4fx", multiplier)
	case e.cfg.MaxPositionTime > 0 && now.Sub(trade.EntryTime) >= e.cfg.MaxPositionTime:
		reason = fmt.Sprintf("max position time reached: %v", now.Sub(trade.EntryTime).Round(time.Second))
	default:
		if stopped, why := e.ledger.Stopped(); stopped {
			reason = "emergency stop: " + why
		}
	}
	if reason == "" {
		e.logger.Debug("holding position", "multiplier", multiplier)
		return nil
	}

	if e.cfg.DryRun {
		e.logger.Info("dry run: would sell", "reason", reason, "price", st.Price)
		profit := trade.Stake * (multiplier - 1)
		if _, ok := e.ledger.Close(st.Price, profit); ok {
			e.record(journal.ActionSell, st.Price, trade.Stake+profit)
			e.afterClose(profit)
		}
		return nil
	}

	if err := e.emitter.Emit(e.events.SellBet, game.SellBetCommand{Percentage: 100}); err != nil {
		return fmt.Errorf("sell bet: %w", err)
	}

	e.mu.Lock()
	e.pendingSell = true
	e.mu.Unlock()

	e.logger.Info("sell requested", "reason", reason, "price", st.Price)
	return nil
}

func (e *Evaluator) handleBetPlaced(ctx context.Context, frame protocol.Frame) error {
	var bp game.BetPlaced
	if err := protocol.UnmarshalPayload(frame, &bp); err != nil {
		return fmt.Errorf("bet placed: %w", err)
	}

	e.mu.Lock()
	e.pendingBet = false
	lastPrice := e.lastPrice
	e.mu.Unlock()

	entry := bp.EffectiveEntryPrice()
	if entry <= 0 {
		e.logger.Warn("bet confirmation without entry price, using last seen price", "price", lastPrice)
		entry = lastPrice
	}
	amount := bp.Amount
	if amount <= 0 {
		amount = e.cfg.Stake
	}

	e.ledger.Open(entry, amount, bp.ID)
	e.record(journal.ActionBuy, entry, amount)
	return nil
}

func (e *Evaluator) handleBetSold(ctx context.Context, frame protocol.Frame) error {
	var bs game.BetSold
	if err := protocol.UnmarshalPayload(frame, &bs); err != nil {
		return fmt.Errorf("bet sold: %w", err)
	}

	trade, ok := e.ledger.Current()
	if !ok {
		e.logger.Warn("sale confirmation with no open trade")
		return nil
	}

	profit := bs.Payout - trade.Stake
	exitPrice := bs.Price
	if exitPrice <= 0 && trade.Stake > 0 {
		exitPrice = trade.EntryPrice * bs.Payout / trade.Stake
	}

	if _, ok := e.ledger.Close(exitPrice, profit); ok {
		e.record(journal.ActionSell, exitPrice, bs.Payout)
		e.afterClose(profit)
	}
	return nil
}

func (e *Evaluator) handleBetLost(ctx context.Context, frame protocol.Frame) error {
	var bl game.BetLost
	if err := protocol.UnmarshalPayload(frame, &bl); err != nil {
		return fmt.Errorf("bet lost: %w", err)
	}

	trade, ok := e.ledger.Current()
	if !ok {
		e.logger.Warn("loss notification with no open trade")
		return nil
	}

	amount := bl.Amount
	if amount <= 0 {
		amount = trade.Stake
	}

	e.mu.Lock()
	lastPrice := e.lastPrice
	e.mu.Unlock()

	if _, ok := e.ledger.Close(lastPrice, -amount); ok {
		e.record(journal.ActionLoss, lastPrice, amount)
		e.afterClose(-amount)
	}
	return nil
}

// afterClose runs the session and risk checks after every settled trade.
func (e *Evaluator) afterClose(profit float64) {
	e.mu.Lock()
	e.sessionProfit += profit
	total := e.sessionProfit
	e.pendingSell = false
	e.mu.Unlock()

	if total >= e.cfg.SessionTarget {
		e.logger.Info("session target reached", "session_profit", total, "target", e.cfg.SessionTarget)
		e.record(journal.ActionSessionStop, 0, total)
		e.endSession(fmt.Sprintf("session target reached: %.6f", total))
		return
	}

	e.riskLimitHit()
}

// riskLimitHit arms the emergency stop when a daily limit is breached.
func (e *Evaluator) riskLimitHit() bool {
	stats := e.ledger.Stats()
	if e.cfg.MaxDailyLoss > 0 && stats.DailyLoss >= e.cfg.MaxDailyLoss {
		e.ledger.TriggerStop(fmt.Sprintf("daily loss limit reached: %.6f", stats.DailyLoss))
		return true
	}
	if e.cfg.MaxConsecutiveLosses > 0 && stats.ConsecutiveLosses >= e.cfg.MaxConsecutiveLosses {
		e.ledger.TriggerStop(fmt.Sprintf("max consecutive losses reached: %d", stats.ConsecutiveLosses))
		return true
	}
	return false
}

// record writes one journal entry. Journal failures never affect trading.
func (e *Evaluator) record(action string, price, amount float64) {
	if e.journal == nil {
		return
	}
	entry := journal.Entry{
		Time:    e.now(),
		Action:  action,
		Price:   price,
		Amount:  amount,
		Balance: e.ledger.Balance(),
	}
	if err := e.journal.Record(entry); err != nil {
		e.logger.Warn("journal write failed", "action", action, "error", err)
	}
}

func (e *Evaluator) endSession(reason string) {
	e.stopOnce.Do(func() {
		if e.stop != nil {
			e.stop(reason)
		}
	})
}
