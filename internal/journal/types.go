package journal

import (
	"errors"
	"time"
)

// Actions recorded in the journal.
const (
	ActionBuy         = "buy"
	ActionSell        = "sell"
	ActionLoss        = "loss"
	ActionSessionStop = "session-stop"
)

// Entry is one trading action.
type Entry struct {
	Time    time.Time // when the action happened
	Action  string    // buy, sell, loss, session-stop
	Price   float64   // price at the action (0 when not applicable)
	Amount  float64   // stake for buys, payout for sells, amount lost for losses
	Balance float64   // running balance after the action
}

// Recorder persists journal entries.
type Recorder interface {
	Record(entry Entry) error
	Close() error
}

// MultiRecorder fans out each entry to every recorder. An error from one
// recorder does not stop delivery to the others.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(entry Entry) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiRecorder) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
