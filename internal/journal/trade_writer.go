package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WriterConfig tunes trade log batching.
type WriterConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	BufferSize    int
}

// WriterMetrics are cumulative trade log counters.
type WriterMetrics struct {
	Inserts int64
	Errors  int64
	Flushes int64
	Dropped int64
}

// TradeLogWriter batches journal entries and inserts them into the trade_log
// table. Record never blocks the trading path: entries are queued and an
// entry is dropped (with a warning) when the queue is full.
type TradeLogWriter struct {
	cfg       WriterConfig
	logger    *slog.Logger
	sessionID uuid.UUID

	input chan Entry

	db *pgxpool.Pool

	batch       []tradeLogRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics WriterMetrics
}

type tradeLogRow struct {
	SessionID  uuid.UUID
	RecordedAt time.Time
	Action     string
	Price      float64
	Amount     float64
	Balance    float64
}

// NewTradeLogWriter creates a trade log writer. Every entry recorded through
// one writer shares a session id, so one bot run groups into one session.
func NewTradeLogWriter(cfg WriterConfig, db *pgxpool.Pool, logger *slog.Logger) *TradeLogWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	return &TradeLogWriter{
		cfg:       cfg,
		logger:    logger,
		sessionID: uuid.New(),
		input:     make(chan Entry, cfg.BufferSize),
		db:        db,
		batch:     make([]tradeLogRow, 0, cfg.BatchSize),
	}
}

// SessionID returns the id grouping this run's rows.
func (w *TradeLogWriter) SessionID() uuid.UUID {
	return w.sessionID
}

// Start begins consuming entries and writing to the database.
func (w *TradeLogWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("trade log writer started",
		"session_id", w.sessionID,
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Record queues one entry for insertion.
func (w *TradeLogWriter) Record(entry Entry) error {
	select {
	case w.input <- entry:
	default:
		w.batchMu.Lock()
		w.metrics.Dropped++
		w.batchMu.Unlock()
		w.logger.Warn("trade log queue full, dropping entry", "action", entry.Action)
	}
	return nil
}

// Close stops the loops and performs a final flush.
func (w *TradeLogWriter) Close() error {
	w.logger.Info("stopping trade log writer")

	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		w.logger.Warn("trade log writer stop timed out")
	}

	// Drain whatever made it into the queue before cancellation.
	for {
		select {
		case entry := <-w.input:
			w.handleEntry(entry, false)
		default:
			w.flush()
			w.logger.Info("trade log writer stopped")
			return nil
		}
	}
}

// Stats returns current metrics.
func (w *TradeLogWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads queued entries and accumulates batches.
func (w *TradeLogWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case entry := <-w.input:
			w.handleEntry(entry, true)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *TradeLogWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush()
		}
	}
}

// handleEntry transforms and adds an entry to the batch.
func (w *TradeLogWriter) handleEntry(entry Entry, flushWhenFull bool) {
	row := w.transform(entry)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := flushWhenFull && len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

// transform converts an Entry to a trade_log row.
func (w *TradeLogWriter) transform(entry Entry) tradeLogRow {
	return tradeLogRow{
		SessionID:  w.sessionID,
		RecordedAt: entry.Time.UTC(),
		Action:     entry.Action,
		Price:      entry.Price,
		Amount:     entry.Amount,
		Balance:    entry.Balance,
	}
}

// flush writes the current batch to the database.
func (w *TradeLogWriter) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	batch := w.batch
	w.batch = make([]tradeLogRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	if err := w.batchInsert(batch); err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch))
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed trade log",
		"count", len(batch),
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch.
func (w *TradeLogWriter) batchInsert(rows []tradeLogRow) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO trade_log (session_id, recorded_at, action, price, amount, balance)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, r.SessionID, r.RecordedAt, r.Action, r.Price, r.Amount, r.Balance)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
