package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

var csvHeader = []string{"timestamp", "action", "price", "amount", "balance"}

// CSVRecorder appends entries to a CSV session log. The header is written
// only when the file is new or empty, so restarts keep appending to the same
// log.
type CSVRecorder struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// NewCSVRecorder opens or creates the session log at path.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat session log: %w", err)
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write session log header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("write session log header: %w", err)
		}
	}

	return &CSVRecorder{file: file, w: w}, nil
}

// Record appends one row and flushes it so a crash loses at most the entry
// being written.
func (c *CSVRecorder) Record(entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := []string{
		entry.Time.UTC().Format(time.RFC3339),
		entry.Action,
		strconv.FormatFloat(entry.Price, 'f', -1, 64),
		strconv.FormatFloat(entry.Amount, 'f', -1, 64),
		strconv.FormatFloat(entry.Balance, 'f', -1, 64),
	}
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("write session log row: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("flush session log: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (c *CSVRecorder) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.file.Close()
		return fmt.Errorf("flush session log: %w", err)
	}
	return c.file.Close()
}
