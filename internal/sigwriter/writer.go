// Package sigwriter buffers grid-tick signals to a CSV sink, one row per
// symbol per tick, flushing on a row-count or time threshold the way the
// teacher's writePump batches queued websocket frames before flushing to
// the wire.
package sigwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/marketfeed/orderbook-engine/internal/signal"
)

// Writer accumulates rows in memory and flushes them to an
// encoding/csv.Writer either once flushEvery rows have queued or once
// flushInterval has elapsed since the last flush, whichever comes first.
type Writer struct {
	mu sync.Mutex

	csv           *csv.Writer
	flushEvery    int
	flushInterval time.Duration
	pending       int
	lastFlush     time.Time
	headerWritten bool
}

// New creates a Writer over dst. flushEvery <= 0 disables the row-count
// trigger; flushInterval <= 0 disables the time trigger (so Flush must be
// called explicitly, e.g. on shutdown).
func New(dst io.Writer, flushEvery int, flushInterval time.Duration) *Writer {
	return &Writer{
		csv:           csv.NewWriter(dst),
		flushEvery:    flushEvery,
		flushInterval: flushInterval,
		lastFlush:     time.Time{},
	}
}

// WriteTick appends one row for symbol at gridTime, using signal.Order
// for stable column order and an empty cell for any suppressed signal.
func (w *Writer) WriteTick(gridTime int64, symbol string, tick signal.Tick) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.headerWritten {
		if err := w.csv.Write(w.columns()); err != nil {
			return fmt.Errorf("sigwriter: write header: %w", err)
		}
		w.headerWritten = true
	}

	row := make([]string, 0, len(signal.Order)+2)
	row = append(row, strconv.FormatInt(gridTime, 10), symbol)
	for _, name := range signal.Order {
		v, ok := tick[name]
		if !ok {
			row = append(row, "")
			continue
		}
		row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
	}

	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("sigwriter: write row: %w", err)
	}
	w.pending++

	if w.shouldFlushLocked() {
		return w.flushLocked()
	}
	return nil
}

func (w *Writer) columns() []string {
	cols := []string{"grid_time", "symbol"}
	for _, name := range signal.Order {
		cols = append(cols, string(name))
	}
	return cols
}

func (w *Writer) shouldFlushLocked() bool {
	if w.flushEvery > 0 && w.pending >= w.flushEvery {
		return true
	}
	if w.flushInterval > 0 && !w.lastFlush.IsZero() && time.Since(w.lastFlush) >= w.flushInterval {
		return true
	}
	return false
}

func (w *Writer) flushLocked() error {
	w.csv.Flush()
	w.pending = 0
	w.lastFlush = time.Now()
	return w.csv.Error()
}

// Flush forces any buffered rows out to the underlying writer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}
