package sigwriter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/marketfeed/orderbook-engine/internal/signal"
)

func TestWriteTickFlushesAfterRowThreshold(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, 1, 0)

	tick := signal.Tick{signal.MidPrice: 101.5}
	if err := w.WriteTick(20240101000000, "AAPL", tick); err != nil {
		t.Fatalf("WriteTick: %v", err)
	}

	if buf.Len() == 0 {
		t.Fatalf("expected data flushed to buffer after hitting row threshold")
	}

	r := csv.NewReader(strings.NewReader(buf.String()))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[0][0] != "grid_time" || records[0][1] != "symbol" {
		t.Fatalf("unexpected header: %v", records[0])
	}
}

func TestWriteTickEmitsEmptyCellForSuppressedSignal(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, 1, 0)

	tick := signal.Tick{} // every signal suppressed
	if err := w.WriteTick(1, "AAPL", tick); err != nil {
		t.Fatalf("WriteTick: %v", err)
	}

	r := csv.NewReader(strings.NewReader(buf.String()))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	row := records[1]
	for _, cell := range row[2:] {
		if cell != "" {
			t.Fatalf("expected all signal cells empty when suppressed, got %q in row %v", cell, row)
		}
	}
}

func TestFlushIsIdempotentWhenNothingPending(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, 0, 0)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush on empty writer: %v", err)
	}
}

func TestWriteTickDoesNotFlushBeforeThreshold(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, 10, time.Hour)

	if err := w.WriteTick(1, "AAPL", signal.Tick{}); err != nil {
		t.Fatalf("WriteTick: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no flush before threshold, got %d bytes written", buf.Len())
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected explicit Flush to emit buffered rows")
	}
}
