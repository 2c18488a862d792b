package griddriver

import (
	"io"
	"log"
	"sync"
	"testing"

	"github.com/marketfeed/orderbook-engine/internal/dispatch"
	"github.com/marketfeed/orderbook-engine/internal/feed"
	"github.com/marketfeed/orderbook-engine/internal/signal"
	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

type fakeCSVSink struct {
	mu   sync.Mutex
	rows []fakeRow
}

type fakeRow struct {
	gridTime int64
	symbol   string
	tick     signal.Tick
}

func (f *fakeCSVSink) WriteTick(gridTime int64, symbol string, tick signal.Tick) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, fakeRow{gridTime, symbol, tick})
	return nil
}

func newTestRouter(t *testing.T) *dispatch.Router {
	t.Helper()
	r := dispatch.New()
	go r.Run()
	return r
}

func TestTickWritesOneRowPerActiveSymbol(t *testing.T) {
	r := newTestRouter(t)
	r.Dispatch(feed.AddOrder{SymbolName: "AAPL", OrderID: 1, Price: 100, Qty: 10, Side: bookmodel.Buy})
	r.Dispatch(feed.AddOrder{SymbolName: "MSFT", OrderID: 2, Price: 200, Qty: 5, Side: bookmodel.Buy})

	// Block until both dispatches have been applied by their respective
	// symbol workers before the driver enumerates active symbols.
	r.Snapshot("AAPL")
	r.Snapshot("MSFT")

	sink := &fakeCSVSink{}
	d := New(r, 0, sink, nil, log.New(io.Discard, "", 0))
	d.Tick(20240101120000)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.rows) != 2 {
		t.Fatalf("expected one row per active symbol, got %d", len(sink.rows))
	}
}

func TestTickSkipsEvictionOnMalformedGridTimeButStillComputesSignals(t *testing.T) {
	r := newTestRouter(t)
	r.Dispatch(feed.AddOrder{SymbolName: "AAPL", OrderID: 1, Price: 100, Qty: 10, Side: bookmodel.Buy})
	r.Snapshot("AAPL")

	sink := &fakeCSVSink{}
	d := New(r, 0, sink, nil, log.New(io.Discard, "", 0))
	d.Tick(-1)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.rows) != 1 {
		t.Fatalf("expected a row still written even when grid time is malformed, got %d", len(sink.rows))
	}
}
