// Package griddriver ticks the grid clock for every active symbol,
// evicting each symbol's trade window and recomputing its signal set the
// same way the teacher's cmd/init/initializingticker.go periodically
// drives recurring work off a time.Ticker.
package griddriver

import (
	"context"
	"log"
	"time"

	"github.com/marketfeed/orderbook-engine/internal/book"
	"github.com/marketfeed/orderbook-engine/internal/dispatch"
	"github.com/marketfeed/orderbook-engine/internal/signal"
	"github.com/marketfeed/orderbook-engine/internal/wsfeed"
)

// CSVSink is the subset of sigwriter.Writer the driver needs.
type CSVSink interface {
	WriteTick(gridTime int64, symbol string, tick signal.Tick) error
}

// Driver ticks once every interval, and for every symbol the router
// currently knows about, evicts its window and recomputes signals.
type Driver struct {
	router   *dispatch.Router
	interval time.Duration
	csv      CSVSink
	hub      *wsfeed.Hub
	logger   *log.Logger

	// clock returns the current grid time as a YYYYMMDDHHMMSS integer.
	// Overridable in tests; defaults to the wall clock.
	clock func() int64
}

// New creates a Driver. csv or hub may be nil to skip that sink.
func New(router *dispatch.Router, interval time.Duration, csv CSVSink, hub *wsfeed.Hub, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		router:   router,
		interval: interval,
		csv:      csv,
		hub:      hub,
		logger:   logger,
		clock:    wallClockGridTime,
	}
}

func wallClockGridTime() int64 {
	t := time.Now().UTC()
	return int64(t.Year())*1e10 +
		int64(t.Month())*1e8 +
		int64(t.Day())*1e6 +
		int64(t.Hour())*1e4 +
		int64(t.Minute())*1e2 +
		int64(t.Second())
}

// Run drives ticks until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick(d.clock())
		}
	}
}

// Tick evicts every active symbol's trade window as of gridTime and hands
// the resulting signal set to the configured sinks. Exported directly so
// tests (and feedsim, replaying historical time) can drive it without a
// live ticker.
func (d *Driver) Tick(gridTime int64) {
	for _, symbol := range d.router.Symbols() {
		var tick signal.Tick
		d.router.WithEngine(symbol, func(e *book.Engine) {
			if !e.Window().EvictExpired(gridTime) {
				d.logger.Printf("griddriver: malformed grid time %d for symbol %s, skipping eviction", gridTime, symbol)
			}
			tick = signal.Compute(e)
		})

		if d.csv != nil {
			if err := d.csv.WriteTick(gridTime, symbol, tick); err != nil {
				d.logger.Printf("griddriver: csv write failed for %s: %v", symbol, err)
			}
		}
		if d.hub != nil {
			d.hub.PublishSignals(symbol, wsfeed.SignalTick{GridTime: gridTime, Values: tick})
		}
	}
}
