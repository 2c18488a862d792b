// Package dispatch routes feed messages to one book.Engine per symbol,
// each owned and mutated by exactly one goroutine — the same
// single-writer-owns-state shape the teacher's websocket.Hub.Run event
// loop uses — so that "no shared mutable state between books" (spec.md
// §5) holds even though many symbols run concurrently.
package dispatch

import (
	"github.com/marketfeed/orderbook-engine/internal/book"
	"github.com/marketfeed/orderbook-engine/internal/feed"
	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

// inboundQueueSize bounds how far a symbol's worker can lag its
// producer before Dispatch blocks the caller.
const inboundQueueSize = 1024

// Depth is a snapshot of one side's top levels, for admin/API responses.
type Depth struct {
	Prices []bookmodel.Price
	Qtys   []bookmodel.Qty
}

// symbolWorker owns one symbol's engine exclusively; every request to it
// arrives on inbox and is processed run-to-completion before the next.
type symbolWorker struct {
	engine *book.Engine
	inbox  chan func()
}

func newSymbolWorker() *symbolWorker {
	w := &symbolWorker{
		engine: book.New(),
		inbox:  make(chan func(), inboundQueueSize),
	}
	go w.run()
	return w
}

func (w *symbolWorker) run() {
	for fn := range w.inbox {
		fn()
	}
}

// Router owns one symbolWorker per symbol, created lazily on first use.
type Router struct {
	register chan registerRequest
	list     chan listRequest
	workers  map[string]*symbolWorker
}

type registerRequest struct {
	symbol string
	reply  chan *symbolWorker
}

type listRequest struct {
	reply chan []string
}

// New creates an empty Router. Call Run in its own goroutine before use.
func New() *Router {
	return &Router{
		register: make(chan registerRequest),
		list:     make(chan listRequest),
		workers:  make(map[string]*symbolWorker),
	}
}

// Run is the router's own single-goroutine loop, serializing creation of
// per-symbol workers and symbol enumeration against each other. It
// returns only when the caller closes nothing — callers are expected to
// run it for the life of the process, same as the teacher's Hub.Run(ctx).
func (r *Router) Run() {
	for {
		select {
		case req := <-r.register:
			w, ok := r.workers[req.symbol]
			if !ok {
				w = newSymbolWorker()
				r.workers[req.symbol] = w
			}
			req.reply <- w
		case req := <-r.list:
			names := make([]string, 0, len(r.workers))
			for s := range r.workers {
				names = append(names, s)
			}
			req.reply <- names
		}
	}
}

func (r *Router) workerFor(symbol string) *symbolWorker {
	reply := make(chan *symbolWorker, 1)
	r.register <- registerRequest{symbol: symbol, reply: reply}
	return <-reply
}

// Symbols returns the symbols with a live worker, as a synchronous
// round-trip through Run's own goroutine.
func (r *Router) Symbols() []string {
	reply := make(chan []string, 1)
	r.list <- listRequest{reply: reply}
	return <-reply
}

// Dispatch routes msg to its symbol's worker and applies it to that
// symbol's engine. It does not wait for the mutation to complete.
func (r *Router) Dispatch(msg feed.Message) {
	w := r.workerFor(msg.Symbol())
	w.inbox <- func() { apply(w.engine, msg) }
}

func apply(e *book.Engine, msg feed.Message) {
	switch m := msg.(type) {
	case feed.OrderbookClear:
		e.Clear()
	case feed.AddOrder:
		e.AddOrder(bookmodel.OrderID(m.OrderID), m.Price, m.Qty, m.Side)
	case feed.ModifyOrder:
		e.ModifyOrder(bookmodel.OrderID(m.OrderID), m.Price, m.Qty, m.Side)
	case feed.DeleteOrder:
		e.DeleteOrder(bookmodel.OrderID(m.OrderID), m.Side)
	case feed.AddTrade:
		e.ProcessTrade(bookmodel.OrderID(m.OrderID), bookmodel.TradeID(m.TradeID), m.Price, m.Qty, m.Side, m.TradeTimeNs)
	}
}

// Snapshot returns the current BBO for symbol, as a synchronous
// round-trip through that symbol's worker goroutine.
func (r *Router) Snapshot(symbol string) bookmodel.BBO {
	w := r.workerFor(symbol)
	result := make(chan bookmodel.BBO, 1)
	w.inbox <- func() { result <- w.engine.BBO() }
	return <-result
}

// DepthSnapshot returns the top levels bids times and asks for symbol,
// up to levels deep per side.
func (r *Router) DepthSnapshot(symbol string, levels int) (bids, asks Depth) {
	w := r.workerFor(symbol)
	result := make(chan [2]Depth, 1)
	w.inbox <- func() {
		var b, a Depth
		for k := 0; k < levels && k < w.engine.BidLevels(); k++ {
			b.Prices = append(b.Prices, w.engine.BidPrice(k))
			b.Qtys = append(b.Qtys, w.engine.BidQty(k))
		}
		for k := 0; k < levels && k < w.engine.AskLevels(); k++ {
			a.Prices = append(a.Prices, w.engine.AskPrice(k))
			a.Qtys = append(a.Qtys, w.engine.AskQty(k))
		}
		result <- [2]Depth{b, a}
	}
	pair := <-result
	return pair[0], pair[1]
}

// WithEngine runs fn with exclusive access to symbol's engine, blocking
// until fn returns. Used by the grid driver and the admin clear endpoint,
// which need more than the fixed Snapshot/DepthSnapshot shapes.
func (r *Router) WithEngine(symbol string, fn func(e *book.Engine)) {
	w := r.workerFor(symbol)
	done := make(chan struct{})
	w.inbox <- func() {
		fn(w.engine)
		close(done)
	}
	<-done
}

// Clear resets symbol's engine to empty.
func (r *Router) Clear(symbol string) {
	r.WithEngine(symbol, func(e *book.Engine) { e.Clear() })
}
