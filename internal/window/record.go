// Package window implements the 10-minute sliding trade-window statistics
// of spec §4.7: a fixed-capacity ring buffer of trade records with
// incremental running sums and a dual-heap running median, grounded in
// the cached-extremes, lazy-rebuild design of the original C++
// RingBufferSlidingWindowStats (original_source/impl/src/sliding_window_ring.cpp).
package window

import "github.com/marketfeed/orderbook-engine/pkg/bookmodel"

// record is one retained trade, stamped with the monotonic seq it was
// assigned at insertion. seq (rather than ring slot) is what heap entries
// key on, so a heap entry remains meaningful for liveness checks even
// after its ring slot has been physically overwritten by a later trade.
type record struct {
	seq        uint64
	tsSeconds  int64
	price      bookmodel.Price
	qty        bookmodel.TradeQty
	amount     bookmodel.Amount
}
