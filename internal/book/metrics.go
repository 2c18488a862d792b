package book

import (
	"github.com/marketfeed/orderbook-engine/internal/arena"
	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

// MidPrice is (bid+ask)/2 when both sides are non-empty, else 0.
func (e *Engine) MidPrice() float64 {
	if e.BidLevels() == 0 || e.AskLevels() == 0 {
		return 0
	}
	return (float64(e.bbo.snapshot.BidPrice) + float64(e.bbo.snapshot.AskPrice)) / 2
}

// Spread is ask-bid when both sides are non-empty, else 0.
func (e *Engine) Spread() float64 {
	if e.BidLevels() == 0 || e.AskLevels() == 0 {
		return 0
	}
	return float64(e.bbo.snapshot.AskPrice - e.bbo.snapshot.BidPrice)
}

// MacroPrice is the qty-weighted mid price of the two extremal levels,
// falling back to MidPrice (and so to 0) when either side is empty or
// the combined extremum qty is zero.
func (e *Engine) MacroPrice() float64 {
	if e.BidLevels() == 0 || e.AskLevels() == 0 {
		return e.MidPrice()
	}
	bidQty := float64(e.bbo.snapshot.BidQty)
	askQty := float64(e.bbo.snapshot.AskQty)
	denom := bidQty + askQty
	if denom == 0 {
		return e.MidPrice()
	}
	return (float64(e.bbo.snapshot.AskPrice)*bidQty + float64(e.bbo.snapshot.BidPrice)*askQty) / denom
}

// Imbalance is the normalised qty difference between the k best bid and
// ask levels, 0 if both sums are zero. k is silently capped to the
// number of available levels on each side.
func (e *Engine) Imbalance(k int) float64 {
	bidSum := e.sumQty(e.bids, k)
	askSum := e.sumQty(e.asks, k)
	denom := float64(bidSum) + float64(askSum)
	if denom == 0 {
		return 0
	}
	return (float64(bidSum) - float64(askSum)) / denom
}

func (e *Engine) sumQty(idx sideLevelLookup, k int) bookmodel.Qty {
	var sum bookmodel.Qty
	idx.ForEachFromBest(k, func(_ bookmodel.Price, h arena.Handle) bool {
		sum += e.levels.Get(h).totalQty
		return true
	})
	return sum
}

// BookPressure is the normalised difference of reciprocal-distance
// weighted qty sums on each side over the k best levels: for each level,
// qty_i / |price_i - mid|, contributing 0 if mid <= 0 or the distance is
// 0. Returns 0 if mid <= 0 or both weighted sums are zero.
func (e *Engine) BookPressure(k int) float64 {
	mid := e.MidPrice()
	if mid <= 0 {
		return 0
	}
	bidPressure := e.weightedPressure(e.bids, k, mid)
	askPressure := e.weightedPressure(e.asks, k, mid)
	denom := bidPressure + askPressure
	if denom == 0 {
		return 0
	}
	return (bidPressure - askPressure) / denom
}

func (e *Engine) weightedPressure(idx sideLevelLookup, k int, mid float64) float64 {
	var pressure float64
	idx.ForEachFromBest(k, func(price bookmodel.Price, h arena.Handle) bool {
		dist := float64(price) - mid
		if dist < 0 {
			dist = -dist
		}
		if dist <= 0 {
			return true
		}
		pressure += float64(e.levels.Get(h).totalQty) / dist
		return true
	})
	return pressure
}

// sideLevelLookup is the slice of *priceindex.Index that metrics.go needs;
// declared here rather than imported to keep this file from depending on
// the priceindex package's own handle type naming.
type sideLevelLookup interface {
	ForEachFromBest(k int, fn func(price bookmodel.Price, level arena.Handle) bool)
}

// VWAPLevel reports which book level contains the given VWAP, per spec
// §4.7: if vwap is at or above the best ask, scan ask levels ascending
// and return -i for the first level whose price is at or above vwap; if
// at or below the best bid, scan bid levels descending and return +i for
// the first whose price is at or below vwap; otherwise 0.
func (e *Engine) VWAPLevel(vwap float64) int {
	bbo := e.bbo.snapshot
	if e.AskLevels() > 0 && vwap >= float64(bbo.AskPrice) {
		for i := 0; i < e.AskLevels(); i++ {
			if vwap <= float64(e.AskPrice(i)) {
				return -i
			}
		}
		return 0
	}
	if e.BidLevels() > 0 && vwap <= float64(bbo.BidPrice) {
		for i := 0; i < e.BidLevels(); i++ {
			if vwap >= float64(e.BidPrice(i)) {
				return i
			}
		}
		return 0
	}
	return 0
}
