package window

import (
	"container/heap"
	"time"

	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

// defaultCapacity is the ring buffer size the design notes call out: a
// power of two comfortably above the trade rate expected over 10 minutes.
const defaultCapacity = 1 << 16

// rebuildThreshold mirrors the original's REBUILD_THRESHOLD: once more
// than this fraction of the window has been evicted since the price-range
// cache was last validated, pay for an eager full rebuild rather than
// keep deferring it lazily.
const rebuildThreshold = 0.25

// Window is the 10-minute sliding trade window described in spec §4.7.
// It is not safe for concurrent use; it is owned by exactly one
// book.Engine.
type Window struct {
	capacity int
	mask     uint64
	records  []record

	headSeq uint64 // seq that will be assigned to the next inserted trade
	tailSeq uint64 // seq of the oldest currently-retained trade

	sumQty    bookmodel.TradeQty
	sumAmount bookmodel.Amount

	lower maxHeap // lower half of retained prices, root = max of lower half
	upper minHeap // upper half of retained prices, root = min of upper half

	cacheValid          bool
	cachedMin, cachedMax bookmodel.Price
	evictedSinceRebuild int
}

// New creates an empty window with the default ring capacity.
func New() *Window {
	return NewWithCapacity(defaultCapacity)
}

// NewWithCapacity creates an empty window with the given power-of-two
// capacity, primarily for tests that want a small ring to exercise
// overflow eviction without generating tens of thousands of trades.
func NewWithCapacity(capacity int) *Window {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("window: capacity must be a positive power of two")
	}
	return &Window{
		capacity: capacity,
		mask:     uint64(capacity - 1),
		records:  make([]record, capacity),
	}
}

func (w *Window) count() int {
	return int(w.headSeq - w.tailSeq)
}

func (w *Window) slotFor(seq uint64) int {
	return int(seq & w.mask)
}

// live reports whether seq still identifies a retained record.
func (w *Window) live(seq uint64) bool {
	return seq >= w.tailSeq && seq < w.headSeq
}

// RecordTrade appends one executed trade to the window, evicting the
// oldest retained trade first if the ring is already full.
func (w *Window) RecordTrade(tsNs uint64, price bookmodel.Price, qty bookmodel.TradeQty) {
	if w.count() == w.capacity {
		w.evictOldest()
	}

	seq := w.headSeq
	w.headSeq++

	amount := bookmodel.Amount(uint64(price) * uint64(qty))
	w.records[w.slotFor(seq)] = record{
		seq:       seq,
		tsSeconds: int64(tsNs / 1_000_000_000),
		price:     price,
		qty:       qty,
		amount:    amount,
	}

	w.sumQty += qty
	w.sumAmount += amount

	if w.cacheValid {
		if price < w.cachedMin {
			w.cachedMin = price
		}
		if price > w.cachedMax {
			w.cachedMax = price
		}
	}

	w.insertIntoHeaps(seq, price)
}

func (w *Window) insertIntoHeaps(seq uint64, price bookmodel.Price) {
	e := heapEntry{seq: seq, price: price}

	if len(w.lower) == 0 || price <= w.lower[0].price {
		heap.Push(&w.lower, e)
	} else {
		heap.Push(&w.upper, e)
	}

	if len(w.lower) > len(w.upper)+1 {
		moved := heap.Pop(&w.lower).(heapEntry)
		heap.Push(&w.upper, moved)
	} else if len(w.upper) > len(w.lower) {
		moved := heap.Pop(&w.upper).(heapEntry)
		heap.Push(&w.lower, moved)
	}
}

// evictOldest removes the single oldest retained record, subtracting it
// from the running sums. Used both for time-based and overflow eviction.
func (w *Window) evictOldest() {
	r := w.records[w.slotFor(w.tailSeq)]
	w.sumQty -= r.qty
	w.sumAmount -= r.amount
	w.tailSeq++
	w.evictedSinceRebuild++

	if w.cacheValid && (r.price == w.cachedMin || r.price == w.cachedMax) {
		w.cacheValid = false
	}
}

// EvictExpired drops retained trades outside the window ending at
// currentGridTime (a YYYYMMDDHHMMSS integer, interpreted as UTC). The
// retained window after eviction is [currentSeconds-600, currentSeconds).
// It returns false without modifying the window if currentGridTime fails
// calendar decomposition, per the malformed-temporal-input contract of
// spec §7.
func (w *Window) EvictExpired(currentGridTime int64) bool {
	currentSeconds, ok := gridTimeToUnixSeconds(currentGridTime)
	if !ok {
		return false
	}
	cutoff := currentSeconds - 600

	for w.count() > 0 {
		r := w.records[w.slotFor(w.tailSeq)]
		if r.tsSeconds >= cutoff && r.tsSeconds < currentSeconds {
			break
		}
		w.evictOldest()
	}

	if w.evictedSinceRebuild > 0 && float64(w.evictedSinceRebuild) > rebuildThreshold*float64(w.capacity) {
		w.rebuildExtremesCache()
	}
	return true
}

func (w *Window) rebuildExtremesCache() {
	if w.count() == 0 {
		w.cacheValid = false
		w.evictedSinceRebuild = 0
		return
	}
	min, max := w.records[w.slotFor(w.tailSeq)].price, w.records[w.slotFor(w.tailSeq)].price
	for seq := w.tailSeq; seq < w.headSeq; seq++ {
		p := w.records[w.slotFor(seq)].price
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	w.cachedMin, w.cachedMax = min, max
	w.cacheValid = true
	w.evictedSinceRebuild = 0
}

// WindowVolume is sum_qty over retained trades.
func (w *Window) WindowVolume() bookmodel.TradeQty { return w.sumQty }

// WindowAmount is sum_amount over retained trades.
func (w *Window) WindowAmount() bookmodel.Amount { return w.sumAmount }

// VWAP is sum_amount/sum_qty, or 0 if the window is empty.
func (w *Window) VWAP() float64 {
	if w.sumQty == 0 {
		return 0
	}
	return float64(w.sumAmount) / float64(w.sumQty)
}

// PriceRange is cachedMax-cachedMin over retained trades, rebuilding the
// cache from live records first if it was invalidated by an eviction that
// touched a cached extreme.
func (w *Window) PriceRange() bookmodel.Price {
	if w.count() == 0 {
		return 0
	}
	if !w.cacheValid {
		w.rebuildExtremesCache()
	}
	return w.cachedMax - w.cachedMin
}

// Median returns the median price over retained trades, or 0 if the
// window is empty. Evicted entries stay in the heaps until query time;
// when any remain, the heaps are rebuilt from the retained records so
// their sizes count only retained trades.
func (w *Window) Median() float64 {
	if len(w.lower)+len(w.upper) != w.count() {
		w.lower = w.lower[:0]
		w.upper = w.upper[:0]
		for seq := w.tailSeq; seq < w.headSeq; seq++ {
			w.insertIntoHeaps(seq, w.records[w.slotFor(seq)].price)
		}
	}
	w.dropExpiredRoots(&w.lower)
	w.dropExpiredRoots(&w.upper)

	switch {
	case len(w.lower) == 0 && len(w.upper) == 0:
		return 0
	case len(w.lower) == len(w.upper):
		return (float64(w.lower[0].price) + float64(w.upper[0].price)) / 2
	case len(w.lower) > len(w.upper):
		return float64(w.lower[0].price)
	default:
		return float64(w.upper[0].price)
	}
}

func (w *Window) dropExpiredRoots(h heap.Interface) {
	for {
		switch t := h.(type) {
		case *maxHeap:
			if len(*t) == 0 || w.live((*t)[0].seq) {
				return
			}
		case *minHeap:
			if len(*t) == 0 || w.live((*t)[0].seq) {
				return
			}
		}
		heap.Pop(h)
	}
}

// Clear empties the window entirely.
func (w *Window) Clear() {
	w.headSeq = 0
	w.tailSeq = 0
	w.sumQty = 0
	w.sumAmount = 0
	w.lower = w.lower[:0]
	w.upper = w.upper[:0]
	w.cacheValid = false
	w.evictedSinceRebuild = 0
}

// gridTimeToUnixSeconds decomposes a YYYYMMDDHHMMSS integer into its
// calendar fields and converts to Unix seconds under UTC, the idiomatic
// equivalent of the original's mktime-based decomposition — pinned to
// UTC rather than the process's local timezone, since the grid driver's
// timestamps are already UTC wall-clock values.
func gridTimeToUnixSeconds(gridTime int64) (int64, bool) {
	if gridTime < 0 {
		return 0, false
	}
	year := int(gridTime / 1e10)
	month := int((gridTime / 1e8) % 100)
	day := int((gridTime / 1e6) % 100)
	hour := int((gridTime / 1e4) % 100)
	minute := int((gridTime / 1e2) % 100)
	second := int(gridTime % 100)

	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || minute > 59 || second > 59 {
		return 0, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return t.Unix(), true
}
