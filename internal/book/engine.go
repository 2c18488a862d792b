// Package book implements the core order book engine described in
// spec §4.6: arenas for Order/PriceLevel records, the order-id and
// price indices, the per-level FIFO queues, the BBO cache, and the
// 10-minute trade window, coordinated behind five mutating operations
// and a set of pull-query derived metrics.
package book

import (
	"github.com/marketfeed/orderbook-engine/internal/arena"
	"github.com/marketfeed/orderbook-engine/internal/orderindex"
	"github.com/marketfeed/orderbook-engine/internal/priceindex"
	"github.com/marketfeed/orderbook-engine/internal/window"
	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

// orderArenaChunk and levelArenaChunk mirror the chunk sizing the design
// notes call out: orders churn far more than levels, so the order arena
// gets the larger chunk.
const (
	orderArenaChunk = 1 << 16
	levelArenaChunk = 1 << 10
)

// Engine is a single-symbol order book plus its attached trade window.
// It is not safe for concurrent use — each Engine is owned and invoked
// by a single logical caller, per spec §5.
type Engine struct {
	orders *arena.Arena[order]
	levels *arena.Arena[level]

	orderIdx *orderindex.Index
	bids     *priceindex.Index // descending: best = highest price
	asks     *priceindex.Index // ascending: best = lowest price

	bbo    bboCache
	window *window.Window
}

// New constructs an empty engine.
func New() *Engine {
	return &Engine{
		orders:   arena.New[order](orderArenaChunk),
		levels:   arena.New[level](levelArenaChunk),
		orderIdx: orderindex.New(1024),
		bids:     priceindex.New(true),
		asks:     priceindex.New(false),
		window:   window.New(),
	}
}

func (e *Engine) sideIndex(side bookmodel.Side) *priceindex.Index {
	if side == bookmodel.Buy {
		return e.bids
	}
	return e.asks
}

// AddOrder implements spec §4.6 add_order. A duplicate order_id is
// silently ignored.
func (e *Engine) AddOrder(orderID bookmodel.OrderID, price bookmodel.Price, qty bookmodel.Qty, side bookmodel.Side) {
	if _, exists := e.orderIdx.Find(uint64(orderID)); exists {
		return
	}

	sideIdx := e.sideIndex(side)
	sideWasEmpty := sideIdx.Len() == 0

	levelH, found := sideIdx.Find(price)
	var lv *level
	if !found {
		var newLevelH arena.Handle
		newLevelH, lv = e.levels.Allocate()
		lv.price = price
		lv.side = side
		sideIdx.Insert(price, newLevelH)
		levelH = newLevelH
	} else {
		lv = e.levels.Get(levelH)
	}

	orderH, ord := e.orders.Allocate()
	ord.id = orderID
	ord.price = price
	ord.qty = qty
	ord.side = side
	ord.level = levelH
	lv.pushBack(e.orders, orderH)

	if res := e.orderIdx.Insert(uint64(orderID), orderH); res != orderindex.Inserted {
		// Roll back the level/order bookkeeping we just performed; the
		// index refused the insert (table full), so the order never
		// existed as far as any external observer is concerned.
		lv.remove(e.orders, orderH)
		if lv.orderCount == 0 {
			sideIdx.Erase(price)
			e.levels.Free(levelH)
		}
		e.orders.Free(orderH)
		return
	}

	dirty := sideWasEmpty
	if !dirty {
		if side == bookmodel.Buy {
			dirty = price >= e.bbo.snapshot.BidPrice
		} else {
			dirty = price <= e.bbo.snapshot.AskPrice
		}
	}
	if dirty {
		e.markDirty(side)
	}
	e.recomputeDirty()
}

// ModifyOrder implements spec §4.6 modify_order. An unknown order_id is
// silently ignored. A price change is implemented as delete-then-add,
// without rolling back the delete if the re-add is refused.
func (e *Engine) ModifyOrder(orderID bookmodel.OrderID, price bookmodel.Price, qty bookmodel.Qty, side bookmodel.Side) {
	orderH, ok := e.orderIdx.Find(uint64(orderID))
	if !ok {
		return
	}
	ord := e.orders.Get(orderH)

	if ord.price == price {
		lv := e.levels.Get(ord.level)
		if qty >= ord.qty {
			lv.totalQty += qty - ord.qty
		} else {
			lv.totalQty -= ord.qty - qty
		}
		ord.qty = qty

		if (side == bookmodel.Buy && price == e.bbo.snapshot.BidPrice) ||
			(side == bookmodel.Sell && price == e.bbo.snapshot.AskPrice) {
			e.markDirty(side)
		}
		e.recomputeDirty()
		return
	}

	e.DeleteOrder(orderID, side)
	e.AddOrder(orderID, price, qty, side)
}

// DeleteOrder implements spec §4.6 delete_order. An unknown order_id is
// silently ignored.
func (e *Engine) DeleteOrder(orderID bookmodel.OrderID, side bookmodel.Side) {
	orderH, ok := e.orderIdx.Find(uint64(orderID))
	if !ok {
		return
	}
	e.deleteByHandle(orderH)
}

func (e *Engine) deleteByHandle(orderH arena.Handle) {
	ord := e.orders.Get(orderH)
	lv := e.levels.Get(ord.level)
	levelH := ord.level
	sideSide := ord.side

	wasExtremum := (sideSide == bookmodel.Buy && lv.price == e.bbo.snapshot.BidPrice) ||
		(sideSide == bookmodel.Sell && lv.price == e.bbo.snapshot.AskPrice)

	lv.remove(e.orders, orderH)
	if lv.orderCount == 0 {
		e.sideIndex(sideSide).Erase(lv.price)
		e.levels.Free(levelH)
	}

	e.orderIdx.Erase(uint64(ord.id))
	e.orders.Free(orderH)

	if wasExtremum {
		e.markDirty(sideSide)
		e.recomputeDirty()
	}
}

// ProcessTrade implements spec §4.6 process_trade. The trade is recorded
// into the window unconditionally, before the resting-order lookup.
func (e *Engine) ProcessTrade(orderID bookmodel.OrderID, tradeID bookmodel.TradeID, price bookmodel.Price, qty bookmodel.TradeQty, side bookmodel.Side, timestampNs uint64) {
	_ = tradeID // identifies the execution for upstream consumers; not needed by window math
	e.window.RecordTrade(timestampNs, price, qty)

	orderH, ok := e.orderIdx.Find(uint64(orderID))
	if !ok {
		return
	}
	ord := e.orders.Get(orderH)

	if uint64(ord.qty) <= uint64(qty) {
		e.deleteByHandle(orderH)
		return
	}

	lv := e.levels.Get(ord.level)
	fillQty := bookmodel.Qty(qty)
	ord.qty -= fillQty
	lv.totalQty -= fillQty

	wasExtremum := (ord.side == bookmodel.Buy && lv.price == e.bbo.snapshot.BidPrice) ||
		(ord.side == bookmodel.Sell && lv.price == e.bbo.snapshot.AskPrice)
	if wasExtremum {
		e.markDirty(ord.side)
		e.recomputeDirty()
	}
}

// Clear implements spec §4.6 clear: destroys all orders and levels and
// resets every index, the BBO cache, and the trade window.
func (e *Engine) Clear() {
	e.orders.Clear()
	e.levels.Clear()
	e.orderIdx.Clear()
	e.bids.Clear()
	e.asks.Clear()
	e.bbo.clear()
	e.window.Clear()
}

// Window exposes the engine's attached trade window for signal assembly.
func (e *Engine) Window() *window.Window {
	return e.window
}

func (e *Engine) markDirty(side bookmodel.Side) {
	if side == bookmodel.Buy {
		e.bbo.markBidDirty()
	} else {
		e.bbo.markAskDirty()
	}
}

func (e *Engine) recomputeDirty() {
	if e.bbo.bidDirty {
		if price, h, ok := e.bids.Best(); ok {
			e.bbo.snapshot.BidPrice = price
			e.bbo.snapshot.BidQty = e.levels.Get(h).totalQty
		} else {
			e.bbo.snapshot.BidPrice = 0
			e.bbo.snapshot.BidQty = 0
		}
		e.bbo.bidDirty = false
	}
	if e.bbo.askDirty {
		if price, h, ok := e.asks.Best(); ok {
			e.bbo.snapshot.AskPrice = price
			e.bbo.snapshot.AskQty = e.levels.Get(h).totalQty
		} else {
			e.bbo.snapshot.AskPrice = 0
			e.bbo.snapshot.AskQty = 0
		}
		e.bbo.askDirty = false
	}
}

// BBO returns the cached best-bid/best-offer snapshot.
func (e *Engine) BBO() bookmodel.BBO {
	return e.bbo.snapshot
}

// BidLevels returns the number of distinct bid price levels.
func (e *Engine) BidLevels() int { return e.bids.Len() }

// AskLevels returns the number of distinct ask price levels.
func (e *Engine) AskLevels() int { return e.asks.Len() }

// BidPrice returns the k-th (0-based) bid price by priority, or 0 if
// there is no such level.
func (e *Engine) BidPrice(k int) bookmodel.Price {
	price, _, ok := e.bids.NthFromBest(k)
	if !ok {
		return 0
	}
	return price
}

// BidQty returns the aggregate qty at the k-th bid level, or 0.
func (e *Engine) BidQty(k int) bookmodel.Qty {
	_, h, ok := e.bids.NthFromBest(k)
	if !ok {
		return 0
	}
	return e.levels.Get(h).totalQty
}

// AskPrice returns the k-th (0-based) ask price by priority, or 0 if
// there is no such level.
func (e *Engine) AskPrice(k int) bookmodel.Price {
	price, _, ok := e.asks.NthFromBest(k)
	if !ok {
		return 0
	}
	return price
}

// AskQty returns the aggregate qty at the k-th ask level, or 0.
func (e *Engine) AskQty(k int) bookmodel.Qty {
	_, h, ok := e.asks.NthFromBest(k)
	if !ok {
		return 0
	}
	return e.levels.Get(h).totalQty
}

// OrderRank returns the order count of the order's containing level, or
// 0 if the id is unknown — the contract spec §4.6 pins even though the
// name suggests a FIFO position; see RankInLevel for the latter.
func (e *Engine) OrderRank(orderID bookmodel.OrderID) int {
	orderH, ok := e.orderIdx.Find(uint64(orderID))
	if !ok {
		return 0
	}
	lv := e.levels.Get(e.orders.Get(orderH).level)
	return lv.orderCount
}

// RankInLevel returns the order's 1-based FIFO position within its
// level, or 0 if the id is unknown.
func (e *Engine) RankInLevel(orderID bookmodel.OrderID) int {
	orderH, ok := e.orderIdx.Find(uint64(orderID))
	if !ok {
		return 0
	}
	lv := e.levels.Get(e.orders.Get(orderH).level)
	pos, _ := lv.rankOf(e.orders, orderH)
	return pos + 1
}

// QtyAhead returns the sum of qty of the order's FIFO predecessors
// within its level, or 0 if the id is unknown.
func (e *Engine) QtyAhead(orderID bookmodel.OrderID) bookmodel.Qty {
	orderH, ok := e.orderIdx.Find(uint64(orderID))
	if !ok {
		return 0
	}
	lv := e.levels.Get(e.orders.Get(orderH).level)
	_, qtyAhead := lv.rankOf(e.orders, orderH)
	return qtyAhead
}
