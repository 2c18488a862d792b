package book

import (
	"github.com/marketfeed/orderbook-engine/internal/arena"
	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

// order is one live resting order. prev/next thread the intrusive circular
// FIFO of the containing level; level is the order's back-reference to its
// price level, following the design notes' "store it as a level handle on
// the order record" guidance.
type order struct {
	id    bookmodel.OrderID
	price bookmodel.Price
	qty   bookmodel.Qty
	side  bookmodel.Side
	level arena.Handle
	prev  arena.Handle
	next  arena.Handle
}
