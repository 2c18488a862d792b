package book

import (
	"github.com/marketfeed/orderbook-engine/internal/arena"
	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

// level is the aggregate of all orders resting at one price. head/tail are
// handles into the order arena forming an intrusive circular FIFO: the
// list is empty iff orderCount is 0, in which case head/tail are
// arena.None. Circularity means tail.next == head and head.prev == tail
// at all times while the level is non-empty — there is no separate
// sentinel node.
type level struct {
	price      bookmodel.Price
	side       bookmodel.Side
	totalQty   bookmodel.Qty
	orderCount int
	head, tail arena.Handle
}

// pushBack appends ordH (already populated, not yet linked) to lv's FIFO
// tail and updates lv's aggregates. orders is the arena owning ordH.
func (lv *level) pushBack(orders *arena.Arena[order], ordH arena.Handle) {
	o := orders.Get(ordH)
	if lv.orderCount == 0 {
		o.prev = ordH
		o.next = ordH
		lv.head = ordH
		lv.tail = ordH
	} else {
		headOrd := orders.Get(lv.head)
		tailOrd := orders.Get(lv.tail)
		o.prev = lv.tail
		o.next = lv.head
		tailOrd.next = ordH
		headOrd.prev = ordH
		lv.tail = ordH
	}
	lv.orderCount++
	lv.totalQty += o.qty
}

// remove unlinks ordH from lv's FIFO and updates aggregates. ordH must
// currently be a member of lv.
func (lv *level) remove(orders *arena.Arena[order], ordH arena.Handle) {
	o := orders.Get(ordH)
	lv.totalQty -= o.qty
	lv.orderCount--

	if lv.orderCount == 0 {
		lv.head = arena.None
		lv.tail = arena.None
		return
	}

	prevOrd := orders.Get(o.prev)
	nextOrd := orders.Get(o.next)
	prevOrd.next = o.next
	nextOrd.prev = o.prev

	if lv.head == ordH {
		lv.head = o.next
	}
	if lv.tail == ordH {
		lv.tail = o.prev
	}
}

// rankOf returns the number of FIFO predecessors of ordH (its 0-based
// position from the head) and the qty summed over exactly those
// predecessors, walking forward from the level head until ordH is
// reached — the ring is circular, so walking backward from ordH would
// visit every other order in the level instead of just its predecessors.
func (lv *level) rankOf(orders *arena.Arena[order], ordH arena.Handle) (position int, qtyAhead bookmodel.Qty) {
	cur := lv.head
	for cur != ordH {
		o := orders.Get(cur)
		qtyAhead += o.qty
		position++
		cur = o.next
	}
	return position, qtyAhead
}
