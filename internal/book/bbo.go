package book

import "github.com/marketfeed/orderbook-engine/pkg/bookmodel"

// bboCache is the denormalised best-bid/best-offer snapshot described in
// spec §4.5. Mutators set the dirty flag for whichever side their change
// could have touched the extremum of; recomputeDirty is the only place
// that actually walks the price index, so qty-preserving changes at a
// non-extremal price never pay for a recompute.
type bboCache struct {
	snapshot  bookmodel.BBO
	bidDirty  bool
	askDirty  bool
}

func (c *bboCache) markBidDirty() { c.bidDirty = true }
func (c *bboCache) markAskDirty() { c.askDirty = true }

func (c *bboCache) clear() {
	c.snapshot = bookmodel.BBO{}
	c.bidDirty = false
	c.askDirty = false
}
