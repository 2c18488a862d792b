// Package priceindex implements the price -> level-handle ordered map
// described in spec §4.3, backed by github.com/google/btree's generic
// BTreeG. Per the design notes (spec §9) a wide-fanout ordered tree gives
// O(log N) insert/erase and cache-friendly ascending traversal for the
// k-level metric queries. Best is also O(log N): BTreeG.Min walks the
// tree's left spine and no extreme is cached here. The role the design
// notes assign to a B+-tree is filled here by a B-tree with a side-parametric comparator instead of two differently
// shaped containers.
package priceindex

import (
	"github.com/google/btree"

	"github.com/marketfeed/orderbook-engine/internal/arena"
	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

// degree matches the teacher's btree.New(32) tuning: wide leaves amortise
// pointer-chasing across the ordered traversal the k-level metrics do.
const degree = 32

type entry struct {
	price bookmodel.Price
	level arena.Handle
}

// Index is one side (BUY or SELL) of the book's price-ordered level map.
// "Best" is always the tree's Min(): for BUY the comparator orders prices
// descending so the highest bid sorts first; for SELL it orders ascending
// so the lowest ask sorts first.
type Index struct {
	tree *btree.BTreeG[entry]
}

// New creates an empty side index. descending=true yields BUY-side
// ordering (best = highest price); descending=false yields SELL-side
// ordering (best = lowest price).
func New(descending bool) *Index {
	less := func(a, b entry) bool {
		if descending {
			return a.price > b.price
		}
		return a.price < b.price
	}
	return &Index{tree: btree.NewG(degree, less)}
}

// Find returns the level handle stored for price, or (arena.None, false).
func (idx *Index) Find(price bookmodel.Price) (arena.Handle, bool) {
	e, ok := idx.tree.Get(entry{price: price})
	if !ok {
		return arena.None, false
	}
	return e.level, true
}

// Insert adds price -> level, overwriting any existing mapping for price.
func (idx *Index) Insert(price bookmodel.Price, level arena.Handle) {
	idx.tree.ReplaceOrInsert(entry{price: price, level: level})
}

// Erase removes price's mapping, if any.
func (idx *Index) Erase(price bookmodel.Price) {
	idx.tree.Delete(entry{price: price})
}

// Len reports the number of distinct price levels on this side.
func (idx *Index) Len() int {
	return idx.tree.Len()
}

// Best returns the extremal (price, level) pair for this side: the
// highest bid or lowest ask. ok is false iff the side is empty.
func (idx *Index) Best() (price bookmodel.Price, level arena.Handle, ok bool) {
	e, found := idx.tree.Min()
	if !found {
		return 0, arena.None, false
	}
	return e.price, e.level, true
}

// NthFromBest returns the k-th (0-based) price/level from the best side,
// streaming via ordered ascent so callers never pay for levels they don't
// need. ok is false if the side has k or fewer levels.
func (idx *Index) NthFromBest(k int) (price bookmodel.Price, level arena.Handle, ok bool) {
	if k < 0 {
		return 0, arena.None, false
	}
	i := 0
	var found entry
	hit := false
	idx.tree.Ascend(func(e entry) bool {
		if i == k {
			found = e
			hit = true
			return false
		}
		i++
		return true
	})
	if !hit {
		return 0, arena.None, false
	}
	return found.price, found.level, true
}

// ForEachFromBest visits up to k levels starting from the best price,
// in priority order, calling fn(price, level) for each. It stops early
// if fn returns false or the side is exhausted.
func (idx *Index) ForEachFromBest(k int, fn func(price bookmodel.Price, level arena.Handle) bool) {
	if k <= 0 {
		return
	}
	i := 0
	idx.tree.Ascend(func(e entry) bool {
		if i >= k {
			return false
		}
		i++
		return fn(e.price, e.level)
	})
}

// Clear empties the index.
func (idx *Index) Clear() {
	idx.tree.Clear(true)
}
