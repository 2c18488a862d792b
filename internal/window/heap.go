package window

import "github.com/marketfeed/orderbook-engine/pkg/bookmodel"

// heapEntry is what the dual median heaps actually store: enough to order
// and to judge liveness (via seq against the window's tail/head seq
// range) without re-touching the ring buffer.
type heapEntry struct {
	seq   uint64
	price bookmodel.Price
}

// maxHeap is a binary max-heap on price, used for the lower half of the
// window's retained prices.
type maxHeap []heapEntry

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i].price > h[j].price }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(heapEntry)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// minHeap is a binary min-heap on price, used for the upper half of the
// window's retained prices.
type minHeap []heapEntry

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].price < h[j].price }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(heapEntry)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
