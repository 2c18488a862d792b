// Package arena implements the chunked, handle-indexed record stores that
// back the order book's Order and PriceLevel pools. It replaces the raw
// pointers of the original C++ memory pools with stable integer handles:
// an allocated record never moves for the lifetime of its handle, and a
// freed handle is recycled LIFO off a free list, exactly as the C++
// MemoryPool's free-list discipline does.
package arena

// Handle is a stable reference into an Arena. It plays the role of a
// pointer without the aliasing or lifetime hazards: a Handle is only ever
// valid between the Allocate call that produced it and the matching Free.
type Handle int32

// None is the sentinel handle meaning "no record" (e.g. an empty FIFO, an
// order with no containing level yet).
const None Handle = -1

// defaultChunkSize mirrors the 2^16-records-per-chunk the design notes
// call out for the order pool; level pools grow far more slowly but share
// the same chunk size for simplicity.
const defaultChunkSize = 1 << 16

// Arena is a growable chunked pool of T, yielding stable Handles.
// It is not safe for concurrent use; each book.Engine owns its arenas
// exclusively, matching the single-threaded ownership model in spec §5.
type Arena[T any] struct {
	chunks    [][]T
	chunkSize int32
	free      []Handle
	next      Handle
}

// New creates an empty arena. chunkSize <= 0 selects the default.
func New[T any](chunkSize int) *Arena[T] {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Arena[T]{chunkSize: int32(chunkSize)}
}

// Allocate reserves a slot, reusing a freed handle LIFO when one is
// available, and otherwise growing the arena by a full chunk if the
// high-water mark crosses a chunk boundary. The returned record is
// zero-valued; callers fill in fields themselves.
func (a *Arena[T]) Allocate() (Handle, *T) {
	var h Handle
	if n := len(a.free); n > 0 {
		h = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		h = a.next
		a.next++
		a.ensureChunk(h)
	}
	rec := a.at(h)
	var zero T
	*rec = zero
	return h, rec
}

func (a *Arena[T]) ensureChunk(h Handle) {
	chunkIdx := int(h) / int(a.chunkSize)
	for len(a.chunks) <= chunkIdx {
		a.chunks = append(a.chunks, make([]T, a.chunkSize))
	}
}

func (a *Arena[T]) at(h Handle) *T {
	chunkIdx := int(h) / int(a.chunkSize)
	offset := int(h) % int(a.chunkSize)
	return &a.chunks[chunkIdx][offset]
}

// Get dereferences a handle. The caller must only pass handles it
// currently owns (i.e. obtained from Allocate and not yet Free'd) — the
// public book.Engine surface never exposes a way to violate that.
func (a *Arena[T]) Get(h Handle) *T {
	return a.at(h)
}

// Free returns a handle to the free list. The slot's memory is left in
// place (not zeroed) until the handle is reused by a later Allocate.
func (a *Arena[T]) Free(h Handle) {
	a.free = append(a.free, h)
}

// Clear resets the arena to empty; subsequent allocations start from
// handle 0 again and reuse the existing chunk backing arrays.
func (a *Arena[T]) Clear() {
	a.free = a.free[:0]
	a.next = 0
}

// Len reports the number of currently-live (allocated, not freed) slots.
func (a *Arena[T]) Len() int {
	return int(a.next) - len(a.free)
}
