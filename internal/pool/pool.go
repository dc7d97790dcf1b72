package pool

import "bytes"

// Resettable is implemented by values that can be cleared before reuse.
type Resettable interface {
	Reset()
}

// Poolable values are resettable and comparable, so the zero value can be detected.
type Poolable interface {
	Resettable
	comparable
}

// Pool keeps up to a fixed number of reusable values of type T.
// Values are reset on Put; Get builds a fresh value with the constructor when the pool is empty.
type Pool[T Poolable] struct {
	items chan T
	newFn func() T
}

// New creates a Pool holding at most capacity values.
// newFn may be nil, in which case Get returns the zero value of T on an empty pool.
func New[T Poolable](capacity int, newFn func() T) *Pool[T] {
	return &Pool[T]{
		items: make(chan T, capacity),
		newFn: newFn,
	}
}

// Get takes a value from the pool or constructs a new one.
func (p *Pool[T]) Get() T {
	select {
	case item := <-p.items:
		return item
	default:
		if p.newFn != nil {
			return p.newFn()
		}
		var zero T
		return zero
	}
}

// Put resets item and keeps it for reuse. Zero values are dropped,
// as are values offered to a full pool.
func (p *Pool[T]) Put(item T) {
	var zero T
	if item == zero {
		return
	}
	item.Reset()

	select {
	case p.items <- item:
	default:
	}
}

// Len reports how many values are waiting in the pool.
func (p *Pool[T]) Len() int {
	return len(p.items)
}

// NewBuffers returns a pool of byte buffers used for rendering markup.
func NewBuffers(capacity int) *Pool[*bytes.Buffer] {
	return New(capacity, func() *bytes.Buffer { return new(bytes.Buffer) })
}
