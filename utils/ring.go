package utils

// Ring is a bounded FIFO. Pushing beyond capacity evicts the oldest item.
type Ring[T any] struct {
	items []T
	start int
	size  int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("ring capacity must be positive")
	}
	return &Ring[T]{items: make([]T, capacity)}
}

func (r *Ring[T]) Len() int { return r.size }
func (r *Ring[T]) Cap() int { return len(r.items) }

func (r *Ring[T]) Push(item T) {
	if r.size < len(r.items) {
		r.items[(r.start+r.size)%len(r.items)] = item
		r.size++
		return
	}
	r.items[r.start] = item
	r.start = (r.start + 1) % len(r.items)
}

// At returns the i-th item counting from the oldest.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.size {
		panic("ring index out of range")
	}
	return r.items[(r.start+i)%len(r.items)]
}

// Ptr is like At but returns a pointer so callers can update items in place.
func (r *Ring[T]) Ptr(i int) *T {
	if i < 0 || i >= r.size {
		panic("ring index out of range")
	}
	return &r.items[(r.start+i)%len(r.items)]
}

// Items copies the contents, oldest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, r.size)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}

// Resize changes the capacity, keeping the most recent items.
func (r *Ring[T]) Resize(capacity int) {
	if capacity <= 0 {
		panic("ring capacity must be positive")
	}
	items := r.Items()
	if len(items) > capacity {
		items = items[len(items)-capacity:]
	}
	r.items = make([]T, capacity)
	r.start = 0
	r.size = copy(r.items, items)
}

func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.start, r.size = 0, 0
}
