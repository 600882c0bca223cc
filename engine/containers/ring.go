package containers

// Ring is a fixed-capacity cycle of values with a cursor. The set of values
// never changes after construction; only the cursor moves.
type Ring[T any] struct {
	data   []T
	cursor int
}

// NewRing creates a ring holding the given values, with the cursor on the
// first one. It panics if values is empty.
func NewRing[T any](values []T) *Ring[T] {
	if len(values) == 0 {
		panic("containers: ring needs at least one value")
	}
	data := make([]T, len(values))
	copy(data, values)
	return &Ring[T]{data: data}
}

// Current returns the value under the cursor.
func (r *Ring[T]) Current() T {
	return r.data[r.cursor]
}

// Index returns the cursor position, in [0, Len()).
func (r *Ring[T]) Index() int {
	return r.cursor
}

// Advance moves the cursor to the next value, wrapping around.
func (r *Ring[T]) Advance() {
	r.cursor = (r.cursor + 1) % len(r.data)
}

func (r *Ring[T]) Len() int {
	return len(r.data)
}

// Each visits every value in storage order.
func (r *Ring[T]) Each(fn func(i int, v T)) {
	for i, v := range r.data {
		fn(i, v)
	}
}
