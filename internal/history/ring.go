package history

// Number is the element type a Ring can hold.
type Number interface {
	~int | ~int32 | ~int64 | ~uint64 | ~float64
}

// Ring is a fixed-capacity rolling buffer; pushing onto a full ring evicts
// the oldest value.
type Ring[T Number] struct {
	data  []T
	start int
	size  int
}

// NewRing creates a ring holding at most capacity values. A capacity below 1
// is treated as 1.
func NewRing[T Number](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{data: make([]T, capacity)}
}

// Push appends v, evicting the oldest value when full.
func (r *Ring[T]) Push(v T) {
	if r.size < len(r.data) {
		r.data[(r.start+r.size)%len(r.data)] = v
		r.size++
		return
	}
	r.data[r.start] = v
	r.start = (r.start + 1) % len(r.data)
}

// Len returns the number of stored values.
func (r *Ring[T]) Len() int { return r.size }

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int { return len(r.data) }

// Values returns the stored values oldest first.
func (r *Ring[T]) Values() []T {
	out := make([]T, r.size)
	for i := range r.size {
		out[i] = r.data[(r.start+i)%len(r.data)]
	}
	return out
}

// Last returns the newest value.
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.data[(r.start+r.size-1)%len(r.data)], true
}

// Peak returns the largest stored value, or zero when empty.
func (r *Ring[T]) Peak() T {
	var peak T
	for i := range r.size {
		v := r.data[(r.start+i)%len(r.data)]
		if i == 0 || v > peak {
			peak = v
		}
	}
	return peak
}

// Floats converts the stored values for graphing.
func (r *Ring[T]) Floats() []float64 {
	out := make([]float64, r.size)
	for i := range r.size {
		out[i] = float64(r.data[(r.start+i)%len(r.data)])
	}
	return out
}
