// Package arena provides typed slab allocators that are rewound once per
// frame instead of freed.
package arena

// Slab hands out pointers to T from fixed-size chunks. Pointers stay valid
// until Reset; after Reset the same memory is handed out again, so callers
// must not keep pointers across frames.
//
// Slab is not safe for concurrent use.
type Slab[T any] struct {
	chunks    [][]T
	chunkSize int
	chunk     int
	next      int
	n         int
}

// NewSlab creates a slab allocating chunkSize elements at a time.
func NewSlab[T any](chunkSize int) *Slab[T] {
	if chunkSize < 1 {
		chunkSize = 64
	}
	return &Slab[T]{chunkSize: chunkSize}
}

// Alloc returns the next element without clearing it. Recycled elements keep
// their previous contents, which lets callers reuse slice capacity.
func (s *Slab[T]) Alloc() *T {
	if s.chunk == len(s.chunks) {
		s.chunks = append(s.chunks, make([]T, s.chunkSize))
	}
	c := s.chunks[s.chunk]
	p := &c[s.next]
	s.next++
	s.n++
	if s.next == len(c) {
		s.chunk++
		s.next = 0
	}
	return p
}

// New returns the next element set to its zero value.
func (s *Slab[T]) New() *T {
	p := s.Alloc()
	var zero T
	*p = zero
	return p
}

// Len returns the number of elements handed out since the last Reset.
func (s *Slab[T]) Len() int { return s.n }

// Cap returns the number of elements the slab can hand out without allocating.
func (s *Slab[T]) Cap() int { return len(s.chunks) * s.chunkSize }

// Reset rewinds the slab. Memory is kept for reuse.
func (s *Slab[T]) Reset() {
	s.chunk, s.next, s.n = 0, 0, 0
}

// Release drops all chunks.
func (s *Slab[T]) Release() {
	clear(s.chunks)
	s.chunks = nil
	s.Reset()
}
