package stack

// Option configures a stack at construction time.
type Option[T any] func(*Stack[T])

// WithCapacity pre-allocates room for n elements, sparing the early growth
// steps. Values below one are ignored.
func WithCapacity[T any](n int) Option[T] {
	return func(s *Stack[T]) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithMaxCapacity bounds the backing store at n slots. Growth attempts back
// off toward the bound and fail with ErrOutOfMemory once no next step fits.
// Values below one are ignored.
func WithMaxCapacity[T any](n int) Option[T] {
	return func(s *Stack[T]) {
		if n > 0 {
			s.maxCapacity = n
		}
	}
}
