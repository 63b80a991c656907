package elemops

import "errors"

// ErrOperatorRequired is returned when a copy-enabled container is requested
// without both a copy and a delete operator. The operators only make sense as
// a pair: one duplicates an element into the container, the other releases
// that duplicate again.
var ErrOperatorRequired = errors.New("copy and delete operators are both required")

// CopyFunc produces an independently owned duplicate of an element.
type CopyFunc[T any] func(T) T

// DeleteFunc releases whatever resources an element owns.
type DeleteFunc[T any] func(T)

// CompareFunc reports the relative order of a and b: negative when a sorts
// before b, zero when they are equal, positive when a sorts after b.
type CompareFunc[T any] func(a, b T) int

// MatchFunc reports whether two elements are equivalent.
type MatchFunc[T any] func(a, b T) bool

// ApplyFunc is invoked per element by the traversal operations. State shared
// across invocations belongs in the closure.
type ApplyFunc[T any] func(T)

// PredicateFunc reports whether an element satisfies a condition.
type PredicateFunc[T any] func(T) bool

// Ownership is the element-ownership capability of a container. A container
// binds exactly one Ownership at construction and keeps it for its whole
// lifetime: either the borrowed variant, which stores caller-owned handles
// untouched, or an owned variant built from a copy/delete operator pair,
// which duplicates elements on the way in and releases them on the way out.
type Ownership[T any] interface {
	// Copy duplicates an element for storage or retrieval.
	Copy(T) T

	// Delete releases an element that leaves the container.
	Delete(T)

	// Enabled reports whether the container owns its elements.
	Enabled() bool
}

type borrowed[T any] struct{}

func (borrowed[T]) Copy(v T) T    { return v }
func (borrowed[T]) Delete(T)      {}
func (borrowed[T]) Enabled() bool { return false }

type owned[T any] struct {
	copyOp   CopyFunc[T]
	deleteOp DeleteFunc[T]
}

func (o owned[T]) Copy(v T) T    { return o.copyOp(v) }
func (o owned[T]) Delete(v T)    { o.deleteOp(v) }
func (o owned[T]) Enabled() bool { return true }

// Borrowed returns the copy-disabled ownership: elements are stored as-is,
// never copied and never released. The caller remains the sole owner.
func Borrowed[T any]() Ownership[T] {
	return borrowed[T]{}
}

// Owned returns the copy-enabled ownership built from the given operator
// pair. A partial pair fails with ErrOperatorRequired instead of leaving a
// nil operator to be called later.
func Owned[T any](copyOp CopyFunc[T], deleteOp DeleteFunc[T]) (Ownership[T], error) {
	if copyOp == nil || deleteOp == nil {
		return nil, ErrOperatorRequired
	}
	return owned[T]{copyOp: copyOp, deleteOp: deleteOp}, nil
}
