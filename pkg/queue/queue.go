package queue

import (
	"errors"

	"github.com/i5heu/GoContainerKit/internal/elemarray"
	"github.com/i5heu/GoContainerKit/pkg/elemops"
)

var (
	// ErrNilQueue is returned by mutating operations on a nil receiver.
	ErrNilQueue = errors.New("queue is nil")

	// ErrEmptyQueue is returned when an operation needs at least one element.
	ErrEmptyQueue = errors.New("queue is empty")

	// ErrOutOfMemory is returned when the backing store cannot grow, for
	// example because WithMaxCapacity rejects every next step.
	ErrOutOfMemory = elemarray.ErrOutOfMemory
)

const defaultCapacity = 1

// Queue is a single-goroutine FIFO container over a dynamic element array.
// Elements leave in the order they arrived. Dequeuing vacates the head slot
// and advances past it instead of shifting the remainder, so removal is
// constant time; the dead prefix is compacted away before the store grows
// or the queue is bulk-loaded or sorted.
//
// A queue is either copy-disabled (New), storing caller-owned handles as-is,
// or copy-enabled (NewCopyEnabled), duplicating elements on the way in and
// out and releasing stored duplicates it drops. The mode is fixed for the
// queue's lifetime.
type Queue[T any] struct {
	arr  *elemarray.Array[T]
	head int
	own  elemops.Ownership[T]

	capacity    int
	maxCapacity int
}

// New returns an empty copy-disabled queue. The queue stores the handles it
// is given and never copies or releases them.
func New[T any](opts ...Option[T]) *Queue[T] {
	q := &Queue[T]{
		own:      elemops.Borrowed[T](),
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.arr = elemarray.New[T](q.own.Delete, q.capacity, q.fitsFunc())
	return q
}

// NewCopyEnabled returns an empty copy-enabled queue owning its elements
// through the given operator pair. Both operators are required; a partial
// pair fails with elemops.ErrOperatorRequired.
func NewCopyEnabled[T any](copyOp elemops.CopyFunc[T], deleteOp elemops.DeleteFunc[T], opts ...Option[T]) (*Queue[T], error) {
	own, err := elemops.Owned(copyOp, deleteOp)
	if err != nil {
		return nil, err
	}
	q := &Queue[T]{
		own:      own,
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.arr = elemarray.New[T](q.own.Delete, q.capacity, q.fitsFunc())
	return q, nil
}

func (q *Queue[T]) fitsFunc() elemarray.FitsFunc {
	if q.maxCapacity <= 0 {
		return nil
	}
	limit := q.maxCapacity
	return func(n int) bool { return n <= limit }
}

// Enqueue appends an element at the back. Copy-enabled queues store a
// duplicate; copy-disabled queues store the handle itself. On allocation
// failure the queue is unchanged and no duplicate has been made.
func (q *Queue[T]) Enqueue(v T) error {
	if q == nil {
		return ErrNilQueue
	}
	if q.arr.Full() {
		q.compact()
		if q.arr.Full() {
			if err := q.arr.Grow(); err != nil {
				return err
			}
		}
	}
	q.arr.Append(q.own.Copy(v))
	return nil
}

// Dequeue discards the front element. A copy-enabled queue releases the
// stored duplicate through the delete operator; a copy-disabled queue simply
// forgets the handle.
func (q *Queue[T]) Dequeue() error {
	if q == nil {
		return ErrNilQueue
	}
	if q.Size() == 0 {
		return ErrEmptyQueue
	}
	q.dropHead()
	return nil
}

// Pop removes the front element and returns it. Copy-enabled queues hand the
// caller a fresh duplicate and release the stored one; copy-disabled queues
// hand back the original handle.
func (q *Queue[T]) Pop() (T, error) {
	var zero T
	if q == nil {
		return zero, ErrNilQueue
	}
	if q.Size() == 0 {
		return zero, ErrEmptyQueue
	}
	v, _ := q.arr.Get(q.head)
	out := q.own.Copy(v)
	q.dropHead()
	return out, nil
}

// dropHead vacates the front slot and advances the head index. Draining the
// last element resets the store so the dead prefix never outlives the queue
// contents.
func (q *Queue[T]) dropHead() {
	q.arr.Vacate(q.head)
	q.head++
	if q.head == q.arr.Len() {
		q.arr.Discard()
		q.head = 0
	}
}

// compact drops the vacated prefix left behind by dequeues, moving the live
// elements back to index zero.
func (q *Queue[T]) compact() {
	if q.head > 0 {
		q.arr.CleanNull()
		q.head = 0
	}
}

// Front returns the element at the front without removing it. Copy-enabled
// queues return a duplicate, copy-disabled queues the stored handle.
func (q *Queue[T]) Front() (T, error) {
	var zero T
	if q == nil {
		return zero, ErrNilQueue
	}
	if q.Size() == 0 {
		return zero, ErrEmptyQueue
	}
	v, _ := q.arr.Get(q.head)
	return q.own.Copy(v), nil
}

// Back returns the most recently enqueued element without removing it.
func (q *Queue[T]) Back() (T, error) {
	var zero T
	if q == nil {
		return zero, ErrNilQueue
	}
	if q.Size() == 0 {
		return zero, ErrEmptyQueue
	}
	v, _ := q.arr.Get(q.arr.Len() - 1)
	return q.own.Copy(v), nil
}

// Size reports the number of elements waiting in the queue.
func (q *Queue[T]) Size() int {
	if q == nil {
		return 0
	}
	return q.arr.Len() - q.head
}

// IsEmpty reports whether the queue holds no elements.
func (q *Queue[T]) IsEmpty() bool { return q.Size() == 0 }

// IsCopyEnabled reports whether the queue owns its elements.
func (q *Queue[T]) IsCopyEnabled() bool {
	if q == nil {
		return false
	}
	return q.own.Enabled()
}

// FromSlice appends the elements of src to q in order, reserving all the
// room up front. A nil q builds a fresh copy-disabled queue; a nil src is a
// no-op. On allocation failure q is unchanged, no element has been copied
// and nil is returned with the error.
func FromSlice[T any](q *Queue[T], src []T) (*Queue[T], error) {
	if q == nil {
		q = New[T]()
	}
	if src == nil {
		return q, nil
	}
	q.compact()
	if err := q.arr.EnsureExtra(len(src)); err != nil {
		return nil, err
	}
	for _, v := range src {
		q.arr.Append(q.own.Copy(v))
	}
	return q, nil
}

// ToSlice returns the queued elements front to back without draining the
// queue. Copy-enabled queues fill the slice with duplicates. An empty or nil
// queue yields nil.
func (q *Queue[T]) ToSlice() []T {
	if q == nil || q.Size() == 0 {
		return nil
	}
	out := make([]T, 0, q.Size())
	for i := q.head; i < q.arr.Len(); i++ {
		if v, ok := q.arr.Get(i); ok {
			out = append(out, q.own.Copy(v))
		}
	}
	return out
}

// Sort reorders the queued elements in place so they leave in cmp order,
// smallest first. The dead prefix is compacted away beforehand.
func (q *Queue[T]) Sort(cmp elemops.CompareFunc[T]) {
	if q == nil || cmp == nil {
		return
	}
	q.compact()
	q.arr.SortFunc(cmp)
}

// ForEach applies fn to every queued element from front to back. The queue
// is not modified; fn receives stored elements, not copies.
func (q *Queue[T]) ForEach(fn elemops.ApplyFunc[T]) {
	if q == nil || fn == nil {
		return
	}
	for i := q.head; i < q.arr.Len(); i++ {
		if v, ok := q.arr.Get(i); ok {
			fn(v)
		}
	}
}

// Clear drops every element, releasing stored duplicates in copy-enabled
// mode, and returns the backing store to its construction capacity. The
// queue stays usable.
func (q *Queue[T]) Clear() {
	if q == nil {
		return
	}
	q.arr.Clear()
	q.head = 0
}

// Free drops every element and the backing store itself. Further use is
// safe: the queue behaves as empty and reallocates on the next insert.
func (q *Queue[T]) Free() {
	if q == nil {
		return
	}
	q.arr.Free()
	q.head = 0
}
