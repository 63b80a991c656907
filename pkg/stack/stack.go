package stack

import (
	"errors"
	"math/rand"

	"github.com/i5heu/GoContainerKit/internal/elemarray"
	"github.com/i5heu/GoContainerKit/pkg/elemops"
)

var (
	// ErrNilStack is returned by mutating operations on a nil receiver.
	ErrNilStack = errors.New("stack is nil")

	// ErrEmptyStack is returned when an operation needs at least one slot.
	ErrEmptyStack = errors.New("stack is empty")

	// ErrIndexOutOfRange is returned for indices outside the slot range.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrOutOfMemory is returned when the backing store cannot grow, for
	// example because WithMaxCapacity rejects every next step.
	ErrOutOfMemory = elemarray.ErrOutOfMemory
)

const defaultCapacity = 1

// Stack is a single-goroutine LIFO container over a dynamic element array.
// Slot indices run bottom to top: index 0 is the oldest element, Length()-1
// the top. Removing a mid-stack element vacates its slot in place, so the
// slot count only shrinks when CleanNull compacts the holes away; Length
// counts slots, holes included.
//
// A stack is either copy-disabled (New), storing caller-owned handles as-is,
// or copy-enabled (NewCopyEnabled), duplicating elements on the way in and
// out and releasing stored duplicates it drops. The mode is fixed for the
// stack's lifetime.
type Stack[T any] struct {
	arr *elemarray.Array[T]
	own elemops.Ownership[T]

	capacity    int
	maxCapacity int
}

// New returns an empty copy-disabled stack. The stack stores the handles it
// is given and never copies or releases them.
func New[T any](opts ...Option[T]) *Stack[T] {
	s := &Stack[T]{
		own:      elemops.Borrowed[T](),
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.arr = elemarray.New[T](s.own.Delete, s.capacity, s.fitsFunc())
	return s
}

// NewCopyEnabled returns an empty copy-enabled stack owning its elements
// through the given operator pair. Both operators are required; a partial
// pair fails with elemops.ErrOperatorRequired.
func NewCopyEnabled[T any](copyOp elemops.CopyFunc[T], deleteOp elemops.DeleteFunc[T], opts ...Option[T]) (*Stack[T], error) {
	own, err := elemops.Owned(copyOp, deleteOp)
	if err != nil {
		return nil, err
	}
	s := &Stack[T]{
		own:      own,
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.arr = elemarray.New[T](s.own.Delete, s.capacity, s.fitsFunc())
	return s, nil
}

func (s *Stack[T]) fitsFunc() elemarray.FitsFunc {
	if s.maxCapacity <= 0 {
		return nil
	}
	limit := s.maxCapacity
	return func(n int) bool { return n <= limit }
}

// Push places an element on top. Copy-enabled stacks store a duplicate;
// copy-disabled stacks store the handle itself. On allocation failure the
// stack is unchanged and no duplicate has been made.
func (s *Stack[T]) Push(v T) error {
	if s == nil {
		return ErrNilStack
	}
	if s.arr.Full() {
		if err := s.arr.Grow(); err != nil {
			return err
		}
	}
	s.arr.Append(s.own.Copy(v))
	return nil
}

// Pop removes the top slot and returns its element. A vacated top slot pops
// as (zero, false, nil): the slot is consumed but held nothing. Copy-enabled
// stacks hand the caller a fresh duplicate and release the stored one.
func (s *Stack[T]) Pop() (T, bool, error) {
	var zero T
	if s == nil {
		return zero, false, ErrNilStack
	}
	if s.arr.Len() == 0 {
		return zero, false, ErrEmptyStack
	}
	v, ok := s.arr.Get(s.arr.Len() - 1)
	if ok {
		v = s.own.Copy(v)
	}
	s.arr.TruncateLast()
	return v, ok, nil
}

// PeekTop returns the top slot's element without removing it. A vacated top
// slot yields (zero, false, nil).
func (s *Stack[T]) PeekTop() (T, bool, error) {
	var zero T
	if s == nil {
		return zero, false, ErrNilStack
	}
	if s.arr.Len() == 0 {
		return zero, false, ErrEmptyStack
	}
	return s.PeekNth(s.arr.Len() - 1)
}

// PeekNth returns the element in slot n, counted from the bottom, without
// removing it. A vacated slot yields (zero, false, nil); an index outside
// the slot range fails with ErrIndexOutOfRange. Copy-enabled stacks return
// a duplicate.
func (s *Stack[T]) PeekNth(n int) (T, bool, error) {
	var zero T
	if s == nil {
		return zero, false, ErrNilStack
	}
	if n < 0 || n >= s.arr.Len() {
		return zero, false, ErrIndexOutOfRange
	}
	v, ok := s.arr.Get(n)
	if !ok {
		return zero, false, nil
	}
	return s.own.Copy(v), true, nil
}

// RemoveNth vacates slot n in place, releasing its element in copy-enabled
// mode. Neighbours keep their indices and Length stays the same; CleanNull
// reclaims the hole. Removing an already vacated slot is a no-op.
func (s *Stack[T]) RemoveNth(n int) error {
	if s == nil {
		return ErrNilStack
	}
	if n < 0 || n >= s.arr.Len() {
		return ErrIndexOutOfRange
	}
	s.arr.Vacate(n)
	return nil
}

// Swap exchanges slots i and j, vacancy included.
func (s *Stack[T]) Swap(i, j int) error {
	if s == nil {
		return ErrNilStack
	}
	n := s.arr.Len()
	if i < 0 || i >= n || j < 0 || j >= n {
		return ErrIndexOutOfRange
	}
	s.arr.Swap(i, j)
	return nil
}

// CleanNull compacts live elements toward the bottom, dropping every vacated
// slot while preserving relative order. Length shrinks to the live count.
func (s *Stack[T]) CleanNull() {
	if s == nil {
		return
	}
	s.arr.CleanNull()
}

// Search returns the lowest index whose live element matches elem under
// match, or -1 when nothing matches. Vacated slots never match.
func (s *Stack[T]) Search(elem T, match elemops.MatchFunc[T]) int {
	if s == nil || match == nil {
		return -1
	}
	for i := 0; i < s.arr.Len(); i++ {
		if v, ok := s.arr.Get(i); ok && match(v, elem) {
			return i
		}
	}
	return -1
}

// Contains reports whether any live element matches elem under match.
func (s *Stack[T]) Contains(elem T, match elemops.MatchFunc[T]) bool {
	return s.Search(elem, match) >= 0
}

// IndexOf returns the lowest index holding exactly elem under ==, or -1.
// For pointer element types this is identity search: a copy-enabled stack
// stores duplicates, so the caller's original handle will not be found.
func IndexOf[T comparable](s *Stack[T], elem T) int {
	if s == nil {
		return -1
	}
	for i := 0; i < s.arr.Len(); i++ {
		if v, ok := s.arr.Get(i); ok && v == elem {
			return i
		}
	}
	return -1
}

// ContainsElem reports whether any live element equals elem under ==.
func ContainsElem[T comparable](s *Stack[T], elem T) bool {
	return IndexOf(s, elem) >= 0
}

// Copy returns a deep copy of the stack: same mode, same slot layout,
// vacancies included. Copy-enabled stacks duplicate every live element;
// copy-disabled stacks share the stored handles. A nil stack copies to nil.
func (s *Stack[T]) Copy() *Stack[T] {
	if s == nil {
		return nil
	}
	return &Stack[T]{
		arr:         s.arr.Clone(s.own.Copy),
		own:         s.own,
		capacity:    s.capacity,
		maxCapacity: s.maxCapacity,
	}
}

// EqualFunc reports whether a and b have identical slot layouts and their
// live elements match pairwise under match. Two nil stacks are equal; match
// is required.
func EqualFunc[T any](a, b *Stack[T], match elemops.MatchFunc[T]) bool {
	if a == nil || b == nil {
		return a == b
	}
	if match == nil {
		return false
	}
	if a.arr.Len() != b.arr.Len() {
		return false
	}
	for i := 0; i < a.arr.Len(); i++ {
		av, aok := a.arr.Get(i)
		bv, bok := b.arr.Get(i)
		if aok != bok {
			return false
		}
		if aok && !match(av, bv) {
			return false
		}
	}
	return true
}

// FromSlice pushes the elements of src onto s in order, src[0] first,
// reserving all the room up front. A nil s builds a fresh copy-disabled
// stack; a nil src is a no-op. On allocation failure s is unchanged, no
// element has been copied and nil is returned with the error.
func FromSlice[T any](s *Stack[T], src []T) (*Stack[T], error) {
	if s == nil {
		s = New[T]()
	}
	if src == nil {
		return s, nil
	}
	if err := s.arr.EnsureExtra(len(src)); err != nil {
		return nil, err
	}
	for _, v := range src {
		s.arr.Append(s.own.Copy(v))
	}
	return s, nil
}

// Dump drains the stack into a slice ordered top to bottom, transferring
// ownership of the stored elements to the caller: nothing is copied and
// nothing is released, regardless of mode. Vacated slots are skipped. An
// empty stack, or one holding only holes, yields nil.
func (s *Stack[T]) Dump() []T {
	if s == nil || s.arr.Len() == 0 {
		return nil
	}
	out := make([]T, 0, s.arr.Len())
	for i := s.arr.Len() - 1; i >= 0; i-- {
		if v, ok := s.arr.Get(i); ok {
			out = append(out, v)
		}
	}
	s.arr.Discard()
	if len(out) == 0 {
		return nil
	}
	return out
}

// ToSlice returns the live elements ordered top to bottom without modifying
// the stack. Copy-enabled stacks fill the slice with duplicates. An empty
// stack, or one holding only holes, yields nil.
func (s *Stack[T]) ToSlice() []T {
	if s == nil || s.arr.Len() == 0 {
		return nil
	}
	out := make([]T, 0, s.arr.Len())
	for i := s.arr.Len() - 1; i >= 0; i-- {
		if v, ok := s.arr.Get(i); ok {
			out = append(out, s.own.Copy(v))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ForEach applies fn to every live element from bottom to top. The stack is
// not modified; fn receives stored elements, not copies.
func (s *Stack[T]) ForEach(fn elemops.ApplyFunc[T]) {
	if s == nil || fn == nil {
		return
	}
	for i := 0; i < s.arr.Len(); i++ {
		if v, ok := s.arr.Get(i); ok {
			fn(v)
		}
	}
}

// Filter keeps the live elements satisfying keep and compacts the rest
// away, holes included. Rejected elements are released in copy-enabled
// mode.
func (s *Stack[T]) Filter(keep elemops.PredicateFunc[T]) {
	if s == nil || keep == nil {
		return
	}
	s.arr.FilterInPlace(keep)
}

// All reports whether every live element satisfies pred. An empty stack
// satisfies All vacuously.
func (s *Stack[T]) All(pred elemops.PredicateFunc[T]) bool {
	if s == nil || pred == nil {
		return true
	}
	for i := 0; i < s.arr.Len(); i++ {
		if v, ok := s.arr.Get(i); ok && !pred(v) {
			return false
		}
	}
	return true
}

// Any reports whether at least one live element satisfies pred.
func (s *Stack[T]) Any(pred elemops.PredicateFunc[T]) bool {
	if s == nil || pred == nil {
		return false
	}
	for i := 0; i < s.arr.Len(); i++ {
		if v, ok := s.arr.Get(i); ok && pred(v) {
			return true
		}
	}
	return false
}

// Reverse mirrors the slot order in place, holes travelling with their
// slots. Applying it twice restores the original order.
func (s *Stack[T]) Reverse() {
	if s == nil {
		return
	}
	s.arr.Reverse()
}

// Shuffle permutes the slots with the given source of randomness. The same
// seeded source replays the same permutation.
func (s *Stack[T]) Shuffle(rng *rand.Rand) {
	if s == nil {
		return
	}
	s.arr.Shuffle(rng)
}

// Sort orders the live elements by cmp, smallest at the bottom. Vacated
// slots gather above the live elements, where CleanNull or pops consume
// them first.
func (s *Stack[T]) Sort(cmp elemops.CompareFunc[T]) {
	if s == nil || cmp == nil {
		return
	}
	s.arr.SortFunc(cmp)
}

// Length reports the slot count, vacated slots included. Only CleanNull,
// pops and the compacting bulk operations shrink it.
func (s *Stack[T]) Length() int {
	if s == nil {
		return 0
	}
	return s.arr.Len()
}

// IsEmpty reports whether the stack holds no slots at all.
func (s *Stack[T]) IsEmpty() bool { return s.Length() == 0 }

// IsCopyEnabled reports whether the stack owns its elements.
func (s *Stack[T]) IsCopyEnabled() bool {
	if s == nil {
		return false
	}
	return s.own.Enabled()
}

// Clear drops every slot, releasing live elements in copy-enabled mode, and
// returns the backing store to its construction capacity. The stack stays
// usable.
func (s *Stack[T]) Clear() {
	if s == nil {
		return
	}
	s.arr.Clear()
}

// Free drops every slot and the backing store itself. Further use is safe:
// the stack behaves as empty and reallocates on the next push.
func (s *Stack[T]) Free() {
	if s == nil {
		return
	}
	s.arr.Free()
}
