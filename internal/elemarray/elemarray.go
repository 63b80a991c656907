// Package elemarray provides the dynamic slot array shared by the queue and
// stack containers. It owns the growth policy, tombstoned slots and the
// compaction, ordering and bulk mechanics; the containers layer access
// discipline on top.
package elemarray

import (
	"errors"
	"math/rand"
	"sort"
)

// ErrOutOfMemory is returned when the growth policy cannot reach a capacity
// beyond the current one, for example because a configured limit rejects
// every candidate.
var ErrOutOfMemory = errors.New("cannot grow element storage")

// FitsFunc reports whether a backing store of n slots may be allocated.
// It stands in for allocator failure: a nil FitsFunc accepts everything.
type FitsFunc func(n int) bool

// minCapacity keeps at least one slot allocated so the doubling policy has
// a nonzero base to work from.
const minCapacity = 1

type slot[T any] struct {
	elem    T
	present bool
}

// Array is a fixed-order element store with explicit slot occupancy.
// Removing an element vacates its slot without moving neighbours; vacated
// slots keep their index until CleanNull compacts the live elements toward
// index zero. The zero value is not usable, construct with New.
type Array[T any] struct {
	slots   []slot[T]
	size    int
	initCap int
	fits    FitsFunc
	release func(T)
}

// New returns an empty array. release is invoked once for every live element
// that the array drops on its own (vacate, truncate, filter, clear, free);
// pass nil when elements need no cleanup. capacity below the minimum is
// raised to it. fits bounds every future allocation and may be nil.
func New[T any](release func(T), capacity int, fits FitsFunc) *Array[T] {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	if release == nil {
		release = func(T) {}
	}
	return &Array[T]{
		slots:   make([]slot[T], capacity),
		size:    0,
		initCap: capacity,
		fits:    fits,
		release: release,
	}
}

// NextCapacity resolves one growth step. It tries attempt first and, while
// the candidate does not fit, backs off halfway toward current. The step
// fails with ErrOutOfMemory once the candidate collapses to current, since
// reallocating to the same capacity would make no progress.
func NextCapacity(current, attempt int, fits FitsFunc) (int, error) {
	next := attempt
	for next > current && fits != nil && !fits(next) {
		next = (next + current) >> 1
	}
	if next <= current {
		return 0, ErrOutOfMemory
	}
	return next, nil
}

// Grow widens the backing store by one policy step, normally doubling the
// capacity. Growing an array whose storage was freed restarts from a single
// slot. On failure the array is unchanged.
func (a *Array[T]) Grow() error {
	current := len(a.slots)
	attempt := current << 1
	if current == 0 {
		attempt = minCapacity
	}
	next, err := NextCapacity(current, attempt, a.fits)
	if err != nil {
		return err
	}
	a.realloc(next)
	return nil
}

// EnsureExtra resizes the backing store to exactly size+n slots, shedding
// spare capacity or widening in a single step as needed. Unlike Grow there
// is no backoff: the bulk caller knows precisely how much room it needs.
// On failure the array is unchanged.
func (a *Array[T]) EnsureExtra(n int) error {
	target := a.size + n
	if target == len(a.slots) {
		return nil
	}
	if a.fits != nil && !a.fits(target) {
		return ErrOutOfMemory
	}
	a.realloc(target)
	return nil
}

// Shrink reallocates the backing store to exactly n slots, best effort: a
// request below the current size, or one the fits bound rejects, leaves the
// array as it is.
func (a *Array[T]) Shrink(n int) {
	if n < a.size {
		n = a.size
	}
	if n == len(a.slots) {
		return
	}
	if a.fits != nil && !a.fits(n) {
		return
	}
	a.realloc(n)
}

func (a *Array[T]) realloc(n int) {
	fresh := make([]slot[T], n)
	copy(fresh, a.slots[:a.size])
	a.slots = fresh
}

// Append stores v as a live element in the next slot. The caller must have
// secured room beforehand via Full, Grow or EnsureExtra; keeping allocation
// separate lets callers order growth before any element duplication.
func (a *Array[T]) Append(v T) {
	a.slots[a.size] = slot[T]{elem: v, present: true}
	a.size++
}

// Get returns the element at index i and whether the slot is live. A vacated
// or out-of-range slot yields the zero value and false.
func (a *Array[T]) Get(i int) (T, bool) {
	if i < 0 || i >= a.size {
		var zero T
		return zero, false
	}
	s := a.slots[i]
	if !s.present {
		var zero T
		return zero, false
	}
	return s.elem, true
}

// Swap exchanges the slots at i and j, occupancy flags included. Indices
// must be within the used range.
func (a *Array[T]) Swap(i, j int) {
	a.slots[i], a.slots[j] = a.slots[j], a.slots[i]
}

// Vacate releases the element at index i, if live, and leaves the slot
// behind as a hole. The used range does not shrink. Out-of-range indices
// are ignored.
func (a *Array[T]) Vacate(i int) {
	if i < 0 || i >= a.size {
		return
	}
	s := &a.slots[i]
	if s.present {
		a.release(s.elem)
	}
	var zero T
	s.elem, s.present = zero, false
}

// TruncateLast removes the final slot, releasing its element when live.
func (a *Array[T]) TruncateLast() {
	if a.size == 0 {
		return
	}
	a.Vacate(a.size - 1)
	a.size--
}

// CleanNull compacts live elements toward index zero, preserving their
// relative order, and shrinks the used range accordingly. No element is
// released: holes hold nothing.
func (a *Array[T]) CleanNull() {
	k := 0
	for i := 0; i < a.size; i++ {
		if a.slots[i].present {
			a.slots[k] = a.slots[i]
			k++
		}
	}
	for i := k; i < a.size; i++ {
		a.slots[i] = slot[T]{}
	}
	a.size = k
}

// FilterInPlace keeps the live elements satisfying keep, releases the rest
// and compacts, all in one pass. Holes are dropped along the way.
func (a *Array[T]) FilterInPlace(keep func(T) bool) {
	k := 0
	for i := 0; i < a.size; i++ {
		s := a.slots[i]
		if !s.present {
			continue
		}
		if keep(s.elem) {
			a.slots[k] = s
			k++
			continue
		}
		a.release(s.elem)
	}
	for i := k; i < a.size; i++ {
		a.slots[i] = slot[T]{}
	}
	a.size = k
}

// Reverse mirrors the used range in place. Holes travel with their slots.
func (a *Array[T]) Reverse() {
	for i, j := 0, a.size-1; i < j; i, j = i+1, j-1 {
		a.Swap(i, j)
	}
}

// SortFunc orders the live elements by cmp. Vacated slots sort behind every
// live element so a following CleanNull only trims the tail.
func (a *Array[T]) SortFunc(cmp func(x, y T) int) {
	used := a.slots[:a.size]
	sort.SliceStable(used, func(i, j int) bool {
		si, sj := used[i], used[j]
		if si.present != sj.present {
			return si.present
		}
		if !si.present {
			return false
		}
		return cmp(si.elem, sj.elem) < 0
	})
}

// Shuffle permutes the used range with the given source of randomness.
// A nil rng or fewer than two slots leaves the order untouched.
func (a *Array[T]) Shuffle(rng *rand.Rand) {
	if rng == nil || a.size < 2 {
		return
	}
	rng.Shuffle(a.size, func(i, j int) {
		a.Swap(i, j)
	})
}

// Clone returns a deep copy of the array, duplicating each live element
// through copyElem. Hole positions and the growth configuration carry over.
func (a *Array[T]) Clone(copyElem func(T) T) *Array[T] {
	dup := &Array[T]{
		slots:   make([]slot[T], len(a.slots)),
		size:    a.size,
		initCap: a.initCap,
		fits:    a.fits,
		release: a.release,
	}
	for i := 0; i < a.size; i++ {
		if s := a.slots[i]; s.present {
			dup.slots[i] = slot[T]{elem: copyElem(s.elem), present: true}
		}
	}
	return dup
}

// Clear releases every live element, empties the used range and shrinks the
// backing store back to the construction capacity. The array stays usable.
func (a *Array[T]) Clear() {
	for i := 0; i < a.size; i++ {
		if a.slots[i].present {
			a.release(a.slots[i].elem)
		}
		a.slots[i] = slot[T]{}
	}
	a.size = 0
	a.Shrink(a.initCap)
}

// Discard empties the used range without releasing anything. Callers use it
// after transferring element ownership out of the array.
func (a *Array[T]) Discard() {
	for i := 0; i < a.size; i++ {
		a.slots[i] = slot[T]{}
	}
	a.size = 0
}

// Free releases every live element and drops the backing store entirely.
// The array remains safe to use; the next Append rebuilds storage from the
// minimum capacity.
func (a *Array[T]) Free() {
	for i := 0; i < a.size; i++ {
		if a.slots[i].present {
			a.release(a.slots[i].elem)
		}
	}
	a.slots = nil
	a.size = 0
}

// Len reports the used range, vacated slots included.
func (a *Array[T]) Len() int { return a.size }

// Cap reports the allocated capacity.
func (a *Array[T]) Cap() int { return len(a.slots) }

// Full reports whether the used range has reached the allocated capacity.
func (a *Array[T]) Full() bool { return a.size == len(a.slots) }
