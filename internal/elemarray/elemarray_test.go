package elemarray

import (
	"math/rand"
	"testing"
)

// limitAt builds a fits bound that accepts capacities up to max.
func limitAt(max int) FitsFunc {
	return func(n int) bool { return n <= max }
}

// releaseCounter tracks how many elements the array released on its own.
type releaseCounter struct {
	released []int
}

func (rc *releaseCounter) release(p *int) {
	rc.released = append(rc.released, *p)
}

func newIntArray(rc *releaseCounter, capacity int, fits FitsFunc) *Array[*int] {
	if rc == nil {
		return New[*int](nil, capacity, fits)
	}
	return New[*int](rc.release, capacity, fits)
}

// fill appends boxed values 0..n-1, growing as needed.
func fill(t *testing.T, a *Array[*int], n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if a.Full() {
			if err := a.Grow(); err != nil {
				t.Fatalf("Grow failed at element %d: %v", i, err)
			}
		}
		v := i
		a.Append(&v)
	}
}

// snapshot reads the live values in slot order, using -1 for holes.
func snapshot(a *Array[*int]) []int {
	out := make([]int, a.Len())
	for i := range out {
		if v, ok := a.Get(i); ok {
			out[i] = *v
		} else {
			out[i] = -1
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNextCapacity(t *testing.T) {
	cases := []struct {
		name    string
		current int
		attempt int
		fits    FitsFunc
		want    int
		wantErr bool
	}{
		{"unbounded doubling", 8, 16, nil, 16, false},
		{"first backoff step", 8, 16, limitAt(12), 12, false},
		{"backs off to the last fitting step", 8, 16, limitAt(9), 9, false},
		{"collapses to current", 8, 16, limitAt(8), 0, true},
		{"nothing fits at all", 8, 16, limitAt(0), 0, true},
		{"from the minimum", 1, 2, nil, 2, false},
		{"from freed storage", 0, 1, nil, 1, false},
		{"attempt below current", 8, 4, nil, 0, true},
		{"bound above attempt", 4, 8, limitAt(100), 8, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextCapacity(tc.current, tc.attempt, tc.fits)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected ErrOutOfMemory, got capacity %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Expected capacity %d, got %d", tc.want, got)
			}
		})
	}
}

func TestGrowDoublesCapacity(t *testing.T) {
	a := newIntArray(nil, 1, nil)
	trail := []int{a.Cap()}
	for i := 0; i < 16; i++ {
		if a.Full() {
			if err := a.Grow(); err != nil {
				t.Fatalf("Grow failed at element %d: %v", i, err)
			}
			trail = append(trail, a.Cap())
		}
		v := i
		a.Append(&v)
	}
	if want := []int{1, 2, 4, 8, 16}; !equalInts(trail, want) {
		t.Fatalf("Expected capacity trail %v, got %v", want, trail)
	}
	if a.Len() != 16 {
		t.Fatalf("Expected 16 elements, got %d", a.Len())
	}
}

func TestGrowBacksOffAtBound(t *testing.T) {
	a := newIntArray(nil, 4, limitAt(6))
	fill(t, a, 4)

	// Doubling to 8 is rejected, the midpoint 6 fits.
	if err := a.Grow(); err != nil {
		t.Fatalf("Expected backoff to succeed, got %v", err)
	}
	if a.Cap() != 6 {
		t.Fatalf("Expected capacity 6 after backoff, got %d", a.Cap())
	}

	fill(t, a, 2)
	if !a.Full() {
		t.Fatalf("Expected array to be full at the bound")
	}
	if err := a.Grow(); err == nil {
		t.Fatalf("Expected growth at the bound to fail")
	}

	// Contents must have survived the failed growth.
	want := []int{0, 1, 2, 3, 0, 1}
	if got := snapshot(a); !equalInts(got, want) {
		t.Fatalf("Contents changed after failed growth: %v", got)
	}
}

func TestEnsureExtraExactFit(t *testing.T) {
	a := newIntArray(nil, 8, nil)
	fill(t, a, 2)

	if err := a.EnsureExtra(3); err != nil {
		t.Fatalf("EnsureExtra failed: %v", err)
	}
	if a.Cap() != 5 {
		t.Fatalf("Expected exact capacity 5, got %d", a.Cap())
	}
	if a.Len() != 2 {
		t.Fatalf("Expected size to stay 2, got %d", a.Len())
	}
}

func TestEnsureExtraRespectsBound(t *testing.T) {
	a := newIntArray(nil, 2, limitAt(4))
	fill(t, a, 2)

	if err := a.EnsureExtra(10); err == nil {
		t.Fatalf("Expected EnsureExtra beyond the bound to fail")
	}
	if a.Cap() != 2 || a.Len() != 2 {
		t.Fatalf("Array changed after failed reserve: cap=%d len=%d", a.Cap(), a.Len())
	}
}

func TestShrinkIsBestEffort(t *testing.T) {
	a := newIntArray(nil, 16, nil)
	fill(t, a, 3)

	a.Shrink(8)
	if a.Cap() != 8 {
		t.Fatalf("Expected capacity 8 after shrink, got %d", a.Cap())
	}

	// A request below the size clamps to the size.
	a.Shrink(1)
	if a.Cap() != 3 {
		t.Fatalf("Expected capacity clamped to size 3, got %d", a.Cap())
	}
	if got := snapshot(a); !equalInts(got, []int{0, 1, 2}) {
		t.Fatalf("Contents changed by shrink: %v", got)
	}
}

func TestVacateAndCleanNull(t *testing.T) {
	rc := &releaseCounter{}
	a := newIntArray(rc, 8, nil)
	fill(t, a, 6)

	a.Vacate(1)
	a.Vacate(4)
	if a.Len() != 6 {
		t.Fatalf("Vacate changed the used range to %d", a.Len())
	}
	if got := snapshot(a); !equalInts(got, []int{0, -1, 2, 3, -1, 5}) {
		t.Fatalf("Unexpected layout after vacating: %v", got)
	}
	if !equalInts(rc.released, []int{1, 4}) {
		t.Fatalf("Expected releases [1 4], got %v", rc.released)
	}

	// Vacating the same slot again must not release twice.
	a.Vacate(1)
	if len(rc.released) != 2 {
		t.Fatalf("Vacating a hole released an element: %v", rc.released)
	}

	a.CleanNull()
	if got := snapshot(a); !equalInts(got, []int{0, 2, 3, 5}) {
		t.Fatalf("Unexpected layout after compaction: %v", got)
	}
	// Compaction itself must not release anything.
	if len(rc.released) != 2 {
		t.Fatalf("CleanNull released elements: %v", rc.released)
	}
}

func TestTruncateLast(t *testing.T) {
	rc := &releaseCounter{}
	a := newIntArray(rc, 4, nil)
	fill(t, a, 3)

	a.TruncateLast()
	if a.Len() != 2 {
		t.Fatalf("Expected 2 slots after truncate, got %d", a.Len())
	}
	if !equalInts(rc.released, []int{2}) {
		t.Fatalf("Expected release of element 2, got %v", rc.released)
	}

	// Truncating a vacated top slot shrinks without releasing.
	a.Vacate(1)
	a.TruncateLast()
	if a.Len() != 1 {
		t.Fatalf("Expected 1 slot, got %d", a.Len())
	}
	if !equalInts(rc.released, []int{2, 1}) {
		t.Fatalf("Unexpected release order: %v", rc.released)
	}
	a.TruncateLast()
	a.TruncateLast() // already empty, must be a no-op
	if a.Len() != 0 {
		t.Fatalf("Expected empty array, got %d slots", a.Len())
	}
}

func TestFilterInPlace(t *testing.T) {
	rc := &releaseCounter{}
	a := newIntArray(rc, 8, nil)
	fill(t, a, 6)
	a.Vacate(2)

	a.FilterInPlace(func(p *int) bool { return *p%2 == 1 })
	if got := snapshot(a); !equalInts(got, []int{1, 3, 5}) {
		t.Fatalf("Unexpected layout after filter: %v", got)
	}
	// Vacate released 2; the filter released the kept-out evens 0 and 4.
	if !equalInts(rc.released, []int{2, 0, 4}) {
		t.Fatalf("Unexpected releases: %v", rc.released)
	}
}

func TestReverseAndSwap(t *testing.T) {
	a := newIntArray(nil, 8, nil)
	fill(t, a, 5)
	a.Vacate(0)

	a.Reverse()
	if got := snapshot(a); !equalInts(got, []int{4, 3, 2, 1, -1}) {
		t.Fatalf("Unexpected layout after reverse: %v", got)
	}

	a.Swap(0, 4)
	if got := snapshot(a); !equalInts(got, []int{-1, 3, 2, 1, 4}) {
		t.Fatalf("Swap must move holes too: %v", got)
	}
}

func TestSortFuncKeepsHolesLast(t *testing.T) {
	a := newIntArray(nil, 8, nil)
	for _, v := range []int{3, 1, 4, 1, 5} {
		v := v
		if a.Full() {
			if err := a.Grow(); err != nil {
				t.Fatalf("Grow failed: %v", err)
			}
		}
		a.Append(&v)
	}
	a.Vacate(2)

	a.SortFunc(func(x, y *int) int { return *x - *y })
	if got := snapshot(a); !equalInts(got, []int{1, 1, 3, 5, -1}) {
		t.Fatalf("Unexpected order after sort: %v", got)
	}
}

func TestShuffleIsSeedReproducible(t *testing.T) {
	build := func() *Array[*int] {
		a := newIntArray(nil, 16, nil)
		fill(t, a, 12)
		return a
	}
	a, b := build(), build()
	a.Shuffle(rand.New(rand.NewSource(99)))
	b.Shuffle(rand.New(rand.NewSource(99)))
	if !equalInts(snapshot(a), snapshot(b)) {
		t.Fatalf("Same seed produced different orders: %v vs %v", snapshot(a), snapshot(b))
	}

	// Sorting restores the identity layout regardless of the permutation.
	a.SortFunc(func(x, y *int) int { return *x - *y })
	for i := 0; i < a.Len(); i++ {
		v, ok := a.Get(i)
		if !ok || *v != i {
			t.Fatalf("Expected %d at slot %d after sort, got %v", i, i, snapshot(a))
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := newIntArray(nil, 8, nil)
	fill(t, a, 4)
	a.Vacate(1)

	dup := a.Clone(func(p *int) *int { v := *p; return &v })
	if !equalInts(snapshot(dup), snapshot(a)) {
		t.Fatalf("Clone layout differs: %v vs %v", snapshot(dup), snapshot(a))
	}

	// Mutating the original must not reach the clone.
	a.Vacate(0)
	if got := snapshot(dup); !equalInts(got, []int{0, -1, 2, 3}) {
		t.Fatalf("Clone changed with the original: %v", got)
	}

	// The clone duplicated elements, not pointers.
	av, _ := a.Get(2)
	dv, _ := dup.Get(2)
	if av == dv {
		t.Fatalf("Clone shares element storage with the original")
	}
}

func TestClearReturnsToInitialCapacity(t *testing.T) {
	rc := &releaseCounter{}
	a := newIntArray(rc, 2, nil)
	fill(t, a, 9)
	if a.Cap() < 9 {
		t.Fatalf("Expected grown capacity, got %d", a.Cap())
	}

	a.Clear()
	if a.Len() != 0 {
		t.Fatalf("Expected empty array after clear, got %d", a.Len())
	}
	if a.Cap() != 2 {
		t.Fatalf("Expected construction capacity 2 after clear, got %d", a.Cap())
	}
	if len(rc.released) != 9 {
		t.Fatalf("Expected 9 releases, got %d", len(rc.released))
	}

	// The array stays usable.
	fill(t, a, 3)
	if got := snapshot(a); !equalInts(got, []int{0, 1, 2}) {
		t.Fatalf("Array unusable after clear: %v", got)
	}
}

func TestFreeDropsStorageAndStaysUsable(t *testing.T) {
	rc := &releaseCounter{}
	a := newIntArray(rc, 4, nil)
	fill(t, a, 3)

	a.Free()
	if a.Len() != 0 || a.Cap() != 0 {
		t.Fatalf("Expected no storage after free, got len=%d cap=%d", a.Len(), a.Cap())
	}
	if len(rc.released) != 3 {
		t.Fatalf("Expected 3 releases on free, got %d", len(rc.released))
	}

	// Growth restarts from the minimum capacity.
	fill(t, a, 2)
	if got := snapshot(a); !equalInts(got, []int{0, 1}) {
		t.Fatalf("Array unusable after free: %v", got)
	}
}

func TestDiscardDoesNotRelease(t *testing.T) {
	rc := &releaseCounter{}
	a := newIntArray(rc, 4, nil)
	fill(t, a, 3)

	a.Discard()
	if a.Len() != 0 {
		t.Fatalf("Expected empty array after discard, got %d", a.Len())
	}
	if len(rc.released) != 0 {
		t.Fatalf("Discard released elements: %v", rc.released)
	}
}
