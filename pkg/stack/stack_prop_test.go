package stack

import (
	"sort"
	"testing"

	"github.com/shoenig/test/must"
	"pgregory.net/rapid"
)

// The model mirrors the slot layout, holes included: index 0 is the bottom,
// a false live flag is a vacated slot.
type modelSlot struct {
	val  int
	live bool
}

func checkLayout(t *rapid.T, s *Stack[*int], model []modelSlot) {
	must.Eq(t, len(model), s.Length())
	for i, ms := range model {
		v, live, err := s.PeekNth(i)
		must.NoError(t, err)
		must.Eq(t, ms.live, live)
		if ms.live {
			must.Eq(t, ms.val, *v)
		}
	}
}

func TestStackMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New[*int]()
		var model []modelSlot
		next := 0

		ops := rapid.SliceOfN(rapid.IntRange(0, 7), 1, 200).Draw(t, "ops")
		for _, op := range ops {
			switch op {
			case 0, 1: // push, weighted so the stack actually fills
				v := next
				next++
				must.NoError(t, s.Push(&v))
				model = append(model, modelSlot{val: v, live: true})
			case 2: // pop
				if len(model) == 0 {
					_, _, err := s.Pop()
					must.ErrorIs(t, err, ErrEmptyStack)
				} else {
					top := model[len(model)-1]
					got, live, err := s.Pop()
					must.NoError(t, err)
					must.Eq(t, top.live, live)
					if top.live {
						must.Eq(t, top.val, *got)
					}
					model = model[:len(model)-1]
				}
			case 3: // remove a random slot in place
				if len(model) > 0 {
					idx := rapid.IntRange(0, len(model)-1).Draw(t, "removeIdx")
					must.NoError(t, s.RemoveNth(idx))
					model[idx].live = false
				}
			case 4: // swap two random slots
				if len(model) > 0 {
					i := rapid.IntRange(0, len(model)-1).Draw(t, "swapI")
					j := rapid.IntRange(0, len(model)-1).Draw(t, "swapJ")
					must.NoError(t, s.Swap(i, j))
					model[i], model[j] = model[j], model[i]
				}
			case 5: // compact
				s.CleanNull()
				kept := model[:0]
				for _, ms := range model {
					if ms.live {
						kept = append(kept, ms)
					}
				}
				model = kept
			case 6: // reverse
				s.Reverse()
				for i, j := 0, len(model)-1; i < j; i, j = i+1, j-1 {
					model[i], model[j] = model[j], model[i]
				}
			case 7: // clear
				s.Clear()
				model = nil
			}
			must.Eq(t, len(model), s.Length())
			must.Eq(t, len(model) == 0, s.IsEmpty())
		}

		checkLayout(t, s, model)
	})
}

func TestStackSortSinksLiveElements(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vals := rapid.SliceOfN(rapid.IntRange(-50, 50), 1, 64).Draw(t, "vals")
		s := New[*int]()
		for i := range vals {
			v := vals[i]
			must.NoError(t, s.Push(&v))
		}

		holes := rapid.IntRange(0, len(vals)-1).Draw(t, "holes")
		for i := 0; i < holes; i++ {
			must.NoError(t, s.RemoveNth(i))
		}

		s.Sort(func(a, b *int) int { return *a - *b })
		must.Eq(t, len(vals), s.Length())

		// The surviving values, ascending from the bottom, then the holes.
		want := append([]int(nil), vals[holes:]...)
		sort.Ints(want)
		for i := 0; i < s.Length(); i++ {
			v, live, err := s.PeekNth(i)
			must.NoError(t, err)
			must.Eq(t, i < len(want), live)
			if live {
				must.Eq(t, want[i], *v)
			}
		}
	})
}

func TestStackDumpMatchesSnapshot(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vals := rapid.SliceOfN(rapid.IntRange(-1000, 1000), 0, 128).Draw(t, "vals")
		s := New[*int]()
		for i := range vals {
			v := vals[i]
			must.NoError(t, s.Push(&v))
		}
		if len(vals) > 0 {
			holes := rapid.IntRange(0, len(vals)).Draw(t, "holes")
			for i := 0; i < holes; i++ {
				must.NoError(t, s.RemoveNth(i))
			}
		}

		// The snapshot and the drain agree element for element; a borrowed
		// stack hands out the very same handles.
		snap := s.ToSlice()
		dump := s.Dump()
		must.Len(t, len(snap), dump)
		for i := range snap {
			must.True(t, snap[i] == dump[i])
		}
		must.True(t, s.IsEmpty())
	})
}
