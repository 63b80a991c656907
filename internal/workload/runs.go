package workload

import (
	"fmt"
	"math/rand"

	"github.com/i5heu/GoContainerKit/pkg/queue"
	"github.com/i5heu/GoContainerKit/pkg/stack"
)

func ascending(a, b *int) int {
	switch {
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func descending(a, b *int) int { return ascending(b, a) }

func sameValue(a, b *int) bool { return *a == *b }

func runQueueChurn(n int, mode Mode, _ int64) (int64, error) {
	counter := &opCounter{}
	q, err := newQueue(mode, counter)
	if err != nil {
		return 0, err
	}
	drained, ops, err := runChurn(queueDriver[*int]{q}, n)
	if err != nil {
		return ops, err
	}
	for i, v := range drained {
		if v != i {
			return ops, fmt.Errorf("fifo order broken: position %d drained %d", i, v)
		}
	}
	if err := verifyComplete(n, drained); err != nil {
		return ops, err
	}
	q.Free()
	if mode == CopyEnabled {
		if err := counter.leakCheck(int64(len(drained))); err != nil {
			return ops, err
		}
	}
	return ops, nil
}

func runQueueRotate(n int, mode Mode, _ int64) (int64, error) {
	counter := &opCounter{}
	q, err := newQueue(mode, counter)
	if err != nil {
		return 0, err
	}
	window := n/8 + 1
	var ops, handedOut int64
	expect := 0
	take := func() error {
		front, err := q.Front()
		if err != nil {
			return err
		}
		popped, err := q.Pop()
		if err != nil {
			return err
		}
		ops += 2
		handedOut += 2
		if *front != *popped {
			return fmt.Errorf("front %d disagrees with pop %d", *front, *popped)
		}
		if *popped != expect {
			return fmt.Errorf("rotate order broken: got %d, want %d", *popped, expect)
		}
		expect++
		return nil
	}
	for i := 0; i < n; i++ {
		v := i
		if err := q.Enqueue(&v); err != nil {
			return ops, err
		}
		ops++
		if q.Size() > window {
			if err := take(); err != nil {
				return ops, err
			}
		}
	}
	for !q.IsEmpty() {
		if err := take(); err != nil {
			return ops, err
		}
	}
	if expect != n {
		return ops, fmt.Errorf("rotated %d of %d elements", expect, n)
	}
	q.Free()
	if mode == CopyEnabled {
		if err := counter.leakCheck(handedOut); err != nil {
			return ops, err
		}
	}
	return ops, nil
}

func runQueueBulkSort(n int, mode Mode, _ int64) (int64, error) {
	counter := &opCounter{}
	q, err := newQueue(mode, counter)
	if err != nil {
		return 0, err
	}
	src := make([]*int, n)
	for i := range src {
		v := i
		src[i] = &v
	}
	q, err = queue.FromSlice(q, src)
	if err != nil {
		return 0, err
	}
	ops := int64(n)
	if q.Size() != n {
		return ops, fmt.Errorf("bulk load: size %d, want %d", q.Size(), n)
	}
	q.Sort(descending)
	ops++
	out := q.ToSlice()
	ops += int64(len(out))
	handedOut := int64(len(out))
	if len(out) != n {
		return ops, fmt.Errorf("snapshot holds %d of %d elements", len(out), n)
	}
	for i, p := range out {
		if *p != n-1-i {
			return ops, fmt.Errorf("sort broken: position %d holds %d", i, *p)
		}
	}
	for !q.IsEmpty() {
		if err := q.Dequeue(); err != nil {
			return ops, err
		}
		ops++
	}
	q.Free()
	if mode == CopyEnabled {
		if err := counter.leakCheck(handedOut); err != nil {
			return ops, err
		}
	}
	return ops, nil
}

func runStackChurn(n int, mode Mode, _ int64) (int64, error) {
	counter := &opCounter{}
	s, err := newStack(mode, counter)
	if err != nil {
		return 0, err
	}
	drained, ops, err := runChurn(stackDriver[*int]{s}, n)
	if err != nil {
		return ops, err
	}
	for i, v := range drained {
		if v != n-1-i {
			return ops, fmt.Errorf("lifo order broken: position %d drained %d", i, v)
		}
	}
	if err := verifyComplete(n, drained); err != nil {
		return ops, err
	}
	s.Free()
	if mode == CopyEnabled {
		if err := counter.leakCheck(int64(len(drained))); err != nil {
			return ops, err
		}
	}
	return ops, nil
}

func runStackEditing(n int, mode Mode, _ int64) (int64, error) {
	counter := &opCounter{}
	s, err := newStack(mode, counter)
	if err != nil {
		return 0, err
	}
	var ops int64
	for i := 0; i < n; i++ {
		v := i
		if err := s.Push(&v); err != nil {
			return ops, err
		}
		ops++
	}
	for i := 0; i < s.Length(); i += 2 {
		if err := s.RemoveNth(i); err != nil {
			return ops, err
		}
		ops++
	}
	if s.Length() != n {
		return ops, fmt.Errorf("vacating shrank the stack to %d slots", s.Length())
	}
	s.CleanNull()
	ops++
	want := n / 2
	if s.Length() != want {
		return ops, fmt.Errorf("compacted to %d slots, want %d", s.Length(), want)
	}
	s.Reverse()
	ops++
	var handedOut int64
	expect := 1
	popped := 0
	for s.Length() > 0 {
		v, live, err := s.Pop()
		if err != nil {
			return ops, err
		}
		ops++
		if !live {
			return ops, fmt.Errorf("popped a vacated slot after compaction")
		}
		if *v != expect {
			return ops, fmt.Errorf("drain order broken: got %d, want %d", *v, expect)
		}
		expect += 2
		popped++
		handedOut++
	}
	if popped != want {
		return ops, fmt.Errorf("drained %d of %d elements", popped, want)
	}
	s.Free()
	if mode == CopyEnabled {
		if err := counter.leakCheck(handedOut); err != nil {
			return ops, err
		}
	}
	return ops, nil
}

func runStackShuffleSort(n int, mode Mode, seed int64) (int64, error) {
	counter := &opCounter{}
	s, err := newStack(mode, counter)
	if err != nil {
		return 0, err
	}
	src := make([]*int, n)
	for i := range src {
		v := i
		src[i] = &v
	}
	s, err = stack.FromSlice(s, src)
	if err != nil {
		return 0, err
	}
	ops := int64(n)
	s.Shuffle(rand.New(rand.NewSource(seed)))
	ops++
	s.Sort(ascending)
	ops++
	var handedOut int64
	for i := 0; i < s.Length(); i++ {
		v, live, err := s.PeekNth(i)
		if err != nil {
			return ops, err
		}
		ops++
		if !live {
			return ops, fmt.Errorf("slot %d vacated after shuffle and sort", i)
		}
		handedOut++
		if *v != i {
			return ops, fmt.Errorf("sort broken: slot %d holds %d", i, *v)
		}
	}
	s.Clear()
	ops++
	if mode == CopyEnabled {
		if err := counter.leakCheck(handedOut); err != nil {
			return ops, err
		}
	}
	return ops, nil
}

func runStackFilter(n int, mode Mode, _ int64) (int64, error) {
	counter := &opCounter{}
	s, err := newStack(mode, counter)
	if err != nil {
		return 0, err
	}
	var ops int64
	for i := 0; i < n; i++ {
		v := i
		if err := s.Push(&v); err != nil {
			return ops, err
		}
		ops++
	}
	s.Filter(func(p *int) bool { return *p%3 == 0 })
	ops++
	want := (n + 2) / 3
	if s.Length() != want {
		return ops, fmt.Errorf("filter left %d slots, want %d", s.Length(), want)
	}
	if !s.All(func(p *int) bool { return *p%3 == 0 }) {
		return ops, fmt.Errorf("filter residue fails its own predicate")
	}
	ops++
	if s.Any(func(p *int) bool { return *p < 0 }) {
		return ops, fmt.Errorf("negative element appeared out of nowhere")
	}
	ops++
	probe := 0
	if !s.Contains(&probe, sameValue) {
		return ops, fmt.Errorf("element %d missing after filter", probe)
	}
	ops++
	missing := -5
	if idx := s.Search(&missing, sameValue); idx != -1 {
		return ops, fmt.Errorf("search found %d at slot %d", missing, idx)
	}
	ops++
	dump := s.Dump()
	ops += int64(len(dump))
	if len(dump) != want {
		return ops, fmt.Errorf("dump holds %d of %d elements", len(dump), want)
	}
	for i, p := range dump {
		if *p != 3*(want-1-i) {
			return ops, fmt.Errorf("dump order broken: position %d holds %d", i, *p)
		}
	}
	if s.Length() != 0 {
		return ops, fmt.Errorf("dump left %d slots behind", s.Length())
	}
	s.Free()
	if mode == CopyEnabled {
		// Dump transfers the stored duplicates to the caller.
		if err := counter.leakCheck(int64(len(dump))); err != nil {
			return ops, err
		}
	}
	return ops, nil
}
