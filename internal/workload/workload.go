// Package workload drives the public queue and stack API through named
// operation mixes and reports how fast they run. The bench binary iterates
// the catalog; the tests lean on the same mixes for end-to-end coverage.
package workload

import (
	"errors"
	"fmt"
	"time"

	"github.com/i5heu/GoContainerKit/pkg/queue"
	"github.com/i5heu/GoContainerKit/pkg/stack"
)

// Mode selects the ownership mode a workload builds its containers with.
type Mode string

const (
	CopyDisabled Mode = "copy-disabled"
	CopyEnabled  Mode = "copy-enabled"
)

// Modes lists every ownership mode a workload can run under.
func Modes() []Mode {
	return []Mode{CopyDisabled, CopyEnabled}
}

// Workload is one named operation mix. Run drives n elements through the
// mix under the given mode and returns the number of container operations
// performed; seed feeds the mixes that shuffle.
type Workload struct {
	Name        string
	Container   string
	Description string
	Features    []string
	Run         func(n int, mode Mode, seed int64) (int64, error)
}

// Result is one measured workload run.
type Result struct {
	Ops     int64
	Elapsed time.Duration
}

// Measure times a single run of w.
func Measure(w Workload, n int, mode Mode, seed int64) (Result, error) {
	start := time.Now()
	ops, err := w.Run(n, mode, seed)
	return Result{Ops: ops, Elapsed: time.Since(start)}, err
}

// Catalog returns every workload the bench knows about, queue mixes first.
func Catalog() []Workload {
	return []Workload{
		{
			Name:        "queue-churn",
			Container:   "queue",
			Description: "Enqueue a burst of elements, then pop the queue dry.",
			Features:    []string{"FIFO", "Enqueue", "Pop"},
			Run:         runQueueChurn,
		},
		{
			Name:        "queue-rotate",
			Container:   "queue",
			Description: "Steady state: beyond a small window every enqueue pairs with a pop.",
			Features:    []string{"FIFO", "Front", "Size"},
			Run:         runQueueRotate,
		},
		{
			Name:        "queue-bulk-sort",
			Container:   "queue",
			Description: "Bulk-load from a slice, sort descending, snapshot, drain.",
			Features:    []string{"FromSlice", "Sort", "ToSlice"},
			Run:         runQueueBulkSort,
		},
		{
			Name:        "stack-churn",
			Container:   "stack",
			Description: "Push a burst of elements, then pop the stack dry.",
			Features:    []string{"LIFO", "Push", "Pop"},
			Run:         runStackChurn,
		},
		{
			Name:        "stack-editing",
			Container:   "stack",
			Description: "Push, vacate every other slot, compact, reverse, drain.",
			Features:    []string{"RemoveNth", "CleanNull", "Reverse"},
			Run:         runStackEditing,
		},
		{
			Name:        "stack-shuffle-sort",
			Container:   "stack",
			Description: "Bulk-load, shuffle with the session seed, sort, verify slot by slot.",
			Features:    []string{"FromSlice", "Shuffle", "Sort"},
			Run:         runStackShuffleSort,
		},
		{
			Name:        "stack-filter",
			Container:   "stack",
			Description: "Push, filter down to a residue, scan with the predicates, dump.",
			Features:    []string{"Filter", "Search", "Dump"},
			Run:         runStackFilter,
		},
	}
}

// Find returns the named workload from the catalog.
func Find(name string) (Workload, bool) {
	for _, w := range Catalog() {
		if w.Name == name {
			return w, true
		}
	}
	return Workload{}, false
}

// opCounter tallies operator invocations so a run can prove that every
// duplicate the container made was either released again or handed out to
// the caller.
type opCounter struct {
	copies  int64
	deletes int64
}

func (c *opCounter) copy(p *int) *int {
	c.copies++
	v := *p
	return &v
}

func (c *opCounter) delete(*int) {
	c.deletes++
}

// leakCheck verifies the operator balance after a copy-enabled run.
func (c *opCounter) leakCheck(handedOut int64) error {
	if c.copies != c.deletes+handedOut {
		return fmt.Errorf("operator leak: %d copies, %d deletes, %d handed out",
			c.copies, c.deletes, handedOut)
	}
	return nil
}

func newQueue(mode Mode, counter *opCounter) (*queue.Queue[*int], error) {
	if mode == CopyEnabled {
		return queue.NewCopyEnabled[*int](counter.copy, counter.delete)
	}
	return queue.New[*int](), nil
}

func newStack(mode Mode, counter *opCounter) (*stack.Stack[*int], error) {
	if mode == CopyEnabled {
		return stack.NewCopyEnabled[*int](counter.copy, counter.delete)
	}
	return stack.New[*int](), nil
}

// container is the operation triple the churn core drives. Both containers
// satisfy it through thin drivers, keeping the core generic while the
// public APIs stay concrete.
type container[T any] interface {
	put(T) error
	take() (T, error)
	length() int
}

type queueDriver[T any] struct{ q *queue.Queue[T] }

func (d queueDriver[T]) put(v T) error    { return d.q.Enqueue(v) }
func (d queueDriver[T]) take() (T, error) { return d.q.Pop() }
func (d queueDriver[T]) length() int      { return d.q.Size() }

type stackDriver[T any] struct{ s *stack.Stack[T] }

func (d stackDriver[T]) put(v T) error { return d.s.Push(v) }
func (d stackDriver[T]) take() (T, error) {
	v, _, err := d.s.Pop()
	return v, err
}
func (d stackDriver[T]) length() int { return d.s.Length() }

// runChurn feeds the boxed values 0..n-1 through c and drains them back,
// returning the unboxed drain order and the operation count.
func runChurn[C container[*int]](c C, n int) ([]int, int64, error) {
	var ops int64
	for i := 0; i < n; i++ {
		v := i
		if err := c.put(&v); err != nil {
			return nil, ops, err
		}
		ops++
	}
	drained := make([]int, 0, n)
	for c.length() > 0 {
		p, err := c.take()
		if err != nil {
			return nil, ops, err
		}
		ops++
		if p == nil {
			return nil, ops, errors.New("drained a vacated slot")
		}
		drained = append(drained, *p)
	}
	return drained, ops, nil
}
