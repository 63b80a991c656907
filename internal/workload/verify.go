package workload

import (
	"fmt"

	"github.com/hashicorp/go-set/v2"
)

// verifyComplete audits a drained run against the 0..n-1 identity load:
// every value exactly once, nothing foreign, nothing lost.
func verifyComplete(n int, got []int) error {
	seen := set.New[int](n)
	for _, v := range got {
		if v < 0 || v >= n {
			return fmt.Errorf("foreign element %d drained", v)
		}
		if !seen.Insert(v) {
			return fmt.Errorf("element %d drained twice", v)
		}
	}
	if seen.Size() != n {
		return fmt.Errorf("drained %d of %d elements", seen.Size(), n)
	}
	return nil
}
