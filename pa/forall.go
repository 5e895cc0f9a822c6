package pa

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/finite-element-analysis/mfem/utils"
)

// Target selects where the element-parallel maps execute. Every kernel
// is a single map over the element index with no cross-element
// dependencies: Setup writes are element-disjoint, Apply/Diagonal
// accumulate only into their own element's slice of the output, and the
// shape tables and payload are read-only, so no locking is needed.
type Target int

const (
	// Serial runs the element loop on the calling goroutine.
	Serial Target = iota
	// HostParallel spreads contiguous element ranges over worker
	// goroutines, one per CPU.
	HostParallel
)

// forEachElement runs body(e) for every e in [0, ne) on the selected
// target.
func forEachElement(t Target, ne int, body func(e int)) {
	switch t {
	case Serial:
		for e := 0; e < ne; e++ {
			body(e)
		}
	case HostParallel:
		np := runtime.NumCPU()
		if np > ne {
			np = ne
		}
		if np <= 1 {
			for e := 0; e < ne; e++ {
				body(e)
			}
			return
		}
		pm := utils.NewPartitionMap(np, ne)
		var wg sync.WaitGroup
		for n := 0; n < np; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				lo, hi := pm.Range(n)
				for e := lo; e < hi; e++ {
					body(e)
				}
			}(n)
		}
		wg.Wait()
	default:
		panic(fmt.Sprintf("pa: unknown execution target %d", t))
	}
}
