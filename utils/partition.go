package utils

import "fmt"

// PartitionMap splits the index range [0, MaxIndex) into
// ParallelDegree contiguous, balanced partitions. Used to hand element
// ranges to worker goroutines.
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int // begin and end (exclusive) of each partition
}

func NewPartitionMap(parallelDegree, maxIndex int) (pm *PartitionMap) {
	if parallelDegree < 1 || maxIndex < 0 {
		panic(fmt.Sprintf("PartitionMap: invalid degree %d or index range %d", parallelDegree, maxIndex))
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: parallelDegree,
		Partitions:     make([][2]int, parallelDegree),
	}
	for n := 0; n < parallelDegree; n++ {
		pm.Partitions[n] = pm.split1D(n)
	}
	return
}

// split1D computes partition n: the first MaxIndex%ParallelDegree
// partitions carry one extra index.
func (pm *PartitionMap) split1D(n int) [2]int {
	base := pm.MaxIndex / pm.ParallelDegree
	rem := pm.MaxIndex % pm.ParallelDegree
	lo := n*base + min(n, rem)
	sz := base
	if n < rem {
		sz++
	}
	return [2]int{lo, lo + sz}
}

// Range returns the half-open element range of partition n.
func (pm *PartitionMap) Range(n int) (lo, hi int) {
	p := pm.Partitions[n]
	return p[0], p[1]
}
