package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionMapCoversRange(t *testing.T) {
	for _, tc := range []struct{ degree, max int }{
		{1, 10}, {3, 10}, {4, 4}, {7, 5}, {8, 0}, {3, 100},
	} {
		pm := NewPartitionMap(tc.degree, tc.max)
		require.Len(t, pm.Partitions, tc.degree)
		covered := 0
		prev := 0
		for n := 0; n < tc.degree; n++ {
			lo, hi := pm.Range(n)
			assert.Equal(t, prev, lo, "degree=%d max=%d partition %d", tc.degree, tc.max, n)
			assert.GreaterOrEqual(t, hi, lo)
			covered += hi - lo
			prev = hi
		}
		assert.Equal(t, tc.max, covered)
	}
}

func TestPartitionMapBalance(t *testing.T) {
	pm := NewPartitionMap(3, 10)
	sizes := make([]int, 3)
	for n := range sizes {
		lo, hi := pm.Range(n)
		sizes[n] = hi - lo
	}
	// 10 over 3 workers: the extra indices go to the first partitions.
	assert.Equal(t, []int{4, 3, 3}, sizes)
}

func TestPartitionMapFaults(t *testing.T) {
	assert.Panics(t, func() { NewPartitionMap(0, 10) })
	assert.Panics(t, func() { NewPartitionMap(2, -1) })
}
