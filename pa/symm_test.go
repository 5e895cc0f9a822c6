package pa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymm2SlotMirroring(t *testing.T) {
	var s Symm2
	s.Set(0, 0, 1)
	s.Set(0, 1, 2)
	s.Set(1, 1, 3)

	assert.Equal(t, 1.0, s.At(0, 0))
	assert.Equal(t, 2.0, s.At(0, 1))
	assert.Equal(t, 2.0, s.At(1, 0), "off-diagonal must mirror")
	assert.Equal(t, 3.0, s.At(1, 1))

	y0, y1 := s.MulVec(1, 1)
	assert.Equal(t, 3.0, y0)
	assert.Equal(t, 5.0, y1)
}

func TestSymm3SlotOrder(t *testing.T) {
	// The packed order is (0,0),(1,0),(2,0),(1,1),(2,1),(2,2).
	wantSlots := map[[2]int]int{
		{0, 0}: 0, {1, 0}: 1, {2, 0}: 2,
		{1, 1}: 3, {2, 1}: 4, {2, 2}: 5,
	}
	for ij, want := range wantSlots {
		assert.Equal(t, want, symm3Slot(ij[0], ij[1]), "slot(%d,%d)", ij[0], ij[1])
		assert.Equal(t, want, symm3Slot(ij[1], ij[0]), "slot(%d,%d) mirrored", ij[1], ij[0])
	}
}

func TestSymm3MulVec(t *testing.T) {
	var s Symm3
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			s.Set(i, j, float64(1+i+j))
		}
	}
	// Full matrix rows: [1 2 3; 2 3 4; 3 4 5] on (1,1,1).
	y0, y1, y2 := s.MulVec(1, 1, 1)
	assert.Equal(t, 6.0, y0)
	assert.Equal(t, 9.0, y1)
	assert.Equal(t, 12.0, y2)
}

func TestSymmLoadStoreRoundTrip(t *testing.T) {
	const nq, ne = 4, 3
	d := make([]float64, nq*Symm3Slots*ne)
	var s Symm3
	for k := range s {
		s[k] = float64(k + 1)
	}
	storeSymm3(d, 2, nq, 1, s)
	got := loadSymm3(d, 2, nq, 1)
	assert.Equal(t, s, got)
	// A different (q, e) stays untouched.
	assert.Equal(t, Symm3{}, loadSymm3(d, 0, nq, 0))
}
