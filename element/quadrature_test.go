package element

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// integrate applies the rule to f on [0,1].
func integrate(r Rule, f func(x float64) float64) float64 {
	s := 0.0
	for i, x := range r.Points {
		s += r.Weights[i] * f(x)
	}
	return s
}

func TestGaussLegendreExactness(t *testing.T) {
	// An n-point rule integrates monomials up to degree 2n-1 exactly:
	// integral of x^k over [0,1] is 1/(k+1).
	for n := 1; n <= 8; n++ {
		r := GaussLegendre(n)
		require.Equal(t, n, r.Size())
		for k := 0; k <= 2*n-1; k++ {
			got := integrate(r, func(x float64) float64 { return math.Pow(x, float64(k)) })
			assert.InDelta(t, 1/float64(k+1), got, 1e-13, "n=%d k=%d", n, k)
		}
	}
}

func TestGaussLegendreProperties(t *testing.T) {
	for n := 1; n <= 10; n++ {
		r := GaussLegendre(n)
		sum := 0.0
		for i, w := range r.Weights {
			assert.Greater(t, w, 0.0, "n=%d i=%d", n, i)
			sum += w
			if i > 0 {
				assert.Less(t, r.Points[i-1], r.Points[i], "points not ascending at n=%d", n)
			}
			assert.Greater(t, r.Points[i], 0.0)
			assert.Less(t, r.Points[i], 1.0)
		}
		assert.InDelta(t, 1.0, sum, 1e-14, "weights of n=%d", n)
	}
}

func TestGaussLegendreKnownValues(t *testing.T) {
	r := GaussLegendre(2)
	h := 0.5 / math.Sqrt(3)
	assert.InDelta(t, 0.5-h, r.Points[0], 1e-14)
	assert.InDelta(t, 0.5+h, r.Points[1], 1e-14)
	assert.InDelta(t, 0.5, r.Weights[0], 1e-14)
	assert.InDelta(t, 0.5, r.Weights[1], 1e-14)

	r = GaussLegendre(3)
	assert.InDelta(t, 0.5, r.Points[1], 1e-14)
	assert.InDelta(t, 4.0/9.0, r.Weights[1], 1e-14)
}

func TestGaussLegendreFault(t *testing.T) {
	assert.Panics(t, func() { GaussLegendre(0) })
}

func TestLobattoNodes(t *testing.T) {
	for p := 1; p <= 8; p++ {
		x := LobattoNodes(p)
		require.Len(t, x, p+1)
		assert.Equal(t, 0.0, x[0])
		assert.Equal(t, 1.0, x[p])
		for i := 1; i <= p; i++ {
			assert.Less(t, x[i-1], x[i], "p=%d i=%d", p, i)
		}
		// Lobatto point sets are symmetric about the midpoint.
		for i := 0; i <= p; i++ {
			assert.InDelta(t, 1-x[p-i], x[i], 1e-13, "p=%d i=%d", p, i)
		}
	}
	// Odd orders never place a node at 0.5; even orders always do.
	x := LobattoNodes(2)
	assert.InDelta(t, 0.5, x[1], 1e-14)
	// p=3 interior nodes at (1 +- 1/sqrt(5))/2.
	x = LobattoNodes(3)
	assert.InDelta(t, 0.5*(1-1/math.Sqrt(5)), x[1], 1e-13)
	assert.InDelta(t, 0.5*(1+1/math.Sqrt(5)), x[2], 1e-13)

	assert.Panics(t, func() { LobattoNodes(0) })
}
