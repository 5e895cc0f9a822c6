package element

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Rule is a 1-D quadrature rule on the reference interval [0,1].
// Points are stored in ascending order; Weights sum to 1.
type Rule struct {
	Points  []float64
	Weights []float64
}

func (r Rule) Size() int { return len(r.Points) }

// GaussLegendre returns the n-point Gauss-Legendre rule on [0,1],
// exact for polynomials of degree 2n-1. The nodes are computed as the
// eigenvalues of the Jacobi matrix of the Legendre recurrence
// (Golub-Welsch), with weights from the first eigenvector components.
func GaussLegendre(n int) Rule {
	if n < 1 {
		panic(fmt.Sprintf("GaussLegendre: need at least 1 point, got %d", n))
	}
	if n == 1 {
		return Rule{Points: []float64{0.5}, Weights: []float64{1.0}}
	}

	// Legendre recurrence: zero diagonal, off-diagonal
	// b_i = i/sqrt(4i^2-1), i = 1..n-1
	d0 := make([]float64, n)
	d1 := make([]float64, n-1)
	for i := 1; i < n; i++ {
		fi := float64(i)
		d1[i-1] = fi / math.Sqrt(4*fi*fi-1)
	}

	JJ := newSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("GaussLegendre: eigenvalue decomposition failed")
	}
	x := eig.Values(nil)

	V := mat.NewDense(n, n, nil)
	eig.VectorsTo(V)

	pts := make([]float64, n)
	wts := make([]float64, n)
	for i := 0; i < n; i++ {
		// Map from [-1,1] to [0,1]; total weight 2 becomes 1.
		pts[i] = 0.5 * (x[i] + 1)
		v0 := V.At(0, i)
		wts[i] = v0 * v0
	}
	return Rule{Points: pts, Weights: wts}
}

// LobattoNodes returns the p+1 Gauss-Lobatto points on [0,1] used as
// the nodal points of the order-p Lagrange basis. The interior points
// are the Gauss points of the (1,1) Jacobi recurrence; the endpoints
// are included explicitly.
func LobattoNodes(p int) []float64 {
	if p < 1 {
		panic(fmt.Sprintf("LobattoNodes: need order >= 1, got %d", p))
	}
	x := make([]float64, p+1)
	x[0] = 0
	x[p] = 1
	if p == 1 {
		return x
	}

	// Interior nodes: eigenvalues of the Jacobi(1,1) matrix of size p-1.
	n := p - 1
	d0 := make([]float64, n)
	d1 := make([]float64, n-1)
	// Jacobi(alpha=1,beta=1) recurrence on [-1,1]: zero diagonal by
	// symmetry, off-diagonal b_i = sqrt(i(i+2)/((2i+1)(2i+3))).
	for i := 1; i < n; i++ {
		fi := float64(i)
		d1[i-1] = math.Sqrt(fi * (fi + 2) / ((2*fi + 1) * (2*fi + 3)))
	}
	JJ := newSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, false); !ok {
		panic("LobattoNodes: eigenvalue decomposition failed")
	}
	xi := eig.Values(nil)
	for i := 0; i < n; i++ {
		x[i+1] = 0.5 * (xi[i] + 1)
	}
	return x
}

func newSymTriDiagonal(d0, d1 []float64) *mat.SymDense {
	n := len(d0)
	dd := make([]float64, n*n)
	for i := 0; i < n; i++ {
		dd[i+i*n] = d0[i]
		if i < n-1 {
			dd[i+1+i*n] = d1[i]
		}
	}
	return mat.NewSymDense(n, dd)
}
