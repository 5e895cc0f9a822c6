package element

import "fmt"

// Basis1D is the order-p Lagrange basis on Gauss-Lobatto nodes of
// [0,1]. Multi-dimensional tensor-product bases are formed from it by
// taking products along each reference axis; all kernel contractions
// therefore only ever need its 1-D value and derivative tables.
type Basis1D struct {
	P     int
	Nodes []float64 // p+1 Lobatto nodes, ascending
}

func NewBasis1D(p int) *Basis1D {
	return &Basis1D{P: p, Nodes: LobattoNodes(p)}
}

// Eval returns the values of all p+1 basis functions at x.
func (b *Basis1D) Eval(x float64) []float64 {
	n := len(b.Nodes)
	phi := make([]float64, n)
	for j := 0; j < n; j++ {
		v := 1.0
		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			v *= (x - b.Nodes[k]) / (b.Nodes[j] - b.Nodes[k])
		}
		phi[j] = v
	}
	return phi
}

// EvalDeriv returns the first derivatives of all p+1 basis functions
// at x, via the product-rule expansion of the Lagrange form. The
// direct O(p^2) product per term is exact at the nodes as well, which
// matters because odd Gauss rules place a point at 0.5 where the
// even-order bases have a node.
func (b *Basis1D) EvalDeriv(x float64) []float64 {
	n := len(b.Nodes)
	dphi := make([]float64, n)
	for j := 0; j < n; j++ {
		sum := 0.0
		for m := 0; m < n; m++ {
			if m == j {
				continue
			}
			term := 1.0 / (b.Nodes[j] - b.Nodes[m])
			for k := 0; k < n; k++ {
				if k == j || k == m {
					continue
				}
				term *= (x - b.Nodes[k]) / (b.Nodes[j] - b.Nodes[k])
			}
			sum += term
		}
		dphi[j] = sum
	}
	return dphi
}

// DofToQuad holds the four dense 1-D contraction tables mapping nodal
// degrees of freedom to quadrature points. B and G are stored row-major
// with shape [Q1D x D1D] (B[q*D1D+d]); Bt and Gt are their transposes
// with shape [D1D x Q1D]. The tables are immutable after construction.
type DofToQuad struct {
	D1D, Q1D int
	B, G     []float64
	Bt, Gt   []float64
}

// NewDofToQuad tabulates the basis values and derivatives at the points
// of the given quadrature rule.
func NewDofToQuad(b *Basis1D, r Rule) *DofToQuad {
	d1d := b.P + 1
	q1d := r.Size()
	m := &DofToQuad{
		D1D: d1d,
		Q1D: q1d,
		B:   make([]float64, q1d*d1d),
		G:   make([]float64, q1d*d1d),
		Bt:  make([]float64, d1d*q1d),
		Gt:  make([]float64, d1d*q1d),
	}
	for q := 0; q < q1d; q++ {
		phi := b.Eval(r.Points[q])
		dphi := b.EvalDeriv(r.Points[q])
		for d := 0; d < d1d; d++ {
			m.B[q*d1d+d] = phi[d]
			m.G[q*d1d+d] = dphi[d]
			m.Bt[d*q1d+q] = phi[d]
			m.Gt[d*q1d+q] = dphi[d]
		}
	}
	return m
}

// Verify checks the internal consistency of the tables against the
// declared sizes. Violations are programming errors and panic.
func (m *DofToQuad) Verify() {
	if len(m.B) != m.Q1D*m.D1D || len(m.G) != m.Q1D*m.D1D {
		panic(fmt.Sprintf("DofToQuad: B/G size mismatch for Q1D=%d D1D=%d", m.Q1D, m.D1D))
	}
	if len(m.Bt) != m.Q1D*m.D1D || len(m.Gt) != m.Q1D*m.D1D {
		panic(fmt.Sprintf("DofToQuad: Bt/Gt size mismatch for Q1D=%d D1D=%d", m.Q1D, m.D1D))
	}
	for d := 0; d < m.D1D; d++ {
		for q := 0; q < m.Q1D; q++ {
			if m.Bt[d*m.Q1D+q] != m.B[q*m.D1D+d] || m.Gt[d*m.Q1D+q] != m.G[q*m.D1D+d] {
				panic("DofToQuad: transpose tables do not match B/G")
			}
		}
	}
}
