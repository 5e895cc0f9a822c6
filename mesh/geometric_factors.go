package mesh

import (
	"fmt"

	"github.com/finite-element-analysis/mfem/element"
)

// GeometricFactors caches the Jacobian of the reference-to-physical map
// at every tensor quadrature point of every element, for one 1-D rule.
// J has layout (point, space component, reference axis, element):
//
//	J[q + NQ*(c + SDim*(d + Dim*e))]
//
// matching the setup kernels' expectations. A GeometricFactors value is
// immutable; the owning Mesh rebuilds it when its geometry changes.
type GeometricFactors struct {
	Rule      element.Rule
	NQ, NE    int
	Dim, SDim int
	J         []float64
}

// GeometricFactors returns the (possibly cached) factors for rule r.
// A cache hit requires the stored rule's points to match r exactly, so
// two distinct rules with the same point count never share an entry.
// The cache is cleared whenever the mesh geometry changes.
func (m *Mesh) GeometricFactors(r element.Rule) *GeometricFactors {
	if m.factors == nil {
		m.factors = make(map[int]*GeometricFactors)
	}
	if gf, ok := m.factors[r.Size()]; ok && samePoints(gf.Rule, r) {
		return gf
	}
	gf := m.computeFactors(r)
	m.factors[r.Size()] = gf
	return gf
}

func samePoints(a, b element.Rule) bool {
	if len(a.Points) != len(b.Points) {
		return false
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			return false
		}
	}
	return true
}

func (m *Mesh) computeFactors(r element.Rule) *GeometricFactors {
	maps := element.NewDofToQuad(element.NewBasis1D(m.Order), r)
	d1d, q1d := maps.D1D, maps.Q1D
	nd := m.NDofElem()
	nq := q1d
	for d := 1; d < m.Dim; d++ {
		nq *= q1d
	}
	gf := &GeometricFactors{
		Rule: r,
		NQ:   nq,
		NE:   m.NE,
		Dim:  m.Dim,
		SDim: m.SDim,
		J:    make([]float64, nq*m.SDim*m.Dim*m.NE),
	}

	B, G := maps.B, maps.G
	for e := 0; e < m.NE; e++ {
		for c := 0; c < m.SDim; c++ {
			nodes := m.Nodes[nd*(c+m.SDim*e) : nd*(c+m.SDim*e)+nd]
			switch m.Dim {
			case 2:
				for qy := 0; qy < q1d; qy++ {
					for qx := 0; qx < q1d; qx++ {
						dXdr, dXds := 0.0, 0.0
						for dy := 0; dy < d1d; dy++ {
							for dx := 0; dx < d1d; dx++ {
								s := nodes[dx+d1d*dy]
								dXdr += G[qx*d1d+dx] * B[qy*d1d+dy] * s
								dXds += B[qx*d1d+dx] * G[qy*d1d+dy] * s
							}
						}
						q := qx + q1d*qy
						gf.J[q+nq*(c+m.SDim*(0+2*e))] = dXdr
						gf.J[q+nq*(c+m.SDim*(1+2*e))] = dXds
					}
				}
			case 3:
				for qz := 0; qz < q1d; qz++ {
					for qy := 0; qy < q1d; qy++ {
						for qx := 0; qx < q1d; qx++ {
							dXdr, dXds, dXdt := 0.0, 0.0, 0.0
							for dz := 0; dz < d1d; dz++ {
								for dy := 0; dy < d1d; dy++ {
									for dx := 0; dx < d1d; dx++ {
										s := nodes[dx+d1d*(dy+d1d*dz)]
										bx, gx := B[qx*d1d+dx], G[qx*d1d+dx]
										by, gy := B[qy*d1d+dy], G[qy*d1d+dy]
										bz, gz := B[qz*d1d+dz], G[qz*d1d+dz]
										dXdr += gx * by * bz * s
										dXds += bx * gy * bz * s
										dXdt += bx * by * gz * s
									}
								}
							}
							q := qx + q1d*(qy+q1d*qz)
							gf.J[q+nq*(c+3*(0+3*e))] = dXdr
							gf.J[q+nq*(c+3*(1+3*e))] = dXds
							gf.J[q+nq*(c+3*(2+3*e))] = dXdt
						}
					}
				}
			default:
				panic(fmt.Sprintf("mesh: unsupported dimension %d", m.Dim))
			}
		}
	}
	return gf
}

// TensorWeights returns the tensor-product quadrature weights of the
// 1-D rule in the kernels' point ordering (x fastest).
func TensorWeights(r element.Rule, dim int) []float64 {
	q1d := r.Size()
	switch dim {
	case 2:
		w := make([]float64, q1d*q1d)
		for qy := 0; qy < q1d; qy++ {
			for qx := 0; qx < q1d; qx++ {
				w[qx+q1d*qy] = r.Weights[qx] * r.Weights[qy]
			}
		}
		return w
	case 3:
		w := make([]float64, q1d*q1d*q1d)
		for qz := 0; qz < q1d; qz++ {
			for qy := 0; qy < q1d; qy++ {
				for qx := 0; qx < q1d; qx++ {
					w[qx+q1d*(qy+q1d*qz)] = r.Weights[qx] * r.Weights[qy] * r.Weights[qz]
				}
			}
		}
		return w
	}
	panic(fmt.Sprintf("mesh: unsupported dimension %d", dim))
}
