// Package mesh provides tensor-product (quadrilateral and hexahedral)
// meshes with isoparametric geometry and a per-quadrature-rule cache of
// geometric factors. Element node coordinates are stored for the whole
// mesh in the same (point, component, element) layout the kernels use.
package mesh

import (
	"fmt"

	"github.com/finite-element-analysis/mfem/element"
)

// Mesh is a tensor-product mesh of NE elements of intrinsic dimension
// Dim embedded in SDim-dimensional space. The geometric map of each
// element is the order-Order tensor Lagrange interpolant of the stored
// node coordinates.
//
// Nodes has layout (node, component, element):
//
//	Nodes[i + nd*(c + SDim*e)], nd = (Order+1)^Dim,
//
// with node index i lexicographic, x-axis fastest.
type Mesh struct {
	Dim, SDim  int
	NE         int
	Order      int
	Nx, Ny, Nz int // elements per axis (Nz unused when Dim == 2)
	Nodes      []float64

	factors map[int]*GeometricFactors
}

// NewCartesian2D builds an Nx x Ny mesh of the unit square with an
// order-p geometric map (nodes at tensor Gauss-Lobatto points).
func NewCartesian2D(nx, ny, p int) *Mesh {
	m := &Mesh{Dim: 2, SDim: 2, NE: nx * ny, Order: p, Nx: nx, Ny: ny}
	d1d := p + 1
	nd := d1d * d1d
	lob := element.LobattoNodes(p)
	hx, hy := 1.0/float64(nx), 1.0/float64(ny)
	m.Nodes = make([]float64, nd*2*m.NE)
	for ey := 0; ey < ny; ey++ {
		for ex := 0; ex < nx; ex++ {
			e := ex + nx*ey
			for dy := 0; dy < d1d; dy++ {
				for dx := 0; dx < d1d; dx++ {
					i := dx + d1d*dy
					m.Nodes[i+nd*(0+2*e)] = (float64(ex) + lob[dx]) * hx
					m.Nodes[i+nd*(1+2*e)] = (float64(ey) + lob[dy]) * hy
				}
			}
		}
	}
	return m
}

// NewCartesian3D builds an Nx x Ny x Nz mesh of the unit cube with an
// order-p geometric map.
func NewCartesian3D(nx, ny, nz, p int) *Mesh {
	m := &Mesh{Dim: 3, SDim: 3, NE: nx * ny * nz, Order: p, Nx: nx, Ny: ny, Nz: nz}
	d1d := p + 1
	nd := d1d * d1d * d1d
	lob := element.LobattoNodes(p)
	hx, hy, hz := 1.0/float64(nx), 1.0/float64(ny), 1.0/float64(nz)
	m.Nodes = make([]float64, nd*3*m.NE)
	for ez := 0; ez < nz; ez++ {
		for ey := 0; ey < ny; ey++ {
			for ex := 0; ex < nx; ex++ {
				e := ex + nx*(ey+ny*ez)
				for dz := 0; dz < d1d; dz++ {
					for dy := 0; dy < d1d; dy++ {
						for dx := 0; dx < d1d; dx++ {
							i := dx + d1d*(dy+d1d*dz)
							m.Nodes[i+nd*(0+3*e)] = (float64(ex) + lob[dx]) * hx
							m.Nodes[i+nd*(1+3*e)] = (float64(ey) + lob[dy]) * hy
							m.Nodes[i+nd*(2+3*e)] = (float64(ez) + lob[dz]) * hz
						}
					}
				}
			}
		}
	}
	return m
}

// NewSurface builds an Nx x Ny quadrilateral mesh of the unit square
// lifted into 3-space by z = height(x, y). The result has Dim == 2 and
// SDim == 3, exercising the embedded (first fundamental form) setup
// path.
func NewSurface(nx, ny, p int, height func(x, y float64) float64) *Mesh {
	m := &Mesh{Dim: 2, SDim: 3, NE: nx * ny, Order: p, Nx: nx, Ny: ny}
	d1d := p + 1
	nd := d1d * d1d
	lob := element.LobattoNodes(p)
	hx, hy := 1.0/float64(nx), 1.0/float64(ny)
	m.Nodes = make([]float64, nd*3*m.NE)
	for ey := 0; ey < ny; ey++ {
		for ex := 0; ex < nx; ex++ {
			e := ex + nx*ey
			for dy := 0; dy < d1d; dy++ {
				for dx := 0; dx < d1d; dx++ {
					i := dx + d1d*dy
					x := (float64(ex) + lob[dx]) * hx
					y := (float64(ey) + lob[dy]) * hy
					m.Nodes[i+nd*(0+3*e)] = x
					m.Nodes[i+nd*(1+3*e)] = y
					m.Nodes[i+nd*(2+3*e)] = height(x, y)
				}
			}
		}
	}
	return m
}

// NDofElem returns the number of geometric nodes per element.
func (m *Mesh) NDofElem() int {
	nd := m.Order + 1
	n := nd
	for d := 1; d < m.Dim; d++ {
		n *= nd
	}
	return n
}

// SetTransform remaps every node coordinate through f (in place) and
// invalidates all cached geometric factors. f receives and returns a
// point of length SDim.
func (m *Mesh) SetTransform(f func(p []float64) []float64) {
	nd := m.NDofElem()
	p := make([]float64, m.SDim)
	for e := 0; e < m.NE; e++ {
		for i := 0; i < nd; i++ {
			for c := 0; c < m.SDim; c++ {
				p[c] = m.Nodes[i+nd*(c+m.SDim*e)]
			}
			q := f(p)
			if len(q) != m.SDim {
				panic(fmt.Sprintf("mesh: transform returned %d components, want %d", len(q), m.SDim))
			}
			for c := 0; c < m.SDim; c++ {
				m.Nodes[i+nd*(c+m.SDim*e)] = q[c]
			}
		}
	}
	m.factors = nil
}

// QuadraturePoints returns the physical coordinates of the tensor
// quadrature points of the 1-D rule r, in layout (q, component,
// element): X[q + nq*(c + SDim*e)] with q = qx + Q1D*(qy + Q1D*qz).
func (m *Mesh) QuadraturePoints(r element.Rule) []float64 {
	maps := element.NewDofToQuad(element.NewBasis1D(m.Order), r)
	d1d, q1d := maps.D1D, maps.Q1D
	nd := m.NDofElem()
	nq := q1d
	for d := 1; d < m.Dim; d++ {
		nq *= q1d
	}
	X := make([]float64, nq*m.SDim*m.NE)
	for e := 0; e < m.NE; e++ {
		for c := 0; c < m.SDim; c++ {
			nodes := m.Nodes[nd*(c+m.SDim*e) : nd*(c+m.SDim*e)+nd]
			if m.Dim == 2 {
				for qy := 0; qy < q1d; qy++ {
					for qx := 0; qx < q1d; qx++ {
						v := 0.0
						for dy := 0; dy < d1d; dy++ {
							for dx := 0; dx < d1d; dx++ {
								v += maps.B[qx*d1d+dx] * maps.B[qy*d1d+dy] * nodes[dx+d1d*dy]
							}
						}
						X[qx+q1d*qy+nq*(c+m.SDim*e)] = v
					}
				}
			} else {
				for qz := 0; qz < q1d; qz++ {
					for qy := 0; qy < q1d; qy++ {
						for qx := 0; qx < q1d; qx++ {
							v := 0.0
							for dz := 0; dz < d1d; dz++ {
								for dy := 0; dy < d1d; dy++ {
									for dx := 0; dx < d1d; dx++ {
										v += maps.B[qx*d1d+dx] * maps.B[qy*d1d+dy] * maps.B[qz*d1d+dz] *
											nodes[dx+d1d*(dy+d1d*dz)]
									}
								}
							}
							X[qx+q1d*(qy+q1d*qz)+nq*(c+m.SDim*e)] = v
						}
					}
				}
			}
		}
	}
	return X
}
