package mesh

import "fmt"

// Restriction maps between element-local (E-vector) and globally
// numbered (L-vector) degrees of freedom on meshes built by the
// Cartesian/Surface constructors, using lexicographic global numbering
// of the shared tensor node grid. The kernels themselves only ever see
// E-vectors; this is the surrounding gather/scatter layer.
type Restriction struct {
	mesh  *Mesh
	Order int
	// global nodes per axis
	ngx, ngy, ngz int
}

func NewRestriction(m *Mesh) *Restriction {
	if m.Nx == 0 || (m.Dim == 3 && m.Nz == 0) {
		panic("mesh: restriction requires a structured tensor mesh")
	}
	r := &Restriction{mesh: m, Order: m.Order}
	p := m.Order
	r.ngx = m.Nx*p + 1
	r.ngy = m.Ny*p + 1
	if m.Dim == 3 {
		r.ngz = m.Nz*p + 1
	} else {
		r.ngz = 1
	}
	return r
}

// NDof returns the number of global scalar degrees of freedom.
func (r *Restriction) NDof() int { return r.ngx * r.ngy * r.ngz }

// globalIndex returns the global node number of local node (dx,dy,dz)
// of element e.
func (r *Restriction) globalIndex(e, dx, dy, dz int) int {
	m := r.mesh
	p := r.Order
	ex := e % m.Nx
	ey := (e / m.Nx) % m.Ny
	ez := e / (m.Nx * m.Ny)
	gx := ex*p + dx
	gy := ey*p + dy
	gz := ez*p + dz
	return gx + r.ngx*(gy+r.ngy*gz)
}

// Gather copies the global vector g (layout (node, component)) into the
// element-local vector x (layout (node, component, element)).
func (r *Restriction) Gather(g, x []float64, vdim int) {
	m := r.mesh
	d1d := r.Order + 1
	nd := m.NDofElem()
	ndof := r.NDof()
	if len(g) != ndof*vdim || len(x) != nd*vdim*m.NE {
		panic(fmt.Sprintf("mesh: gather size mismatch: len(g)=%d len(x)=%d", len(g), len(x)))
	}
	zmax := 1
	if m.Dim == 3 {
		zmax = d1d
	}
	for e := 0; e < m.NE; e++ {
		for c := 0; c < vdim; c++ {
			for dz := 0; dz < zmax; dz++ {
				for dy := 0; dy < d1d; dy++ {
					for dx := 0; dx < d1d; dx++ {
						i := dx + d1d*(dy+d1d*dz)
						if m.Dim == 2 {
							i = dx + d1d*dy
						}
						x[i+nd*(c+vdim*e)] = g[r.globalIndex(e, dx, dy, dz)+ndof*c]
					}
				}
			}
		}
	}
}

// ScatterAdd accumulates the element-local vector x into the global
// vector g, summing contributions at shared nodes.
func (r *Restriction) ScatterAdd(x, g []float64, vdim int) {
	m := r.mesh
	d1d := r.Order + 1
	nd := m.NDofElem()
	ndof := r.NDof()
	if len(g) != ndof*vdim || len(x) != nd*vdim*m.NE {
		panic(fmt.Sprintf("mesh: scatter size mismatch: len(x)=%d len(g)=%d", len(x), len(g)))
	}
	zmax := 1
	if m.Dim == 3 {
		zmax = d1d
	}
	for e := 0; e < m.NE; e++ {
		for c := 0; c < vdim; c++ {
			for dz := 0; dz < zmax; dz++ {
				for dy := 0; dy < d1d; dy++ {
					for dx := 0; dx < d1d; dx++ {
						i := dx + d1d*(dy+d1d*dz)
						if m.Dim == 2 {
							i = dx + d1d*dy
						}
						g[r.globalIndex(e, dx, dy, dz)+ndof*c] += x[i+nd*(c+vdim*e)]
					}
				}
			}
		}
	}
}

// BoundaryMask reports, per global scalar dof, whether the node lies on
// the mesh boundary. Used for essential boundary elimination in
// drivers.
func (r *Restriction) BoundaryMask() []bool {
	mask := make([]bool, r.NDof())
	for gz := 0; gz < r.ngz; gz++ {
		for gy := 0; gy < r.ngy; gy++ {
			for gx := 0; gx < r.ngx; gx++ {
				onBdr := gx == 0 || gx == r.ngx-1 || gy == 0 || gy == r.ngy-1
				if r.mesh.Dim == 3 {
					onBdr = onBdr || gz == 0 || gz == r.ngz-1
				}
				mask[gx+r.ngx*(gy+r.ngy*gz)] = onBdr
			}
		}
	}
	return mask
}
