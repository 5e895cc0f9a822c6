package pa

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finite-element-analysis/mfem/mesh"
)

// nodalCoordinate builds an element-local field whose every component
// equals the given physical coordinate of the mesh node.
func nodalCoordinate(m *mesh.Mesh, vdim, c int) []float64 {
	nd := m.NDofElem()
	x := make([]float64, nd*vdim*m.NE)
	for e := 0; e < m.NE; e++ {
		for i := 0; i < nd; i++ {
			v := m.Nodes[i+nd*(c+m.SDim*e)]
			for comp := 0; comp < vdim; comp++ {
				x[i+nd*(comp+vdim*e)] = v
			}
		}
	}
	return x
}

// On a single bilinear element of the unit square the action on the
// field u = x is computable by hand: y_i = integral of d(phi_i)/dx,
// which is -1/2 at the left nodes and +1/2 at the right nodes.
func TestApplyExactOnLinearField2D(t *testing.T) {
	m := mesh.NewCartesian2D(1, 1, 1)
	v := assembled(t, m, 1, nil)
	x := nodalCoordinate(m, 2, 0)
	y := make([]float64, v.FieldSize())
	require.NoError(t, v.AddMultPA(x, y))
	want := []float64{-0.5, 0.5, -0.5, 0.5}
	for comp := 0; comp < 2; comp++ {
		for i, w := range want {
			assert.InDelta(t, w, y[i+4*comp], 1e-14, "comp %d node %d", comp, i)
		}
	}

	// u = y gives the transposed pattern.
	x = nodalCoordinate(m, 2, 1)
	for i := range y {
		y[i] = 0
	}
	require.NoError(t, v.AddMultPA(x, y))
	want = []float64{-0.5, -0.5, 0.5, 0.5}
	for comp := 0; comp < 2; comp++ {
		for i, w := range want {
			assert.InDelta(t, w, y[i+4*comp], 1e-14, "comp %d node %d", comp, i)
		}
	}
}

func TestApplyExactOnLinearField3D(t *testing.T) {
	m := mesh.NewCartesian3D(1, 1, 1, 1)
	v := assembled(t, m, 1, nil)
	x := nodalCoordinate(m, 3, 0)
	y := make([]float64, v.FieldSize())
	require.NoError(t, v.AddMultPA(x, y))
	for comp := 0; comp < 3; comp++ {
		for i := 0; i < 8; i++ {
			want := 0.25
			if i%2 == 0 {
				want = -0.25
			}
			assert.InDelta(t, want, y[i+8*comp], 1e-14, "comp %d node %d", comp, i)
		}
	}
}

// Constant fields are in the kernel of the diffusion operator on any
// mesh, curved included.
func TestConstantFieldInKernel(t *testing.T) {
	cases := []struct {
		name string
		mesh func() *mesh.Mesh
	}{
		{"2D", func() *mesh.Mesh { m := mesh.NewCartesian2D(3, 3, 3); warp2D(m); return m }},
		{"3D", func() *mesh.Mesh { return mesh.NewCartesian3D(2, 2, 2, 2) }},
		{"surface", func() *mesh.Mesh {
			return mesh.NewSurface(2, 2, 2, func(x, y float64) float64 { return 0.3 * math.Sin(x+y) })
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := tc.mesh()
			order := m.Order
			v := assembled(t, m, order, nil)
			n := v.FieldSize()
			x := make([]float64, n)
			for i := range x {
				x[i] = 7.5
			}
			y := make([]float64, n)
			require.NoError(t, v.AddMultPA(x, y))
			for i := range y {
				assert.InDelta(t, 0.0, y[i], 1e-12, "dof %d", i)
			}
		})
	}
}

// Row sums of the element stiffness matrix vanish, so the diagonal of
// each row equals minus the sum of its off-diagonal entries; checked
// here indirectly by comparing the diagonal against the full action on
// unit vectors for an anisotropically scaled mesh.
func TestDiagonalOnStretchedMesh(t *testing.T) {
	m := mesh.NewCartesian2D(2, 1, 1)
	m.SetTransform(func(p []float64) []float64 {
		return []float64{3 * p[0], p[1]}
	})
	v := assembled(t, m, 1, nil)
	n := v.FieldSize()
	diag := make([]float64, n)
	require.NoError(t, v.AssembleDiagonalPA(diag))
	ei := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for k := range ei {
			ei[k] = 0
			y[k] = 0
		}
		ei[i] = 1
		require.NoError(t, v.AddMultPA(ei, y))
		assert.InDelta(t, y[i], diag[i], 1e-13*(1+math.Abs(y[i])))
		assert.Greater(t, diag[i], 0.0)
	}
}
