package pa

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/finite-element-analysis/mfem/coefficient"
	"github.com/finite-element-analysis/mfem/mesh"
)

// warp2D perturbs a 2-D mesh so Jacobians vary per quadrature point.
func warp2D(m *mesh.Mesh) {
	m.SetTransform(func(p []float64) []float64 {
		x, y := p[0], p[1]
		s := 0.04 * math.Sin(math.Pi*x) * math.Sin(math.Pi*y)
		return []float64{x + s, y - s}
	})
}

func randomField(rng *rand.Rand, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = rng.Float64()*2 - 1
	}
	return x
}

func assembled(t *testing.T, m *mesh.Mesh, order int, q any, opts ...Option) *VectorDiffusionIntegrator {
	t.Helper()
	v := NewVectorDiffusionIntegrator(q, opts...)
	require.NoError(t, v.AssemblePA(Space{Mesh: m, Order: order}))
	return v
}

func TestApplySymmetry(t *testing.T) {
	coeff := coefficient.Function(func(p []float64) float64 { return 1 + p[0] + p[1]*p[1] })
	cases := []struct {
		name  string
		mesh  func() *mesh.Mesh
		order int
	}{
		{"2D_order2", func() *mesh.Mesh { m := mesh.NewCartesian2D(3, 3, 2); warp2D(m); return m }, 2},
		{"2D_order3", func() *mesh.Mesh { m := mesh.NewCartesian2D(2, 3, 3); warp2D(m); return m }, 3},
		{"3D_order1", func() *mesh.Mesh { return mesh.NewCartesian3D(2, 2, 2, 1) }, 1},
		{"3D_order2", func() *mesh.Mesh { return mesh.NewCartesian3D(2, 2, 1, 2) }, 2},
		{"surface", func() *mesh.Mesh {
			return mesh.NewSurface(3, 3, 2, func(x, y float64) float64 { return 0.2 * x * y })
		}, 2},
	}
	rng := rand.New(rand.NewSource(7))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := assembled(t, tc.mesh(), tc.order, coeff)
			n := v.FieldSize()
			x := randomField(rng, n)
			z := randomField(rng, n)
			ax := make([]float64, n)
			az := make([]float64, n)
			require.NoError(t, v.AddMultPA(x, ax))
			require.NoError(t, v.AddMultPA(z, az))
			lhs := floats.Dot(ax, z)
			rhs := floats.Dot(x, az)
			assert.InEpsilon(t, lhs, rhs, 1e-12, "<Ax,z>=%v <x,Az>=%v", lhs, rhs)
		})
	}
}

func TestDiagonalMatchesApply(t *testing.T) {
	coeff := coefficient.Function(func(p []float64) float64 { return 2 + p[0] })
	cases := []struct {
		name  string
		mesh  func() *mesh.Mesh
		order int
	}{
		{"2D", func() *mesh.Mesh { m := mesh.NewCartesian2D(2, 2, 2); warp2D(m); return m }, 2},
		{"3D", func() *mesh.Mesh { return mesh.NewCartesian3D(2, 1, 1, 1) }, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := assembled(t, tc.mesh(), tc.order, coeff)
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
				assert.InDelta(t, y[i], diag[i], 1e-12*(1+math.Abs(y[i])), "dof %d", i)
			}
		})
	}
}

func TestConstantCoefficientReduction(t *testing.T) {
	const c = 3.25
	for _, tc := range []struct {
		name string
		mesh func() *mesh.Mesh
	}{
		{"2D", func() *mesh.Mesh { m := mesh.NewCartesian2D(3, 2, 2); warp2D(m); return m }},
		{"3D", func() *mesh.Mesh { return mesh.NewCartesian3D(2, 2, 2, 1) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			vConst := assembled(t, tc.mesh(), 2, coefficient.Constant(c))
			vField := assembled(t, tc.mesh(), 2, coefficient.Function(func([]float64) float64 { return c }))
			require.Equal(t, len(vConst.paData), len(vField.paData))
			for i := range vConst.paData {
				assert.InDelta(t, vConst.paData[i], vField.paData[i],
					1e-14*(1+math.Abs(vConst.paData[i])))
			}
		})
	}
}

func TestUnsupportedDimensionPanics(t *testing.T) {
	v := NewVectorDiffusionIntegrator(nil)
	oneD := &mesh.Mesh{Dim: 1, SDim: 1, NE: 4, Order: 1}
	assert.Panics(t, func() { _ = v.AssemblePA(Space{Mesh: oneD, Order: 1}) })

	embedded1D := &mesh.Mesh{Dim: 1, SDim: 2, NE: 4, Order: 1}
	assert.Panics(t, func() { _ = v.AssemblePA(Space{Mesh: embedded1D, Order: 1}) })
}

func TestNonScalarCoefficientPanics(t *testing.T) {
	vq := coefficient.VectorFunction{Dim: 2, F: func(p, v []float64) { v[0], v[1] = 1, 1 }}
	assert.Panics(t, func() { NewVectorDiffusionIntegrator(vq) })
}

func TestLimitsFault(t *testing.T) {
	m := mesh.NewCartesian2D(2, 2, 3)
	v := NewVectorDiffusionIntegrator(nil, WithLimits(Limits{MaxD1D: 3, MaxQ1D: 3}))
	// Order 3 needs D1D = 4, beyond the injected limit.
	assert.Panics(t, func() { _ = v.AssemblePA(Space{Mesh: m, Order: 3}) })

	assert.Panics(t, func() {
		w := NewVectorDiffusionIntegrator(nil, WithLimits(Limits{MaxD1D: MaxD1D + 1, MaxQ1D: MaxQ1D}))
		_ = w.AssemblePA(Space{Mesh: m, Order: 3})
	})
}

func TestHostParallelMatchesSerial(t *testing.T) {
	coeff := coefficient.Function(func(p []float64) float64 { return 1 + p[0]*p[1] })
	m := mesh.NewCartesian2D(4, 4, 2)
	warp2D(m)
	vs := assembled(t, m, 2, coeff, WithTarget(Serial))
	vp := assembled(t, m, 2, coeff, WithTarget(HostParallel))

	rng := rand.New(rand.NewSource(3))
	n := vs.FieldSize()
	x := randomField(rng, n)
	ys := make([]float64, n)
	yp := make([]float64, n)
	require.NoError(t, vs.AddMultPA(x, ys))
	require.NoError(t, vp.AddMultPA(x, yp))
	for i := range ys {
		assert.InDelta(t, ys[i], yp[i], 1e-13*(1+math.Abs(ys[i])))
	}

	ds := make([]float64, n)
	dp := make([]float64, n)
	require.NoError(t, vs.AssembleDiagonalPA(ds))
	require.NoError(t, vp.AssembleDiagonalPA(dp))
	for i := range ds {
		assert.InDelta(t, ds[i], dp[i], 1e-13*(1+math.Abs(ds[i])))
	}
}

func TestFlatSurfaceMatchesPlanar(t *testing.T) {
	// A surface with zero height has the same first fundamental form as
	// the planar mesh, so the payloads must agree.
	flat := mesh.NewSurface(2, 2, 2, func(x, y float64) float64 { return 0 })
	planar := mesh.NewCartesian2D(2, 2, 2)
	vFlat := assembled(t, flat, 2, coefficient.Constant(1))
	vPlanar := assembled(t, planar, 2, coefficient.Constant(1))
	require.Equal(t, len(vPlanar.paData), len(vFlat.paData))
	for i := range vFlat.paData {
		assert.InDelta(t, vPlanar.paData[i], vFlat.paData[i],
			1e-13*(1+math.Abs(vPlanar.paData[i])))
	}
	// The surface field carries three components per node.
	assert.Equal(t, 3*vPlanar.FieldSize()/2, vFlat.FieldSize())
}

func TestScalarFieldVDim1(t *testing.T) {
	// VDim 1 is the scalar diffusion degenerate case of the same
	// kernels: each component of a VDim-2 solve must match the scalar
	// solve on the same field.
	coeff := coefficient.Function(func(p []float64) float64 { return 1 + p[1] })
	m := mesh.NewCartesian2D(2, 2, 2)
	warp2D(m)

	scalar := NewVectorDiffusionIntegrator(coeff)
	require.NoError(t, scalar.AssemblePA(Space{Mesh: m, Order: 2, VDim: 1}))
	vector := assembled(t, m, 2, coeff)

	rng := rand.New(rand.NewSource(23))
	ns := scalar.FieldSize()
	require.Equal(t, vector.FieldSize(), 2*ns)
	xs := randomField(rng, ns)
	ys := make([]float64, ns)
	require.NoError(t, scalar.AddMultPA(xs, ys))

	// Duplicate the scalar field into both components.
	nd := m.NDofElem()
	xv := make([]float64, 2*ns)
	yv := make([]float64, 2*ns)
	for e := 0; e < m.NE; e++ {
		for i := 0; i < nd; i++ {
			v := xs[i+nd*e]
			xv[i+nd*(0+2*e)] = v
			xv[i+nd*(1+2*e)] = v
		}
	}
	require.NoError(t, vector.AddMultPA(xv, yv))
	for e := 0; e < m.NE; e++ {
		for i := 0; i < nd; i++ {
			want := ys[i+nd*e]
			assert.InDelta(t, want, yv[i+nd*(0+2*e)], 1e-13*(1+math.Abs(want)))
			assert.InDelta(t, want, yv[i+nd*(1+2*e)], 1e-13*(1+math.Abs(want)))
		}
	}
}

func TestApplyAccumulates(t *testing.T) {
	m := mesh.NewCartesian2D(2, 2, 1)
	v := assembled(t, m, 1, nil)
	n := v.FieldSize()
	rng := rand.New(rand.NewSource(11))
	x := randomField(rng, n)
	once := make([]float64, n)
	twice := make([]float64, n)
	require.NoError(t, v.AddMultPA(x, once))
	require.NoError(t, v.AddMultPA(x, twice))
	require.NoError(t, v.AddMultPA(x, twice))
	for i := range once {
		assert.InDelta(t, 2*once[i], twice[i], 1e-13*(1+math.Abs(once[i])))
	}
}

func TestApplyBeforeAssemblePanics(t *testing.T) {
	v := NewVectorDiffusionIntegrator(nil)
	assert.Panics(t, func() { _ = v.AddMultPA(nil, nil) })
}

// recordingBackend counts the calls reaching its operator so tests can
// tell which path the integrator routed to.
type recordingBackend struct {
	usable bool
	op     *recordingOperator
}

type recordingOperator struct {
	applies, diagonals, frees int
}

func (b *recordingBackend) Usable() bool { return b.usable }

func (b *recordingBackend) AssembleVectorDiffusion(p BackendProblem) (BackendOperator, error) {
	b.op = &recordingOperator{}
	return b.op, nil
}

func (o *recordingOperator) AddMult(x, y []float64) error       { o.applies++; return nil }
func (o *recordingOperator) AssembleDiagonal(d []float64) error { o.diagonals++; return nil }
func (o *recordingOperator) Free()                              { o.frees++ }

func TestReassembleAfterBackendLost(t *testing.T) {
	m := mesh.NewCartesian2D(2, 2, 1)
	warp2D(m)
	be := &recordingBackend{usable: true}
	v := NewVectorDiffusionIntegrator(nil, WithBackend(be))
	require.NoError(t, v.AssemblePA(Space{Mesh: m, Order: 1}))
	stale := be.op

	// Backend unusable on the next assembly: the integrator must fall
	// back to the native kernels and release the device operator.
	be.usable = false
	require.NoError(t, v.AssemblePA(Space{Mesh: m, Order: 1}))
	assert.Equal(t, 1, stale.frees)

	n := v.FieldSize()
	rng := rand.New(rand.NewSource(29))
	x := randomField(rng, n)
	y := make([]float64, n)
	diag := make([]float64, n)
	require.NoError(t, v.AddMultPA(x, y))
	require.NoError(t, v.AssembleDiagonalPA(diag))
	assert.Equal(t, 0, stale.applies, "stale device operator received an apply")
	assert.Equal(t, 0, stale.diagonals, "stale device operator received a diagonal")

	// The native path actually produced output.
	ref := assembled(t, m, 1, nil)
	want := make([]float64, n)
	require.NoError(t, ref.AddMultPA(x, want))
	for i := range want {
		assert.InDelta(t, want[i], y[i], 1e-14*(1+math.Abs(want[i])))
	}
}

func TestDefaultRuleFollowsMapOrder(t *testing.T) {
	// The default rule integrates an order 2p + mapOrder - 1 integrand,
	// so a higher-order geometric map raises the point count even for a
	// low-order basis.
	curved := mesh.NewCartesian2D(2, 2, 3)
	v := assembled(t, curved, 1, nil)
	assert.Equal(t, 3, v.q1d)

	affine := mesh.NewCartesian2D(2, 2, 1)
	va := assembled(t, affine, 1, nil)
	assert.Equal(t, 2, va.q1d)
}
