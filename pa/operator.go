package pa

import (
	"fmt"

	"github.com/finite-element-analysis/mfem/coefficient"
	"github.com/finite-element-analysis/mfem/element"
	"github.com/finite-element-analysis/mfem/mesh"
)

// Space pairs a mesh with a tensor-product basis order and a vector
// dimension. It is the narrow slice of a finite element space the
// partial-assembly kernels need: the surrounding assembly layer owns
// global numbering and boundary conditions.
type Space struct {
	Mesh  *mesh.Mesh
	Order int
	// VDim is the number of field components; 0 means the space
	// dimension of the mesh.
	VDim int
}

// Backend is an alternate accelerated assembly path. When a usable
// backend is attached to an integrator, Setup, Apply, and Diagonal all
// delegate to it and the host payload is never built.
type Backend interface {
	Usable() bool
	AssembleVectorDiffusion(p BackendProblem) (BackendOperator, error)
}

// BackendProblem carries everything a backend needs to assemble the
// operator: sizes, shape tables, tensor weights, Jacobians, and the
// compressed coefficient values, all in the layouts of this package.
type BackendProblem struct {
	Dim, SDim, NE     int
	D1D, Q1D, VDim    int
	Maps              *element.DofToQuad
	Weights, J, Coeff []float64
}

// BackendOperator is an assembled device-side operator.
type BackendOperator interface {
	AddMult(x, y []float64) error
	AssembleDiagonal(diag []float64) error
	Free()
}

// VectorDiffusionIntegrator evaluates the vector-valued diffusion
// bilinear form matrix-free. AssemblePA builds the per-quadrature-point
// payload once; AddMultPA and AssembleDiagonalPA then read it on every
// call. The payload is owned by the integrator and rebuilt by calling
// AssemblePA again after a mesh or coefficient change.
type VectorDiffusionIntegrator struct {
	coeff        coefficient.Coefficient
	rule         element.Rule
	hasRule      bool
	limits       Limits
	target       Target
	backend      Backend
	forceGeneric bool

	dim, sdim, ne  int
	d1d, q1d, vdim int
	maps           *element.DofToQuad
	paData         []float64
	apply          applyFn
	devOp          BackendOperator
	assembled      bool
}

// Option configures an integrator at construction.
type Option func(*VectorDiffusionIntegrator)

// WithRule overrides the default 1-D quadrature rule.
func WithRule(r element.Rule) Option {
	return func(v *VectorDiffusionIntegrator) { v.rule, v.hasRule = r, true }
}

// WithLimits overrides the kernel size limits.
func WithLimits(l Limits) Option {
	return func(v *VectorDiffusionIntegrator) { v.limits = l }
}

// WithTarget selects the execution target of the native kernels.
func WithTarget(t Target) Option {
	return func(v *VectorDiffusionIntegrator) { v.target = t }
}

// WithBackend attaches an alternate accelerated backend.
func WithBackend(b Backend) Option {
	return func(v *VectorDiffusionIntegrator) { v.backend = b }
}

// withForceGeneric bypasses the specialized kernel registry; used by
// tests to cross-check the specialized and generic paths.
func withForceGeneric() Option {
	return func(v *VectorDiffusionIntegrator) { v.forceGeneric = true }
}

// NewVectorDiffusionIntegrator creates the integrator for a scalar
// coefficient q (nil means the unit coefficient). Vector- or
// matrix-valued coefficients are a configuration fault: the
// partial-assembly vector diffusion path is componentwise and supports
// scalar coefficients only.
func NewVectorDiffusionIntegrator(q any, opts ...Option) *VectorDiffusionIntegrator {
	v := &VectorDiffusionIntegrator{limits: DefaultLimits, target: Serial}
	switch c := q.(type) {
	case nil:
	case coefficient.Coefficient:
		v.coeff = c
	default:
		panic(fmt.Sprintf("pa: only scalar coefficients are supported for "+
			"partial assembly of VectorDiffusionIntegrator, got %T", q))
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// AssemblePA builds the operator payload for the given space. Returns
// an error only from the accelerated backend; all configuration
// problems panic.
func (v *VectorDiffusionIntegrator) AssemblePA(s Space) error {
	m := s.Mesh
	if m.Dim != 2 && m.Dim != 3 {
		panic(fmt.Sprintf("pa: dim=%d not supported in vector diffusion setup", m.Dim))
	}
	if m.SDim != m.Dim && !(m.Dim == 2 && m.SDim == 3) {
		panic(fmt.Sprintf("pa: embedding dim=%d sdim=%d not supported", m.Dim, m.SDim))
	}
	v.dim, v.sdim, v.ne = m.Dim, m.SDim, m.NE
	v.vdim = s.VDim
	if v.vdim == 0 {
		v.vdim = m.SDim
	}
	if !v.hasRule {
		// Default rule integrates an order 2p + mapOrder - 1 integrand
		// exactly: n-point Gauss is exact to degree 2n-1.
		v.rule = element.GaussLegendre(s.Order + (m.Order+1)/2)
	}
	v.d1d = s.Order + 1
	v.q1d = v.rule.Size()
	v.limits.check(v.d1d, v.q1d)

	v.maps = element.NewDofToQuad(element.NewBasis1D(s.Order), v.rule)
	v.maps.Verify()

	geom := m.GeometricFactors(v.rule)
	w := mesh.TensorWeights(v.rule, v.dim)
	c := coefficient.Project(v.coeff, m, v.rule)

	nq := geom.NQ
	coefficient.Verify(c, nq, v.ne)

	if v.backend != nil && v.backend.Usable() {
		if v.devOp != nil {
			v.devOp.Free()
		}
		op, err := v.backend.AssembleVectorDiffusion(BackendProblem{
			Dim: v.dim, SDim: v.sdim, NE: v.ne,
			D1D: v.d1d, Q1D: v.q1d, VDim: v.vdim,
			Maps: v.maps, Weights: w, J: geom.J, Coeff: c,
		})
		if err != nil {
			return fmt.Errorf("backend assembly failed: %w", err)
		}
		v.devOp = op
		v.paData = nil
		v.assembled = true
		return nil
	}

	if v.devOp != nil {
		v.devOp.Free()
		v.devOp = nil
	}
	symm := Symm2Slots
	if v.dim == 3 {
		symm = Symm3Slots
	}
	v.paData = make([]float64, nq*symm*v.ne)
	assembleSetup(v.dim, v.sdim, v.q1d, v.ne, w, geom.J, c, v.paData, v.target)
	v.apply = selectApply(v.dim, v.sdim, v.d1d, v.q1d, v.forceGeneric)
	v.assembled = true
	return nil
}

// FieldSize returns the expected length of the element-local field
// vectors consumed and produced by AddMultPA.
func (v *VectorDiffusionIntegrator) FieldSize() int {
	nd := v.d1d
	for d := 1; d < v.dim; d++ {
		nd *= v.d1d
	}
	return nd * v.vdim * v.ne
}

// AddMultPA accumulates y += A*x on element-local vectors with layout
// (dof, component, element). It never overwrites y, so multiple
// integrators may contribute to one output.
func (v *VectorDiffusionIntegrator) AddMultPA(x, y []float64) error {
	v.checkAssembled()
	if len(x) != v.FieldSize() || len(y) != v.FieldSize() {
		panic(fmt.Sprintf("pa: field size mismatch: len(x)=%d len(y)=%d want %d",
			len(x), len(y), v.FieldSize()))
	}
	if v.devOp != nil {
		if err := v.devOp.AddMult(x, y); err != nil {
			return fmt.Errorf("backend apply failed: %w", err)
		}
		return nil
	}
	v.apply(v.ne, v.vdim, v.maps.B, v.maps.G, v.maps.Bt, v.maps.Gt, v.paData, x, y, v.target)
	return nil
}

// AssembleDiagonalPA accumulates the exact operator diagonal into diag
// (same layout and size as the field vectors).
func (v *VectorDiffusionIntegrator) AssembleDiagonalPA(diag []float64) error {
	v.checkAssembled()
	if len(diag) != v.FieldSize() {
		panic(fmt.Sprintf("pa: diagonal size mismatch: len=%d want %d", len(diag), v.FieldSize()))
	}
	if v.devOp != nil {
		if err := v.devOp.AssembleDiagonal(diag); err != nil {
			return fmt.Errorf("backend diagonal failed: %w", err)
		}
		return nil
	}
	assembleDiagonal(v.dim, v.d1d, v.q1d, v.vdim, v.ne, v.maps.B, v.maps.G, v.paData, diag, v.target)
	return nil
}

// Free releases any backend resources held by the integrator.
func (v *VectorDiffusionIntegrator) Free() {
	if v.devOp != nil {
		v.devOp.Free()
		v.devOp = nil
	}
}

func (v *VectorDiffusionIntegrator) checkAssembled() {
	if !v.assembled {
		panic("pa: AssemblePA must be called before apply or diagonal")
	}
}
