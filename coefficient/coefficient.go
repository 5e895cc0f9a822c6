// Package coefficient provides the scalar coefficient abstraction
// consumed by the partial-assembly setup kernels: either a single
// global constant or one value per quadrature point per element.
package coefficient

import (
	"fmt"

	"github.com/finite-element-analysis/mfem/element"
	"github.com/finite-element-analysis/mfem/mesh"
)

// Coefficient evaluates to one scalar per spatial point.
type Coefficient interface {
	// Eval returns the value at physical point p (length SDim).
	Eval(p []float64) float64
	// IsConstant reports whether Eval is independent of position,
	// enabling the compressed single-value projection.
	IsConstant() bool
}

// Constant is a spatially constant scalar coefficient.
type Constant float64

func (c Constant) Eval([]float64) float64 { return float64(c) }
func (c Constant) IsConstant() bool       { return true }

// Function is a space-dependent scalar coefficient.
type Function func(p []float64) float64

func (f Function) Eval(p []float64) float64 { return f(p) }
func (f Function) IsConstant() bool         { return false }

// VectorFunction is a vector-valued coefficient. It exists so callers
// can express coupled problems, but the partial-assembly vector
// diffusion path supports scalar coefficients only and rejects it as a
// configuration fault.
type VectorFunction struct {
	Dim int
	F   func(p, v []float64)
}

// Project evaluates c on the tensor quadrature space of (m, r) and
// returns the compressed storage: a length-1 slice when c is constant,
// otherwise NQ*NE values in (point, element) layout.
func Project(c Coefficient, m *mesh.Mesh, r element.Rule) []float64 {
	if c == nil {
		return []float64{1.0}
	}
	if c.IsConstant() {
		return []float64{c.Eval(make([]float64, m.SDim))}
	}
	q1d := r.Size()
	nq := q1d
	for d := 1; d < m.Dim; d++ {
		nq *= q1d
	}
	X := m.QuadraturePoints(r)
	vals := make([]float64, nq*m.NE)
	p := make([]float64, m.SDim)
	for e := 0; e < m.NE; e++ {
		for q := 0; q < nq; q++ {
			for cc := 0; cc < m.SDim; cc++ {
				p[cc] = X[q+nq*(cc+m.SDim*e)]
			}
			vals[q+nq*e] = c.Eval(p)
		}
	}
	return vals
}

// Verify panics when a projected value buffer does not match the
// expected compressed or full size.
func Verify(vals []float64, nq, ne int) {
	if len(vals) != 1 && len(vals) != nq*ne {
		panic(fmt.Sprintf("coefficient: projected size %d, want 1 or %d", len(vals), nq*ne))
	}
}
