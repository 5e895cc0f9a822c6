// Package pa implements matrix-free (partial-assembly) evaluation of
// the vector diffusion bilinear form on tensor-product elements: a
// setup kernel fusing quadrature weights, Jacobians, and a scalar
// coefficient into a compact symmetric payload, apply kernels
// evaluating y += A*x by separable 1-D contractions, and a diagonal
// kernel extracting the exact operator diagonal without forming A.
package pa

import "fmt"

// Compile-time caps on the kernel-local buffer sizes. The generic
// kernels allocate stack scratch at these bounds so runtime sizes stay
// allocation-free.
const (
	MaxD1D = 14
	MaxQ1D = 14
)

// Limits bounds the dof and quadrature point counts accepted by the
// kernels. Injected at operator construction rather than read from
// package state; must not exceed the compile-time caps.
type Limits struct {
	MaxD1D, MaxQ1D int
}

// DefaultLimits matches the compile-time caps.
var DefaultLimits = Limits{MaxD1D: MaxD1D, MaxQ1D: MaxQ1D}

// check panics when (d1d, q1d) exceeds the limits; size problems are
// configuration faults, not recoverable errors.
func (l Limits) check(d1d, q1d int) {
	if l.MaxD1D > MaxD1D || l.MaxQ1D > MaxQ1D {
		panic(fmt.Sprintf("pa: limits %+v exceed compiled caps (%d,%d)", l, MaxD1D, MaxQ1D))
	}
	if d1d < 1 || d1d > l.MaxD1D {
		panic(fmt.Sprintf("pa: D1D=%d outside [1,%d]", d1d, l.MaxD1D))
	}
	if q1d < 1 || q1d > l.MaxQ1D {
		panic(fmt.Sprintf("pa: Q1D=%d outside [1,%d]", q1d, l.MaxQ1D))
	}
}
