package pa

import (
	"fmt"
	"math"
)

// The setup kernels fuse the tensor quadrature weights w, the Jacobian
// field j (layout (q, space component, reference axis, e)), and the
// projected coefficient c (length 1 or NQ*NE) into the operator
// payload d: per (q, e) the packed symmetric matrix
//
//	w(q) * c(q,e) * det(J)^-1 * adj(J) * adj(J)^T.
//
// Each element is independent; the loops below are dispatched as one
// parallel map over e.

// setup2D handles dim == 2, sdim == 2.
func setup2D(q1d, ne int, w, j, c, d []float64, t Target) {
	nq := q1d * q1d
	constC := len(c) == 1
	forEachElement(t, ne, func(e int) {
		for q := 0; q < nq; q++ {
			j11 := j[q+nq*(0+2*(0+2*e))]
			j21 := j[q+nq*(1+2*(0+2*e))]
			j12 := j[q+nq*(0+2*(1+2*e))]
			j22 := j[q+nq*(1+2*(1+2*e))]

			c1 := c[0]
			if !constC {
				c1 = c[q+nq*e]
			}
			cDetJ := w[q] * c1 / (j11*j22 - j21*j12)

			var s Symm2
			s.Set(0, 0, cDetJ*(j12*j12+j22*j22))
			s.Set(0, 1, -cDetJ*(j12*j11+j22*j21))
			s.Set(1, 1, cDetJ*(j11*j11+j21*j21))
			storeSymm2(d, q, nq, e, s)
		}
	})
}

// setupSurface2D handles dim == 2 embedded in 3-space. The Jacobian is
// 3x2, so the metric comes from the first fundamental form E, F, G
// with 1/sqrt(EG - F^2) in place of 1/det(J).
func setupSurface2D(q1d, ne int, w, j, c, d []float64, t Target) {
	nq := q1d * q1d
	constC := len(c) == 1
	forEachElement(t, ne, func(e int) {
		for q := 0; q < nq; q++ {
			j11 := j[q+nq*(0+3*(0+2*e))]
			j21 := j[q+nq*(1+3*(0+2*e))]
			j31 := j[q+nq*(2+3*(0+2*e))]
			j12 := j[q+nq*(0+3*(1+2*e))]
			j22 := j[q+nq*(1+3*(1+2*e))]
			j32 := j[q+nq*(2+3*(1+2*e))]

			fE := j11*j11 + j21*j21 + j31*j31
			fG := j12*j12 + j22*j22 + j32*j32
			fF := j11*j12 + j21*j22 + j31*j32
			iw := 1.0 / math.Sqrt(fE*fG-fF*fF)

			c1 := c[0]
			if !constC {
				c1 = c[q+nq*e]
			}
			alpha := w[q] * c1 * iw

			var s Symm2
			s.Set(0, 0, alpha*fG)
			s.Set(0, 1, -alpha*fF)
			s.Set(1, 1, alpha*fE)
			storeSymm2(d, q, nq, e, s)
		}
	})
}

// setup3D handles dim == 3: explicit 3x3 adjugate and determinant.
func setup3D(q1d, ne int, w, j, c, d []float64, t Target) {
	nq := q1d * q1d * q1d
	constC := len(c) == 1
	forEachElement(t, ne, func(e int) {
		for q := 0; q < nq; q++ {
			j11 := j[q+nq*(0+3*(0+3*e))]
			j21 := j[q+nq*(1+3*(0+3*e))]
			j31 := j[q+nq*(2+3*(0+3*e))]
			j12 := j[q+nq*(0+3*(1+3*e))]
			j22 := j[q+nq*(1+3*(1+3*e))]
			j32 := j[q+nq*(2+3*(1+3*e))]
			j13 := j[q+nq*(0+3*(2+3*e))]
			j23 := j[q+nq*(1+3*(2+3*e))]
			j33 := j[q+nq*(2+3*(2+3*e))]

			detJ := j11*(j22*j33-j32*j23) -
				j21*(j12*j33-j32*j13) +
				j31*(j12*j23-j22*j13)

			c1 := c[0]
			if !constC {
				c1 = c[q+nq*e]
			}
			cDetJ := w[q] * c1 / detJ

			// adj(J)
			a11 := j22*j33 - j23*j32
			a12 := j32*j13 - j12*j33
			a13 := j12*j23 - j22*j13
			a21 := j31*j23 - j21*j33
			a22 := j11*j33 - j13*j31
			a23 := j21*j13 - j11*j23
			a31 := j21*j32 - j31*j22
			a32 := j31*j12 - j11*j32
			a33 := j11*j22 - j12*j21

			// detJ J^-1 J^-T = (1/detJ) adj(J) adj(J)^T
			var s Symm3
			s.Set(0, 0, cDetJ*(a11*a11+a12*a12+a13*a13))
			s.Set(1, 0, cDetJ*(a11*a21+a12*a22+a13*a23))
			s.Set(2, 0, cDetJ*(a11*a31+a12*a32+a13*a33))
			s.Set(1, 1, cDetJ*(a21*a21+a22*a22+a23*a23))
			s.Set(2, 1, cDetJ*(a21*a31+a22*a32+a23*a33))
			s.Set(2, 2, cDetJ*(a31*a31+a32*a32+a33*a33))
			storeSymm3(d, q, nq, e, s)
		}
	})
}

// assembleSetup dispatches on (dim, sdim). Any dimension outside {2,3}
// is a fatal configuration fault.
func assembleSetup(dim, sdim, q1d, ne int, w, j, c, d []float64, t Target) {
	switch {
	case dim == 2 && sdim == 2:
		setup2D(q1d, ne, w, j, c, d, t)
	case dim == 2 && sdim == 3:
		setupSurface2D(q1d, ne, w, j, c, d, t)
	case dim == 3 && sdim == 3:
		setup3D(q1d, ne, w, j, c, d, t)
	default:
		panic(fmt.Sprintf("pa: dimension not supported: dim=%d sdim=%d", dim, sdim))
	}
}
