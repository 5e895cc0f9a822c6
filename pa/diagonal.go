package pa

import "fmt"

// diagonal2D accumulates the exact operator diagonal for dim == 2 into
// y (+= semantics, layout (dx, dy, component, element)). The diagonal
// entry of dof (dx, dy) is the quadrature sum of grad(phi) . Op .
// grad(phi) for that basis function's own gradient, which factors into
// a qy contraction followed by a qx contraction; the three payload
// slots carry the (B*B), (B*G + G*B), and (G*G) pairings.
func diagonal2D(ne, d1d, q1d, vdim int, b, g, d, y []float64, t Target) {
	nq := q1d * q1d
	nd := d1d * d1d
	forEachElement(t, ne, func(e int) {
		var qd0, qd1, qd2 [MaxQ1D][MaxD1D]float64
		for qx := 0; qx < q1d; qx++ {
			for dy := 0; dy < d1d; dy++ {
				qd0[qx][dy] = 0
				qd1[qx][dy] = 0
				qd2[qx][dy] = 0
				for qy := 0; qy < q1d; qy++ {
					op := loadSymm2(d, qx+qy*q1d, nq, e)
					by := b[qy*d1d+dy]
					gy := g[qy*d1d+dy]
					qd0[qx][dy] += by * by * op.At(0, 0)
					qd1[qx][dy] += by * gy * op.At(0, 1)
					qd2[qx][dy] += gy * gy * op.At(1, 1)
				}
			}
		}
		for dy := 0; dy < d1d; dy++ {
			for dx := 0; dx < d1d; dx++ {
				temp := 0.0
				for qx := 0; qx < q1d; qx++ {
					bx := b[qx*d1d+dx]
					gx := g[qx*d1d+dx]
					temp += gx*gx*qd0[qx][dy] +
						2*gx*bx*qd1[qx][dy] +
						bx*bx*qd2[qx][dy]
				}
				for c := 0; c < vdim; c++ {
					y[dx+d1d*dy+nd*(c+vdim*e)] += temp
				}
			}
		}
	})
}

// diagonal3D accumulates the exact operator diagonal for dim == 3. All
// (i, j) reference-axis pairs are enumerated; each pair selects the
// payload slot through the symmetric packing and applies the derivative
// table on axis i (left) and axis j (right), the value table elsewhere,
// in three nested 1-D contractions (z, then y, then x).
func diagonal3D(ne, d1d, q1d, vdim int, b, g, d, y []float64, t Target) {
	const dim = 3
	nq := q1d * q1d * q1d
	nd := d1d * d1d * d1d
	forEachElement(t, ne, func(e int) {
		var qqd [MaxQ1D][MaxQ1D][MaxD1D]float64
		var qdd [MaxQ1D][MaxD1D][MaxD1D]float64
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				// contraction along z
				for qx := 0; qx < q1d; qx++ {
					for qy := 0; qy < q1d; qy++ {
						for dz := 0; dz < d1d; dz++ {
							qqd[qx][qy][dz] = 0
							for qz := 0; qz < q1d; qz++ {
								op := loadSymm3(d, qx+(qy+qz*q1d)*q1d, nq, e)
								bz := b[qz*d1d+dz]
								gz := g[qz*d1d+dz]
								l, r := bz, bz
								if i == 2 {
									l = gz
								}
								if j == 2 {
									r = gz
								}
								qqd[qx][qy][dz] += l * op.At(i, j) * r
							}
						}
					}
				}
				// contraction along y
				for qx := 0; qx < q1d; qx++ {
					for dz := 0; dz < d1d; dz++ {
						for dy := 0; dy < d1d; dy++ {
							qdd[qx][dy][dz] = 0
							for qy := 0; qy < q1d; qy++ {
								by := b[qy*d1d+dy]
								gy := g[qy*d1d+dy]
								l, r := by, by
								if i == 1 {
									l = gy
								}
								if j == 1 {
									r = gy
								}
								qdd[qx][dy][dz] += l * qqd[qx][qy][dz] * r
							}
						}
					}
				}
				// contraction along x
				for dz := 0; dz < d1d; dz++ {
					for dy := 0; dy < d1d; dy++ {
						for dx := 0; dx < d1d; dx++ {
							temp := 0.0
							for qx := 0; qx < q1d; qx++ {
								bx := b[qx*d1d+dx]
								gx := g[qx*d1d+dx]
								l, r := bx, bx
								if i == 0 {
									l = gx
								}
								if j == 0 {
									r = gx
								}
								temp += l * qdd[qx][dy][dz] * r
							}
							for c := 0; c < vdim; c++ {
								y[dx+d1d*(dy+d1d*dz)+nd*(c+vdim*e)] += temp
							}
						}
					}
				}
			}
		}
	})
}

// assembleDiagonal dispatches on dim; any dimension outside {2,3} is a
// fatal configuration fault.
func assembleDiagonal(dim, d1d, q1d, vdim, ne int, b, g, d, y []float64, t Target) {
	switch dim {
	case 2:
		diagonal2D(ne, d1d, q1d, vdim, b, g, d, y, t)
	case 3:
		diagonal3D(ne, d1d, q1d, vdim, b, g, d, y, t)
	default:
		panic(fmt.Sprintf("pa: dimension not implemented: dim=%d", dim))
	}
}
