package pa

// apply2D is the generic runtime-sized 2-D apply kernel: y += A*x per
// element and vector component, via the separable forward pass (B on
// the undifferentiated axis, G on the differentiated one), a pointwise
// symmetric multiply with the payload, and the transposed backward
// pass. The backward pass uses Bt/Gt so it is the exact algebraic
// transpose of the forward pass, which keeps the assembled operator
// symmetric. Local scratch is bounded by the compiled caps so sizes up
// to the injected limits run without allocation.
func apply2D(ne, d1d, q1d, vdim int, b, g, bt, gt, d, x, y []float64, t Target) {
	nq := q1d * q1d
	nd := d1d * d1d
	forEachElement(t, ne, func(e int) {
		var grad [MaxQ1D][MaxQ1D][2]float64
		for c := 0; c < vdim; c++ {
			for qy := 0; qy < q1d; qy++ {
				for qx := 0; qx < q1d; qx++ {
					grad[qy][qx][0] = 0
					grad[qy][qx][1] = 0
				}
			}
			for dy := 0; dy < d1d; dy++ {
				var gradX [MaxQ1D][2]float64
				for qx := 0; qx < q1d; qx++ {
					gradX[qx][0] = 0
					gradX[qx][1] = 0
				}
				for dx := 0; dx < d1d; dx++ {
					s := x[dx+d1d*dy+nd*(c+vdim*e)]
					for qx := 0; qx < q1d; qx++ {
						gradX[qx][0] += s * b[qx*d1d+dx]
						gradX[qx][1] += s * g[qx*d1d+dx]
					}
				}
				for qy := 0; qy < q1d; qy++ {
					wy := b[qy*d1d+dy]
					wDy := g[qy*d1d+dy]
					for qx := 0; qx < q1d; qx++ {
						grad[qy][qx][0] += gradX[qx][1] * wy
						grad[qy][qx][1] += gradX[qx][0] * wDy
					}
				}
			}
			for qy := 0; qy < q1d; qy++ {
				for qx := 0; qx < q1d; qx++ {
					op := loadSymm2(d, qx+qy*q1d, nq, e)
					grad[qy][qx][0], grad[qy][qx][1] = op.MulVec(grad[qy][qx][0], grad[qy][qx][1])
				}
			}
			for qy := 0; qy < q1d; qy++ {
				var gradX [MaxD1D][2]float64
				for dx := 0; dx < d1d; dx++ {
					gradX[dx][0] = 0
					gradX[dx][1] = 0
				}
				for qx := 0; qx < q1d; qx++ {
					gX := grad[qy][qx][0]
					gY := grad[qy][qx][1]
					for dx := 0; dx < d1d; dx++ {
						gradX[dx][0] += gX * gt[dx*q1d+qx]
						gradX[dx][1] += gY * bt[dx*q1d+qx]
					}
				}
				for dy := 0; dy < d1d; dy++ {
					wy := bt[dy*q1d+qy]
					wDy := gt[dy*q1d+qy]
					for dx := 0; dx < d1d; dx++ {
						y[dx+d1d*dy+nd*(c+vdim*e)] += gradX[dx][0]*wy + gradX[dx][1]*wDy
					}
				}
			}
		}
	})
}

// Fixed-size instantiations of apply2D for the common small orders.
// The literal bounds let the compiler unroll the contractions and size
// the scratch exactly; the bodies follow apply2D index for index, one
// function per (D1D, Q1D) pair like the fastpath small-size kernels in
// dense tensor libraries.

func apply2DSized22(ne, vdim int, b, g, bt, gt, d, x, y []float64, t Target) {
	const d1d, q1d = 2, 2
	const nq, nd = q1d * q1d, d1d * d1d
	forEachElement(t, ne, func(e int) {
		var grad [q1d][q1d][2]float64
		for c := 0; c < vdim; c++ {
			for qy := 0; qy < q1d; qy++ {
				for qx := 0; qx < q1d; qx++ {
					grad[qy][qx][0] = 0
					grad[qy][qx][1] = 0
				}
			}
			for dy := 0; dy < d1d; dy++ {
				var gradX [q1d][2]float64
				for dx := 0; dx < d1d; dx++ {
					s := x[dx+d1d*dy+nd*(c+vdim*e)]
					for qx := 0; qx < q1d; qx++ {
						gradX[qx][0] += s * b[qx*d1d+dx]
						gradX[qx][1] += s * g[qx*d1d+dx]
					}
				}
				for qy := 0; qy < q1d; qy++ {
					wy := b[qy*d1d+dy]
					wDy := g[qy*d1d+dy]
					for qx := 0; qx < q1d; qx++ {
						grad[qy][qx][0] += gradX[qx][1] * wy
						grad[qy][qx][1] += gradX[qx][0] * wDy
					}
				}
			}
			for qy := 0; qy < q1d; qy++ {
				for qx := 0; qx < q1d; qx++ {
					op := loadSymm2(d, qx+qy*q1d, nq, e)
					grad[qy][qx][0], grad[qy][qx][1] = op.MulVec(grad[qy][qx][0], grad[qy][qx][1])
				}
			}
			for qy := 0; qy < q1d; qy++ {
				var gradX [d1d][2]float64
				for qx := 0; qx < q1d; qx++ {
					gX := grad[qy][qx][0]
					gY := grad[qy][qx][1]
					for dx := 0; dx < d1d; dx++ {
						gradX[dx][0] += gX * gt[dx*q1d+qx]
						gradX[dx][1] += gY * bt[dx*q1d+qx]
					}
				}
				for dy := 0; dy < d1d; dy++ {
					wy := bt[dy*q1d+qy]
					wDy := gt[dy*q1d+qy]
					for dx := 0; dx < d1d; dx++ {
						y[dx+d1d*dy+nd*(c+vdim*e)] += gradX[dx][0]*wy + gradX[dx][1]*wDy
					}
				}
			}
		}
	})
}

func apply2DSized33(ne, vdim int, b, g, bt, gt, d, x, y []float64, t Target) {
	const d1d, q1d = 3, 3
	const nq, nd = q1d * q1d, d1d * d1d
	forEachElement(t, ne, func(e int) {
		var grad [q1d][q1d][2]float64
		for c := 0; c < vdim; c++ {
			for qy := 0; qy < q1d; qy++ {
				for qx := 0; qx < q1d; qx++ {
					grad[qy][qx][0] = 0
					grad[qy][qx][1] = 0
				}
			}
			for dy := 0; dy < d1d; dy++ {
				var gradX [q1d][2]float64
				for dx := 0; dx < d1d; dx++ {
					s := x[dx+d1d*dy+nd*(c+vdim*e)]
					for qx := 0; qx < q1d; qx++ {
						gradX[qx][0] += s * b[qx*d1d+dx]
						gradX[qx][1] += s * g[qx*d1d+dx]
					}
				}
				for qy := 0; qy < q1d; qy++ {
					wy := b[qy*d1d+dy]
					wDy := g[qy*d1d+dy]
					for qx := 0; qx < q1d; qx++ {
						grad[qy][qx][0] += gradX[qx][1] * wy
						grad[qy][qx][1] += gradX[qx][0] * wDy
					}
				}
			}
			for qy := 0; qy < q1d; qy++ {
				for qx := 0; qx < q1d; qx++ {
					op := loadSymm2(d, qx+qy*q1d, nq, e)
					grad[qy][qx][0], grad[qy][qx][1] = op.MulVec(grad[qy][qx][0], grad[qy][qx][1])
				}
			}
			for qy := 0; qy < q1d; qy++ {
				var gradX [d1d][2]float64
				for qx := 0; qx < q1d; qx++ {
					gX := grad[qy][qx][0]
					gY := grad[qy][qx][1]
					for dx := 0; dx < d1d; dx++ {
						gradX[dx][0] += gX * gt[dx*q1d+qx]
						gradX[dx][1] += gY * bt[dx*q1d+qx]
					}
				}
				for dy := 0; dy < d1d; dy++ {
					wy := bt[dy*q1d+qy]
					wDy := gt[dy*q1d+qy]
					for dx := 0; dx < d1d; dx++ {
						y[dx+d1d*dy+nd*(c+vdim*e)] += gradX[dx][0]*wy + gradX[dx][1]*wDy
					}
				}
			}
		}
	})
}

func apply2DSized44(ne, vdim int, b, g, bt, gt, d, x, y []float64, t Target) {
	const d1d, q1d = 4, 4
	const nq, nd = q1d * q1d, d1d * d1d
	forEachElement(t, ne, func(e int) {
		var grad [q1d][q1d][2]float64
		for c := 0; c < vdim; c++ {
			for qy := 0; qy < q1d; qy++ {
				for qx := 0; qx < q1d; qx++ {
					grad[qy][qx][0] = 0
					grad[qy][qx][1] = 0
				}
			}
			for dy := 0; dy < d1d; dy++ {
				var gradX [q1d][2]float64
				for dx := 0; dx < d1d; dx++ {
					s := x[dx+d1d*dy+nd*(c+vdim*e)]
					for qx := 0; qx < q1d; qx++ {
						gradX[qx][0] += s * b[qx*d1d+dx]
						gradX[qx][1] += s * g[qx*d1d+dx]
					}
				}
				for qy := 0; qy < q1d; qy++ {
					wy := b[qy*d1d+dy]
					wDy := g[qy*d1d+dy]
					for qx := 0; qx < q1d; qx++ {
						grad[qy][qx][0] += gradX[qx][1] * wy
						grad[qy][qx][1] += gradX[qx][0] * wDy
					}
				}
			}
			for qy := 0; qy < q1d; qy++ {
				for qx := 0; qx < q1d; qx++ {
					op := loadSymm2(d, qx+qy*q1d, nq, e)
					grad[qy][qx][0], grad[qy][qx][1] = op.MulVec(grad[qy][qx][0], grad[qy][qx][1])
				}
			}
			for qy := 0; qy < q1d; qy++ {
				var gradX [d1d][2]float64
				for qx := 0; qx < q1d; qx++ {
					gX := grad[qy][qx][0]
					gY := grad[qy][qx][1]
					for dx := 0; dx < d1d; dx++ {
						gradX[dx][0] += gX * gt[dx*q1d+qx]
						gradX[dx][1] += gY * bt[dx*q1d+qx]
					}
				}
				for dy := 0; dy < d1d; dy++ {
					wy := bt[dy*q1d+qy]
					wDy := gt[dy*q1d+qy]
					for dx := 0; dx < d1d; dx++ {
						y[dx+d1d*dy+nd*(c+vdim*e)] += gradX[dx][0]*wy + gradX[dx][1]*wDy
					}
				}
			}
		}
	})
}

func apply2DSized55(ne, vdim int, b, g, bt, gt, d, x, y []float64, t Target) {
	const d1d, q1d = 5, 5
	const nq, nd = q1d * q1d, d1d * d1d
	forEachElement(t, ne, func(e int) {
		var grad [q1d][q1d][2]float64
		for c := 0; c < vdim; c++ {
			for qy := 0; qy < q1d; qy++ {
				for qx := 0; qx < q1d; qx++ {
					grad[qy][qx][0] = 0
					grad[qy][qx][1] = 0
				}
			}
			for dy := 0; dy < d1d; dy++ {
				var gradX [q1d][2]float64
				for dx := 0; dx < d1d; dx++ {
					s := x[dx+d1d*dy+nd*(c+vdim*e)]
					for qx := 0; qx < q1d; qx++ {
						gradX[qx][0] += s * b[qx*d1d+dx]
						gradX[qx][1] += s * g[qx*d1d+dx]
					}
				}
				for qy := 0; qy < q1d; qy++ {
					wy := b[qy*d1d+dy]
					wDy := g[qy*d1d+dy]
					for qx := 0; qx < q1d; qx++ {
						grad[qy][qx][0] += gradX[qx][1] * wy
						grad[qy][qx][1] += gradX[qx][0] * wDy
					}
				}
			}
			for qy := 0; qy < q1d; qy++ {
				for qx := 0; qx < q1d; qx++ {
					op := loadSymm2(d, qx+qy*q1d, nq, e)
					grad[qy][qx][0], grad[qy][qx][1] = op.MulVec(grad[qy][qx][0], grad[qy][qx][1])
				}
			}
			for qy := 0; qy < q1d; qy++ {
				var gradX [d1d][2]float64
				for qx := 0; qx < q1d; qx++ {
					gX := grad[qy][qx][0]
					gY := grad[qy][qx][1]
					for dx := 0; dx < d1d; dx++ {
						gradX[dx][0] += gX * gt[dx*q1d+qx]
						gradX[dx][1] += gY * bt[dx*q1d+qx]
					}
				}
				for dy := 0; dy < d1d; dy++ {
					wy := bt[dy*q1d+qy]
					wDy := gt[dy*q1d+qy]
					for dx := 0; dx < d1d; dx++ {
						y[dx+d1d*dy+nd*(c+vdim*e)] += gradX[dx][0]*wy + gradX[dx][1]*wDy
					}
				}
			}
		}
	})
}
