package pa

// apply3D is the runtime-sized 3-D apply kernel. Same structure as
// apply2D with one more contraction axis: the forward pass also carries
// the interpolated value so all three gradient components are available
// at each point, the pointwise stage is a symmetric 3x3 multiply, and
// the backward pass contracts with the transposed tables. The vector
// components are independent (block-diagonal operator for a scalar
// coefficient), so the component loop simply reruns the scalar
// contraction.
func apply3D(ne, d1d, q1d, vdim int, b, g, bt, gt, d, x, y []float64, t Target) {
	nq := q1d * q1d * q1d
	nd := d1d * d1d * d1d
	forEachElement(t, ne, func(e int) {
		var grad [MaxQ1D][MaxQ1D][MaxQ1D][3]float64
		for c := 0; c < vdim; c++ {
			for qz := 0; qz < q1d; qz++ {
				for qy := 0; qy < q1d; qy++ {
					for qx := 0; qx < q1d; qx++ {
						grad[qz][qy][qx][0] = 0
						grad[qz][qy][qx][1] = 0
						grad[qz][qy][qx][2] = 0
					}
				}
			}
			for dz := 0; dz < d1d; dz++ {
				var gradXY [MaxQ1D][MaxQ1D][3]float64
				for qy := 0; qy < q1d; qy++ {
					for qx := 0; qx < q1d; qx++ {
						gradXY[qy][qx][0] = 0
						gradXY[qy][qx][1] = 0
						gradXY[qy][qx][2] = 0
					}
				}
				for dy := 0; dy < d1d; dy++ {
					var gradX [MaxQ1D][2]float64
					for qx := 0; qx < q1d; qx++ {
						gradX[qx][0] = 0
						gradX[qx][1] = 0
					}
					for dx := 0; dx < d1d; dx++ {
						s := x[dx+d1d*(dy+d1d*dz)+nd*(c+vdim*e)]
						for qx := 0; qx < q1d; qx++ {
							gradX[qx][0] += s * b[qx*d1d+dx]
							gradX[qx][1] += s * g[qx*d1d+dx]
						}
					}
					for qy := 0; qy < q1d; qy++ {
						wy := b[qy*d1d+dy]
						wDy := g[qy*d1d+dy]
						for qx := 0; qx < q1d; qx++ {
							wx := gradX[qx][0]
							wDx := gradX[qx][1]
							gradXY[qy][qx][0] += wDx * wy
							gradXY[qy][qx][1] += wx * wDy
							gradXY[qy][qx][2] += wx * wy
						}
					}
				}
				for qz := 0; qz < q1d; qz++ {
					wz := b[qz*d1d+dz]
					wDz := g[qz*d1d+dz]
					for qy := 0; qy < q1d; qy++ {
						for qx := 0; qx < q1d; qx++ {
							grad[qz][qy][qx][0] += gradXY[qy][qx][0] * wz
							grad[qz][qy][qx][1] += gradXY[qy][qx][1] * wz
							grad[qz][qy][qx][2] += gradXY[qy][qx][2] * wDz
						}
					}
				}
			}
			for qz := 0; qz < q1d; qz++ {
				for qy := 0; qy < q1d; qy++ {
					for qx := 0; qx < q1d; qx++ {
						q := qx + (qy+qz*q1d)*q1d
						op := loadSymm3(d, q, nq, e)
						grad[qz][qy][qx][0], grad[qz][qy][qx][1], grad[qz][qy][qx][2] =
							op.MulVec(grad[qz][qy][qx][0], grad[qz][qy][qx][1], grad[qz][qy][qx][2])
					}
				}
			}
			for qz := 0; qz < q1d; qz++ {
				var gradXY [MaxD1D][MaxD1D][3]float64
				for dy := 0; dy < d1d; dy++ {
					for dx := 0; dx < d1d; dx++ {
						gradXY[dy][dx][0] = 0
						gradXY[dy][dx][1] = 0
						gradXY[dy][dx][2] = 0
					}
				}
				for qy := 0; qy < q1d; qy++ {
					var gradX [MaxD1D][3]float64
					for dx := 0; dx < d1d; dx++ {
						gradX[dx][0] = 0
						gradX[dx][1] = 0
						gradX[dx][2] = 0
					}
					for qx := 0; qx < q1d; qx++ {
						gX := grad[qz][qy][qx][0]
						gY := grad[qz][qy][qx][1]
						gZ := grad[qz][qy][qx][2]
						for dx := 0; dx < d1d; dx++ {
							wx := bt[dx*q1d+qx]
							wDx := gt[dx*q1d+qx]
							gradX[dx][0] += gX * wDx
							gradX[dx][1] += gY * wx
							gradX[dx][2] += gZ * wx
						}
					}
					for dy := 0; dy < d1d; dy++ {
						wy := bt[dy*q1d+qy]
						wDy := gt[dy*q1d+qy]
						for dx := 0; dx < d1d; dx++ {
							gradXY[dy][dx][0] += gradX[dx][0] * wy
							gradXY[dy][dx][1] += gradX[dx][1] * wDy
							gradXY[dy][dx][2] += gradX[dx][2] * wy
						}
					}
				}
				for dz := 0; dz < d1d; dz++ {
					wz := bt[dz*q1d+qz]
					wDz := gt[dz*q1d+qz]
					for dy := 0; dy < d1d; dy++ {
						for dx := 0; dx < d1d; dx++ {
							y[dx+d1d*(dy+d1d*dz)+nd*(c+vdim*e)] +=
								gradXY[dy][dx][0]*wz +
									gradXY[dy][dx][1]*wz +
									gradXY[dy][dx][2]*wDz
						}
					}
				}
			}
		}
	})
}
