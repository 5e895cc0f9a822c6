package device

import (
	"fmt"
	"strings"

	"github.com/finite-element-analysis/mfem/pa"
)

// The OKL sources are generated per problem: all sizes, the shape
// tables, and the constant-coefficient flag are baked into the source,
// so only the element count and the data pointers remain runtime
// kernel arguments.

// staticTable formats a flat row-major table as a static const C array.
func staticTable(name string, tbl []float64, rows, cols int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("const double %s[%d][%d] = {\n", name, rows, cols))
	for i := 0; i < rows; i++ {
		sb.WriteString("    {")
		for j := 0; j < cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%.15e", tbl[i*cols+j]))
		}
		sb.WriteString("}")
		if i < rows-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("};\n")
	return sb.String()
}

// preamble emits the size defines and the embedded shape tables shared
// by all three kernels of one problem.
func preamble(p pa.BackendProblem) string {
	var sb strings.Builder
	nq := p.Q1D * p.Q1D
	symm := pa.Symm2Slots
	if p.Dim == 3 {
		nq *= p.Q1D
		symm = pa.Symm3Slots
	}
	constC := 0
	if len(p.Coeff) == 1 {
		constC = 1
	}
	sb.WriteString(fmt.Sprintf("#define DIM %d\n", p.Dim))
	sb.WriteString(fmt.Sprintf("#define SDIM %d\n", p.SDim))
	sb.WriteString(fmt.Sprintf("#define D1D %d\n", p.D1D))
	sb.WriteString(fmt.Sprintf("#define Q1D %d\n", p.Q1D))
	sb.WriteString(fmt.Sprintf("#define VDIM %d\n", p.VDim))
	sb.WriteString(fmt.Sprintf("#define NQ %d\n", nq))
	sb.WriteString(fmt.Sprintf("#define SYMM %d\n", symm))
	sb.WriteString(fmt.Sprintf("#define CONST_COEFF %d\n\n", constC))
	sb.WriteString(staticTable("s_B", p.Maps.B, p.Q1D, p.D1D))
	sb.WriteString(staticTable("s_G", p.Maps.G, p.Q1D, p.D1D))
	sb.WriteString("\n")
	return sb.String()
}

func setupSource(p pa.BackendProblem) string {
	body2D := `
      const double J11 = J[q + NQ*(0 + SDIM*(0 + DIM*e))];
      const double J21 = J[q + NQ*(1 + SDIM*(0 + DIM*e))];
      const double J12 = J[q + NQ*(0 + SDIM*(1 + DIM*e))];
      const double J22 = J[q + NQ*(1 + SDIM*(1 + DIM*e))];
      const double c1 = CONST_COEFF ? C[0] : C[q + NQ*e];
      const double c_detJ = W[q] * c1 / (J11*J22 - J21*J12);
      D[q + NQ*(0 + SYMM*e)] =  c_detJ * (J12*J12 + J22*J22);
      D[q + NQ*(1 + SYMM*e)] = -c_detJ * (J12*J11 + J22*J21);
      D[q + NQ*(2 + SYMM*e)] =  c_detJ * (J11*J11 + J21*J21);`
	bodySurface := `
      const double J11 = J[q + NQ*(0 + SDIM*(0 + DIM*e))];
      const double J21 = J[q + NQ*(1 + SDIM*(0 + DIM*e))];
      const double J31 = J[q + NQ*(2 + SDIM*(0 + DIM*e))];
      const double J12 = J[q + NQ*(0 + SDIM*(1 + DIM*e))];
      const double J22 = J[q + NQ*(1 + SDIM*(1 + DIM*e))];
      const double J32 = J[q + NQ*(2 + SDIM*(1 + DIM*e))];
      const double E = J11*J11 + J21*J21 + J31*J31;
      const double G = J12*J12 + J22*J22 + J32*J32;
      const double F = J11*J12 + J21*J22 + J31*J32;
      const double iw = 1.0 / sqrt(E*G - F*F);
      const double c1 = CONST_COEFF ? C[0] : C[q + NQ*e];
      const double alpha = W[q] * c1 * iw;
      D[q + NQ*(0 + SYMM*e)] =  alpha * G;
      D[q + NQ*(1 + SYMM*e)] = -alpha * F;
      D[q + NQ*(2 + SYMM*e)] =  alpha * E;`
	body3D := `
      const double J11 = J[q + NQ*(0 + SDIM*(0 + DIM*e))];
      const double J21 = J[q + NQ*(1 + SDIM*(0 + DIM*e))];
      const double J31 = J[q + NQ*(2 + SDIM*(0 + DIM*e))];
      const double J12 = J[q + NQ*(0 + SDIM*(1 + DIM*e))];
      const double J22 = J[q + NQ*(1 + SDIM*(1 + DIM*e))];
      const double J32 = J[q + NQ*(2 + SDIM*(1 + DIM*e))];
      const double J13 = J[q + NQ*(0 + SDIM*(2 + DIM*e))];
      const double J23 = J[q + NQ*(1 + SDIM*(2 + DIM*e))];
      const double J33 = J[q + NQ*(2 + SDIM*(2 + DIM*e))];
      const double detJ = J11*(J22*J33 - J32*J23)
                        - J21*(J12*J33 - J32*J13)
                        + J31*(J12*J23 - J22*J13);
      const double c1 = CONST_COEFF ? C[0] : C[q + NQ*e];
      const double c_detJ = W[q] * c1 / detJ;
      const double A11 = (J22*J33) - (J23*J32);
      const double A12 = (J32*J13) - (J12*J33);
      const double A13 = (J12*J23) - (J22*J13);
      const double A21 = (J31*J23) - (J21*J33);
      const double A22 = (J11*J33) - (J13*J31);
      const double A23 = (J21*J13) - (J11*J23);
      const double A31 = (J21*J32) - (J31*J22);
      const double A32 = (J31*J12) - (J11*J32);
      const double A33 = (J11*J22) - (J12*J21);
      D[q + NQ*(0 + SYMM*e)] = c_detJ * (A11*A11 + A12*A12 + A13*A13);
      D[q + NQ*(1 + SYMM*e)] = c_detJ * (A11*A21 + A12*A22 + A13*A23);
      D[q + NQ*(2 + SYMM*e)] = c_detJ * (A11*A31 + A12*A32 + A13*A33);
      D[q + NQ*(3 + SYMM*e)] = c_detJ * (A21*A21 + A22*A22 + A23*A23);
      D[q + NQ*(4 + SYMM*e)] = c_detJ * (A21*A31 + A22*A32 + A23*A33);
      D[q + NQ*(5 + SYMM*e)] = c_detJ * (A31*A31 + A32*A32 + A33*A33);`

	body := body2D
	if p.Dim == 2 && p.SDim == 3 {
		body = bodySurface
	} else if p.Dim == 3 {
		body = body3D
	}

	return preamble(p) + fmt.Sprintf(`
@kernel void vecDiffSetup(const int NE,
                          @restrict const double *W,
                          @restrict const double *J,
                          @restrict const double *C,
                          @restrict double *D) {
  for (int e = 0; e < NE; ++e; @outer) {
    for (int t = 0; t < 1; ++t; @inner) {
      for (int q = 0; q < NQ; ++q) {%s
      }
    }
  }
}
`, body)
}

func applySource(p pa.BackendProblem) string {
	if p.Dim == 2 {
		return preamble(p) + `
#define ND (D1D*D1D)

@kernel void vecDiffApply(const int NE,
                          @restrict const double *D,
                          @restrict const double *X,
                          @restrict double *Y) {
  for (int e = 0; e < NE; ++e; @outer) {
    for (int c = 0; c < VDIM; ++c; @inner) {
      double grad[Q1D][Q1D][2];
      for (int qy = 0; qy < Q1D; ++qy)
        for (int qx = 0; qx < Q1D; ++qx) {
          grad[qy][qx][0] = 0.0;
          grad[qy][qx][1] = 0.0;
        }
      for (int dy = 0; dy < D1D; ++dy) {
        double gradX[Q1D][2];
        for (int qx = 0; qx < Q1D; ++qx) {
          gradX[qx][0] = 0.0;
          gradX[qx][1] = 0.0;
        }
        for (int dx = 0; dx < D1D; ++dx) {
          const double s = X[dx + D1D*dy + ND*(c + VDIM*e)];
          for (int qx = 0; qx < Q1D; ++qx) {
            gradX[qx][0] += s * s_B[qx][dx];
            gradX[qx][1] += s * s_G[qx][dx];
          }
        }
        for (int qy = 0; qy < Q1D; ++qy) {
          const double wy  = s_B[qy][dy];
          const double wDy = s_G[qy][dy];
          for (int qx = 0; qx < Q1D; ++qx) {
            grad[qy][qx][0] += gradX[qx][1] * wy;
            grad[qy][qx][1] += gradX[qx][0] * wDy;
          }
        }
      }
      for (int qy = 0; qy < Q1D; ++qy)
        for (int qx = 0; qx < Q1D; ++qx) {
          const int q = qx + qy*Q1D;
          const double O11 = D[q + NQ*(0 + SYMM*e)];
          const double O12 = D[q + NQ*(1 + SYMM*e)];
          const double O22 = D[q + NQ*(2 + SYMM*e)];
          const double gX = grad[qy][qx][0];
          const double gY = grad[qy][qx][1];
          grad[qy][qx][0] = O11*gX + O12*gY;
          grad[qy][qx][1] = O12*gX + O22*gY;
        }
      for (int qy = 0; qy < Q1D; ++qy) {
        double gradX[D1D][2];
        for (int dx = 0; dx < D1D; ++dx) {
          gradX[dx][0] = 0.0;
          gradX[dx][1] = 0.0;
        }
        for (int qx = 0; qx < Q1D; ++qx) {
          const double gX = grad[qy][qx][0];
          const double gY = grad[qy][qx][1];
          for (int dx = 0; dx < D1D; ++dx) {
            gradX[dx][0] += gX * s_G[qx][dx];
            gradX[dx][1] += gY * s_B[qx][dx];
          }
        }
        for (int dy = 0; dy < D1D; ++dy) {
          const double wy  = s_B[qy][dy];
          const double wDy = s_G[qy][dy];
          for (int dx = 0; dx < D1D; ++dx) {
            Y[dx + D1D*dy + ND*(c + VDIM*e)] += gradX[dx][0]*wy + gradX[dx][1]*wDy;
          }
        }
      }
    }
  }
}
`
	}
	return preamble(p) + `
#define ND (D1D*D1D*D1D)

@kernel void vecDiffApply(const int NE,
                          @restrict const double *D,
                          @restrict const double *X,
                          @restrict double *Y) {
  for (int e = 0; e < NE; ++e; @outer) {
    for (int c = 0; c < VDIM; ++c; @inner) {
      double grad[Q1D][Q1D][Q1D][3];
      for (int qz = 0; qz < Q1D; ++qz)
        for (int qy = 0; qy < Q1D; ++qy)
          for (int qx = 0; qx < Q1D; ++qx) {
            grad[qz][qy][qx][0] = 0.0;
            grad[qz][qy][qx][1] = 0.0;
            grad[qz][qy][qx][2] = 0.0;
          }
      for (int dz = 0; dz < D1D; ++dz) {
        double gradXY[Q1D][Q1D][3];
        for (int qy = 0; qy < Q1D; ++qy)
          for (int qx = 0; qx < Q1D; ++qx) {
            gradXY[qy][qx][0] = 0.0;
            gradXY[qy][qx][1] = 0.0;
            gradXY[qy][qx][2] = 0.0;
          }
        for (int dy = 0; dy < D1D; ++dy) {
          double gradX[Q1D][2];
          for (int qx = 0; qx < Q1D; ++qx) {
            gradX[qx][0] = 0.0;
            gradX[qx][1] = 0.0;
          }
          for (int dx = 0; dx < D1D; ++dx) {
            const double s = X[dx + D1D*(dy + D1D*dz) + ND*(c + VDIM*e)];
            for (int qx = 0; qx < Q1D; ++qx) {
              gradX[qx][0] += s * s_B[qx][dx];
              gradX[qx][1] += s * s_G[qx][dx];
            }
          }
          for (int qy = 0; qy < Q1D; ++qy) {
            const double wy  = s_B[qy][dy];
            const double wDy = s_G[qy][dy];
            for (int qx = 0; qx < Q1D; ++qx) {
              const double wx  = gradX[qx][0];
              const double wDx = gradX[qx][1];
              gradXY[qy][qx][0] += wDx * wy;
              gradXY[qy][qx][1] += wx  * wDy;
              gradXY[qy][qx][2] += wx  * wy;
            }
          }
        }
        for (int qz = 0; qz < Q1D; ++qz) {
          const double wz  = s_B[qz][dz];
          const double wDz = s_G[qz][dz];
          for (int qy = 0; qy < Q1D; ++qy)
            for (int qx = 0; qx < Q1D; ++qx) {
              grad[qz][qy][qx][0] += gradXY[qy][qx][0] * wz;
              grad[qz][qy][qx][1] += gradXY[qy][qx][1] * wz;
              grad[qz][qy][qx][2] += gradXY[qy][qx][2] * wDz;
            }
        }
      }
      for (int qz = 0; qz < Q1D; ++qz)
        for (int qy = 0; qy < Q1D; ++qy)
          for (int qx = 0; qx < Q1D; ++qx) {
            const int q = qx + (qy + qz*Q1D)*Q1D;
            const double O11 = D[q + NQ*(0 + SYMM*e)];
            const double O12 = D[q + NQ*(1 + SYMM*e)];
            const double O13 = D[q + NQ*(2 + SYMM*e)];
            const double O22 = D[q + NQ*(3 + SYMM*e)];
            const double O23 = D[q + NQ*(4 + SYMM*e)];
            const double O33 = D[q + NQ*(5 + SYMM*e)];
            const double gX = grad[qz][qy][qx][0];
            const double gY = grad[qz][qy][qx][1];
            const double gZ = grad[qz][qy][qx][2];
            grad[qz][qy][qx][0] = O11*gX + O12*gY + O13*gZ;
            grad[qz][qy][qx][1] = O12*gX + O22*gY + O23*gZ;
            grad[qz][qy][qx][2] = O13*gX + O23*gY + O33*gZ;
          }
      for (int qz = 0; qz < Q1D; ++qz) {
        double gradXY[D1D][D1D][3];
        for (int dy = 0; dy < D1D; ++dy)
          for (int dx = 0; dx < D1D; ++dx) {
            gradXY[dy][dx][0] = 0.0;
            gradXY[dy][dx][1] = 0.0;
            gradXY[dy][dx][2] = 0.0;
          }
        for (int qy = 0; qy < Q1D; ++qy) {
          double gradX[D1D][3];
          for (int dx = 0; dx < D1D; ++dx) {
            gradX[dx][0] = 0.0;
            gradX[dx][1] = 0.0;
            gradX[dx][2] = 0.0;
          }
          for (int qx = 0; qx < Q1D; ++qx) {
            const double gX = grad[qz][qy][qx][0];
            const double gY = grad[qz][qy][qx][1];
            const double gZ = grad[qz][qy][qx][2];
            for (int dx = 0; dx < D1D; ++dx) {
              gradX[dx][0] += gX * s_G[qx][dx];
              gradX[dx][1] += gY * s_B[qx][dx];
              gradX[dx][2] += gZ * s_B[qx][dx];
            }
          }
          for (int dy = 0; dy < D1D; ++dy) {
            const double wy  = s_B[qy][dy];
            const double wDy = s_G[qy][dy];
            for (int dx = 0; dx < D1D; ++dx) {
              gradXY[dy][dx][0] += gradX[dx][0] * wy;
              gradXY[dy][dx][1] += gradX[dx][1] * wDy;
              gradXY[dy][dx][2] += gradX[dx][2] * wy;
            }
          }
        }
        for (int dz = 0; dz < D1D; ++dz) {
          const double wz  = s_B[qz][dz];
          const double wDz = s_G[qz][dz];
          for (int dy = 0; dy < D1D; ++dy)
            for (int dx = 0; dx < D1D; ++dx) {
              Y[dx + D1D*(dy + D1D*dz) + ND*(c + VDIM*e)] +=
                  gradXY[dy][dx][0]*wz + gradXY[dy][dx][1]*wz + gradXY[dy][dx][2]*wDz;
            }
        }
      }
    }
  }
}
`
}

func diagonalSource(p pa.BackendProblem) string {
	if p.Dim == 2 {
		return preamble(p) + `
#define ND (D1D*D1D)

@kernel void vecDiffDiagonal(const int NE,
                             @restrict const double *D,
                             @restrict double *Y) {
  for (int e = 0; e < NE; ++e; @outer) {
    for (int t = 0; t < 1; ++t; @inner) {
      double QD0[Q1D][D1D];
      double QD1[Q1D][D1D];
      double QD2[Q1D][D1D];
      for (int qx = 0; qx < Q1D; ++qx)
        for (int dy = 0; dy < D1D; ++dy) {
          QD0[qx][dy] = 0.0;
          QD1[qx][dy] = 0.0;
          QD2[qx][dy] = 0.0;
          for (int qy = 0; qy < Q1D; ++qy) {
            const int q = qx + qy*Q1D;
            const double by = s_B[qy][dy];
            const double gy = s_G[qy][dy];
            QD0[qx][dy] += by * by * D[q + NQ*(0 + SYMM*e)];
            QD1[qx][dy] += by * gy * D[q + NQ*(1 + SYMM*e)];
            QD2[qx][dy] += gy * gy * D[q + NQ*(2 + SYMM*e)];
          }
        }
      for (int dy = 0; dy < D1D; ++dy)
        for (int dx = 0; dx < D1D; ++dx) {
          double temp = 0.0;
          for (int qx = 0; qx < Q1D; ++qx) {
            const double bx = s_B[qx][dx];
            const double gx = s_G[qx][dx];
            temp += gx*gx*QD0[qx][dy] + 2.0*gx*bx*QD1[qx][dy] + bx*bx*QD2[qx][dy];
          }
          for (int c = 0; c < VDIM; ++c) {
            Y[dx + D1D*dy + ND*(c + VDIM*e)] += temp;
          }
        }
    }
  }
}
`
	}
	return preamble(p) + `
#define ND (D1D*D1D*D1D)

@kernel void vecDiffDiagonal(const int NE,
                             @restrict const double *D,
                             @restrict double *Y) {
  for (int e = 0; e < NE; ++e; @outer) {
    for (int t = 0; t < 1; ++t; @inner) {
      double QQD[Q1D][Q1D][D1D];
      double QDD[Q1D][D1D][D1D];
      for (int i = 0; i < 3; ++i)
        for (int j = 0; j < 3; ++j) {
          const int k = (j >= i) ? (3 - (3-i)*(2-i)/2 + j) : (3 - (3-j)*(2-j)/2 + i);
          for (int qx = 0; qx < Q1D; ++qx)
            for (int qy = 0; qy < Q1D; ++qy)
              for (int dz = 0; dz < D1D; ++dz) {
                QQD[qx][qy][dz] = 0.0;
                for (int qz = 0; qz < Q1D; ++qz) {
                  const int q = qx + (qy + qz*Q1D)*Q1D;
                  const double L = (i == 2) ? s_G[qz][dz] : s_B[qz][dz];
                  const double R = (j == 2) ? s_G[qz][dz] : s_B[qz][dz];
                  QQD[qx][qy][dz] += L * D[q + NQ*(k + SYMM*e)] * R;
                }
              }
          for (int qx = 0; qx < Q1D; ++qx)
            for (int dz = 0; dz < D1D; ++dz)
              for (int dy = 0; dy < D1D; ++dy) {
                QDD[qx][dy][dz] = 0.0;
                for (int qy = 0; qy < Q1D; ++qy) {
                  const double L = (i == 1) ? s_G[qy][dy] : s_B[qy][dy];
                  const double R = (j == 1) ? s_G[qy][dy] : s_B[qy][dy];
                  QDD[qx][dy][dz] += L * QQD[qx][qy][dz] * R;
                }
              }
          for (int dz = 0; dz < D1D; ++dz)
            for (int dy = 0; dy < D1D; ++dy)
              for (int dx = 0; dx < D1D; ++dx) {
                double temp = 0.0;
                for (int qx = 0; qx < Q1D; ++qx) {
                  const double L = (i == 0) ? s_G[qx][dx] : s_B[qx][dx];
                  const double R = (j == 0) ? s_G[qx][dx] : s_B[qx][dx];
                  temp += L * QDD[qx][dy][dz] * R;
                }
                for (int c = 0; c < VDIM; ++c) {
                  Y[dx + D1D*(dy + D1D*dz) + ND*(c + VDIM*e)] += temp;
                }
              }
        }
    }
  }
}
`
}
