package pa

// Symm2 is a symmetric 2x2 matrix in packed storage: slots (0,0),
// (0,1), (1,1). Off-diagonal entries are stored once and mirrored by
// At/Set, so kernel code never repeats the packed index arithmetic.
type Symm2 [3]float64

// Symm2Slots is the packed slot count for dim == 2.
const Symm2Slots = 3

func symm2Slot(i, j int) int {
	if j < i {
		i, j = j, i
	}
	return i + j
}

func (s Symm2) At(i, j int) float64 { return s[symm2Slot(i, j)] }

func (s *Symm2) Set(i, j int, v float64) { s[symm2Slot(i, j)] = v }

// MulVec applies the matrix to (x0, x1), expanding the mirrored slot.
func (s Symm2) MulVec(x0, x1 float64) (y0, y1 float64) {
	y0 = s[0]*x0 + s[1]*x1
	y1 = s[1]*x0 + s[2]*x1
	return
}

// Symm3 is a symmetric 3x3 matrix in packed storage using the slot
// order of the payload: (0,0), (1,0), (2,0), (1,1), (2,1), (2,2).
type Symm3 [6]float64

// Symm3Slots is the packed slot count for dim == 3.
const Symm3Slots = 6

func symm3Slot(i, j int) int {
	if j < i {
		i, j = j, i
	}
	return 3 - (3-i)*(2-i)/2 + j
}

func (s Symm3) At(i, j int) float64 { return s[symm3Slot(i, j)] }

func (s *Symm3) Set(i, j int, v float64) { s[symm3Slot(i, j)] = v }

// MulVec applies the matrix to (x0, x1, x2).
func (s Symm3) MulVec(x0, x1, x2 float64) (y0, y1, y2 float64) {
	y0 = s[0]*x0 + s[1]*x1 + s[2]*x2
	y1 = s[1]*x0 + s[3]*x1 + s[4]*x2
	y2 = s[2]*x0 + s[4]*x1 + s[5]*x2
	return
}

// loadSymm2 gathers the packed slots of point q of element e from the
// payload, whose layout is (point, slot, element).
func loadSymm2(d []float64, q, nq, e int) (s Symm2) {
	for k := 0; k < Symm2Slots; k++ {
		s[k] = d[q+nq*(k+Symm2Slots*e)]
	}
	return
}

func loadSymm3(d []float64, q, nq, e int) (s Symm3) {
	for k := 0; k < Symm3Slots; k++ {
		s[k] = d[q+nq*(k+Symm3Slots*e)]
	}
	return
}

func storeSymm2(d []float64, q, nq, e int, s Symm2) {
	for k := 0; k < Symm2Slots; k++ {
		d[q+nq*(k+Symm2Slots*e)] = s[k]
	}
}

func storeSymm3(d []float64, q, nq, e int, s Symm3) {
	for k := 0; k < Symm3Slots; k++ {
		d[q+nq*(k+Symm3Slots*e)] = s[k]
	}
}
