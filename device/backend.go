package device

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"

	"github.com/finite-element-analysis/mfem/pa"
)

// Operator is a device-assembled vector diffusion operator: the payload
// lives on the device, and apply/diagonal calls move only the field
// vectors across the host/device boundary. All buffers of one call
// reside in the same memory space.
type Operator struct {
	device    *gocca.OCCADevice
	applyK    *gocca.OCCAKernel
	diagK     *gocca.OCCAKernel
	payload   *gocca.OCCAMemory
	xMem      *gocca.OCCAMemory
	yMem      *gocca.OCCAMemory
	ne        int
	fieldSize int
}

// AssembleVectorDiffusion compiles the three kernels for the problem
// sizes, uploads weights, Jacobians, and coefficient values, and runs
// the setup kernel once on the device. The returned operator owns the
// device-resident payload.
func (b *Backend) AssembleVectorDiffusion(p pa.BackendProblem) (pa.BackendOperator, error) {
	if !b.Usable() {
		return nil, fmt.Errorf("device backend not usable")
	}

	setupK, err := b.buildKernel(setupSource(p), "vecDiffSetup")
	if err != nil {
		return nil, err
	}
	defer setupK.Free()
	applyK, err := b.buildKernel(applySource(p), "vecDiffApply")
	if err != nil {
		return nil, err
	}
	diagK, err := b.buildKernel(diagonalSource(p), "vecDiffDiagonal")
	if err != nil {
		applyK.Free()
		return nil, err
	}

	nq := p.Q1D * p.Q1D
	nd := p.D1D * p.D1D
	symm := pa.Symm2Slots
	if p.Dim == 3 {
		nq *= p.Q1D
		nd *= p.D1D
		symm = pa.Symm3Slots
	}
	fieldSize := nd * p.VDim * p.NE

	wMem := b.Device.Malloc(int64(len(p.Weights)*8), unsafe.Pointer(&p.Weights[0]), nil)
	jMem := b.Device.Malloc(int64(len(p.J)*8), unsafe.Pointer(&p.J[0]), nil)
	cMem := b.Device.Malloc(int64(len(p.Coeff)*8), unsafe.Pointer(&p.Coeff[0]), nil)
	dMem := b.Device.Malloc(int64(nq*symm*p.NE*8), nil, nil)

	runErr := setupK.RunWithArgs(p.NE, wMem, jMem, cMem, dMem)
	b.Device.Finish()
	wMem.Free()
	jMem.Free()
	cMem.Free()
	if runErr != nil {
		dMem.Free()
		applyK.Free()
		diagK.Free()
		return nil, fmt.Errorf("device setup kernel failed: %w", runErr)
	}

	return &Operator{
		device:    b.Device,
		applyK:    applyK,
		diagK:     diagK,
		payload:   dMem,
		xMem:      b.Device.Malloc(int64(fieldSize*8), nil, nil),
		yMem:      b.Device.Malloc(int64(fieldSize*8), nil, nil),
		ne:        p.NE,
		fieldSize: fieldSize,
	}, nil
}

// AddMult computes y += A*x on the device. x and y are element-local
// host vectors; y is uploaded so the kernel's += accumulation composes
// with prior host contributions.
func (op *Operator) AddMult(x, y []float64) error {
	if len(x) != op.fieldSize || len(y) != op.fieldSize {
		return fmt.Errorf("device apply: field size mismatch: len(x)=%d len(y)=%d want %d",
			len(x), len(y), op.fieldSize)
	}
	op.xMem.CopyFrom(unsafe.Pointer(&x[0]), int64(len(x)*8))
	op.yMem.CopyFrom(unsafe.Pointer(&y[0]), int64(len(y)*8))
	if err := op.applyK.RunWithArgs(op.ne, op.payload, op.xMem, op.yMem); err != nil {
		return fmt.Errorf("device apply kernel failed: %w", err)
	}
	op.device.Finish()
	op.yMem.CopyTo(unsafe.Pointer(&y[0]), int64(len(y)*8))
	return nil
}

// AssembleDiagonal accumulates the operator diagonal into diag.
func (op *Operator) AssembleDiagonal(diag []float64) error {
	if len(diag) != op.fieldSize {
		return fmt.Errorf("device diagonal: size mismatch: len=%d want %d", len(diag), op.fieldSize)
	}
	op.yMem.CopyFrom(unsafe.Pointer(&diag[0]), int64(len(diag)*8))
	if err := op.diagK.RunWithArgs(op.ne, op.payload, op.yMem); err != nil {
		return fmt.Errorf("device diagonal kernel failed: %w", err)
	}
	op.device.Finish()
	op.yMem.CopyTo(unsafe.Pointer(&diag[0]), int64(len(diag)*8))
	return nil
}

// Free releases the kernels and device memory.
func (op *Operator) Free() {
	for _, k := range []*gocca.OCCAKernel{op.applyK, op.diagK} {
		if k != nil {
			k.Free()
		}
	}
	for _, m := range []*gocca.OCCAMemory{op.payload, op.xMem, op.yMem} {
		if m != nil {
			m.Free()
		}
	}
	op.applyK, op.diagK = nil, nil
	op.payload, op.xMem, op.yMem = nil, nil, nil
}
