// Package device is the accelerated assembly backend: it compiles OKL
// renditions of the setup, apply, and diagonal kernels through OCCA and
// keeps the operator payload resident on the device. When a backend is
// attached and usable, the host kernels are bypassed entirely.
package device

import (
	"fmt"

	"github.com/notargets/gocca"

	"github.com/finite-element-analysis/mfem/pa"
)

// Config selects the OCCA execution mode. Modes are tried in order; an
// empty list means the default preference of CUDA, then OpenMP, then
// Serial.
type Config struct {
	Modes []string // OCCA mode property strings, e.g. `{"mode": "CUDA", "device_id": 0}`
}

// DefaultModes mirrors the usual backend preference for testing and
// drivers.
var DefaultModes = []string{
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "OpenMP"}`,
	`{"mode": "Serial"}`,
}

// Backend wraps an OCCA device. It implements pa.Backend.
type Backend struct {
	Device *gocca.OCCADevice
}

// NewBackend creates a device from the first mode in cfg that
// initializes successfully.
func NewBackend(cfg Config) (*Backend, error) {
	modes := cfg.Modes
	if len(modes) == 0 {
		modes = DefaultModes
	}
	var lastErr error
	for _, props := range modes {
		dev, err := gocca.NewDevice(props)
		if err == nil {
			return &Backend{Device: dev}, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no usable OCCA device among %v: %w", modes, lastErr)
}

// Usable reports whether the backend holds a live device. This is the
// capability check the integrator consults before delegating.
func (b *Backend) Usable() bool {
	return b != nil && b.Device != nil
}

// Free releases the device.
func (b *Backend) Free() {
	if b.Device != nil {
		b.Device.Free()
		b.Device = nil
	}
}

// buildKernel compiles source and returns the named kernel. OpenMP
// misses the default optimization flag in OCCA, so it is set
// explicitly there.
func (b *Backend) buildKernel(source, name string) (*gocca.OCCAKernel, error) {
	var kernel *gocca.OCCAKernel
	var err error
	if b.Device.Mode() == "OpenMP" {
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = b.Device.BuildKernelFromString(source, name, props)
	} else {
		kernel, err = b.Device.BuildKernelFromString(source, name, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
	}
	if kernel == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", name)
	}
	return kernel, nil
}

var _ pa.Backend = (*Backend)(nil)
