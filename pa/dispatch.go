package pa

import "fmt"

// applyFn is the common shape of an apply kernel instance: sizes are
// already bound, only the per-call data varies.
type applyFn func(ne, vdim int, b, g, bt, gt, d, x, y []float64, t Target)

type kernelKey struct{ d1d, q1d int }

// apply2DSpecialized registers the fixed-size 2-D kernel
// instantiations. Lookups outside this set fall back to the generic
// runtime-sized kernel.
var apply2DSpecialized = map[kernelKey]applyFn{
	{2, 2}: apply2DSized22,
	{3, 3}: apply2DSized33,
	{4, 4}: apply2DSized44,
	{5, 5}: apply2DSized55,
}

// selectApply2D picks the specialized kernel for (d1d, q1d) when one is
// registered; forceGeneric bypasses the registry (used to cross-check
// the two paths against each other).
func selectApply2D(d1d, q1d int, forceGeneric bool) applyFn {
	if !forceGeneric {
		if k, ok := apply2DSpecialized[kernelKey{d1d, q1d}]; ok {
			return k
		}
	}
	return func(ne, vdim int, b, g, bt, gt, d, x, y []float64, t Target) {
		apply2D(ne, d1d, q1d, vdim, b, g, bt, gt, d, x, y, t)
	}
}

// selectApply is the routing decision for the native apply path. It is
// deterministic and total over dim in {2,3}; anything else is a fatal
// configuration fault. The surface case (dim 2 in 3-space) shares the
// 2-D kernels: only the vector dimension differs.
func selectApply(dim, sdim, d1d, q1d int, forceGeneric bool) applyFn {
	switch {
	case dim == 2 && (sdim == 2 || sdim == 3):
		return selectApply2D(d1d, q1d, forceGeneric)
	case dim == 3 && sdim == 3:
		return func(ne, vdim int, b, g, bt, gt, d, x, y []float64, t Target) {
			apply3D(ne, d1d, q1d, vdim, b, g, bt, gt, d, x, y, t)
		}
	default:
		panic(fmt.Sprintf("pa: unknown kernel: dim=%d sdim=%d", dim, sdim))
	}
}
