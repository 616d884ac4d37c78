package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// WithinTriangle computes Σ f_vertex[i] * φ[i] for a node-defined field
// (spec §4.B "Within-triangle"). vals must be the field value at the three
// vertices of the element phi was computed against, in NV order.
func WithinTriangle(vals [3]float64, phi [3]float64) float64 {
	return vals[0]*phi[0] + vals[1]*phi[1] + vals[2]*phi[2]
}

// TemporalWeight returns α = clamp((t - tLast)/(tNext - tLast), 0, 1) for
// linear-in-time interpolation (spec §4.B "Temporal"). Callers are
// responsible for ensuring tLast <= t < tNext in normal operation; clamping
// only guards against floating-point edge effects at the snapshot boundary.
func TemporalWeight(t, tLast, tNext float64) float64 {
	if tNext == tLast {
		return 0
	}
	a := (t - tLast) / (tNext - tLast)
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

// Lerp linearly interpolates between vLast and vNext using weight alpha.
func Lerp(vLast, vNext, alpha float64) float64 {
	return vLast + alpha*(vNext-vLast)
}

// SigmaLocate finds the pair of sigma levels (or layers) bounding z,
// scanning downward from the surface (index 0) as spec §4.B describes. It
// returns the lower and upper bracketing indices, the interpolation weight
// beta = (z - z_lower)/(z_upper - z_lower), and whether z fell outside the
// outermost layer/level (in which case it is clamped and the boundary flag
// is set).
//
// sig must be monotonically decreasing (sig[0] is nearest the surface,
// sig[len(sig)-1] nearest the bottom).
func SigmaLocate(sig []float64, z float64) (lower, upper int, beta float64, inBoundaryLayer bool) {
	return sigmaLocate(len(sig), z, func(k int) float64 { return sig[k] })
}

// sigmaLocate is SigmaLocate generalised over an accessor, so element- and
// node-column callers (ElemSigLay/ElemSigLev-backed) don't need to
// materialise a slice per call.
func sigmaLocate(n int, z float64, at func(int) float64) (lower, upper int, beta float64, inBoundaryLayer bool) {
	if n == 0 || n == 1 {
		return 0, 0, 0, true
	}
	if z >= at(0) {
		return 0, 0, 0, true // clamp to outer (surface) layer
	}
	if z <= at(n-1) {
		return n - 1, n - 1, 0, true // clamp to outer (bottom) layer
	}
	for k := 0; k < n-1; k++ {
		zUpper, zLower := at(k), at(k+1)
		if z <= zUpper && z >= zLower {
			if zUpper == zLower {
				return k, k + 1, 0, false
			}
			return k + 1, k, (z - zLower) / (zUpper - zLower), false
		}
	}
	// Should not be reachable given the monotonicity precondition and the
	// clamp checks above, but fail closed rather than index out of range.
	return n - 1, n - 1, 0, true
}

// SigmaLocateElem is SigmaLocate against element e's averaged layer column
// (ElemSigLay).
func (m *Mesh) SigmaLocateElem(e int, z float64) (lower, upper int, beta float64, inBoundaryLayer bool) {
	return sigmaLocate(len(m.SigLay), z, func(k int) float64 { return m.ElemSigLay(e, k) })
}

// SigmaLocateElemLevel is SigmaLocate against element e's averaged level
// column (ElemSigLev).
func (m *Mesh) SigmaLocateElemLevel(e int, z float64) (lower, upper int, beta float64, inBoundaryLayer bool) {
	return sigmaLocate(len(m.SigLev), z, func(k int) float64 { return m.ElemSigLev(e, k) })
}

// SigmaInterp interpolates a node's field values across bracketing
// layers/levels using the weight from SigmaLocate. vLower is the value at
// the "lower" (deeper) index, vUpper at the "upper" (shallower) index.
func SigmaInterp(vLower, vUpper, beta float64) float64 {
	return vLower + beta*(vUpper-vLower)
}

// ElemSigLay returns the element-centred sigma-layer value for element e at
// layer k, approximated as the mean of its three vertices' columns (the
// mesh stores siglay per node; layer-defined fields such as u, v, A_h are
// cell-centred and share this averaged column across all three).
func (m *Mesh) ElemSigLay(e, k int) float64 {
	v := m.NV[e]
	return (m.SigLay[k][v[0]] + m.SigLay[k][v[1]] + m.SigLay[k][v[2]]) / 3.
}

// ElemSigLev is ElemSigLay's level-array counterpart.
func (m *Mesh) ElemSigLev(e, k int) float64 {
	v := m.NV[e]
	return (m.SigLev[k][v[0]] + m.SigLev[k][v[1]] + m.SigLev[k][v[2]]) / 3.
}

// LLSVelocity evaluates the element-centred LLS (linear least-squares)
// interpolation of a vector field component at (x, y) within element e
// (spec §4.B "Horizontal u/v — LLS"). u must hold [u_host, u_n0, u_n1,
// u_n2] in NBE order. If any neighbour of e is a boundary (NBE < 0), LLS is
// bypassed in favour of the constant host value, matching the spec's
// boundary-element fallback.
func (m *Mesh) LLSVelocity(e int, u [4]float64, x, y float64) float64 {
	for _, nb := range m.NBE[e] {
		if nb < 0 {
			return u[0]
		}
	}
	a1 := floats.Dot(u[:], m.A1U[e][:])
	a2 := floats.Dot(u[:], m.A2U[e][:])
	return u[0] + a1*(x-m.XC[e]) + a2*(y-m.YC[e])
}

// ShepardVelocity is the inverse-distance-weighted alternative to
// LLSVelocity used when LLS coefficients are unavailable (spec §4.B
// "Horizontal u/v — Shepard"). centers holds the (x, y) of the host
// element followed by its (up to three) neighbours, in the same order as
// the values in u.
func ShepardVelocity(u [4]float64, centers [4][2]float64, nValid int, x, y float64) (float64, error) {
	if nValid < 1 || nValid > 4 {
		return 0, fmt.Errorf("mesh: ShepardVelocity requires 1-4 valid centres, got %d", nValid)
	}
	const p = 2.
	var wsum, vsum float64
	for i := 0; i < nValid; i++ {
		dx := x - centers[i][0]
		dy := y - centers[i][1]
		d2 := dx*dx + dy*dy
		if d2 == 0 {
			return u[i], nil
		}
		w := 1. / math.Pow(d2, p/2.)
		wsum += w
		vsum += w * u[i]
	}
	return vsum / wsum, nil
}
