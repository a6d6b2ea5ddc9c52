// Package gridmath holds the grid-refinement primitives shared by the
// VEGAS and BASIN samplers: smoothing, damping, equal-mass rebinning,
// and the Earth Mover's Distance used by BASIN's axis-ordering
// heuristic.
//
// VEGAS's classical smoother and BASIN's w_s-parameterized smoother are
// kept as two separate functions rather than one generalized over a
// weight parameter. The two algorithms happen to coincide at w_s=6, but
// they are distinct tunables belonging to different samplers, and
// unifying them would make VEGAS's "hardcoded 1/6/1" no longer
// hardcoded.
package gridmath

import "math"

// SmoothClassic applies VEGAS's classical three-point smoothing tap to a
// raw per-cell importance density: interior cells are averaged
// (d[j-1] + 6*d[j] + d[j+1]) / 8, and the two boundary cells fold the
// missing neighbor's weight into the center tap, (7*d[0]+d[1])/8 and
// (d[n-2]+7*d[n-1])/8.
func SmoothClassic(dRaw []float64) []float64 {
	n := len(dRaw)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = dRaw[0]
		return out
	}
	out[0] = (7*dRaw[0] + dRaw[1]) / 8
	for j := 1; j < n-1; j++ {
		out[j] = (dRaw[j-1] + 6*dRaw[j] + dRaw[j+1]) / 8
	}
	out[n-1] = (dRaw[n-2] + 7*dRaw[n-1]) / 8
	return out
}

// SmoothWeighted applies BASIN's w_s-parameterized three-point tap:
// interior cells average (d[j-1] + ws*d[j] + d[j+1]) / (ws+2), and the
// boundary cells fold the missing neighbor into the center tap,
// ((ws+1)*d[0]+d[1])/(ws+2).
func SmoothWeighted(dRaw []float64, ws float64) []float64 {
	n := len(dRaw)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	norm := ws + 2
	if n == 1 {
		out[0] = dRaw[0]
		return out
	}
	out[0] = ((ws+1)*dRaw[0] + dRaw[1]) / norm
	for j := 1; j < n-1; j++ {
		out[j] = (dRaw[j-1] + ws*dRaw[j] + dRaw[j+1]) / norm
	}
	out[n-1] = (dRaw[n-2] + (ws+1)*dRaw[n-1]) / norm
	return out
}

// Damp applies the VEGAS/BASIN damping transform in place on a copy of d:
// for each positive cell, d[j] <- ((1 - d[j]/sum) / (ln(sum) - ln(d[j])))^alpha,
// using the un-damped sum across the whole row. Non-positive cells damp
// to 0. alpha=0 disables damping (every positive cell maps to 1).
func Damp(d []float64, alpha float64) []float64 {
	out := make([]float64, len(d))
	sum := 0.0
	for _, v := range d {
		sum += v
	}
	if sum <= 0 {
		copy(out, d)
		return out
	}
	lnSum := math.Log(sum)
	for j, v := range d {
		if v <= 0 {
			out[j] = 0
			continue
		}
		out[j] = math.Pow((1-v/sum)/(lnSum-math.Log(v)), alpha)
	}
	return out
}
