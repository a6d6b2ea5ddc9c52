package gridmath

import (
	"math"
	"sort"
)

// cdfAt evaluates the piecewise-linear CDF described by a strictly
// increasing, equal-mass edge list (length n, last element 1) at x. The
// implicit anchor (0, 0) starts the first segment; each edges[i] is the
// knot where the CDF reaches (i+1)/n.
func cdfAt(edges []float64, x float64) float64 {
	n := len(edges)
	if n == 0 {
		return 0
	}
	if x <= 0 {
		return 0
	}
	lo := 0.0
	for i, e := range edges {
		if x <= e {
			rankLo := float64(i)
			if e == lo {
				return float64(i+1) / float64(n)
			}
			frac := (x - lo) / (e - lo)
			return (rankLo + frac) / float64(n)
		}
		lo = e
	}
	return 1.0
}

// mergeBreakpoints returns the sorted, deduplicated union of {0}, a, and
// b (the shared set of knots at which either CDF can change slope).
func mergeBreakpoints(a, b []float64) []float64 {
	pts := make([]float64, 0, len(a)+len(b)+1)
	pts = append(pts, 0)
	pts = append(pts, a...)
	pts = append(pts, b...)
	sort.Float64s(pts)

	out := pts[:0]
	for i, p := range pts {
		if i == 0 || p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// EMD computes the Wasserstein-1 distance between two one-dimensional
// distributions given as strictly increasing, equal-mass edge lists on
// [0,1]. Both a and b must end at 1.
//
// The shared piecewise-linear difference Δ(x) = F_a(x) - F_b(x) is
// integrated exactly: over a segment where Δ keeps its sign, the area is
// a trapezoid; where it changes sign, the segment is split at Δ's linear
// root into two triangles.
func EMD(a, b []float64) float64 {
	breakpoints := mergeBreakpoints(a, b)

	var total float64
	for i := 0; i+1 < len(breakpoints); i++ {
		xl, xr := breakpoints[i], breakpoints[i+1]
		if xr == xl {
			continue
		}
		dl := cdfAt(a, xl) - cdfAt(b, xl)
		dr := cdfAt(a, xr) - cdfAt(b, xr)

		if sameSign(dl, dr) {
			total += 0.5 * math.Abs(dl+dr) * (xr - xl)
			continue
		}

		// Δ changes sign strictly inside the segment: split at its
		// linear root.
		xstar := xl + dl/(dl-dr)*(xr-xl)
		total += 0.5*math.Abs(dl)*(xstar-xl) + 0.5*math.Abs(dr)*(xr-xstar)
	}
	return total
}

func sameSign(a, b float64) bool {
	if a == 0 || b == 0 {
		return true
	}
	return (a > 0) == (b > 0)
}
