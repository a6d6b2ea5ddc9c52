package gridmath

import "math"

// OverlapLen returns the length of the intersection of [lo1,hi1] and
// [lo2,hi2], or 0 if they are disjoint. Used by BASIN's coarse-bin
// weight table and super-grid weight transfer.
func OverlapLen(lo1, hi1, lo2, hi2 float64) float64 {
	lo := math.Max(lo1, lo2)
	hi := math.Min(hi1, hi2)
	if hi > lo {
		return hi - lo
	}
	return 0
}
