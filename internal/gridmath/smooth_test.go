package gridmath

import "testing"

func TestSmoothClassicPreservesMassApproximately(t *testing.T) {
	d := []float64{1, 2, 3, 4, 5}
	out := SmoothClassic(d)
	if len(out) != len(d) {
		t.Fatalf("len = %d, want %d", len(out), len(d))
	}
	var sumIn, sumOut float64
	for i := range d {
		sumIn += d[i]
		sumOut += out[i]
	}
	if !approxEqual(sumIn, sumOut, 1e-9) {
		t.Errorf("smoothing changed total mass: %v -> %v", sumIn, sumOut)
	}
}

func TestSmoothClassicUniformIsFixedPoint(t *testing.T) {
	d := []float64{2, 2, 2, 2}
	out := SmoothClassic(d)
	for i, v := range out {
		if !approxEqual(v, 2, 1e-12) {
			t.Errorf("out[%d] = %v, want 2 (uniform input is a fixed point)", i, v)
		}
	}
}

func TestSmoothWeightedMatchesClassicAtSix(t *testing.T) {
	d := []float64{1, 4, 2, 7, 3}
	classic := SmoothClassic(d)
	weighted := SmoothWeighted(d, 6)
	for i := range d {
		if !approxEqual(classic[i], weighted[i], 1e-12) {
			t.Errorf("[%d] classic=%v weighted(ws=6)=%v", i, classic[i], weighted[i])
		}
	}
}

func TestSmoothWeightedUniformIsFixedPoint(t *testing.T) {
	d := []float64{5, 5, 5}
	out := SmoothWeighted(d, 3)
	for i, v := range out {
		if !approxEqual(v, 5, 1e-12) {
			t.Errorf("out[%d] = %v, want 5", i, v)
		}
	}
}

func TestDampZeroAlphaIsIdentityOneOnPositiveCells(t *testing.T) {
	d := []float64{1, 2, 0, 4}
	out := Damp(d, 0)
	want := []float64{1, 1, 0, 1}
	for i := range want {
		if !approxEqual(out[i], want[i], 1e-12) {
			t.Errorf("[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestDampAllZeroSumIsUnchanged(t *testing.T) {
	d := []float64{0, 0, 0}
	out := Damp(d, 1.5)
	for i, v := range out {
		if v != 0 {
			t.Errorf("[%d] = %v, want 0", i, v)
		}
	}
}
