package accum

import "testing"

func TestCompensatedResetDefault(t *testing.T) {
	var c Compensated
	if got := c.Result(); got != 0 {
		t.Errorf("zero value Result() = %v, want 0", got)
	}
}

func TestCompensatedCancellingSeries(t *testing.T) {
	// S6: summing (1e16, 1, -1e16, 1, -1, ..., 1) with 1000 ones must
	// renormalize to exactly 1000, while a naive running sum loses them
	// all to rounding.
	const nOnes = 1000

	var c Compensated
	var naive float64

	c.Add(1e16)
	naive += 1e16
	for i := 0; i < nOnes; i++ {
		c.Add(1)
		naive += 1
	}
	c.Add(-1e16)
	naive += -1e16

	if got := c.Result(); got != float64(nOnes) {
		t.Errorf("compensated Result() = %v, want %v", got, nOnes)
	}
	if naive == float64(nOnes) {
		t.Skip("naive summation happened not to lose precision on this platform")
	}
}

func TestCompensatedMergeEquivalence(t *testing.T) {
	var a, b, direct Compensated
	vals := []float64{1.5, 2.25, -0.75, 100.125}
	for i, v := range vals {
		if i < 2 {
			a.Add(v)
		} else {
			b.Add(v)
		}
		direct.Add(v)
	}
	a.Merge(&b)
	if got, want := a.Result(), direct.Result(); got != want {
		t.Errorf("merged Result() = %v, want %v", got, want)
	}
}

func TestCompensatedResetValue(t *testing.T) {
	var c Compensated
	c.Add(42)
	c.Reset(7)
	if got := c.Result(); got != 7 {
		t.Errorf("Result() after Reset(7) = %v, want 7", got)
	}
}
