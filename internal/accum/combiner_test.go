package accum

import (
	"math"
	"testing"
)

func push(c *Combiner, samples []float64) {
	var it Iteration
	for _, s := range samples {
		it.Accumulate(s)
	}
	c.Push(&it)
}

func TestCombinerEmpty(t *testing.T) {
	var c Combiner
	if _, err := c.Value(); err != ErrNoResults {
		t.Errorf("Value() on empty combiner err = %v, want ErrNoResults", err)
	}
}

func TestCombinerIgnoresZeroCountIteration(t *testing.T) {
	var c Combiner
	var empty Iteration
	c.Push(&empty)
	if c.Len() != 0 || c.Count() != 0 {
		t.Errorf("pushing an empty iteration changed combiner state: len=%d count=%d", c.Len(), c.Count())
	}
}

func TestCombinerInsertionOrderIndependence(t *testing.T) {
	samplesA := []float64{1, 2, 3, 4, 5}
	samplesB := []float64{10, 11, 9, 10.5, 9.5}

	var c1, c2 Combiner
	push(&c1, samplesA)
	push(&c1, samplesB)
	push(&c2, samplesB)
	push(&c2, samplesA)

	v1, err := c1.Value()
	if err != nil {
		t.Fatal(err)
	}
	v2, err := c2.Value()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(v1-v2) > 1e-12 {
		t.Errorf("Value() depends on insertion order: %v vs %v", v1, v2)
	}

	var1, _ := c1.Variance()
	var2, _ := c2.Variance()
	if math.Abs(var1-var2) > 1e-12 {
		t.Errorf("Variance() depends on insertion order: %v vs %v", var1, var2)
	}
}

func TestCombinerAllZeroVarianceFallsBackToMean(t *testing.T) {
	var c Combiner
	// Single-sample iterations always have zero variance.
	push(&c, []float64{3})
	push(&c, []float64{5})
	push(&c, []float64{7})

	v, err := c.Value()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(v-5) > 1e-12 {
		t.Errorf("Value() = %v, want plain mean 5", v)
	}
	vr, _ := c.Variance()
	if vr != 0 {
		t.Errorf("Variance() = %v, want 0 when all entries have zero variance", vr)
	}
}

func TestCombinerChi2DofBelowTwoKept(t *testing.T) {
	var c Combiner
	push(&c, []float64{1, 2, 3})
	if dof := c.Dof(); dof != 0 {
		t.Fatalf("Dof() = %d, want 0 with a single kept iteration", dof)
	}
	cd, err := c.Chi2Dof()
	if err != nil {
		t.Fatal(err)
	}
	if cd != 0 {
		t.Errorf("Chi2Dof() = %v, want 0 below two kept iterations", cd)
	}
}

func TestCombinerPushResultMerges(t *testing.T) {
	var a, b Combiner
	push(&a, []float64{1, 2, 3, 4})
	push(&b, []float64{5, 6, 7, 8})

	combined := a.Count() + b.Count()
	a.PushResult(&b)
	if a.Count() != combined {
		t.Errorf("Count() after PushResult = %d, want %d", a.Count(), combined)
	}
	if a.Len() != 2 {
		t.Errorf("Len() after PushResult = %d, want 2", a.Len())
	}
}
