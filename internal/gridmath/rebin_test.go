package gridmath

import "testing"

func uniformEdges(k int) []float64 {
	edges := make([]float64, k)
	for i := range edges {
		edges[i] = float64(i+1) / float64(k)
	}
	return edges
}

func TestEqualMassRebinUniformDensityIsFixedPoint(t *testing.T) {
	edges := uniformEdges(5)
	d := []float64{1, 1, 1, 1, 1}
	got, skipped := EqualMassRebin(edges, d)
	if skipped {
		t.Fatal("unexpected skip")
	}
	for i := range edges {
		if !approxEqual(got[i], edges[i], 1e-9) {
			t.Errorf("[%d] = %v, want %v", i, got[i], edges[i])
		}
	}
}

func TestEqualMassRebinLastEdgeIsOne(t *testing.T) {
	edges := uniformEdges(4)
	d := []float64{1, 3, 2, 0.5}
	got, skipped := EqualMassRebin(edges, d)
	if skipped {
		t.Fatal("unexpected skip")
	}
	if got[len(got)-1] != 1 {
		t.Errorf("last edge = %v, want 1", got[len(got)-1])
	}
}

func TestEqualMassRebinStrictlyIncreasing(t *testing.T) {
	edges := uniformEdges(6)
	d := []float64{5, 1, 1, 1, 1, 10}
	got, skipped := EqualMassRebin(edges, d)
	if skipped {
		t.Fatal("unexpected skip")
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Errorf("edges not strictly increasing at %d: %v <= %v", i, got[i], got[i-1])
		}
	}
}

func TestEqualMassRebinSkipsOnNegligibleMass(t *testing.T) {
	edges := uniformEdges(3)
	d := []float64{0, 0, 0}
	got, skipped := EqualMassRebin(edges, d)
	if !skipped {
		t.Error("expected skip on all-zero density")
	}
	for i := range edges {
		if got[i] != edges[i] {
			t.Errorf("[%d] = %v, want unchanged %v", i, got[i], edges[i])
		}
	}
}

func TestEqualMassRebinConcentratesTowardHeavyCell(t *testing.T) {
	// Heavy mass in the first cell should pull edges toward the low end.
	edges := uniformEdges(4)
	d := []float64{100, 1, 1, 1}
	got, skipped := EqualMassRebin(edges, d)
	if skipped {
		t.Fatal("unexpected skip")
	}
	if got[0] >= edges[0] {
		t.Errorf("expected first new edge to shrink toward 0, got %v (old %v)", got[0], edges[0])
	}
}
