package fingerprint

import "testing"

func TestOfDeterministic(t *testing.T) {
	edges := []float64{0.25, 0.5, 0.75, 1.0}
	a := Of(3, []int{4}, edges)
	b := Of(3, []int{4}, edges)
	if a != b {
		t.Errorf("Of() not deterministic: %v vs %v", a, b)
	}
}

func TestOfSensitiveToEdges(t *testing.T) {
	a := Of(2, []int{4}, []float64{0.25, 0.5, 0.75, 1.0})
	b := Of(2, []int{4}, []float64{0.26, 0.5, 0.75, 1.0})
	if a == b {
		t.Error("Of() did not change when a single edge changed")
	}
}

func TestOfSensitiveToShape(t *testing.T) {
	edges := []float64{0.5, 1.0}
	a := Of(2, []int{2}, edges)
	b := Of(3, []int{2}, edges)
	if a == b {
		t.Error("Of() did not change when dimension changed")
	}
}
