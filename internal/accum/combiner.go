package accum

import (
	"math"

	"github.com/cwbudde/kakuhen/internal/kerrors"
)

// ErrNoResults is returned when a statistic is requested from a Combiner
// that has not received any non-empty Iteration yet.
var ErrNoResults = kerrors.ErrNoResults

// Entry is one retained iteration's serialized form: value(f), value(f^2)
// and count, exactly the triple the binary codec persists.
type Entry struct {
	MeanF  float64
	MeanF2 float64
	N      int64
}

func (e Entry) variance() float64 {
	if e.N < 2 {
		return 0
	}
	n := float64(e.N)
	m2 := e.MeanF2 - e.MeanF*e.MeanF
	if m2 < 0 {
		m2 = 0
	}
	return m2 / (n - 1)
}

// Combiner is the Result combiner (C3): an ordered sequence of Iterations
// from successive integration iterations, combined into an
// inverse-variance weighted mean with a chi2/dof diagnostic.
//
// value()/variance() are pure functions of the *multiset* of iterations:
// insertion order never changes the combined statistics, even though
// Combiner also tracks insertion order for serialization.
type Combiner struct {
	entries []Entry
	totalN  int64
}

// Push adds one iteration's statistics to the combiner. Iterations with
// n == 0 are ignored.
func (c *Combiner) Push(it *Iteration) {
	n := it.Count()
	if n == 0 {
		return
	}
	mean, _ := it.Value()
	meanF2 := it.SumF2() / float64(n)
	c.entries = append(c.entries, Entry{MeanF: mean, MeanF2: meanF2, N: n})
	c.totalN += n
}

// PushEntry adds a pre-aggregated entry directly, used when reconstructing
// a Combiner from serialized data.
func (c *Combiner) PushEntry(e Entry) {
	if e.N == 0 {
		return
	}
	c.entries = append(c.entries, e)
	c.totalN += e.N
}

// PushResult merges another Combiner's entries into this one, used when
// appending a loaded data snapshot.
func (c *Combiner) PushResult(other *Combiner) {
	for _, e := range other.entries {
		c.PushEntry(e)
	}
}

// Reset clears the combiner back to empty.
func (c *Combiner) Reset() {
	c.entries = nil
	c.totalN = 0
}

// Count returns the total number of samples across all pushed iterations.
func (c *Combiner) Count() int64 { return c.totalN }

// Len returns the number of kept (non-empty) iterations.
func (c *Combiner) Len() int { return len(c.entries) }

func (c *Combiner) positiveVarianceCount() int {
	n := 0
	for _, e := range c.entries {
		if e.variance() > 0 {
			n++
		}
	}
	return n
}

// weights returns (sum(1/var_i), sum(mean_i/var_i)) over entries with
// positive variance, via compensated accumulators so the combination
// itself does not reintroduce the cancellation C1 exists to avoid.
func (c *Combiner) weights() (wsum, wmeansum float64) {
	var ws, wm Compensated
	for _, e := range c.entries {
		v := e.variance()
		if v <= 0 {
			continue
		}
		w := 1 / v
		ws.Add(w)
		wm.Add(w * e.MeanF)
	}
	return ws.Result(), wm.Result()
}

// Value returns the combined (inverse-variance weighted) mean. If every
// kept entry has zero variance, the plain arithmetic mean is used
// instead.
func (c *Combiner) Value() (float64, error) {
	if len(c.entries) == 0 {
		return 0, ErrNoResults
	}
	if c.positiveVarianceCount() == 0 {
		var sum Compensated
		for _, e := range c.entries {
			sum.Add(e.MeanF)
		}
		return sum.Result() / float64(len(c.entries)), nil
	}
	wsum, wmeansum := c.weights()
	if wsum == 0 {
		return 0, ErrNoResults
	}
	return wmeansum / wsum, nil
}

// Variance returns the combined variance, 1/sum(1/var_i) over entries
// with positive variance.
func (c *Combiner) Variance() (float64, error) {
	if len(c.entries) == 0 {
		return 0, ErrNoResults
	}
	if c.positiveVarianceCount() == 0 {
		return 0, nil
	}
	wsum, _ := c.weights()
	if wsum == 0 {
		return 0, ErrNoResults
	}
	return 1 / wsum, nil
}

// Error returns sqrt(Variance()).
func (c *Combiner) Error() (float64, error) {
	v, err := c.Variance()
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, nil
	}
	return math.Sqrt(v), nil
}

// Chi2 returns sum((mean_i - mu)^2 / var_i) over entries with positive
// variance, where mu is the combined value.
func (c *Combiner) Chi2() (float64, error) {
	mu, err := c.Value()
	if err != nil {
		return 0, err
	}
	var chi2 Compensated
	for _, e := range c.entries {
		v := e.variance()
		if v <= 0 {
			continue
		}
		d := e.MeanF - mu
		chi2.Add(d * d / v)
	}
	return chi2.Result(), nil
}

// Dof returns kept-1 where kept is the number of entries with positive
// variance (the only ones chi2 sums over).
func (c *Combiner) Dof() int {
	k := c.positiveVarianceCount()
	if k < 1 {
		return 0
	}
	return k - 1
}

// Chi2Dof returns chi2/dof, or 0 when fewer than two entries contributed
// to chi2.
func (c *Combiner) Chi2Dof() (float64, error) {
	dof := c.Dof()
	if dof < 1 {
		return 0, nil
	}
	chi2, err := c.Chi2()
	if err != nil {
		return 0, err
	}
	return chi2 / float64(dof), nil
}

// Entries returns a defensive copy of the per-iteration serialized
// entries, in insertion order, for the binary codec.
func (c *Combiner) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
