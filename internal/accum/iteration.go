package accum

import (
	"math"

	"github.com/cwbudde/kakuhen/internal/kerrors"
)

// ErrEmptyAccumulator is returned when a statistic is requested from an
// Iteration that has accumulated zero samples.
var ErrEmptyAccumulator = kerrors.ErrEmptyAccumulator

// Iteration holds the running sums for one batch of samples: Sf = sum(f),
// Sf2 = sum(f^2), and the sample count n. It reports the batch mean,
// variance-of-the-mean, and standard error.
type Iteration struct {
	sf  Compensated
	sf2 Compensated
	n   int64
}

// Accumulate adds one sample f, computing f*f internally.
func (it *Iteration) Accumulate(f float64) {
	it.sf.Add(f)
	it.sf2.Add(f * f)
	it.n++
}

// AccumulateSplit adds one sample given both f and f2 explicitly, used
// when merging pre-aggregated data rather than raw samples.
func (it *Iteration) AccumulateSplit(f, f2 float64) {
	it.sf.Add(f)
	it.sf2.Add(f2)
	it.n++
}

// Merge folds another Iteration's sums and count into this one.
func (it *Iteration) Merge(other *Iteration) {
	it.sf.Merge(&other.sf)
	it.sf2.Merge(&other.sf2)
	it.n += other.n
}

// Reset clears the accumulator back to empty.
func (it *Iteration) Reset() {
	it.sf.Reset(0)
	it.sf2.Reset(0)
	it.n = 0
}

// Count returns the number of accumulated samples.
func (it *Iteration) Count() int64 { return it.n }

// SumF returns the raw (renormalized) sum of f, for serialization.
func (it *Iteration) SumF() float64 { return it.sf.Result() }

// SumF2 returns the raw (renormalized) sum of f^2, for serialization.
func (it *Iteration) SumF2() float64 { return it.sf2.Result() }

// FromSums reconstructs an Iteration from raw sums and a count. The
// data-file codec does not use it: it reads results back as Entry
// values.
func FromSums(sf, sf2 float64, n int64) Iteration {
	var it Iteration
	it.sf.Reset(sf)
	it.sf2.Reset(sf2)
	it.n = n
	return it
}

// Value returns f/n, defined for n >= 1.
func (it *Iteration) Value() (float64, error) {
	if it.n < 1 {
		return 0, ErrEmptyAccumulator
	}
	return it.sf.Result() / float64(it.n), nil
}

// Mean is an alias for Value, the batch's <f>.
func (it *Iteration) Mean() (float64, error) { return it.Value() }

// Variance returns Var(<f>) = (Sf2/n - <f>^2)/(n-1), defined only for
// n >= 2.
func (it *Iteration) Variance() (float64, error) {
	if it.n < 2 {
		return 0, ErrEmptyAccumulator
	}
	n := float64(it.n)
	mean := it.sf.Result() / n
	m2 := it.sf2.Result()/n - mean*mean
	if m2 < 0 {
		// Guard against a tiny negative value from floating point
		// cancellation when the sample is (near-)constant.
		m2 = 0
	}
	return m2 / (n - 1), nil
}

// Error returns sqrt(Variance()); 0 for a single sample, error for n==0.
func (it *Iteration) Error() (float64, error) {
	if it.n == 1 {
		return 0, nil
	}
	v, err := it.Variance()
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}
