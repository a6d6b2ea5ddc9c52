// Package accum implements the statistical accumulators shared by the
// VEGAS and BASIN samplers: compensated summation, per-iteration
// mean/variance, inverse-variance-weighted combination across iterations,
// and the plain per-cell sums used to drive grid adaptation.
package accum

// Compensated is a Knuth-Moller compensated summation accumulator: a
// rounded running sum paired with an exact error carry, so that summing a
// long sequence of values does not accumulate rounding error the way a
// naive running sum does.
//
// Zero value is a valid, empty accumulator.
type Compensated struct {
	sum   float64
	carry float64
}

// twoSum returns (s', e') such that s'+e' equals s+v to full precision,
// using the Knuth two-sum transform.
func twoSum(s, v float64) (sp, e float64) {
	sp = s + v
	ap := sp - v
	bp := sp - ap
	e = (s - ap) + (v - bp)
	return sp, e
}

// Add accumulates v into the running sum.
func (c *Compensated) Add(v float64) {
	sp, e := twoSum(c.sum, v)
	c.sum = sp
	c.carry += e
}

// Result returns the current non-destructive renormalized value.
func (c *Compensated) Result() float64 {
	sp, e := twoSum(c.sum, c.carry)
	return sp + e
}

// Reset sets the accumulator to v (default 0).
func (c *Compensated) Reset(v float64) {
	c.sum = v
	c.carry = 0
}

// Merge folds another accumulator's reported value into this one as a
// single add.
func (c *Compensated) Merge(other *Compensated) {
	c.Add(other.Result())
}
