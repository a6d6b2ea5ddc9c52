package accum

// Cell is the grid cell accumulator: a plain (sum, count) pair
// accumulating f^2-weighted contributions that fell into one grid cell,
// used to drive adaptation. Unlike Compensated, this is a bare running
// sum: the adaptation kernel always normalizes by the total count, so
// catastrophic cancellation is not a concern here.
type Cell struct {
	Sum float64
	N   int64
}

// Add accumulates one contribution into the cell.
func (c *Cell) Add(v float64) {
	c.Sum += v
	c.N++
}

// Merge adds another cell's sum and count into this one.
func (c *Cell) Merge(other Cell) {
	c.Sum += other.Sum
	c.N += other.N
}

// Reset zeros the cell.
func (c *Cell) Reset() {
	c.Sum = 0
	c.N = 0
}
