// Package vegas implements the classical per-dimension adaptive grid
// sampler: d independent 1-D grids of K cells, refined after each
// iteration by smoothing, damping, and equal-mass rebinning.
// It shares the grid-refinement primitives with BASIN via internal/gridmath
// but owns its own grid and per-cell accumulators.
package vegas

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/cwbudde/kakuhen/internal/accum"
	"github.com/cwbudde/kakuhen/internal/codec"
	"github.com/cwbudde/kakuhen/internal/datafmt"
	"github.com/cwbudde/kakuhen/internal/engine"
	"github.com/cwbudde/kakuhen/internal/fingerprint"
	"github.com/cwbudde/kakuhen/internal/gridmath"
	"github.com/cwbudde/kakuhen/internal/kerrors"
	"github.com/cwbudde/kakuhen/internal/rng"
)

// DefaultAlpha and DefaultK are the default damping exponent and grid
// resolution.
const (
	DefaultAlpha = 0.75
	DefaultK     = 128

	// epsilon floors the raw per-cell importance density before
	// smoothing (the "max(epsilon, ...)" step). Small enough to never
	// visibly perturb a cell that received any samples, while keeping
	// completely empty cells from freezing at exactly zero density
	// forever.
	epsilon = 1e-12
)

// Options configures a new Sampler: Alpha is the damping exponent, K the
// number of grid cells per dimension.
type Options struct {
	Alpha float64
	K     int
}

// DefaultOptions returns {Alpha: 0.75, K: 128}.
func DefaultOptions() Options { return Options{Alpha: DefaultAlpha, K: DefaultK} }

// Sampler is the VEGAS grid: d independent strictly-increasing edge rows
// of K cells each, plus one grid-cell accumulator (C4) per cell.
type Sampler struct {
	d     int
	k     int
	alpha float64

	grid    [][]float64 // [d][K] edges, grid[i][K-1] == 1
	cellSum [][]float64 // [d][K] f^2*w^2 accumulated per cell
	cellN   [][]int64   // [d][K] hit counts

	nTotal int64
}

// New constructs a Sampler of dimension d with the given options.
func New(d int, opts Options) (*Sampler, error) {
	if d <= 0 {
		return nil, kerrors.ErrInvalidArgument
	}
	if opts.K <= 1 {
		return nil, kerrors.ErrInvalidArgument
	}
	if opts.Alpha < 0 {
		return nil, kerrors.ErrInvalidArgument
	}
	s := &Sampler{d: d, k: opts.K, alpha: opts.Alpha}
	s.allocate()
	s.Reset()
	return s, nil
}

func (s *Sampler) allocate() {
	s.grid = make([][]float64, s.d)
	s.cellSum = make([][]float64, s.d)
	s.cellN = make([][]int64, s.d)
	for i := range s.grid {
		s.grid[i] = make([]float64, s.k)
		s.cellSum[i] = make([]float64, s.k)
		s.cellN[i] = make([]int64, s.k)
	}
}

// Dim returns d.
func (s *Sampler) Dim() int { return s.d }

// Capabilities reports that VEGAS supports adaptation, state save/load,
// and data save/load/append.
func (s *Sampler) Capabilities() engine.Capability {
	return engine.CapAdapt | engine.CapState | engine.CapData
}

// Reset restores the uniform grid g[i,j] = (j+1)/K and clears all data.
func (s *Sampler) Reset() {
	for i := 0; i < s.d; i++ {
		for j := 0; j < s.k; j++ {
			s.grid[i][j] = float64(j+1) / float64(s.k)
		}
	}
	s.ClearData()
}

// ClearData zeros the per-cell accumulators without touching the grid.
func (s *Sampler) ClearData() {
	for i := 0; i < s.d; i++ {
		for j := 0; j < s.k; j++ {
			s.cellSum[i][j] = 0
			s.cellN[i][j] = 0
		}
	}
	s.nTotal = 0
}

// HasData reports whether any sample has been accumulated since the last
// ClearData/Reset.
func (s *Sampler) HasData() bool { return s.nTotal > 0 }

// RunIter draws neval points, one coordinate per dimension independently,
// evaluates f, and folds f^2*w^2 into the hit cell's accumulator for the
// next Adapt. userData is attached to every Point passed to f.
func (s *Sampler) RunIter(f engine.Integrand, neval int, gen *rng.RNG, userData any) (accum.Iteration, error) {
	var it accum.Iteration
	p := &engine.Point{X: make([]float64, s.d), UserData: userData}
	idx := make([]int, s.d)

	for n := 0; n < neval; n++ {
		weight := 1.0
		for i := 0; i < s.d; i++ {
			u := gen.Float64()
			uk := u * float64(s.k)
			j := int(uk)
			if j >= s.k {
				j = s.k - 1
			}
			frac := uk - float64(j)
			lo := 0.0
			if j > 0 {
				lo = s.grid[i][j-1]
			}
			hi := s.grid[i][j]
			p.X[i] = lo + frac*(hi-lo)
			weight *= float64(s.k) * (hi - lo)
			idx[i] = j
		}
		p.Weight = weight
		p.Index = int64(n)

		fw := f(p) * weight
		it.Accumulate(fw)

		contrib := fw * fw
		for i := 0; i < s.d; i++ {
			s.cellSum[i][idx[i]] += contrib
			s.cellN[i][idx[i]]++
		}
		s.nTotal++
	}
	return it, nil
}

// Adapt refines every dimension's grid via smoothing, damping, and
// equal-mass rebinning, then clears the per-cell accumulators.
func (s *Sampler) Adapt() error {
	if s.nTotal == 0 {
		return nil
	}
	nTotalF := float64(s.nTotal)

	for i := 0; i < s.d; i++ {
		dRaw := make([]float64, s.k)
		for j := 0; j < s.k; j++ {
			v := s.cellSum[i][j] / (nTotalF * nTotalF)
			if v < epsilon {
				v = epsilon
			}
			dRaw[j] = v
		}

		smoothed := gridmath.SmoothClassic(dRaw)
		damped := gridmath.Damp(smoothed, s.alpha)

		newEdges, skipped := gridmath.EqualMassRebin(s.grid[i], damped)
		if skipped {
			slog.Debug("vegas adapt skipped: mean importance density below DBL_MIN", "dim", i)
			continue
		}
		s.grid[i] = newEdges
	}

	s.ClearData()
	return nil
}

// Fingerprint hashes (d, K, raw edge bytes) with FNV-1a.
func (s *Sampler) Fingerprint() uint64 {
	edges := make([]float64, 0, s.d*s.k)
	for i := 0; i < s.d; i++ {
		edges = append(edges, s.grid[i]...)
	}
	return fingerprint.Of(s.d, []int{s.k}, edges)
}

// Prefix returns "vegas_<d>d", or with withHash, "vegas_<d>d_<hex fingerprint>".
func (s *Sampler) Prefix(withHash bool) string {
	p := fmt.Sprintf("vegas_%dd", s.d)
	if withHash {
		p += fmt.Sprintf("_%x", s.Fingerprint())
	}
	return p
}

// WriteState writes the VEGAS state body: size d, size K, u64 cell_count,
// and d*K grid values.
func (s *Sampler) WriteState(w io.Writer) error {
	h := codec.DefaultHeader(codec.AlgVegas, codec.KindState)
	if err := codec.WriteHeader(w, h); err != nil {
		return err
	}
	if err := codec.WriteInt64(w, int64(s.d)); err != nil {
		return err
	}
	if err := codec.WriteInt64(w, int64(s.k)); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, uint64(s.d*s.k)); err != nil {
		return err
	}
	for i := 0; i < s.d; i++ {
		if err := codec.WriteFloat64SliceRaw(w, s.grid[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadState reads a VEGAS state body, re-deriving d and K from the file
// rather than trusting the values the Sampler was constructed with.
func (s *Sampler) ReadState(r io.Reader) error {
	h, err := codec.ReadHeader(r)
	if err != nil {
		return err
	}
	if err := h.Expect(codec.AlgVegas, codec.KindState); err != nil {
		return err
	}
	d64, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	k64, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	if _, err := codec.ReadUint64(r); err != nil { // cell_count
		return err
	}

	s.d, s.k = int(d64), int(k64)
	s.allocate()
	for i := 0; i < s.d; i++ {
		vals, err := codec.ReadFloat64SliceRaw(r, s.k)
		if err != nil {
			return err
		}
		s.grid[i] = vals
	}
	return nil
}

// WriteData writes the VEGAS data body: header, size d, size K, u64
// fingerprint, the combined result's entries, total cell count, and the
// per-cell accumulator array.
func (s *Sampler) WriteData(w io.Writer, result *accum.Combiner) error {
	h := codec.DefaultHeader(codec.AlgVegas, codec.KindData)
	if err := codec.WriteHeader(w, h); err != nil {
		return err
	}
	if err := codec.WriteInt64(w, int64(s.d)); err != nil {
		return err
	}
	if err := codec.WriteInt64(w, int64(s.k)); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, s.Fingerprint()); err != nil {
		return err
	}
	if err := datafmt.WriteResult(w, result); err != nil {
		return err
	}
	return datafmt.WriteCells(w, s.cellSum, s.cellN, s.nTotal)
}

// LoadData replaces the current per-cell accumulators and result from r.
func (s *Sampler) LoadData(r io.Reader, result *accum.Combiner) error {
	h, err := codec.ReadHeader(r)
	if err != nil {
		return err
	}
	if err := h.Expect(codec.AlgVegas, codec.KindData); err != nil {
		return err
	}
	d64, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	k64, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	if int(d64) != s.d || int(k64) != s.k {
		return kerrors.ErrHeaderMismatch
	}
	if _, err := codec.ReadUint64(r); err != nil { // fingerprint, unchecked on plain load
		return err
	}

	entries, err := datafmt.ReadResult(r)
	if err != nil {
		return err
	}
	for _, e := range entries {
		result.PushEntry(e)
	}

	sums, ns, total, err := datafmt.ReadCells(r, s.d, s.k)
	if err != nil {
		return err
	}
	s.cellSum, s.cellN, s.nTotal = sums, ns, total
	return nil
}

// AppendData reads a fingerprint-guarded data stream and additively
// merges it into the current accumulators and result.
func (s *Sampler) AppendData(r io.Reader, result *accum.Combiner) error {
	h, err := codec.ReadHeader(r)
	if err != nil {
		return err
	}
	if err := h.Expect(codec.AlgVegas, codec.KindData); err != nil {
		return err
	}
	d64, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	k64, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	if int(d64) != s.d || int(k64) != s.k {
		return kerrors.ErrHeaderMismatch
	}
	fp, err := codec.ReadUint64(r)
	if err != nil {
		return err
	}
	if fp != s.Fingerprint() {
		return kerrors.ErrIncompatibleFingerprint
	}

	entries, err := datafmt.ReadResult(r)
	if err != nil {
		return err
	}
	for _, e := range entries {
		result.PushEntry(e)
	}

	sums, ns, total, err := datafmt.ReadCells(r, s.d, s.k)
	if err != nil {
		return err
	}
	for i := 0; i < s.d; i++ {
		for j := 0; j < s.k; j++ {
			s.cellSum[i][j] += sums[i][j]
			s.cellN[i][j] += ns[i][j]
		}
	}
	s.nTotal += total
	return nil
}
