package engine

import (
	"io"

	"github.com/cwbudde/kakuhen/internal/accum"
	"github.com/cwbudde/kakuhen/internal/rng"
)

// Sampler is the capability interface both VEGAS and BASIN implement.
// The spine drives iteration through RunIter alone; everything else is
// gated behind Capabilities().
type Sampler interface {
	// Dim returns the sampler's fixed dimensionality.
	Dim() int

	// Capabilities reports which optional operations this sampler
	// supports (CapAdapt, CapState, CapData).
	Capabilities() Capability

	// RunIter draws neval points from gen, evaluates f at each, and
	// returns the resulting iteration accumulator. It also folds each
	// sample into the sampler's own per-cell accumulators for a later
	// Adapt call. userData is attached to every Point passed to f.
	RunIter(f Integrand, neval int, gen *rng.RNG, userData any) (accum.Iteration, error)

	// Reset restores a uniform grid and clears the per-cell accumulators.
	// The running result is owned by the spine and is not touched.
	Reset()

	// Adapt refines the grid from the accumulated per-cell data, then
	// clears it. Requires CapAdapt.
	Adapt() error

	// ClearData zeros the per-cell accumulators without touching the
	// grid or the spine-owned result.
	ClearData()

	// HasData reports whether the per-cell accumulators are non-empty;
	// the spine combines it with its own result count to guard LoadData
	// against silently discarding in-memory data.
	HasData() bool

	// Fingerprint returns the FNV-1a hash of the current grid layout.
	Fingerprint() uint64

	// Prefix returns a stable name prefix for file naming, e.g.
	// "vegas_4d" or, with withHash true, "basin_4d_<hex fingerprint>".
	Prefix(withHash bool) string

	// WriteState/ReadState (de)serialize the grid (and, for BASIN, the
	// sampling order). Requires CapState.
	WriteState(w io.Writer) error
	ReadState(r io.Reader) error

	// WriteData serializes the per-cell accumulators and result, guarded
	// by the current fingerprint. Requires CapData. The spine owns the
	// Result combiner; it is passed in explicitly rather than held by
	// the sampler.
	WriteData(w io.Writer, result *accum.Combiner) error

	// LoadData replaces the per-cell accumulators and result from r. The
	// caller (spine) is responsible for the NonEmptyData guard via
	// HasData before calling this.
	LoadData(r io.Reader, result *accum.Combiner) error

	// AppendData reads a fingerprint-guarded data stream and additively
	// merges it into the current accumulators and result, failing with
	// kerrors.ErrIncompatibleFingerprint on a fingerprint mismatch.
	AppendData(r io.Reader, result *accum.Combiner) error
}
