package kakuhen

import (
	"log/slog"

	"github.com/cwbudde/kakuhen/basin"
	"github.com/cwbudde/kakuhen/internal/engine"
	"github.com/cwbudde/kakuhen/internal/kerrors"
	"github.com/cwbudde/kakuhen/vegas"
)

// Sampler is the public handle on one integration run: a concrete
// algorithm (VEGAS or BASIN) driven by the shared spine's capability
// interface (see DESIGN.md for the design rationale). Construct one
// with NewVegas or NewBasin.
type Sampler struct {
	spine *engine.Spine
}

// NewVegas constructs a Sampler backed by the classical per-dimension
// adaptive grid.
func NewVegas(d int, opts vegas.Options) (*Sampler, error) {
	s, err := vegas.New(d, opts)
	if err != nil {
		return nil, err
	}
	return &Sampler{spine: engine.NewSpine(s)}, nil
}

// NewBasin constructs a Sampler backed by the coarse-marginal plus
// per-bin conditional grid.
func NewBasin(d int, opts basin.Options) (*Sampler, error) {
	s, err := basin.New(d, opts)
	if err != nil {
		return nil, err
	}
	return &Sampler{spine: engine.NewSpine(s)}, nil
}

// Dim returns the sampler's fixed dimensionality.
func (s *Sampler) Dim() int { return s.spine.Sampler.Dim() }

// Capabilities reports which optional operations this sampler supports.
func (s *Sampler) Capabilities() Capability { return s.spine.Sampler.Capabilities() }

// Supports reports whether this sampler advertises every capability in want.
func (s *Sampler) Supports(want Capability) bool { return s.spine.Sampler.Capabilities().Has(want) }

// SetLogger installs l as the destination for verbose-mode iteration
// summaries, replacing the default warn-level stderr logger.
func (s *Sampler) SetLogger(l *slog.Logger) { s.spine.SetLogger(l) }

// SetSeed reseeds the RNG stream immediately.
func (s *Sampler) SetSeed(seed uint64) { s.spine.SetSeed(seed) }

// BumpSeed advances the seed by one and reseeds, for drawing an
// independent stream without touching any other state.
func (s *Sampler) BumpSeed() { s.spine.BumpSeed() }

// Seed returns the RNG's current seed value.
func (s *Sampler) Seed() uint64 { return s.spine.Seed() }

// SetOptions merges opts into the sampler's standing defaults
// field-wise; a subsequent Integrate call with a zero-value override
// still sees these defaults.
func (s *Sampler) SetOptions(opts Options) { s.spine.Opts = s.spine.Opts.Merge(opts) }

// GetOptions returns the sampler's current standing options.
func (s *Sampler) GetOptions() Options { return s.spine.Opts }

// Integrate runs override.Niter iterations of override.Neval draws
// each, merged on top of the standing options, and returns the
// cumulative Result. Neval and Niter must be set by either the
// standing options or override.
func (s *Sampler) Integrate(f Integrand, override Options) (*Result, error) {
	return s.spine.Integrate(f, override)
}

// Reset restores a uniform grid and clears every accumulator and the
// running result.
func (s *Sampler) Reset() {
	s.spine.Sampler.Reset()
	s.spine.Result.Reset()
}

// Adapt refines the grid from the data accumulated since the last
// Adapt or Reset, then clears it. Requires CapAdapt.
func (s *Sampler) Adapt() error {
	if !s.Supports(CapAdapt) {
		return kerrors.ErrUnsupported
	}
	return s.spine.Sampler.Adapt()
}

// ClearData zeros the per-cell accumulators and the current Result
// without touching the grid.
func (s *Sampler) ClearData() {
	s.spine.Sampler.ClearData()
	s.spine.Result.Reset()
}

// Fingerprint returns the FNV-1a hash of the current grid layout, used
// to guard AppendData against mixing incompatible grids.
func (s *Sampler) Fingerprint() uint64 { return s.spine.Sampler.Fingerprint() }

// Prefix returns a stable file-naming stem, e.g. "vegas_4d" or, with
// withHash true, "basin_4d_<hex fingerprint>".
func (s *Sampler) Prefix(withHash bool) string { return s.spine.Sampler.Prefix(withHash) }

// Result returns the sampler's running combined result.
func (s *Sampler) Result() *Result { return &s.spine.Result }

// StatePath returns the default (or override) path for SaveState/LoadState.
func (s *Sampler) StatePath(override *string) string {
	return engine.StatePath(s.Prefix(false), override)
}

// DataPath returns the default (or override) path for SaveData/LoadData/AppendData.
func (s *Sampler) DataPath(override *string) string {
	return engine.DataPath(s.Prefix(true), s.Seed(), override)
}

// RNGPath returns the default (or override) path for SaveRNG/LoadRNG.
func (s *Sampler) RNGPath(override *string) string {
	return engine.RNGPath(s.Prefix(true), s.Seed(), override)
}

// SaveState writes the sampler's grid (and order, for BASIN) to path.
// Requires CapState.
func (s *Sampler) SaveState(path string) error { return s.spine.SaveState(path) }

// LoadState restores the sampler's grid (and order) from path,
// re-deriving dimensionality and grid sizes from the file.
func (s *Sampler) LoadState(path string) error { return s.spine.LoadState(path) }

// SaveData writes the per-cell accumulators and Result to path,
// fingerprint-guarded. Requires CapData.
func (s *Sampler) SaveData(path string) error { return s.spine.SaveData(path) }

// LoadData loads a data snapshot from path, refusing to overwrite
// non-empty accumulators (ErrNonEmptyData).
func (s *Sampler) LoadData(path string) error { return s.spine.LoadData(path) }

// AppendData reads a data snapshot from path and additively merges it
// into the current accumulators, refusing a fingerprint mismatch
// (ErrIncompatibleFingerprint).
func (s *Sampler) AppendData(path string) error { return s.spine.AppendData(path) }

// SaveRNG dumps the RNG's internal state as text to path.
func (s *Sampler) SaveRNG(path string) error { return s.spine.SaveRNG(path) }

// LoadRNG restores the RNG's internal state from a text dump at path.
func (s *Sampler) LoadRNG(path string) error { return s.spine.LoadRNG(path) }
