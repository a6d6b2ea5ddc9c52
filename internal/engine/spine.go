package engine

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cwbudde/kakuhen/internal/accum"
	"github.com/cwbudde/kakuhen/internal/atomicio"
	"github.com/cwbudde/kakuhen/internal/codec"
	"github.com/cwbudde/kakuhen/internal/kerrors"
	"github.com/cwbudde/kakuhen/internal/rng"
)

const defaultSeed uint64 = 1

// Spine drives a Sampler through the iterate loop, owning the RNG
// stream, the current Options, and the running combined Result. It is
// deliberately sampler-agnostic: everything sampler-specific is reached
// through the Sampler capability interface.
type Spine struct {
	Sampler Sampler
	Result  accum.Combiner
	Opts    Options

	seed uint64
	rng  *rng.RNG
	log  *slog.Logger
}

// NewSpine wires a Sampler into a spine with the default seed (1) and a
// warn-level text logger on stderr, so verbose iteration summaries
// (logged at info level) are not shown until a logger is installed via
// SetLogger.
func NewSpine(s Sampler) *Spine {
	sp := &Spine{Sampler: s, log: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))}
	sp.SetSeed(defaultSeed)
	return sp
}

// SetLogger overrides the spine's logger, used by the CLI to install a
// level-gated handler.
func (sp *Spine) SetLogger(l *slog.Logger) { sp.log = l }

// SetSeed reseeds the RNG immediately with seed. The PCG source takes
// two 64-bit words; the second is derived deterministically from seed
// so a given seed always reproduces the same stream.
func (sp *Spine) SetSeed(seed uint64) {
	sp.seed = seed
	sp.rng = rng.New(seed, ^seed)
}

// BumpSeed sets seed = current + 1 and reseeds.
func (sp *Spine) BumpSeed() { sp.SetSeed(sp.seed + 1) }

// Seed returns the current seed value.
func (sp *Spine) Seed() uint64 { return sp.seed }

// Integrate runs niter iterations of neval draws each: saves the current
// options, applies override on top, requires Neval and Niter to be set,
// then for each iteration asks the sampler to run one batch (attaching
// UserData to every Point passed to f), pushes it into the result,
// optionally logs a verbose summary, optionally adapts, and optionally
// snapshots state, restoring the original options before returning.
func (sp *Spine) Integrate(f Integrand, override Options) (*accum.Combiner, error) {
	saved := sp.Opts
	merged := sp.Opts.Merge(override)
	defer func() { sp.Opts = saved }()
	sp.Opts = merged

	if merged.Neval == nil || merged.Niter == nil {
		return nil, kerrors.ErrUninitialized
	}
	if merged.Seed != nil && *merged.Seed != sp.seed {
		sp.SetSeed(*merged.Seed)
	}

	for iter := 1; iter <= *merged.Niter; iter++ {
		it, err := sp.Sampler.RunIter(f, *merged.Neval, sp.rng, merged.UserData)
		if err != nil {
			return nil, err
		}
		sp.Result.Push(&it)

		if merged.Verbosity != nil && *merged.Verbosity > 0 {
			sp.logIteration(iter, &it)
		}

		if merged.Adapt != nil && *merged.Adapt {
			if !sp.Sampler.Capabilities().Has(CapAdapt) {
				return nil, kerrors.ErrUnsupported
			}
			if err := sp.Sampler.Adapt(); err != nil {
				return nil, err
			}
		}

		if merged.FilePath != nil {
			if !sp.Sampler.Capabilities().Has(CapState) {
				return nil, kerrors.ErrUnsupported
			}
			path := StatePath(sp.Sampler.Prefix(false), merged.FilePath)
			if err := sp.SaveState(path); err != nil {
				return nil, err
			}
		}
	}
	return &sp.Result, nil
}

func (sp *Spine) logIteration(iter int, it *accum.Iteration) {
	value, _ := it.Value()
	errv, _ := it.Error()
	accValue, _ := sp.Result.Value()
	accErr, _ := sp.Result.Error()
	chi2dof, _ := sp.Result.Chi2Dof()
	sp.log.Info("iteration",
		"iter", iter,
		"value", value,
		"err", errv,
		"accum_value", accValue,
		"accum_err", accErr,
		"chi2dof", chi2dof,
	)
}

// SaveState writes the sampler's grid (and order, for BASIN) to path via
// the atomic write pattern, prefixed with the typed header.
func (sp *Spine) SaveState(path string) error {
	if !sp.Sampler.Capabilities().Has(CapState) {
		return kerrors.ErrUnsupported
	}
	data, err := codec.Encode(func(w io.Writer) error {
		return sp.Sampler.WriteState(w)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	return atomicio.WriteFile(path, data, 0o644)
}

// LoadState reads a state snapshot from path and restores the sampler's
// grid (and order) from it.
func (sp *Spine) LoadState(path string) error {
	if !sp.Sampler.Capabilities().Has(CapState) {
		return kerrors.ErrUnsupported
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	defer f.Close()
	return sp.Sampler.ReadState(f)
}

// SaveData writes the per-cell accumulators and result, fingerprint-
// guarded, to path.
func (sp *Spine) SaveData(path string) error {
	if !sp.Sampler.Capabilities().Has(CapData) {
		return kerrors.ErrUnsupported
	}
	data, err := codec.Encode(func(w io.Writer) error {
		return sp.Sampler.WriteData(w, &sp.Result)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	return atomicio.WriteFile(path, data, 0o644)
}

// LoadData loads a data snapshot from path, refusing to overwrite
// non-empty accumulators (kerrors.ErrNonEmptyData).
func (sp *Spine) LoadData(path string) error {
	if !sp.Sampler.Capabilities().Has(CapData) {
		return kerrors.ErrUnsupported
	}
	if sp.Sampler.HasData() || sp.Result.Count() > 0 {
		return kerrors.ErrNonEmptyData
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	defer f.Close()
	return sp.Sampler.LoadData(f, &sp.Result)
}

// AppendData reads a data snapshot from path and additively merges it
// into the current accumulators, refusing a fingerprint mismatch
// (kerrors.ErrIncompatibleFingerprint).
func (sp *Spine) AppendData(path string) error {
	if !sp.Sampler.Capabilities().Has(CapData) {
		return kerrors.ErrUnsupported
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	defer f.Close()
	return sp.Sampler.AppendData(f, &sp.Result)
}

// SaveRNG dumps the spine's RNG internal state as text to path.
func (sp *Spine) SaveRNG(path string) error {
	text, err := sp.rng.SaveText()
	if err != nil {
		return err
	}
	return atomicio.WriteFile(path, []byte(text), 0o644)
}

// LoadRNG restores the spine's RNG internal state from a text dump at
// path.
func (sp *Spine) LoadRNG(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	restored, err := rng.LoadText(string(data))
	if err != nil {
		return err
	}
	sp.rng = restored
	return nil
}
