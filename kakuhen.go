// Package kakuhen is the public entry point for this module's adaptive
// Monte Carlo integrators: VEGAS (./vegas, classical per-dimension grid
// refinement) and BASIN (./basin, coarse marginal plus per-bin
// conditional refinement). It re-exports the shared plumbing from
// internal/engine and internal/kerrors so callers never need to import
// internal packages directly.
package kakuhen

import (
	"github.com/cwbudde/kakuhen/internal/accum"
	"github.com/cwbudde/kakuhen/internal/engine"
	"github.com/cwbudde/kakuhen/internal/kerrors"
)

// Point is one drawn sample: a vector in [0,1]^d, the sampler's Jacobian
// weight for that draw, a monotonic sample index, and an opaque
// caller-supplied handle.
type Point = engine.Point

// Integrand is the function being integrated. A panic inside f is
// fatal and propagates out of Integrate.
type Integrand = engine.Integrand

// Options configures a call to Integrate, or the sampler's standing
// defaults via SetOptions. All fields are pointers so Merge can
// distinguish "not set" from "set to the zero value".
type Options = engine.Options

// Capability is the bit set a Sampler advertises at construction.
type Capability = engine.Capability

// Result is the combined statistic across every iteration pushed into
// it: weighted mean, error, and chi-square/dof.
type Result = accum.Combiner

const (
	CapAdapt = engine.CapAdapt
	CapState = engine.CapState
	CapData  = engine.CapData
)

// Sentinel errors, shared verbatim with every internal layer so
// errors.Is works regardless of which package surfaced the failure.
var (
	ErrInvalidArgument         = kerrors.ErrInvalidArgument
	ErrUninitialized           = kerrors.ErrUninitialized
	ErrHeaderMismatch          = kerrors.ErrHeaderMismatch
	ErrIncompatibleFingerprint = kerrors.ErrIncompatibleFingerprint
	ErrNonEmptyData            = kerrors.ErrNonEmptyData
	ErrNoResults               = kerrors.ErrNoResults
	ErrEmptyAccumulator        = kerrors.ErrEmptyAccumulator
	ErrUnsupported             = kerrors.ErrUnsupported
	ErrIO                      = kerrors.ErrIO
)
