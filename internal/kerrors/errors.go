// Package kerrors holds the sentinel error taxonomy shared by every layer
// of the module, so that internal packages and the public API package
// refer to the exact same error values and errors.Is works across
// package boundaries.
package kerrors

import "errors"

var (
	// ErrInvalidArgument covers zero dimension, K<=1, min>=max, unsorted
	// edges, alpha<0, and similar construction-time validation failures.
	ErrInvalidArgument = errors.New("kakuhen: invalid argument")

	// ErrUninitialized is returned when Integrate is called without both
	// Neval and Niter set, by override or by a prior SetOptions call.
	ErrUninitialized = errors.New("kakuhen: neval and niter must be set before integrating")

	// ErrHeaderMismatch is returned when a loaded file's magic, algorithm
	// id, file kind, or type tags do not match what the sampler expects.
	ErrHeaderMismatch = errors.New("kakuhen: file header mismatch")

	// ErrIncompatibleFingerprint is returned by AppendData when the
	// on-disk fingerprint does not match the current grid's fingerprint.
	ErrIncompatibleFingerprint = errors.New("kakuhen: incompatible fingerprint")

	// ErrNonEmptyData is returned by LoadData when the sampler's current
	// per-cell accumulators or result are non-empty.
	ErrNonEmptyData = errors.New("kakuhen: refusing to load data into non-empty accumulators")

	// ErrNoResults is returned when a statistic is requested from an
	// empty Result combiner.
	ErrNoResults = errors.New("kakuhen: no results accumulated")

	// ErrEmptyAccumulator is returned when a statistic is requested from
	// an iteration accumulator with n == 0 (also n == 1 for Variance;
	// Error reports 0 for a single sample).
	ErrEmptyAccumulator = errors.New("kakuhen: empty accumulator")

	// ErrUnsupported is returned when a capability (adapt, data
	// save/load) is requested of a sampler that does not advertise it.
	ErrUnsupported = errors.New("kakuhen: operation not supported by this sampler")

	// ErrIO wraps any underlying stream failure during save/load.
	ErrIO = errors.New("kakuhen: io error")
)
