package engine

// Options holds the spine's per-integrate configuration. All fields are
// pointers so Merge can tell "explicitly set" apart from "left at
// whatever the sampler already has", mirroring the teacher's
// overridable-config pattern (ConvergenceConfig / cmd/run.go flag
// binding) generalized to a plain struct rather than cobra flags.
type Options struct {
	Neval            *int
	Niter            *int
	Adapt            *bool
	CollectAdaptData *bool // VEGAS only
	Seed             *uint64
	RelTol           *float64 // reserved, not used for control
	AbsTol           *float64 // reserved, not used for control
	Verbosity        *int
	UserData         any // attached to every Point passed to the integrand
	FilePath         *string
}

// Merge returns a copy of base with every non-nil field of override
// applied on top, field-wise.
func (base Options) Merge(override Options) Options {
	out := base
	if override.Neval != nil {
		out.Neval = override.Neval
	}
	if override.Niter != nil {
		out.Niter = override.Niter
	}
	if override.Adapt != nil {
		out.Adapt = override.Adapt
	}
	if override.CollectAdaptData != nil {
		out.CollectAdaptData = override.CollectAdaptData
	}
	if override.Seed != nil {
		out.Seed = override.Seed
	}
	if override.RelTol != nil {
		out.RelTol = override.RelTol
	}
	if override.AbsTol != nil {
		out.AbsTol = override.AbsTol
	}
	if override.Verbosity != nil {
		out.Verbosity = override.Verbosity
	}
	if override.UserData != nil {
		out.UserData = override.UserData
	}
	if override.FilePath != nil {
		out.FilePath = override.FilePath
	}
	return out
}
