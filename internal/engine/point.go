// Package engine implements the shared sampler spine: the capability
// interface BASIN and VEGAS both satisfy, the Options lifecycle, and the
// Integrate loop.
package engine

// Point is one drawn sample: a vector in [0,1]^d, the sampler's Jacobian
// weight for that draw, a monotonic sample index, and an opaque
// caller-supplied handle. A single Point is reused across the inner
// sampling loop rather than reallocated per draw.
type Point struct {
	X        []float64
	Weight   float64
	Index    int64
	UserData any
}

// Integrand is the user function being integrated. It must be pure with
// respect to anything other than p.UserData: a panic inside f is fatal
// and propagates out of Integrate.
type Integrand func(p *Point) float64
