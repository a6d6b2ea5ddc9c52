package main

import (
	"fmt"
	"math"

	"github.com/cwbudde/kakuhen"
)

// builtinIntegrand returns one of a small library of named test
// integrands, since a CLI has no way to accept an arbitrary Go closure.
// Unknown names are rejected here with an error listing the valid ones.
func builtinIntegrand(name string) (kakuhen.Integrand, error) {
	switch name {
	case "constant":
		return func(p *kakuhen.Point) float64 { return 1 }, nil
	case "product":
		return func(p *kakuhen.Point) float64 {
			v := 1.0
			for _, x := range p.X {
				v *= x
			}
			return v
		}, nil
	case "ridge":
		return func(p *kakuhen.Point) float64 {
			if len(p.X) < 2 {
				return 1
			}
			d := p.X[0] - p.X[1]
			return math.Exp(-200 * d * d)
		}, nil
	case "gaussian":
		return func(p *kakuhen.Point) float64 {
			sum := 0.0
			for _, x := range p.X {
				d := x - 0.5
				sum += d * d
			}
			return math.Exp(-50 * sum)
		}, nil
	default:
		return nil, fmt.Errorf("unknown integrand %q (want constant, product, ridge, gaussian)", name)
	}
}
