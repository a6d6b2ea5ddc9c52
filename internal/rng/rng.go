// Package rng wraps math/rand/v2's PCG source with a save/load contract
// for the sampler's random stream: a textual dump of the internal
// state, loadable only by an RNG of the same kind (the .khr format).
// PCG is the only generator in the module's dependency set (stdlib or
// otherwise) that exposes MarshalBinary/UnmarshalBinary.
package rng

import (
	"encoding/hex"
	"fmt"
	"math/rand/v2"
)

// RNG is the sampler's random source: a *rand.Rand backed by a *rand.PCG,
// kept alongside the PCG itself so its binary state can be dumped and
// restored independently of the higher-level convenience methods.
type RNG struct {
	pcg *rand.PCG
	r   *rand.Rand
}

// New seeds a fresh RNG from two uint64 seeds, as rand.NewPCG requires.
func New(seed1, seed2 uint64) *RNG {
	pcg := rand.NewPCG(seed1, seed2)
	return &RNG{pcg: pcg, r: rand.New(pcg)}
}

// Float64 returns a uniform sample in [0, 1), one draw per dimension
// during Point generation.
func (g *RNG) Float64() float64 { return g.r.Float64() }

// SaveText dumps the PCG's internal state as the hex-encoded byte form
// of its MarshalBinary output, the textual .khr payload.
func (g *RNG) SaveText() (string, error) {
	b, err := g.pcg.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("rng: marshal state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// LoadText restores a PCG's internal state from a string previously
// produced by SaveText. The restored RNG can only be produced by
// LoadText applied to a dump from the same generator kind (PCG); cross-
// algorithm portability is not supported.
func LoadText(text string) (*RNG, error) {
	b, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("rng: decode state: %w", err)
	}
	pcg := new(rand.PCG)
	if err := pcg.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("rng: unmarshal state: %w", err)
	}
	return &RNG{pcg: pcg, r: rand.New(pcg)}, nil
}
