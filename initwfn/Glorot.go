package initwfn

import (
	"fmt"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
)

// GlorotUConfig implements a configuration of the Glorot Uniform
// initialization algorithm. If Seed is non-zero, weights are drawn
// from a random source seeded with Seed. Otherwise, Gorgonia's global
// random state is used.
type GlorotUConfig struct {
	Gain float64
	Seed uint64
}

// NewGlorotU returns a new Glorot Uniform weight initializer
func NewGlorotU(gain float64, seed uint64) (*InitWFn, error) {
	config := GlorotUConfig{
		Gain: gain,
		Seed: seed,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotUConfig) Type() Type {
	return GlorotU
}

// Validate returns an error if the gain is not positive
func (g GlorotUConfig) Validate() error {
	if g.Gain <= 0 {
		return fmt.Errorf("glorotU: gain must be positive, have %v", g.Gain)
	}
	return nil
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GlorotUConfig) Create() G.InitWFn {
	if g.Seed == 0 {
		return G.GlorotU(g.Gain)
	}

	bounds := func(s ...int) (float64, float64) {
		limit := glorotLimit(g.Gain, s...)
		return -limit, limit
	}
	return seededUniform(rand.NewSource(g.Seed), bounds)
}

// GlorotNConfig implements a configuration of the Glorot Normal
// initialization algorithm.
type GlorotNConfig struct {
	Gain float64
}

// NewGlorotN returns a new Glorot Normal weight initializer.
func NewGlorotN(gain float64) (*InitWFn, error) {
	config := GlorotNConfig{
		Gain: gain,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by the
// configuration.
func (g GlorotNConfig) Type() Type {
	return GlorotN
}

// Validate returns an error if the gain is not positive
func (g GlorotNConfig) Validate() error {
	if g.Gain <= 0 {
		return fmt.Errorf("glorotN: gain must be positive, have %v", g.Gain)
	}
	return nil
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GlorotNConfig) Create() G.InitWFn {
	return G.GlorotN(g.Gain)
}
