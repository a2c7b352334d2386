package initwfn

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
)

// UniformConfig implements a configuration of a weight initializer that
// draws weights from a uniform distribution over [Low, High).
//
// If FanIn is true, Low and High are ignored and the weights of a
// layer with n inputs are drawn uniformly from [-1/√n, 1/√n), which is
// the scheme most deep learning libraries use by default for affine
// layers.
//
// If Seed is non-zero, weights are drawn from a random source seeded
// with Seed. Otherwise, Gorgonia's global random state is used.
type UniformConfig struct {
	Low, High float64
	FanIn     bool
	Seed      uint64
}

// NewUniform returns a new uniform weight initializer
func NewUniform(low, high float64, seed uint64) (*InitWFn, error) {
	config := UniformConfig{
		Low:  low,
		High: high,
		Seed: seed,
	}

	return newInitWFn(config)
}

// NewFanInUniform returns a new uniform weight initializer whose bounds
// shrink with the number of inputs to each layer
func NewFanInUniform(seed uint64) (*InitWFn, error) {
	config := UniformConfig{
		FanIn: true,
		Seed:  seed,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (u UniformConfig) Type() Type {
	return Uniform
}

// Validate returns an error if the bounds of the distribution are
// illegal
func (u UniformConfig) Validate() error {
	if !u.FanIn && u.Low >= u.High {
		return fmt.Errorf("uniform: low (%v) must be less than high (%v)",
			u.Low, u.High)
	}
	return nil
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (u UniformConfig) Create() G.InitWFn {
	if !u.FanIn && u.Seed == 0 {
		return G.Uniform(u.Low, u.High)
	}

	bounds := func(s ...int) (float64, float64) {
		if !u.FanIn {
			return u.Low, u.High
		}
		fanIn, _ := fans(s...)
		limit := 1 / math.Sqrt(float64(fanIn))
		return -limit, limit
	}

	seed := u.Seed
	if seed == 0 {
		seed = uint64(rand.Int63())
	}
	return seededUniform(rand.NewSource(seed), bounds)
}
