package synth

import (
	"math"

	"github.com/crud89/texturize"
)

// Config configures a Synthesizer.
type Config struct {
	// Iterations bounds the number of refinement passes. Zero keeps the
	// initial assignment.
	Iterations int

	// Tolerance stops refinement once a pass improves the total cost by
	// less than this fraction.
	Tolerance float64

	// Seed drives the random initialization. Equal seeds give equal results.
	Seed uint64

	// PatchSize is the side of the random patches the output is
	// initialized with. Ignored when a control map is given.
	PatchSize int

	// Coherence adds the continuations of neighboring assignments to the
	// candidates of every texel.
	Coherence bool

	// Blend averages the colors predicted by a texel's neighbors instead of
	// copying the color of its own assignment.
	Blend bool
}

// DefaultConfig returns 6 coherent passes with a tolerance of 1e-3,
// initialized from 8×8 patches.
func DefaultConfig() Config {
	return Config{
		Iterations: 6,
		Tolerance:  1e-3,
		PatchSize:  8,
		Coherence:  true,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Iterations < 0 {
		return &texturize.ConfigError{Pkg: "synth", Field: "Iterations", Reason: "must be non-negative"}
	}
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) {
		return &texturize.ConfigError{Pkg: "synth", Field: "Tolerance", Reason: "must be non-negative"}
	}
	if c.PatchSize < 1 {
		return &texturize.ConfigError{Pkg: "synth", Field: "PatchSize", Reason: "must be positive"}
	}
	return nil
}
