package search

import "github.com/crud89/texturize"

// Method selects the search structure.
type Method uint8

const (
	// KDTree searches a kd-tree over the descriptors.
	KDTree Method = iota

	// Exhaustive compares the query against every descriptor.
	Exhaustive
)

// String returns a string representation of the method.
func (m Method) String() string {
	switch m {
	case KDTree:
		return "KDTree"
	case Exhaustive:
		return "Exhaustive"
	default:
		return "Unknown"
	}
}

// Config configures an Index.
type Config struct {
	// NeighborhoodSize is the side of the square window, odd and positive.
	NeighborhoodSize int

	// Weighted scales descriptors by a Gaussian centered on the texel.
	Weighted bool

	// Method selects the search structure.
	Method Method

	// Components reduces descriptors to this many principal components.
	// Zero disables the reduction, as does a value not smaller than the
	// descriptor length.
	Components int
}

// DefaultConfig returns a 5×5 weighted kd-tree index without reduction.
func DefaultConfig() Config {
	return Config{
		NeighborhoodSize: 5,
		Weighted:         true,
		Method:           KDTree,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.NeighborhoodSize <= 0 {
		return &texturize.ConfigError{Pkg: "search", Field: "NeighborhoodSize", Reason: "must be positive"}
	}
	if c.NeighborhoodSize%2 == 0 {
		return &texturize.ConfigError{Pkg: "search", Field: "NeighborhoodSize", Reason: "must be odd"}
	}
	if c.Method > Exhaustive {
		return &texturize.ConfigError{Pkg: "search", Field: "Method", Reason: "unknown method"}
	}
	if c.Components < 0 {
		return &texturize.ConfigError{Pkg: "search", Field: "Components", Reason: "must be non-negative"}
	}
	return nil
}
