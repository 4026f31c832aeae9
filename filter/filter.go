package filter

import (
	"fmt"

	"github.com/crud89/texturize"
)

// Filter transforms one sample into another.
//
// Apply must not modify src. dst receives the result through
// texturize.Sample.Replace, so dst may be the same sample as src for
// in-place application. Implementations hold no mutable state and are safe
// for concurrent use on distinct samples.
type Filter interface {
	// Name identifies the filter in errors and logs.
	Name() string

	// Apply writes the filtered version of src to dst.
	Apply(src, dst *texturize.Sample) error
}

// checkArgs validates the arguments common to all filters.
func checkArgs(f Filter, src, dst *texturize.Sample) error {
	if src == nil || dst == nil {
		return texturize.WrapOp(f.Name(), texturize.ErrNilSample)
	}
	return nil
}

// requireChannels fails with ErrChannelCount unless src has one of the
// allowed channel counts.
func requireChannels(f Filter, src *texturize.Sample, allowed ...int) error {
	for _, n := range allowed {
		if src.Channels() == n {
			return nil
		}
	}
	return texturize.WrapOp(f.Name(), fmt.Errorf("%w: got %d channels, want %v",
		texturize.ErrChannelCount, src.Channels(), allowed))
}
