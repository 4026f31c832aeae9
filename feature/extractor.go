package feature

import (
	"fmt"

	"github.com/crud89/texturize"
	"github.com/crud89/texturize/filter"
)

// Config configures an Extractor.
type Config struct {
	// Bins is the histogram resolution of the threshold.
	// Zero means filter.DefaultThresholdBins.
	Bins int

	// Range divides distances and clamps them to [0, 1]. Zero keeps raw
	// distances in texels.
	Range float64

	// Wrap measures distances on the torus. Synthesized textures tile, so
	// this is the default.
	Wrap bool

	// Signed makes distances inside features negative.
	Signed bool
}

// DefaultConfig returns the default extractor configuration:
// 256 bins, a distance range of 8 texels, toroidal distances.
func DefaultConfig() Config {
	return Config{
		Bins:  filter.DefaultThresholdBins,
		Range: 8,
		Wrap:  true,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Bins < 0 {
		return &texturize.ConfigError{Pkg: "feature", Field: "Bins", Reason: "must be non-negative"}
	}
	if c.Bins == 1 {
		return &texturize.ConfigError{Pkg: "feature", Field: "Bins", Reason: "must be at least 2"}
	}
	if c.Range < 0 {
		return &texturize.ConfigError{Pkg: "feature", Field: "Range", Reason: "must be non-negative"}
	}
	return nil
}

// Extractor converts analysis channels into distance-to-feature channels
// with the cascade threshold -> distance. It is immutable and safe for
// concurrent use.
type Extractor struct {
	cfg     Config
	cascade *filter.Cascade
}

// NewExtractor creates an extractor. Returns a *texturize.ConfigError if
// the configuration is invalid.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cascade := filter.NewCascade(
		&filter.DynamicThreshold{Bins: cfg.Bins},
		&filter.FeatureDistance{Range: cfg.Range, Wrap: cfg.Wrap, Signed: cfg.Signed},
	)
	return &Extractor{cfg: cfg, cascade: cascade}, nil
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Filter exposes the underlying cascade, e.g. to extend it.
func (e *Extractor) Filter() filter.Filter {
	return e.cascade
}

// Extract returns one distance channel per channel of src. Channels are
// processed independently and stacked in order.
func (e *Extractor) Extract(src *texturize.Sample) (*texturize.Sample, error) {
	if src == nil {
		return nil, texturize.WrapOp("feature.Extract", texturize.ErrNilSample)
	}

	if src.Channels() == 1 {
		out := texturize.MustSample(1, 1, 1)
		if err := e.cascade.Apply(src, out); err != nil {
			return nil, texturize.WrapOp("feature.Extract", err)
		}
		return out, nil
	}

	planes := make([]*texturize.Sample, src.Channels())
	for c := range planes {
		plane := texturize.MustSample(1, 1, 1)
		if err := src.Extract(c, 1, plane); err != nil {
			return nil, texturize.WrapOp("feature.Extract", err)
		}
		if err := e.cascade.Apply(plane, plane); err != nil {
			return nil, texturize.WrapOp(fmt.Sprintf("feature.Extract channel %d", c), err)
		}
		planes[c] = plane
	}
	return texturize.Concat(planes...)
}
