package feature

import (
	"fmt"

	"github.com/crud89/texturize"
	"github.com/crud89/texturize/filter"
)

// ErrNoFeatures is returned when a feature set would have no channels.
var ErrNoFeatures = fmt.Errorf("%w: no feature channels", texturize.ErrPrecondition)

// ColorSpace selects how exemplar colors enter the appearance space.
type ColorSpace uint8

const (
	// ColorRGB uses the exemplar channels as stored.
	ColorRGB ColorSpace = iota

	// ColorLab converts RGB exemplars to CIE L*a*b* first.
	ColorLab
)

// String returns a string representation of the color space.
func (c ColorSpace) String() string {
	switch c {
	case ColorRGB:
		return "RGB"
	case ColorLab:
		return "Lab"
	default:
		return "Unknown"
	}
}

// AppearanceConfig configures the appearance-space builder.
type AppearanceConfig struct {
	// ColorSpace of the color channels.
	ColorSpace ColorSpace

	// ColorWeight scales the color channels. Zero leaves them out.
	ColorWeight float64

	// StructureWeight scales every distance channel. Zero leaves them out.
	StructureWeight float64

	// EdgeModel names the edge model whose response becomes a distance
	// channel (see filter.RegisterEdgeModel). Empty disables it.
	EdgeModel string

	// Luminance adds a distance channel computed from exemplar luminance.
	Luminance bool

	// Features configures the distance channel extraction.
	Features Config
}

// DefaultAppearanceConfig returns RGB color at weight 1, and two distance
// channels at weight 1: one from the Sobel edge response and one from
// luminance.
func DefaultAppearanceConfig() AppearanceConfig {
	return AppearanceConfig{
		ColorSpace:      ColorRGB,
		ColorWeight:     1,
		StructureWeight: 1,
		EdgeModel:       "sobel",
		Luminance:       true,
		Features:        DefaultConfig(),
	}
}

// Validate checks the configuration.
func (c AppearanceConfig) Validate() error {
	if c.ColorSpace > ColorLab {
		return &texturize.ConfigError{Pkg: "feature", Field: "ColorSpace", Reason: "unknown color space"}
	}
	if c.ColorWeight < 0 {
		return &texturize.ConfigError{Pkg: "feature", Field: "ColorWeight", Reason: "must be non-negative"}
	}
	if c.StructureWeight < 0 {
		return &texturize.ConfigError{Pkg: "feature", Field: "StructureWeight", Reason: "must be non-negative"}
	}
	return c.Features.Validate()
}

// Appearance builds feature samples from exemplars.
type Appearance struct {
	cfg       AppearanceConfig
	extractor *Extractor
	edges     *filter.EdgeDetector
}

// NewAppearance creates an appearance-space builder. The edge model is
// loaded here, so an unknown model fails early with
// texturize.ErrResourceUnavailable.
func NewAppearance(cfg AppearanceConfig) (*Appearance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	extractor, err := NewExtractor(cfg.Features)
	if err != nil {
		return nil, err
	}

	a := &Appearance{cfg: cfg, extractor: extractor}
	if cfg.EdgeModel != "" && cfg.StructureWeight > 0 {
		a.edges, err = filter.NewEdgeDetector(cfg.EdgeModel)
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Config returns the builder configuration.
func (a *Appearance) Config() AppearanceConfig {
	return a.cfg
}

// Build returns the feature sample of exemplar: the weighted color
// channels, then the weighted edge distance channel, then the weighted
// luminance distance channel, each present only if enabled.
//
// Exemplars with fewer than three channels contribute their first channel
// as color; others their first three. A trailing alpha channel is ignored.
func (a *Appearance) Build(exemplar *texturize.Sample) (*texturize.Sample, error) {
	if exemplar == nil {
		return nil, texturize.WrapOp("feature.Build", texturize.ErrNilSample)
	}

	base, err := baseColor(exemplar)
	if err != nil {
		return nil, texturize.WrapOp("feature.Build", err)
	}
	color, err := a.color(base)
	if err != nil {
		return nil, texturize.WrapOp("feature.Build", err)
	}

	// Structure is analyzed on the stored colors, so it does not depend on
	// the color space the color channels are matched in.
	sources := []Source{{Sample: color, Weight: a.cfg.ColorWeight}}
	if a.cfg.StructureWeight > 0 {
		if a.edges != nil {
			edges := texturize.MustSample(1, 1, 1)
			if err := a.edges.Apply(base, edges); err != nil {
				return nil, texturize.WrapOp("feature.Build", err)
			}
			dist, err := a.extractor.Extract(edges)
			if err != nil {
				return nil, err
			}
			sources = append(sources, Source{Sample: dist, Weight: a.cfg.StructureWeight})
		}
		if a.cfg.Luminance {
			lum, err := luminance(base)
			if err != nil {
				return nil, texturize.WrapOp("feature.Build", err)
			}
			dist, err := a.extractor.Extract(lum)
			if err != nil {
				return nil, err
			}
			sources = append(sources, Source{Sample: dist, Weight: a.cfg.StructureWeight})
		}
	}

	features, err := Concat(sources...)
	if err != nil {
		return nil, err
	}
	texturize.Logger().Debug("appearance space built",
		"width", features.Width(), "height", features.Height(),
		"channels", features.Channels(), "colorSpace", a.cfg.ColorSpace.String())
	return features, nil
}

// baseColor returns the first channel of exemplars with fewer than three
// channels and the first three of all others.
func baseColor(exemplar *texturize.Sample) (*texturize.Sample, error) {
	n := 1
	if exemplar.Channels() >= 3 {
		n = 3
	}
	base := texturize.MustSample(1, 1, 1)
	if err := exemplar.Extract(0, n, base); err != nil {
		return nil, err
	}
	return base, nil
}

// color converts the base colors to the configured space.
func (a *Appearance) color(base *texturize.Sample) (*texturize.Sample, error) {
	if base.Channels() != 3 || a.cfg.ColorSpace != ColorLab {
		return base, nil
	}
	lab := texturize.MustSample(1, 1, 1)
	if err := filter.NewLab().Apply(base, lab); err != nil {
		return nil, err
	}
	return lab, nil
}

func luminance(color *texturize.Sample) (*texturize.Sample, error) {
	if color.Channels() == 1 {
		return color, nil
	}
	lum := texturize.MustSample(1, 1, 1)
	if err := filter.NewGrayscale().Apply(color, lum); err != nil {
		return nil, err
	}
	return lum, nil
}

// Source is one weighted group of feature channels.
type Source struct {
	Sample *texturize.Sample
	Weight float64
}

// Concat multiplies every source by its weight and stacks the channels in
// argument order. Sources with zero weight are skipped; negative weights
// and size mismatches are precondition violations. Fails with
// ErrNoFeatures if no source remains.
func Concat(sources ...Source) (*texturize.Sample, error) {
	samples := make([]*texturize.Sample, 0, len(sources))
	for i, src := range sources {
		if src.Weight < 0 {
			return nil, texturize.WrapOp("feature.Concat", fmt.Errorf("%w: source %d has negative weight %v",
				texturize.ErrPrecondition, i, src.Weight))
		}
		if src.Weight == 0 {
			continue
		}
		if src.Sample == nil {
			return nil, texturize.WrapOp("feature.Concat", fmt.Errorf("%w: source %d", texturize.ErrNilSample, i))
		}

		s := src.Sample
		if src.Weight != 1 {
			s = s.Clone()
			for j := range s.Data() {
				s.Data()[j] *= src.Weight
			}
		}
		samples = append(samples, s)
	}
	if len(samples) == 0 {
		return nil, texturize.WrapOp("feature.Concat", ErrNoFeatures)
	}

	out, err := texturize.Concat(samples...)
	if err != nil {
		return nil, texturize.WrapOp("feature.Concat", err)
	}
	return out, nil
}
