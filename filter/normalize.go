package filter

import (
	"gonum.org/v1/gonum/floats"

	"github.com/crud89/texturize"
	"github.com/crud89/texturize/internal/parallel"
)

// Normalization rescales values to span [0, 1] using the observed minimum
// and maximum. The channel count is unchanged.
//
// Constant input (min == max) cannot be rescaled; the output is defined as
// all zeros for the affected range, never NaN.
type Normalization struct {
	// PerChannel rescales every channel by its own range instead of the
	// range over all channels.
	PerChannel bool
}

// NewNormalization creates a normalization over all channels jointly.
func NewNormalization() *Normalization {
	return &Normalization{}
}

// Name implements Filter.
func (f *Normalization) Name() string { return "Normalization" }

// Apply implements Filter.
func (f *Normalization) Apply(src, dst *texturize.Sample) error {
	if err := checkArgs(f, src, dst); err != nil {
		return err
	}

	w, h := src.Bounds()
	ch := src.Channels()
	in := src.Data()

	lo := make([]float64, ch)
	hi := make([]float64, ch)
	if f.PerChannel {
		plane := make([]float64, src.Len())
		for c := range ch {
			for i := range plane {
				plane[i] = in[i*ch+c]
			}
			lo[c], hi[c] = floats.Min(plane), floats.Max(plane)
		}
	} else {
		gmin, gmax := floats.Min(in), floats.Max(in)
		for c := range ch {
			lo[c], hi[c] = gmin, gmax
		}
	}

	// A zero span marks a constant range; its texels map to zero.
	span := make([]float64, ch)
	for c := range ch {
		if hi[c] > lo[c] {
			span[c] = hi[c] - lo[c]
		} else {
			texturize.Logger().Warn("normalization of constant input",
				"channel", c, "value", lo[c])
		}
	}

	out := texturize.MustSample(w, h, ch)
	res := out.Data()
	parallel.Rows(h, func(y0, y1 int) {
		for i := y0 * w * ch; i < y1*w*ch; i++ {
			c := i % ch
			if span[c] > 0 {
				res[i] = (in[i] - lo[c]) / span[c]
			}
		}
	})

	dst.Replace(out)
	return nil
}
