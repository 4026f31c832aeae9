package filter

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/crud89/texturize"
	"github.com/crud89/texturize/internal/parallel"
)

// Luminance weights (Rec. 709).
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// Grayscale converts a 3-channel RGB sample to a single luminance channel.
// Inputs with any other channel count fail with ErrChannelCount.
type Grayscale struct{}

// NewGrayscale creates a grayscale filter.
func NewGrayscale() *Grayscale {
	return &Grayscale{}
}

// Name implements Filter.
func (f *Grayscale) Name() string { return "Grayscale" }

// Apply implements Filter.
func (f *Grayscale) Apply(src, dst *texturize.Sample) error {
	if err := checkArgs(f, src, dst); err != nil {
		return err
	}
	if err := requireChannels(f, src, 3); err != nil {
		return err
	}

	w, h := src.Bounds()
	out := texturize.MustSample(w, h, 1)
	in, res := src.Data(), out.Data()
	parallel.Rows(h, func(y0, y1 int) {
		for i := y0 * w; i < y1*w; i++ {
			rgb := in[i*3 : i*3+3]
			res[i] = lumR*rgb[0] + lumG*rgb[1] + lumB*rgb[2]
		}
	})

	dst.Replace(out)
	return nil
}

// Lab converts a 3-channel sRGB sample to CIE L*a*b*. The output channels
// are remapped so that typical colors land in [0, 1]: L as is, a and b
// shifted from [-1, 1] to [0, 1]. Euclidean distances in this space follow
// perceived color differences more closely than RGB distances do.
type Lab struct{}

// NewLab creates an sRGB to L*a*b* filter.
func NewLab() *Lab {
	return &Lab{}
}

// Name implements Filter.
func (f *Lab) Name() string { return "Lab" }

// Apply implements Filter.
func (f *Lab) Apply(src, dst *texturize.Sample) error {
	if err := checkArgs(f, src, dst); err != nil {
		return err
	}
	if err := requireChannels(f, src, 3); err != nil {
		return err
	}

	w, h := src.Bounds()
	out := texturize.MustSample(w, h, 3)
	in, res := src.Data(), out.Data()
	parallel.Rows(h, func(y0, y1 int) {
		for i := y0 * w * 3; i < y1*w*3; i += 3 {
			c := colorful.Color{R: in[i], G: in[i+1], B: in[i+2]}
			l, a, b := c.Lab()
			res[i] = l
			res[i+1] = (a + 1) / 2
			res[i+2] = (b + 1) / 2
		}
	})

	dst.Replace(out)
	return nil
}
