package filter

import (
	"github.com/crud89/texturize"
	"github.com/crud89/texturize/internal/parallel"
)

// Blur applies a separable Gaussian blur to every channel. Edges wrap
// around, so a blurred tileable texture stays tileable.
type Blur struct {
	// Radius is the Gaussian sigma in texels. Radius <= 0 copies the input.
	Radius float64
}

// NewBlur creates a blur filter with the given radius.
func NewBlur(radius float64) *Blur {
	return &Blur{Radius: radius}
}

// Name implements Filter.
func (f *Blur) Name() string { return "Blur" }

// Apply implements Filter with a horizontal pass into a scratch sample
// followed by a vertical pass.
func (f *Blur) Apply(src, dst *texturize.Sample) error {
	if err := checkArgs(f, src, dst); err != nil {
		return err
	}
	if f.Radius <= 0 {
		dst.Replace(src.Clone())
		return nil
	}

	kernel := CachedGaussianKernel(f.Radius)
	w, h := src.Bounds()
	ch := src.Channels()

	temp := texturize.MustSample(w, h, ch)
	parallel.Rows(h, func(y0, y1 int) {
		blurHorizontal(src, temp, y0, y1, kernel)
	})

	out := texturize.MustSample(w, h, ch)
	parallel.Rows(h, func(y0, y1 int) {
		blurVertical(temp, out, y0, y1, kernel)
	})

	dst.Replace(out)
	return nil
}

func blurHorizontal(src, dst *texturize.Sample, y0, y1 int, kernel []float64) {
	half := len(kernel) / 2
	w := src.Width()

	for y := y0; y < y1; y++ {
		for x := range w {
			out := dst.Texel(x, y)
			for k, weight := range kernel {
				in := src.Texel(wrapIndex(x+k-half, w), y)
				for c := range out {
					out[c] += in[c] * weight
				}
			}
		}
	}
}

func blurVertical(src, dst *texturize.Sample, y0, y1 int, kernel []float64) {
	half := len(kernel) / 2
	w, h := src.Bounds()

	for y := y0; y < y1; y++ {
		for x := range w {
			out := dst.Texel(x, y)
			for k, weight := range kernel {
				in := src.Texel(x, wrapIndex(y+k-half, h))
				for c := range out {
					out[c] += in[c] * weight
				}
			}
		}
	}
}
