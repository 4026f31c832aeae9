package filter

import (
	"gonum.org/v1/gonum/floats"

	"github.com/crud89/texturize"
	"github.com/crud89/texturize/internal/parallel"
)

// DefaultThresholdBins is the histogram resolution used when Bins is zero.
const DefaultThresholdBins = 256

// DynamicThreshold binarizes a single-channel sample with a threshold chosen
// automatically by Otsu's method: the histogram split that maximizes the
// inter-class variance. Texels above the threshold become 1, all others 0.
//
// Constant input has no split; the output is all zeros.
type DynamicThreshold struct {
	// Bins is the number of histogram buckets spanning [min, max].
	// Zero means DefaultThresholdBins.
	Bins int
}

// NewDynamicThreshold creates an Otsu threshold filter with the default
// histogram resolution.
func NewDynamicThreshold() *DynamicThreshold {
	return &DynamicThreshold{}
}

// Name implements Filter.
func (f *DynamicThreshold) Name() string { return "DynamicThreshold" }

func (f *DynamicThreshold) bins() int {
	if f.Bins <= 1 {
		return DefaultThresholdBins
	}
	return f.Bins
}

// otsu holds the histogram split of one input.
type otsu struct {
	lo, hi float64
	bins   int
	split  int // last bin of the lower class; -1 when the input is constant
}

func (o otsu) bin(v float64) int {
	b := int((v - o.lo) / (o.hi - o.lo) * float64(o.bins))
	return min(max(b, 0), o.bins-1)
}

// value returns the threshold as an input value: the upper edge of the
// split bin.
func (o otsu) value() float64 {
	if o.split < 0 {
		return o.hi
	}
	return o.lo + float64(o.split+1)*(o.hi-o.lo)/float64(o.bins)
}

func (f *DynamicThreshold) compute(data []float64) otsu {
	o := otsu{lo: floats.Min(data), hi: floats.Max(data), bins: f.bins(), split: -1}
	if o.hi <= o.lo {
		return o
	}

	hist := make([]float64, o.bins)
	for _, v := range data {
		hist[o.bin(v)]++
	}

	total := float64(len(data))
	sumAll := 0.0
	for i, n := range hist {
		sumAll += float64(i) * n
	}

	var w0, sum0, best float64
	for t := 0; t < o.bins-1; t++ {
		w0 += hist[t]
		sum0 += float64(t) * hist[t]
		w1 := total - w0
		if w0 == 0 || w1 == 0 {
			continue
		}
		m0 := sum0 / w0
		m1 := (sumAll - sum0) / w1
		between := w0 * w1 * (m0 - m1) * (m0 - m1)
		if between > best || o.split < 0 {
			best = between
			o.split = t
		}
	}
	return o
}

// Threshold returns the threshold Otsu's method picks for src, as an input
// value. Texels strictly above it are set by Apply.
func (f *DynamicThreshold) Threshold(src *texturize.Sample) (float64, error) {
	if src == nil {
		return 0, texturize.WrapOp(f.Name(), texturize.ErrNilSample)
	}
	if err := requireChannels(f, src, 1); err != nil {
		return 0, err
	}
	return f.compute(src.Data()).value(), nil
}

// Apply implements Filter.
func (f *DynamicThreshold) Apply(src, dst *texturize.Sample) error {
	if err := checkArgs(f, src, dst); err != nil {
		return err
	}
	if err := requireChannels(f, src, 1); err != nil {
		return err
	}

	in := src.Data()
	o := f.compute(in)
	w, h := src.Bounds()
	out := texturize.MustSample(w, h, 1)

	if o.split < 0 {
		texturize.Logger().Warn("dynamic threshold of constant input", "value", o.lo)
		dst.Replace(out)
		return nil
	}

	res := out.Data()
	parallel.Rows(h, func(y0, y1 int) {
		for i := y0 * w; i < y1*w; i++ {
			if o.bin(in[i]) > o.split {
				res[i] = 1
			}
		}
	})

	dst.Replace(out)
	return nil
}
