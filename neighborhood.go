package texturize

import (
	"fmt"
	"math"

	"github.com/crud89/texturize/internal/cache"
)

// NeighborhoodWeights returns the size×size Gaussian weights used by weighted
// neighborhoods, row-major over the window. The Gaussian is separable with
// sigma = size/4 and normalized to 1 at the center.
//
// Returns ErrNeighborhoodSize if size is not positive and odd.
func NeighborhoodWeights(size int) ([]float64, error) {
	if size <= 0 || size%2 == 0 {
		return nil, WrapOp("NeighborhoodWeights", fmt.Errorf("%w: got %d", ErrNeighborhoodSize, size))
	}
	w := cachedWeights(size)
	out := make([]float64, len(w.full))
	copy(out, w.full)
	return out, nil
}

// neighborhoodWeights holds the full weights and their square roots.
// Weighted descriptors are scaled by sqrt(w) so that the squared Euclidean
// distance between two descriptors is the Gaussian-weighted SSD.
type neighborhoodWeights struct {
	full []float64
	sqrt []float64
}

var weightCache = cache.New[int, *neighborhoodWeights](32)

func cachedWeights(size int) *neighborhoodWeights {
	return weightCache.GetOrCreate(size, func() *neighborhoodWeights {
		return computeWeights(size)
	})
}

func computeWeights(size int) *neighborhoodWeights {
	half := size / 2
	sigma := float64(size) / 4
	twoSigmaSq := 2 * sigma * sigma

	axis := make([]float64, size)
	for i := range axis {
		d := float64(i - half)
		axis[i] = math.Exp(-(d * d) / twoSigmaSq)
	}

	w := &neighborhoodWeights{
		full: make([]float64, size*size),
		sqrt: make([]float64, size*size),
	}
	for j := range size {
		for i := range size {
			v := axis[i] * axis[j]
			w.full[j*size+i] = v
			w.sqrt[j*size+i] = math.Sqrt(v)
		}
	}

	return w
}

// Neighborhood returns the flattened size×size×C window centered on (x, y),
// row-major over the window with channels interleaved. Neighbors outside the
// sample are fetched with toroidal addressing, so a window at (0, 0) contains
// texels from the opposite edges.
//
// When weighted is true each texel is scaled by the square root of its
// Gaussian weight (see NeighborhoodWeights), which makes the plain squared
// Euclidean distance between two descriptors equal to the weighted
// per-channel squared difference.
func (s *Sample) Neighborhood(x, y, size int, weighted bool) ([]float64, error) {
	if size <= 0 || size%2 == 0 {
		return nil, WrapOp("Sample.Neighborhood", fmt.Errorf("%w: got %d", ErrNeighborhoodSize, size))
	}
	dst := make([]float64, size*size*s.channels)
	if err := s.NeighborhoodInto(dst, x, y, size, weighted); err != nil {
		return nil, err
	}
	return dst, nil
}

// NeighborhoodInto is like Neighborhood but writes into dst, which must hold
// exactly size*size*C values. It does not allocate.
func (s *Sample) NeighborhoodInto(dst []float64, x, y, size int, weighted bool) error {
	if size <= 0 || size%2 == 0 {
		return WrapOp("Sample.NeighborhoodInto", fmt.Errorf("%w: got %d", ErrNeighborhoodSize, size))
	}
	if !s.inBounds(x, y) {
		return WrapOp("Sample.NeighborhoodInto", fmt.Errorf("%w: (%d, %d) not in %dx%d", ErrOutOfRange, x, y, s.width, s.height))
	}
	if len(dst) != size*size*s.channels {
		return WrapOp("Sample.NeighborhoodInto", fmt.Errorf("%w: destination holds %d values, want %d",
			ErrDataTooSmall, len(dst), size*size*s.channels))
	}

	var weights []float64
	if weighted {
		weights = cachedWeights(size).sqrt
	}

	half := size / 2
	n := 0
	for j := range size {
		sy := wrap(y+j-half, s.height)
		for i := range size {
			sx := wrap(x+i-half, s.width)
			texel := s.Texel(sx, sy)
			if weights == nil {
				n += copy(dst[n:], texel)
				continue
			}
			w := weights[j*size+i]
			for _, v := range texel {
				dst[n] = v * w
				n++
			}
		}
	}
	return nil
}
