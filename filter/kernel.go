package filter

import (
	"math"

	"github.com/crud89/texturize/internal/cache"
)

// GaussianKernel generates a 1D Gaussian kernel with sigma = radius.
// The kernel is normalized so all values sum to 1.0.
//
// The kernel size is 2 * ceil(radius * 3) + 1, which covers 99.7% of the
// distribution. For radius <= 0, returns the identity kernel [1.0].
func GaussianKernel(radius float64) []float64 {
	if radius <= 0 {
		return []float64{1.0}
	}

	halfSize := int(math.Ceil(radius * 3))
	size := halfSize*2 + 1
	kernel := make([]float64, size)

	// The normalization constant is skipped, the sum is normalized below.
	twoSigmaSq := 2 * radius * radius
	sum := 0.0
	for i := range size {
		x := float64(i - halfSize)
		kernel[i] = math.Exp(-(x * x) / twoSigmaSq)
		sum += kernel[i]
	}

	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// SobelKernels returns the 3x3 horizontal and vertical Sobel operators,
// row-major.
func SobelKernels() (gx, gy [9]float64) {
	gx = [9]float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}
	gy = [9]float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}
	return gx, gy
}

// kernels caches Gaussian kernels keyed by radius * 100.
var kernels = cache.New[int, []float64](64)

// CachedGaussianKernel returns a cached Gaussian kernel for the radius,
// quantized to 0.01. The returned slice must not be modified.
func CachedGaussianKernel(radius float64) []float64 {
	key := int(radius * 100)
	return kernels.GetOrCreate(key, func() []float64 {
		return GaussianKernel(float64(key) / 100)
	})
}

// wrapIndex returns v mod n in [0, n).
func wrapIndex(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
