package filter

import (
	"math"
	"testing"

	"github.com/crud89/texturize"
)

func TestGaussianKernel(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		size   int
	}{
		{"zero", 0, 1},
		{"negative", -2, 1},
		{"one", 1, 7},
		{"fractional", 1.5, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := GaussianKernel(tt.radius)
			if len(k) != tt.size {
				t.Fatalf("len = %d, want %d", len(k), tt.size)
			}
			sum := 0.0
			for _, v := range k {
				sum += v
			}
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("sum = %v, want 1", sum)
			}
			for i := range len(k) / 2 {
				if k[i] != k[len(k)-1-i] {
					t.Errorf("kernel not symmetric at %d", i)
				}
			}
		})
	}
}

func TestCachedGaussianKernel(t *testing.T) {
	a := CachedGaussianKernel(2)
	b := CachedGaussianKernel(2.001)
	if &a[0] != &b[0] {
		t.Error("radii within 0.01 should share a cached kernel")
	}
}

func TestSobelKernels(t *testing.T) {
	gx, gy := SobelKernels()
	sx, sy := 0.0, 0.0
	for i := range gx {
		sx += gx[i]
		sy += gy[i]
	}
	if sx != 0 || sy != 0 {
		t.Errorf("kernel sums = %v, %v, want 0", sx, sy)
	}
}

func TestBlurZeroRadiusCopies(t *testing.T) {
	src := checkerboard(5, 5)
	got := apply(t, NewBlur(0), src)
	assertClose(t, got, src, 0)

	got.Data()[0] = 42
	if src.Data()[0] == 42 {
		t.Error("zero-radius blur must not share storage with its input")
	}
}

func TestBlurConstant(t *testing.T) {
	got := apply(t, NewBlur(2), filled(6, 4, 3, 0.25, 0.5, 0.75))
	assertClose(t, got, filled(6, 4, 3, 0.25, 0.5, 0.75), 1e-12)
}

func TestBlurPreservesSum(t *testing.T) {
	src := checkerboard(9, 7)
	got := apply(t, NewBlur(1.5), src)

	var before, after float64
	for i := range src.Data() {
		before += src.Data()[i]
		after += got.Data()[i]
	}
	if math.Abs(before-after) > 1e-9 {
		t.Errorf("sum = %v, want %v", after, before)
	}
}

func TestBlurCommutesWithShift(t *testing.T) {
	src := texturize.MustSample(8, 8, 1)
	src.Texel(0, 0)[0] = 1
	shifted := texturize.MustSample(8, 8, 1)
	shifted.Texel(3, 5)[0] = 1

	a := apply(t, NewBlur(1), src)
	b := apply(t, NewBlur(1), shifted)
	for y := range 8 {
		for x := range 8 {
			sx, sy := a.Wrap(x+3, y+5)
			if math.Abs(a.Texel(x, y)[0]-b.Texel(sx, sy)[0]) > 1e-12 {
				t.Fatalf("(%d,%d) differs after shift", x, y)
			}
		}
	}
}

func BenchmarkBlur(b *testing.B) {
	src := checkerboard(256, 256)
	dst := texturize.MustSample(1, 1, 1)
	f := NewBlur(2)

	b.ResetTimer()
	for b.Loop() {
		_ = f.Apply(src, dst)
	}
}
