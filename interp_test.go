package texturize

import (
	"errors"
	"math"
	"testing"
)

func identityMap(w, h int) *Sample {
	m := MustSample(w, h, 2)
	for y := range h {
		for x := range w {
			uv := m.Texel(x, y)
			uv[0] = float64(x) / float64(w)
			uv[1] = float64(y) / float64(h)
		}
	}
	return m
}

func TestRemapIdentity(t *testing.T) {
	src := testGradient(7, 5, 3)
	dst := MustSample(1, 1, 1)

	if err := src.Remap(identityMap(7, 5), dst); err != nil {
		t.Fatalf("Remap() error = %v", err)
	}
	assertSamplesEqual(t, dst, src, 1e-9)
}

func TestRemapTakesCoordinateMapSize(t *testing.T) {
	src := testGradient(4, 4, 3)
	coords := MustSample(9, 2, 2)
	dst := MustSample(1, 1, 1)

	if err := src.Remap(coords, dst); err != nil {
		t.Fatalf("Remap() error = %v", err)
	}
	if dst.Width() != 9 || dst.Height() != 2 || dst.Channels() != 3 {
		t.Errorf("dst dims = %dx%dx%d, want 9x2x3", dst.Width(), dst.Height(), dst.Channels())
	}
	// All-zero coordinates sample texel (0, 0).
	for x := range 9 {
		if got := dst.Texel(x, 1)[2]; got != src.Texel(0, 0)[2] {
			t.Errorf("dst (%d,1) = %v, want %v", x, got, src.Texel(0, 0)[2])
		}
	}
}

func TestRemapRejectsBadCoordinateMap(t *testing.T) {
	src := MustSample(2, 2, 1)
	if err := src.Remap(MustSample(2, 2, 3), MustSample(1, 1, 1)); !errors.Is(err, ErrChannelCount) {
		t.Errorf("Remap(3-channel map) error = %v, want ErrChannelCount", err)
	}
	if err := src.Remap(nil, MustSample(1, 1, 1)); !errors.Is(err, ErrNilSample) {
		t.Errorf("Remap(nil) error = %v, want ErrNilSample", err)
	}
}

func TestBilinearMidpointAndWrap(t *testing.T) {
	s, _ := FromRaw([]float64{0, 1}, 2, 1, 1)

	if got := s.Bilinear(0.25, 0)[0]; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Bilinear(0.25) = %v, want 0.5", got)
	}
	// Halfway between texel 1 and the wrapped texel 0.
	if got := s.Bilinear(0.75, 0)[0]; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Bilinear(0.75) = %v, want 0.5", got)
	}
	if got := s.Bilinear(1.5, 0)[0]; math.Abs(got-1) > 1e-12 {
		t.Errorf("Bilinear(1.5) = %v, want 1 (wraps to u=0.5)", got)
	}
}

func TestBilinearClamp(t *testing.T) {
	s, _ := FromRaw([]float64{0, 1}, 2, 1, 1)

	tests := []struct {
		u, want float64
	}{
		{0, 0},
		{0.25, 0.5},
		{0.5, 1},
		{0.75, 1}, // no blend with the opposite edge
		{1.5, 1},
		{-0.5, 0},
	}
	for _, tt := range tests {
		if got := s.BilinearClamp(tt.u, 0)[0]; math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("BilinearClamp(%v) = %v, want %v", tt.u, got, tt.want)
		}
	}
}

func TestResize(t *testing.T) {
	src := testGradient(8, 8, 2)

	for _, mode := range []Interpolation{InterpNearest, InterpBilinear, InterpCatmullRom} {
		t.Run(mode.String(), func(t *testing.T) {
			out, err := src.Resize(16, 4, mode)
			if err != nil {
				t.Fatalf("Resize() error = %v", err)
			}
			if out.Width() != 16 || out.Height() != 4 || out.Channels() != 2 {
				t.Fatalf("dims = %dx%dx%d, want 16x4x2", out.Width(), out.Height(), out.Channels())
			}
			lo, hi := src.Data()[0], src.Data()[0]
			for _, v := range src.Data() {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
			for i, v := range out.Data() {
				if v < lo-1e-9 || v > hi+1e-9 {
					t.Fatalf("value %d = %v outside source range [%v, %v]", i, v, lo, hi)
				}
			}
		})
	}
}

func TestResizeConstantChannel(t *testing.T) {
	src := MustSample(3, 3, 1)
	for i := range src.Data() {
		src.Data()[i] = -2.5
	}
	out, err := src.Resize(5, 5, InterpBilinear)
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	for i, v := range out.Data() {
		if v != -2.5 {
			t.Fatalf("value %d = %v, want -2.5", i, v)
		}
	}
	if _, err := src.Resize(0, 5, InterpBilinear); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Resize(0, 5) error = %v, want ErrInvalidDimensions", err)
	}
}

func TestInterpolationString(t *testing.T) {
	if got := Interpolation(99).String(); got != "Unknown" {
		t.Errorf("String() = %q, want Unknown", got)
	}
}
