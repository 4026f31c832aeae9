package filter

import (
	"math"
	"testing"

	"github.com/crud89/texturize"
)

// Test helper functions shared across filter tests.

// checkerboard creates a single-channel w×h sample alternating 0 and 1,
// with 1 at texels where x+y is odd.
func checkerboard(w, h int) *texturize.Sample {
	s := texturize.MustSample(w, h, 1)
	for y := range h {
		for x := range w {
			s.Texel(x, y)[0] = float64((x + y) % 2)
		}
	}
	return s
}

// filled creates a sample with every channel of every texel set to the
// given values, cycling if fewer values than channels are given.
func filled(w, h, c int, values ...float64) *texturize.Sample {
	s := texturize.MustSample(w, h, c)
	for i := range s.Data() {
		s.Data()[i] = values[(i%c)%len(values)]
	}
	return s
}

// fromRows builds a single-channel sample from rows of values.
func fromRows(rows ...[]float64) *texturize.Sample {
	s := texturize.MustSample(len(rows[0]), len(rows), 1)
	for y, row := range rows {
		copy(s.Row(y), row)
	}
	return s
}

// apply runs f and fails the test on error.
func apply(t *testing.T, f Filter, src *texturize.Sample) *texturize.Sample {
	t.Helper()
	dst := texturize.MustSample(1, 1, 1)
	if err := f.Apply(src, dst); err != nil {
		t.Fatalf("%s.Apply: %v", f.Name(), err)
	}
	return dst
}

// assertClose fails the test if got and want differ in shape or if any value
// differs by more than tolerance.
func assertClose(t *testing.T, got, want *texturize.Sample, tolerance float64) {
	t.Helper()
	if got.Width() != want.Width() || got.Height() != want.Height() || got.Channels() != want.Channels() {
		t.Fatalf("dims = %dx%dx%d, want %dx%dx%d",
			got.Width(), got.Height(), got.Channels(), want.Width(), want.Height(), want.Channels())
	}
	for i, v := range got.Data() {
		if math.Abs(v-want.Data()[i]) > tolerance {
			t.Fatalf("value %d = %v, want %v (tolerance %v)", i, v, want.Data()[i], tolerance)
		}
	}
}
