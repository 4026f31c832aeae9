package texturize

import (
	"math"
	"testing"
)

// Test helper functions shared across sample tests.

// testGradient creates a sample whose values encode their coordinates, so
// misplaced texels are easy to spot.
func testGradient(w, h, c int) *Sample {
	s := MustSample(w, h, c)
	for y := range h {
		for x := range w {
			texel := s.Texel(x, y)
			for ch := range texel {
				texel[ch] = float64(x)/float64(w) + float64(y)/float64(h*10) + float64(ch)/100
			}
		}
	}
	return s
}

// assertSamplesEqual fails the test if the samples differ in shape or if any
// value differs by more than tolerance.
func assertSamplesEqual(t *testing.T, got, want *Sample, tolerance float64) {
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
