package filter

import (
	"math"
	"testing"

	"github.com/crud89/texturize"
	"gonum.org/v1/gonum/floats"
)

func TestNormalizationRange(t *testing.T) {
	src := fromRows(
		[]float64{-3, 0, 2},
		[]float64{5, 1, 4},
	)
	got := apply(t, NewNormalization(), src)

	if lo := floats.Min(got.Data()); lo != 0 {
		t.Errorf("min = %v, want 0", lo)
	}
	if hi := floats.Max(got.Data()); hi != 1 {
		t.Errorf("max = %v, want 1", hi)
	}
	if v := got.Texel(1, 0)[0]; math.Abs(v-3.0/8) > 1e-12 {
		t.Errorf("(1,0) = %v, want 0.375", v)
	}
	if v := src.Texel(0, 0)[0]; v != -3 {
		t.Errorf("source modified: (0,0) = %v, want -3", v)
	}
}

func TestNormalizationConstant(t *testing.T) {
	got := apply(t, NewNormalization(), filled(4, 4, 2, 0.7))
	for i, v := range got.Data() {
		if math.IsNaN(v) || v != 0 {
			t.Fatalf("value %d = %v, want 0", i, v)
		}
	}
}

func TestNormalizationPerChannel(t *testing.T) {
	src := texturize.MustSample(2, 1, 2)
	copy(src.Data(), []float64{0, 10, 1, 20})

	joint := apply(t, NewNormalization(), src)
	per := apply(t, &Normalization{PerChannel: true}, src)

	wantJoint := []float64{0, 0.5, 0.05, 1}
	wantPer := []float64{0, 0, 1, 1}
	for i := range wantJoint {
		if math.Abs(joint.Data()[i]-wantJoint[i]) > 1e-12 {
			t.Errorf("joint[%d] = %v, want %v", i, joint.Data()[i], wantJoint[i])
		}
		if math.Abs(per.Data()[i]-wantPer[i]) > 1e-12 {
			t.Errorf("per-channel[%d] = %v, want %v", i, per.Data()[i], wantPer[i])
		}
	}
}

func TestNormalizationPerChannelConstantChannel(t *testing.T) {
	src := texturize.MustSample(2, 1, 2)
	copy(src.Data(), []float64{3, 10, 3, 20})

	got := apply(t, &Normalization{PerChannel: true}, src)
	want := []float64{0, 0, 0, 1}
	for i := range want {
		if got.Data()[i] != want[i] {
			t.Errorf("value %d = %v, want %v", i, got.Data()[i], want[i])
		}
	}
}
