package filter

import (
	"errors"
	"testing"

	"github.com/crud89/texturize"
)

func TestDynamicThresholdCheckerboard(t *testing.T) {
	src := checkerboard(4, 4)
	got := apply(t, NewDynamicThreshold(), src)
	assertClose(t, got, src, 0)
}

func TestDynamicThresholdBimodal(t *testing.T) {
	src := fromRows(
		[]float64{0.1, 0.12, 0.9, 0.88},
		[]float64{0.11, 0.09, 0.91, 0.87},
	)
	f := NewDynamicThreshold()

	th, err := f.Threshold(src)
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	if th <= 0.12 || th >= 0.87 {
		t.Errorf("Threshold = %v, want between the modes", th)
	}

	got := apply(t, f, src)
	want := fromRows(
		[]float64{0, 0, 1, 1},
		[]float64{0, 0, 1, 1},
	)
	assertClose(t, got, want, 0)
}

func TestDynamicThresholdBins(t *testing.T) {
	src := fromRows([]float64{0, 0.2, 0.8, 1})
	for _, bins := range []int{0, 2, 16, 1024} {
		got := apply(t, &DynamicThreshold{Bins: bins}, src)
		want := fromRows([]float64{0, 0, 1, 1})
		assertClose(t, got, want, 0)
	}
}

func TestDynamicThresholdConstant(t *testing.T) {
	got := apply(t, NewDynamicThreshold(), filled(3, 3, 1, 0.4))
	for i, v := range got.Data() {
		if v != 0 {
			t.Fatalf("value %d = %v, want 0", i, v)
		}
	}
}

func TestDynamicThresholdChannelCount(t *testing.T) {
	f := NewDynamicThreshold()
	src := texturize.MustSample(2, 2, 3)

	if err := f.Apply(src, src); !errors.Is(err, texturize.ErrChannelCount) {
		t.Errorf("Apply err = %v, want ErrChannelCount", err)
	}
	if _, err := f.Threshold(src); !errors.Is(err, texturize.ErrChannelCount) {
		t.Errorf("Threshold err = %v, want ErrChannelCount", err)
	}
	if _, err := f.Threshold(nil); !errors.Is(err, texturize.ErrNilSample) {
		t.Errorf("Threshold(nil) err = %v, want ErrNilSample", err)
	}
}
