package search

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/crud89/texturize"
)

// randomSample creates a sample of uniform random values from a fixed seed.
func randomSample(w, h, c int, seed uint64) *texturize.Sample {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s := texturize.MustSample(w, h, c)
	for i := range s.Data() {
		s.Data()[i] = r.Float64()
	}
	return s
}

func checkerboard(w, h int) *texturize.Sample {
	s := texturize.MustSample(w, h, 1)
	for y := range h {
		for x := range w {
			s.Texel(x, y)[0] = float64((x + y) % 2)
		}
	}
	return s
}

func mustBuild(t testing.TB, features *texturize.Sample, cfg Config) *Index {
	t.Helper()
	idx, err := Build(features, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"default", func(*Config) {}, ""},
		{"size one", func(c *Config) { c.NeighborhoodSize = 1 }, ""},
		{"zero size", func(c *Config) { c.NeighborhoodSize = 0 }, "NeighborhoodSize"},
		{"even size", func(c *Config) { c.NeighborhoodSize = 4 }, "NeighborhoodSize"},
		{"unknown method", func(c *Config) { c.Method = 7 }, "Method"},
		{"negative components", func(c *Config) { c.Components = -1 }, "Components"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var cfgErr *texturize.ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.field {
				t.Fatalf("Validate() = %v, want ConfigError on %s", err, tt.field)
			}
			if _, err := Build(checkerboard(2, 2), cfg); !errors.Is(err, texturize.ErrPrecondition) {
				t.Errorf("Build err = %v, want ErrPrecondition", err)
			}
		})
	}
}

func TestBuildNil(t *testing.T) {
	if _, err := Build(nil, DefaultConfig()); !errors.Is(err, texturize.ErrNilSample) {
		t.Errorf("err = %v, want ErrNilSample", err)
	}
}

func TestIndexShape(t *testing.T) {
	features := randomSample(6, 4, 3, 1)
	idx := mustBuild(t, features, DefaultConfig())

	if idx.Len() != 24 {
		t.Errorf("Len() = %d, want 24", idx.Len())
	}
	if idx.Width() != 6 || idx.Height() != 4 || idx.Channels() != 3 {
		t.Errorf("dims = %dx%dx%d, want 6x4x3", idx.Width(), idx.Height(), idx.Channels())
	}
	if idx.DescriptorLen() != 75 || idx.Dims() != 75 {
		t.Errorf("DescriptorLen() = %d, Dims() = %d, want 75", idx.DescriptorLen(), idx.Dims())
	}

	// The index keeps its own copy.
	features.Data()[0] = 42
	if idx.Features().Data()[0] == 42 {
		t.Error("index shares storage with its input")
	}
}

func TestQuerySelf(t *testing.T) {
	features := randomSample(8, 8, 2, 2)
	for _, method := range []Method{KDTree, Exhaustive} {
		t.Run(method.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Method = method
			idx := mustBuild(t, features, cfg)

			for y := range 8 {
				for x := range 8 {
					desc, err := features.Neighborhood(x, y, cfg.NeighborhoodSize, cfg.Weighted)
					if err != nil {
						t.Fatalf("Neighborhood: %v", err)
					}
					m, err := idx.Query(desc)
					if err != nil {
						t.Fatalf("Query: %v", err)
					}
					if m.X != x || m.Y != y || m.Distance != 0 {
						t.Fatalf("Query(%d,%d) = %+v", x, y, m)
					}
				}
			}
		})
	}
}

func TestKDTreeMatchesExhaustive(t *testing.T) {
	features := randomSample(16, 12, 3, 3)
	cfg := DefaultConfig()
	cfg.NeighborhoodSize = 3
	kd := mustBuild(t, features, cfg)
	cfg.Method = Exhaustive
	ex := mustBuild(t, features, cfg)

	r := rand.New(rand.NewPCG(4, 5))
	desc := make([]float64, kd.DescriptorLen())
	for range 200 {
		for i := range desc {
			desc[i] = r.Float64()
		}
		a, err := kd.Query(desc)
		if err != nil {
			t.Fatalf("kd Query: %v", err)
		}
		b, err := ex.Query(desc)
		if err != nil {
			t.Fatalf("exhaustive Query: %v", err)
		}
		if a != b {
			t.Fatalf("kd-tree %+v != exhaustive %+v", a, b)
		}
	}
}

func TestQueryTieBreak(t *testing.T) {
	board := checkerboard(4, 4)
	for _, method := range []Method{KDTree, Exhaustive} {
		t.Run(method.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Method = method
			idx := mustBuild(t, board, cfg)

			tests := []struct {
				x, y         int
				wantX, wantY int
			}{
				{3, 3, 0, 0},
				{2, 2, 0, 0},
				{0, 3, 1, 0},
				{3, 2, 1, 0},
			}
			for _, tt := range tests {
				desc, _ := board.Neighborhood(tt.x, tt.y, cfg.NeighborhoodSize, cfg.Weighted)
				m, err := idx.Query(desc)
				if err != nil {
					t.Fatalf("Query: %v", err)
				}
				if m.X != tt.wantX || m.Y != tt.wantY {
					t.Errorf("Query(%d,%d) = (%d,%d), want (%d,%d)", tt.x, tt.y, m.X, m.Y, tt.wantX, tt.wantY)
				}
			}
		})
	}
}

func TestQueryConstantFeatures(t *testing.T) {
	s := texturize.MustSample(5, 5, 1)
	for i := range s.Data() {
		s.Data()[i] = 0.3
	}
	idx := mustBuild(t, s, DefaultConfig())
	m, err := idx.Query(make([]float64, idx.DescriptorLen()))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if m.X != 0 || m.Y != 0 {
		t.Errorf("Query = %+v, want (0,0)", m)
	}
}

func TestQueryDescriptorSize(t *testing.T) {
	idx := mustBuild(t, checkerboard(4, 4), DefaultConfig())
	for _, n := range []int{0, 24, 26} {
		_, err := idx.Query(make([]float64, n))
		if !errors.Is(err, ErrDescriptorSize) {
			t.Errorf("len %d: err = %v, want ErrDescriptorSize", n, err)
		}
		if !errors.Is(err, texturize.ErrPrecondition) {
			t.Errorf("len %d: err = %v, want ErrPrecondition", n, err)
		}
	}
}

func TestDistanceToIsWeightedSSD(t *testing.T) {
	features := randomSample(7, 7, 2, 6)
	idx := mustBuild(t, features, DefaultConfig())
	weights, err := texturize.NeighborhoodWeights(5)
	if err != nil {
		t.Fatalf("NeighborhoodWeights: %v", err)
	}

	a, _ := features.Neighborhood(1, 2, 5, false)
	b, _ := features.Neighborhood(4, 6, 5, false)
	var want float64
	for i := range a {
		d := a[i] - b[i]
		want += weights[i/2] * d * d
	}

	query, _ := features.Neighborhood(1, 2, 5, true)
	got, err := idx.DistanceTo(query, 4, 6)
	if err != nil {
		t.Fatalf("DistanceTo: %v", err)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("DistanceTo = %v, want %v", got, want)
	}
}

func TestOutOfRange(t *testing.T) {
	idx := mustBuild(t, checkerboard(4, 4), DefaultConfig())
	desc := make([]float64, idx.DescriptorLen())

	if _, err := idx.Descriptor(4, 0); !errors.Is(err, texturize.ErrOutOfRange) {
		t.Errorf("Descriptor err = %v, want ErrOutOfRange", err)
	}
	if _, err := idx.DistanceTo(desc, 0, -1); !errors.Is(err, texturize.ErrOutOfRange) {
		t.Errorf("DistanceTo err = %v, want ErrOutOfRange", err)
	}
}

func TestPrincipalComponents(t *testing.T) {
	features := randomSample(12, 10, 3, 7)
	cfg := DefaultConfig()
	cfg.Components = 8

	a := mustBuild(t, features, cfg)
	b := mustBuild(t, features, cfg)
	if a.Dims() != 8 {
		t.Fatalf("Dims() = %d, want 8", a.Dims())
	}
	if a.DescriptorLen() != 75 {
		t.Fatalf("DescriptorLen() = %d, want 75", a.DescriptorLen())
	}

	cfg.Method = Exhaustive
	ex := mustBuild(t, features, cfg)

	for y := range 10 {
		for x := range 12 {
			desc, _ := features.Neighborhood(x, y, 5, true)
			ma, err := a.Query(desc)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			mb, _ := b.Query(desc)
			me, _ := ex.Query(desc)
			if ma != mb {
				t.Fatalf("(%d,%d): rebuilt index disagrees: %+v vs %+v", x, y, ma, mb)
			}
			if ma != me {
				t.Fatalf("(%d,%d): kd-tree %+v != exhaustive %+v", x, y, ma, me)
			}
			if ma.Distance != 0 {
				t.Fatalf("(%d,%d): self distance %v, want 0", x, y, ma.Distance)
			}
		}
	}
}

func TestPrincipalComponentsNotReducing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NeighborhoodSize = 3
	cfg.Components = 9
	idx := mustBuild(t, randomSample(4, 4, 1, 8), cfg)
	if idx.Dims() != 9 {
		t.Errorf("Dims() = %d, want 9", idx.Dims())
	}
}

func TestConcurrentQuery(t *testing.T) {
	features := randomSample(16, 16, 1, 9)
	idx := mustBuild(t, features, DefaultConfig())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 32 {
				x, y := (g*7+i)%16, (g*3+i*5)%16
				desc, _ := features.Neighborhood(x, y, 5, true)
				m, err := idx.Query(desc)
				if err != nil {
					errs[g] = err
					return
				}
				if m.X != x || m.Y != y {
					errs[g] = errors.New("wrong match")
					return
				}
			}
		}()
	}
	wg.Wait()
	for g, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d: %v", g, err)
		}
	}
}

func BenchmarkQuery(b *testing.B) {
	features := randomSample(64, 64, 5, 10)
	for _, method := range []Method{KDTree, Exhaustive} {
		b.Run(method.String(), func(b *testing.B) {
			cfg := DefaultConfig()
			cfg.Method = method
			cfg.Components = 8
			idx := mustBuild(b, features, cfg)
			desc, _ := features.Neighborhood(10, 20, 5, true)

			b.ResetTimer()
			for b.Loop() {
				_, _ = idx.Query(desc)
			}
		})
	}
}
