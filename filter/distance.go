package filter

import (
	"math"

	"github.com/crud89/texturize"
	"github.com/crud89/texturize/internal/parallel"
)

// farAway stands in for an infinite squared distance in the lower-envelope
// computation. It must stay finite so that parabola intersections never
// produce NaN.
const farAway = 1e20

// FeatureDistance converts a binary or edge map into a distance-to-nearest-
// feature map using the exact Euclidean distance transform of Felzenszwalb
// and Huttenlocher. Feature texels are those with a value of at least 0.5;
// they map to zero.
//
// Input must have a single channel. When no texel is a feature, every texel
// receives the largest representable distance.
type FeatureDistance struct {
	// Range, when positive, divides distances by Range and clamps them to
	// [0, 1] ([-1, 1] when Signed). Zero keeps distances in texels.
	Range float64

	// Wrap measures distances on the torus, so features near one edge are
	// close to texels near the opposite edge.
	Wrap bool

	// Signed subtracts the distance to the nearest non-feature texel, making
	// feature interiors negative.
	Signed bool
}

// NewFeatureDistance creates an unsigned, toroidal distance transform with
// distances expressed in texels.
func NewFeatureDistance() *FeatureDistance {
	return &FeatureDistance{Wrap: true}
}

// Name implements Filter.
func (f *FeatureDistance) Name() string { return "FeatureDistance" }

// Apply implements Filter.
func (f *FeatureDistance) Apply(src, dst *texturize.Sample) error {
	if err := checkArgs(f, src, dst); err != nil {
		return err
	}
	if err := requireChannels(f, src, 1); err != nil {
		return err
	}

	w, h := src.Bounds()
	in := src.Data()

	outside := f.transform(w, h, func(i int) bool { return in[i] >= 0.5 })
	var inside []float64
	if f.Signed {
		inside = f.transform(w, h, func(i int) bool { return in[i] < 0.5 })
	}

	limit := f.maxDistance(w, h)
	out := texturize.MustSample(w, h, 1)
	res := out.Data()
	for i := range res {
		d := f.finish(outside[i], limit)
		if inside != nil {
			d -= f.finish(inside[i], limit)
		}
		res[i] = d
	}

	dst.Replace(out)
	return nil
}

// maxDistance is the distance assigned when no feature exists.
func (f *FeatureDistance) maxDistance(w, h int) float64 {
	if f.Wrap {
		return math.Hypot(float64(w)/2, float64(h)/2)
	}
	return math.Hypot(float64(w), float64(h))
}

// finish turns a squared distance into the output unit.
func (f *FeatureDistance) finish(sq, limit float64) float64 {
	if sq >= farAway/2 {
		if f.Range > 0 {
			return 1
		}
		return limit
	}
	d := math.Min(math.Sqrt(sq), limit)
	if f.Range > 0 {
		d = math.Min(d/f.Range, 1)
	}
	return d
}

// transform returns squared distances from every texel to the nearest texel
// for which isFeature holds: a column pass followed by a row pass.
func (f *FeatureDistance) transform(w, h int, isFeature func(i int) bool) []float64 {
	grid := make([]float64, w*h)
	for i := range grid {
		if !isFeature(i) {
			grid[i] = farAway
		}
	}

	// Columns: parallel over x, reusing the band helper on the column index.
	parallel.Rows(w, func(x0, x1 int) {
		env := newEnvelope(h, f.Wrap)
		for x := x0; x < x1; x++ {
			for y := range h {
				env.f[y] = grid[y*w+x]
			}
			env.solve()
			for y := range h {
				grid[y*w+x] = env.d[y]
			}
		}
	})

	parallel.Rows(h, func(y0, y1 int) {
		env := newEnvelope(w, f.Wrap)
		for y := y0; y < y1; y++ {
			row := grid[y*w : (y+1)*w]
			copy(env.f, row)
			env.solve()
			copy(row, env.d)
		}
	})

	return grid
}

// envelope computes the 1D squared distance transform of f into d. With
// wrap the line is extended periodically to three periods and the middle
// period is kept, which is exact on a circle.
type envelope struct {
	n    int
	wrap bool
	f, d []float64

	// scratch over the (possibly extended) line
	ef, ed []float64
	v      []int
	z      []float64
}

func newEnvelope(n int, wrap bool) *envelope {
	m := n
	if wrap {
		m = 3 * n
	}
	return &envelope{
		n:    n,
		wrap: wrap,
		f:    make([]float64, n),
		d:    make([]float64, n),
		ef:   make([]float64, m),
		ed:   make([]float64, m),
		v:    make([]int, m),
		z:    make([]float64, m+1),
	}
}

func (e *envelope) solve() {
	if !e.wrap {
		copy(e.ef, e.f)
		lowerEnvelope(e.ef, e.ed, e.v, e.z)
		copy(e.d, e.ed)
		return
	}
	for i := range e.ef {
		e.ef[i] = e.f[i%e.n]
	}
	lowerEnvelope(e.ef, e.ed, e.v, e.z)
	copy(e.d, e.ed[e.n:2*e.n])
}

// lowerEnvelope is the Felzenszwalb-Huttenlocher 1D transform:
// d[q] = min_p (q-p)^2 + f[p].
func lowerEnvelope(f, d []float64, v []int, z []float64) {
	n := len(f)
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	intersect := func(q, p int) float64 {
		fq, fp := float64(q), float64(p)
		return ((f[q] + fq*fq) - (f[p] + fp*fp)) / (2*fq - 2*fp)
	}

	for q := 1; q < n; q++ {
		s := intersect(q, v[k])
		for s <= z[k] {
			k--
			s = intersect(q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := range n {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}
