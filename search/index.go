package search

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"

	"github.com/crud89/texturize"
	"github.com/crud89/texturize/internal/parallel"
)

// ErrDescriptorSize is returned when a query descriptor does not have the
// length of the indexed descriptors.
var ErrDescriptorSize = fmt.Errorf("%w: descriptor length mismatch", texturize.ErrPrecondition)

// Match is the result of a query.
type Match struct {
	// X, Y are the exemplar coordinates of the best texel.
	X, Y int

	// Distance is the squared Euclidean distance in index space.
	Distance float64
}

// Index holds one descriptor per exemplar texel.
type Index struct {
	cfg      Config
	features *texturize.Sample

	rawLen int // window descriptor length, size*size*channels
	dims   int // index-space dimensions

	// PCA projection; nil when descriptors are not reduced.
	mean  []float64
	basis *mat.Dense // rawLen×dims

	pts  points // in texel order
	tree *kdtree.Tree
}

// Build computes the descriptor of every texel of features and organizes
// them for search. features is copied.
//
// Returns a *texturize.ConfigError for an invalid configuration, and an
// error matching texturize.ErrNumericDegenerate if the principal component
// analysis fails.
func Build(features *texturize.Sample, cfg Config) (*Index, error) {
	if features == nil {
		return nil, texturize.WrapOp("search.Build", texturize.ErrNilSample)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	w, h := features.Bounds()
	size := cfg.NeighborhoodSize
	rawLen := size * size * features.Channels()

	raw := make([]float64, w*h*rawLen)
	errs := make([]error, h)
	parallel.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := range w {
				i := y*w + x
				if err := features.NeighborhoodInto(raw[i*rawLen:(i+1)*rawLen], x, y, size, cfg.Weighted); err != nil {
					errs[y] = err
					break
				}
			}
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, texturize.WrapOp("search.Build", err)
		}
	}

	idx := &Index{
		cfg:      cfg,
		features: features.Clone(),
		rawLen:   rawLen,
		dims:     rawLen,
	}

	descs := raw
	if cfg.Components > 0 && cfg.Components < rawLen {
		var err error
		descs, err = idx.reduce(raw, w*h)
		if err != nil {
			return nil, err
		}
	}

	idx.pts = make(points, w*h)
	for i := range idx.pts {
		idx.pts[i] = point{index: i, v: descs[i*idx.dims : (i+1)*idx.dims : (i+1)*idx.dims]}
	}
	if cfg.Method == KDTree {
		// kdtree.New reorders its input; keep idx.pts in texel order.
		tree := make(points, len(idx.pts))
		copy(tree, idx.pts)
		idx.tree = kdtree.New(tree, false)
	}

	texturize.Logger().Debug("search index built",
		"texels", w*h, "descriptor", rawLen, "dims", idx.dims,
		"method", cfg.Method.String(), "elapsed", time.Since(start))
	return idx, nil
}

// reduce projects raw descriptors onto their first cfg.Components
// principal components.
func (idx *Index) reduce(raw []float64, n int) ([]float64, error) {
	d := idx.rawLen

	idx.mean = make([]float64, d)
	for i := range n {
		for j, v := range raw[i*d : (i+1)*d] {
			idx.mean[j] += v
		}
	}
	for j := range idx.mean {
		idx.mean[j] /= float64(n)
	}

	centered := mat.NewDense(n, d, nil)
	centered.Apply(func(i, j int, _ float64) float64 { return raw[i*d+j] - idx.mean[j] }, centered)

	var pc stat.PC
	if ok := pc.PrincipalComponents(centered, nil); !ok {
		return nil, texturize.WrapOp("search.Build", fmt.Errorf("%w: principal component analysis failed",
			texturize.ErrNumericDegenerate))
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, cols := vecs.Dims()
	k := min(idx.cfg.Components, cols)

	idx.basis = mat.DenseCopyOf(vecs.Slice(0, d, 0, k))
	idx.dims = k

	proj := make([]float64, n*k)
	for i := range n {
		idx.project(proj[i*k:(i+1)*k], raw[i*d:(i+1)*d])
	}

	vars := pc.VarsTo(nil)
	var kept, total float64
	for i, v := range vars {
		total += v
		if i < k {
			kept += v
		}
	}
	if total > 0 {
		texturize.Logger().Debug("descriptor reduction", "components", k, "variance", kept/total)
	}

	return proj, nil
}

// Config returns the index configuration.
func (idx *Index) Config() Config { return idx.cfg }

// Features returns a copy of the indexed feature sample.
func (idx *Index) Features() *texturize.Sample { return idx.features.Clone() }

// Width returns the exemplar width.
func (idx *Index) Width() int { return idx.features.Width() }

// Height returns the exemplar height.
func (idx *Index) Height() int { return idx.features.Height() }

// Channels returns the feature channel count.
func (idx *Index) Channels() int { return idx.features.Channels() }

// Len returns the number of indexed descriptors, one per exemplar texel.
func (idx *Index) Len() int { return len(idx.pts) }

// DescriptorLen returns the length of query descriptors:
// NeighborhoodSize² × Channels.
func (idx *Index) DescriptorLen() int { return idx.rawLen }

// Dims returns the dimension of index space, which differs from
// DescriptorLen when descriptors are reduced.
func (idx *Index) Dims() int { return idx.dims }

// Descriptor returns a copy of the index-space descriptor of texel (x, y).
func (idx *Index) Descriptor(x, y int) ([]float64, error) {
	i, err := idx.texel(x, y)
	if err != nil {
		return nil, texturize.WrapOp("search.Descriptor", err)
	}
	out := make([]float64, idx.dims)
	copy(out, idx.pts[i].v)
	return out, nil
}

// Project maps a query descriptor of length DescriptorLen into index space.
// The result may be passed to Nearest and Distance.
func (idx *Index) Project(desc []float64) ([]float64, error) {
	if len(desc) != idx.rawLen {
		return nil, texturize.WrapOp("search.Project", fmt.Errorf("%w: got %d values, want %d",
			ErrDescriptorSize, len(desc), idx.rawLen))
	}

	out := make([]float64, idx.dims)
	if idx.basis == nil {
		copy(out, desc)
		return out, nil
	}
	idx.project(out, desc)
	return out, nil
}

func (idx *Index) project(dst, desc []float64) {
	for k := range dst {
		var sum float64
		for j, v := range desc {
			sum += (v - idx.mean[j]) * idx.basis.At(j, k)
		}
		dst[k] = sum
	}
}

// Query returns the texel whose descriptor is closest to desc.
func (idx *Index) Query(desc []float64) (Match, error) {
	p, err := idx.Project(desc)
	if err != nil {
		return Match{}, texturize.WrapOp("search.Query", err)
	}
	return idx.Nearest(p)
}

// DistanceTo returns the squared index-space distance between desc and the
// descriptor of texel (x, y).
func (idx *Index) DistanceTo(desc []float64, x, y int) (float64, error) {
	p, err := idx.Project(desc)
	if err != nil {
		return 0, texturize.WrapOp("search.DistanceTo", err)
	}
	return idx.Distance(p, x, y)
}

// Nearest is like Query for a descriptor already in index space.
func (idx *Index) Nearest(p []float64) (Match, error) {
	if len(p) != idx.dims {
		return Match{}, texturize.WrapOp("search.Nearest", fmt.Errorf("%w: got %d values, want %d",
			ErrDescriptorSize, len(p), idx.dims))
	}

	var best int
	var dist float64
	if idx.tree != nil {
		best, dist = idx.nearestTree(p)
	} else {
		best, dist = idx.nearestScan(p)
	}
	w := idx.Width()
	return Match{X: best % w, Y: best / w, Distance: dist}, nil
}

// Distance is like DistanceTo for a descriptor already in index space.
func (idx *Index) Distance(p []float64, x, y int) (float64, error) {
	if len(p) != idx.dims {
		return 0, texturize.WrapOp("search.Distance", fmt.Errorf("%w: got %d values, want %d",
			ErrDescriptorSize, len(p), idx.dims))
	}
	i, err := idx.texel(x, y)
	if err != nil {
		return 0, texturize.WrapOp("search.Distance", err)
	}
	return sqDist(p, idx.pts[i].v), nil
}

func (idx *Index) texel(x, y int) (int, error) {
	w, h := idx.features.Bounds()
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0, fmt.Errorf("%w: (%d, %d) not in %dx%d", texturize.ErrOutOfRange, x, y, w, h)
	}
	return y*w + x, nil
}

func (idx *Index) nearestScan(p []float64) (int, float64) {
	best, dist := 0, math.Inf(1)
	for i, pt := range idx.pts {
		if d := sqDist(p, pt.v); d < dist {
			best, dist = i, d
		}
	}
	return best, dist
}

// nearestTree finds the nearest distance with the tree, then collects every
// point within that distance to apply the lowest-index tie break.
func (idx *Index) nearestTree(p []float64) (int, float64) {
	q := point{index: -1, v: p}
	_, dist := idx.tree.Nearest(q)

	keeper := kdtree.NewDistKeeper(dist + 1e-9*(dist+1))
	idx.tree.NearestSet(keeper, q)

	best, bestDist := -1, math.Inf(1)
	for _, c := range keeper.Heap {
		if c.Comparable == nil {
			continue
		}
		pt := c.Comparable.(point)
		d := sqDist(p, pt.v)
		if d < bestDist || (d == bestDist && pt.index < best) {
			best, bestDist = pt.index, d
		}
	}
	if best < 0 {
		return idx.nearestScan(p)
	}
	return best, bestDist
}
