package search

import "gonum.org/v1/gonum/spatial/kdtree"

// point is a descriptor in index space tagged with its texel index.
type point struct {
	index int
	v     []float64
}

// Compare implements kdtree.Comparable.
func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.v[d] - c.(point).v[d]
}

// Dims implements kdtree.Comparable.
func (p point) Dims() int { return len(p.v) }

// Distance implements kdtree.Comparable with the squared Euclidean
// distance, the same function the exhaustive scan uses.
func (p point) Distance(c kdtree.Comparable) float64 {
	return sqDist(p.v, c.(point).v)
}

// points implements kdtree.Interface.
type points []point

func (p points) Index(i int) kdtree.Comparable { return p[i] }
func (p points) Len() int                       { return len(p) }
func (p points) Pivot(d kdtree.Dim) int         { return plane{dim: d, pts: p}.pivot() }
func (p points) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// plane sorts points along one dimension for pivot selection.
type plane struct {
	dim kdtree.Dim
	pts points
}

func (p plane) Len() int           { return len(p.pts) }
func (p plane) Less(i, j int) bool { return p.pts[i].v[p.dim] < p.pts[j].v[p.dim] }
func (p plane) Swap(i, j int)      { p.pts[i], p.pts[j] = p.pts[j], p.pts[i] }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{dim: p.dim, pts: p.pts[start:end]}
}

func (p plane) pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i, v := range a {
		d := v - b[i]
		sum += d * d
	}
	return sum
}
