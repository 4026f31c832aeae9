package synth

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/crud89/texturize"
	"github.com/crud89/texturize/internal/parallel"
	"github.com/crud89/texturize/search"
)

var (
	// ErrNilIndex is returned by New when no index is given.
	ErrNilIndex = fmt.Errorf("%w: nil search index", texturize.ErrPrecondition)

	// ErrEmptyIndex is returned by New for an index without descriptors.
	ErrEmptyIndex = fmt.Errorf("%w: empty search index", texturize.ErrPrecondition)
)

// Request describes one synthesis run.
type Request struct {
	// Width and Height of the output in texels.
	Width, Height int

	// Exemplar holds the colors to composite, with the size of the index.
	Exemplar *texturize.Sample

	// Control optionally drives the initialization: a 2-channel sample of
	// normalized exemplar coordinates, looked up bilinearly for every
	// output texel. It may have any size.
	Control *texturize.Sample
}

// Result is the outcome of a synthesis run.
type Result struct {
	// Output has the request size and the exemplar channel count.
	Output *texturize.Sample

	// Assignment holds, per output texel, the normalized coordinates
	// (x/W, y/H) of its exemplar texel. Exemplar.Remap(Assignment)
	// reproduces Output when blending is off.
	Assignment *texturize.Sample

	// Costs holds the total cost of the initial assignment followed by the
	// total after every pass. The sequence never increases.
	Costs []float64

	// Passes is the number of refinement passes run.
	Passes int

	// Converged reports whether refinement stopped before Iterations was
	// exhausted.
	Converged bool
}

// Cost returns the final total cost.
func (r *Result) Cost() float64 {
	return r.Costs[len(r.Costs)-1]
}

// Synthesizer generates textures from one exemplar. It holds only its
// index and configuration and is safe for concurrent Run calls. Several
// synthesizers may share one index.
type Synthesizer struct {
	index    *search.Index
	cfg      Config
	features *texturize.Sample
}

// New creates a synthesizer. Returns ErrNilIndex or ErrEmptyIndex for an
// unusable index and a *texturize.ConfigError for an invalid configuration.
func New(index *search.Index, cfg Config) (*Synthesizer, error) {
	if index == nil {
		return nil, texturize.WrapOp("synth.New", ErrNilIndex)
	}
	if index.Len() == 0 {
		return nil, texturize.WrapOp("synth.New", ErrEmptyIndex)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Synthesizer{index: index, cfg: cfg, features: index.Features()}, nil
}

// Config returns the synthesizer configuration.
func (s *Synthesizer) Config() Config { return s.cfg }

// Index returns the search index.
func (s *Synthesizer) Index() *search.Index { return s.index }

// Run synthesizes a texture. The context is checked between passes; when
// it is done, Run returns the best result reached so far together with
// ctx.Err().
func (s *Synthesizer) Run(ctx context.Context, req Request) (*Result, error) {
	if err := s.check(req); err != nil {
		return nil, texturize.WrapOp("synth.Run", err)
	}

	start := time.Now()
	st := newState(s, req.Width, req.Height)
	if req.Control != nil {
		st.initControl(req.Control)
	} else {
		st.initPatches()
	}

	best, err := st.totalCost()
	if err != nil {
		return nil, err
	}
	costs := []float64{best}
	saved := make([]int, len(st.assign))
	passes := 0
	converged := best == 0

	for {
		if err := ctx.Err(); err != nil {
			res := st.result(req.Exemplar, costs, passes, false)
			texturize.Logger().Debug("synthesis cancelled", "passes", passes, "cost", best)
			return res, err
		}
		if converged || passes >= s.cfg.Iterations {
			break
		}

		copy(saved, st.assign)
		switched, err := st.pass(passes%2 == 1)
		if err != nil {
			return nil, err
		}
		total, err := st.totalCost()
		if err != nil {
			return nil, err
		}
		passes++

		rolledBack := total > best
		if rolledBack {
			st.restore(saved)
			total = best
		}
		texturize.Logger().Debug("synthesis pass",
			"pass", passes, "cost", total, "switched", switched, "rolledBack", rolledBack)

		improvement := best - total
		costs = append(costs, total)
		switch {
		case switched == 0, rolledBack, total == 0:
			converged = true
		case improvement < s.cfg.Tolerance*best:
			converged = true
		}
		best = total
	}

	res := st.result(req.Exemplar, costs, passes, converged)
	texturize.Logger().Info("synthesis finished",
		"width", req.Width, "height", req.Height, "passes", passes,
		"cost", best, "converged", converged, "elapsed", time.Since(start))
	return res, nil
}

func (s *Synthesizer) check(req Request) error {
	if req.Width <= 0 || req.Height <= 0 {
		return fmt.Errorf("%w: output %dx%d", texturize.ErrInvalidDimensions, req.Width, req.Height)
	}
	if req.Exemplar == nil {
		return fmt.Errorf("%w: exemplar", texturize.ErrNilSample)
	}
	if !req.Exemplar.SameSize(s.features) {
		return fmt.Errorf("%w: exemplar is %dx%d, index is %dx%d", texturize.ErrSizeMismatch,
			req.Exemplar.Width(), req.Exemplar.Height(), s.features.Width(), s.features.Height())
	}
	if req.Control != nil && req.Control.Channels() != 2 {
		return fmt.Errorf("%w: control map has %d channels, want 2", texturize.ErrChannelCount, req.Control.Channels())
	}
	return nil
}

// offsets are the eight neighbors in scan order.
var offsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// state is the mutable assignment of one run.
type state struct {
	s      *Synthesizer
	w, h   int
	ew, eh int

	assign []int             // exemplar texel index per output texel
	out    *texturize.Sample // features at the assigned texels
	desc   []float64
}

func newState(s *Synthesizer, w, h int) *state {
	ew, eh := s.features.Bounds()
	return &state{
		s:      s,
		w:      w,
		h:      h,
		ew:     ew,
		eh:     eh,
		assign: make([]int, w*h),
		out:    texturize.MustSample(w, h, s.features.Channels()),
		desc:   make([]float64, s.index.DescriptorLen()),
	}
}

// set assigns exemplar texel a to output texel i.
func (st *state) set(i, a int) {
	st.assign[i] = a
	copy(st.out.Texel(i%st.w, i/st.w), st.s.features.Texel(a%st.ew, a/st.ew))
}

func (st *state) restore(saved []int) {
	for i, a := range saved {
		if st.assign[i] != a {
			st.set(i, a)
		}
	}
}

// initPatches tiles the output with patches copied from random exemplar
// origins.
func (st *state) initPatches() {
	seed := st.s.cfg.Seed
	rng := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	ps := st.s.cfg.PatchSize

	for py := 0; py < st.h; py += ps {
		for px := 0; px < st.w; px += ps {
			ox, oy := rng.IntN(st.ew), rng.IntN(st.eh)
			for y := py; y < min(py+ps, st.h); y++ {
				for x := px; x < min(px+ps, st.w); x++ {
					ax, ay := st.s.features.Wrap(ox+x-px, oy+y-py)
					st.set(y*st.w+x, ay*st.ew+ax)
				}
			}
		}
	}
}

// initControl assigns every output texel the exemplar texel nearest to the
// control map's coordinates at that texel. The map is interpolated with
// clamped edges; wrapping would blend the coordinates of opposite edges.
func (st *state) initControl(control *texturize.Sample) {
	for y := range st.h {
		for x := range st.w {
			uv := control.BilinearClamp(float64(x)/float64(st.w), float64(y)/float64(st.h))
			ax, ay := st.s.features.Wrap(
				int(math.Round(uv[0]*float64(st.ew))),
				int(math.Round(uv[1]*float64(st.eh))))
			st.set(y*st.w+x, ay*st.ew+ax)
		}
	}
}

// project returns the index-space descriptor of output texel (x, y).
func (st *state) project(x, y int, desc []float64) ([]float64, error) {
	cfg := st.s.index.Config()
	if err := st.out.NeighborhoodInto(desc, x, y, cfg.NeighborhoodSize, cfg.Weighted); err != nil {
		return nil, err
	}
	return st.s.index.Project(desc)
}

func (st *state) distance(p []float64, a int) (float64, error) {
	return st.s.index.Distance(p, a%st.ew, a/st.ew)
}

// totalCost sums the cost of every output texel under the current
// assignment. Rows are summed in order so the result does not depend on
// scheduling.
func (st *state) totalCost() (float64, error) {
	rows := make([]float64, st.h)
	errs := make([]error, st.h)
	parallel.Rows(st.h, func(y0, y1 int) {
		desc := make([]float64, len(st.desc))
		for y := y0; y < y1; y++ {
			rows[y], errs[y] = st.rowCost(y, desc)
		}
	})

	var total float64
	for y, v := range rows {
		if errs[y] != nil {
			return 0, errs[y]
		}
		total += v
	}
	return total, nil
}

func (st *state) rowCost(y int, desc []float64) (float64, error) {
	var sum float64
	for x := range st.w {
		p, err := st.project(x, y, desc)
		if err != nil {
			return 0, err
		}
		d, err := st.distance(p, st.assign[y*st.w+x])
		if err != nil {
			return 0, err
		}
		sum += d
	}
	return sum, nil
}

// pass refines every texel once and returns the number of switches.
func (st *state) pass(reverse bool) (int, error) {
	n := st.w * st.h
	switched := 0
	for k := range n {
		i := k
		if reverse {
			i = n - 1 - k
		}
		x, y := i%st.w, i/st.w
		p, err := st.project(x, y, st.desc)
		if err != nil {
			return switched, err
		}

		cur := st.assign[i]
		bestCost, err := st.distance(p, cur)
		if err != nil {
			return switched, err
		}
		best := cur

		m, err := st.s.index.Nearest(p)
		if err != nil {
			return switched, err
		}
		if m.Distance < bestCost {
			best, bestCost = m.Y*st.ew+m.X, m.Distance
		}

		if st.s.cfg.Coherence {
			for _, o := range offsets {
				c := st.continuation(x, y, o)
				if c == best {
					continue
				}
				d, err := st.distance(p, c)
				if err != nil {
					return switched, err
				}
				if d < bestCost {
					best, bestCost = c, d
				}
			}
		}

		if best != cur {
			st.set(i, best)
			switched++
		}
	}
	return switched, nil
}

// continuation returns the exemplar texel that continues the assignment of
// the neighbor at offset o into (x, y).
func (st *state) continuation(x, y int, o [2]int) int {
	nx, ny := st.out.Wrap(x+o[0], y+o[1])
	a := st.assign[ny*st.w+nx]
	cx, cy := st.s.features.Wrap(a%st.ew-o[0], a/st.ew-o[1])
	return cy*st.ew + cx
}

func (st *state) result(exemplar *texturize.Sample, costs []float64, passes int, converged bool) *Result {
	assignment := texturize.MustSample(st.w, st.h, 2)
	output := texturize.MustSample(st.w, st.h, exemplar.Channels())

	parallel.Rows(st.h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := range st.w {
				a := st.assign[y*st.w+x]
				ax, ay := a%st.ew, a/st.ew
				uv := assignment.Texel(x, y)
				uv[0] = float64(ax) / float64(st.ew)
				uv[1] = float64(ay) / float64(st.eh)

				dst := output.Texel(x, y)
				if !st.s.cfg.Blend {
					copy(dst, exemplar.Texel(ax, ay))
					continue
				}
				st.blend(dst, exemplar, x, y)
			}
		}
	})

	return &Result{
		Output:     output,
		Assignment: assignment,
		Costs:      costs,
		Passes:     passes,
		Converged:  converged,
	}
}

// blend averages the colors that the texel itself and its eight neighbors
// predict for (x, y).
func (st *state) blend(dst []float64, exemplar *texturize.Sample, x, y int) {
	a := st.assign[y*st.w+x]
	copy(dst, exemplar.Texel(a%st.ew, a/st.ew))
	for _, o := range offsets {
		c := st.continuation(x, y, o)
		for ch, v := range exemplar.Texel(c%st.ew, c/st.ew) {
			dst[ch] += v
		}
	}
	for ch := range dst {
		dst[ch] /= float64(len(offsets) + 1)
	}
}
