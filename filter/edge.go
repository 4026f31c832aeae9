package filter

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/crud89/texturize"
	"github.com/crud89/texturize/internal/parallel"
)

// ErrEdgeModelNotFound is returned when no edge model is registered under
// the requested name. It is a resource error: the model may become
// available, e.g. after a plugin registers it.
var ErrEdgeModelNotFound = fmt.Errorf("%w: edge model not found", texturize.ErrResourceUnavailable)

// EdgeModel is the boundary to an edge-response model, such as a pretrained
// structured edge forest. DetectEdges returns a single-channel sample of the
// same size as src; larger values mean stronger edges.
type EdgeModel interface {
	DetectEdges(src *texturize.Sample) (*texturize.Sample, error)
}

// EdgeModelLoader constructs an edge model. Loaders that read model files
// should wrap failures with texturize.ErrResourceUnavailable.
type EdgeModelLoader func() (EdgeModel, error)

var (
	edgeModelsMu sync.RWMutex
	edgeModels   = map[string]EdgeModelLoader{}
)

func init() {
	RegisterEdgeModel("sobel", func() (EdgeModel, error) {
		return &SobelModel{BlurRadius: 1}, nil
	})
}

// foldName case-folds and trims a model name so that lookups are
// insensitive to case, including non-ASCII names.
func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// RegisterEdgeModel makes an edge model available by name. Registering a
// name twice replaces the earlier loader.
func RegisterEdgeModel(name string, loader EdgeModelLoader) {
	edgeModelsMu.Lock()
	defer edgeModelsMu.Unlock()
	edgeModels[foldName(name)] = loader
}

// EdgeModels returns the registered model names, sorted.
func EdgeModels() []string {
	edgeModelsMu.RLock()
	defer edgeModelsMu.RUnlock()
	names := make([]string, 0, len(edgeModels))
	for name := range edgeModels {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadEdgeModel constructs the model registered under name.
func LoadEdgeModel(name string) (EdgeModel, error) {
	edgeModelsMu.RLock()
	loader, ok := edgeModels[foldName(name)]
	edgeModelsMu.RUnlock()
	if !ok {
		return nil, texturize.WrapOp("LoadEdgeModel", fmt.Errorf("%w: %q", ErrEdgeModelNotFound, name))
	}

	model, err := loader()
	if err != nil {
		return nil, texturize.WrapOp("LoadEdgeModel", fmt.Errorf("load %q: %w", name, err))
	}
	return model, nil
}

// EdgeDetector produces a single-channel edge-strength map normalized to
// [0, 1] from an edge model loaded at construction time.
type EdgeDetector struct {
	name  string
	model EdgeModel
}

// NewEdgeDetector loads the named edge model.
func NewEdgeDetector(name string) (*EdgeDetector, error) {
	model, err := LoadEdgeModel(name)
	if err != nil {
		return nil, err
	}
	return &EdgeDetector{name: foldName(name), model: model}, nil
}

// NewEdgeDetectorWithModel wraps an already constructed model.
func NewEdgeDetectorWithModel(name string, model EdgeModel) *EdgeDetector {
	return &EdgeDetector{name: name, model: model}
}

// Name implements Filter.
func (f *EdgeDetector) Name() string { return "EdgeDetector(" + f.name + ")" }

// Apply implements Filter.
func (f *EdgeDetector) Apply(src, dst *texturize.Sample) error {
	if err := checkArgs(f, src, dst); err != nil {
		return err
	}

	edges, err := f.model.DetectEdges(src)
	if err != nil {
		return texturize.WrapOp(f.Name(), err)
	}
	if edges == nil || edges.Channels() != 1 || !edges.SameSize(src) {
		return texturize.WrapOp(f.Name(), fmt.Errorf("%w: model must return a single-channel map of the input size",
			texturize.ErrChannelCount))
	}

	return (&Normalization{}).Apply(edges, dst)
}

// SobelModel is the built-in edge model: an optional Gaussian pre-blur
// followed by the Sobel gradient magnitude. It accepts 1-channel input,
// and 3- or 4-channel color input which is reduced to luminance first
// (alpha is ignored).
type SobelModel struct {
	// BlurRadius is the sigma of the pre-blur. Zero disables it.
	BlurRadius float64
}

// DetectEdges implements EdgeModel.
func (m *SobelModel) DetectEdges(src *texturize.Sample) (*texturize.Sample, error) {
	gray := src
	switch src.Channels() {
	case 1:
	case 3, 4:
		rgb := texturize.MustSample(1, 1, 1)
		if err := src.Extract(0, 3, rgb); err != nil {
			return nil, err
		}
		if err := NewGrayscale().Apply(rgb, rgb); err != nil {
			return nil, err
		}
		gray = rgb
	default:
		return nil, fmt.Errorf("%w: sobel model needs 1, 3 or 4 channels, got %d",
			texturize.ErrChannelCount, src.Channels())
	}

	if m.BlurRadius > 0 {
		blurred := texturize.MustSample(1, 1, 1)
		if err := NewBlur(m.BlurRadius).Apply(gray, blurred); err != nil {
			return nil, err
		}
		gray = blurred
	}

	gx, gy := SobelKernels()
	w, h := gray.Bounds()
	in := gray.Data()
	out := texturize.MustSample(w, h, 1)
	res := out.Data()

	parallel.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := range w {
				var sx, sy float64
				for j := range 3 {
					yy := wrapIndex(y+j-1, h)
					for i := range 3 {
						v := in[yy*w+wrapIndex(x+i-1, w)]
						sx += gx[j*3+i] * v
						sy += gy[j*3+i] * v
					}
				}
				res[y*w+x] = math.Hypot(sx, sy)
			}
		}
	})
	return out, nil
}
