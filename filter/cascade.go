package filter

import (
	"fmt"
	"strings"

	"github.com/crud89/texturize"
)

// ErrEmptyCascade is returned when a cascade without filters is applied.
var ErrEmptyCascade = fmt.Errorf("%w: cascade has no filters", texturize.ErrPrecondition)

// Cascade is an ordered pipeline of filters. Filters run strictly in the
// order they were appended; the output of each stage is the input of the
// next, and the last stage's output is the cascade's result.
//
// A Cascade is itself a Filter, so cascades nest. Append must not be called
// concurrently with Apply.
type Cascade struct {
	filters []Filter
}

// NewCascade creates a cascade running the given filters in order.
func NewCascade(filters ...Filter) *Cascade {
	c := &Cascade{}
	for _, f := range filters {
		c.Append(f)
	}
	return c
}

// Append adds f as the last stage and returns c for chaining.
// Nil filters are ignored.
func (c *Cascade) Append(f Filter) *Cascade {
	if f != nil {
		c.filters = append(c.filters, f)
	}
	return c
}

// Len returns the number of stages.
func (c *Cascade) Len() int {
	return len(c.filters)
}

// Filters returns a copy of the stages in execution order.
func (c *Cascade) Filters() []Filter {
	out := make([]Filter, len(c.filters))
	copy(out, c.filters)
	return out
}

// Name returns the stage names joined by arrows, e.g. "Cascade(a -> b)".
func (c *Cascade) Name() string {
	names := make([]string, len(c.filters))
	for i, f := range c.filters {
		names[i] = f.Name()
	}
	return "Cascade(" + strings.Join(names, " -> ") + ")"
}

// Apply runs every stage in order. src is never modified; dst receives the
// final stage's output. Fails with ErrEmptyCascade if there are no stages,
// and otherwise with the first stage error, annotated with the stage index
// and name.
func (c *Cascade) Apply(src, dst *texturize.Sample) error {
	if err := checkArgs(c, src, dst); err != nil {
		return err
	}
	if len(c.filters) == 0 {
		return texturize.WrapOp("Cascade", ErrEmptyCascade)
	}

	in := src
	for i, f := range c.filters {
		out := texturize.MustSample(1, 1, 1)
		if err := f.Apply(in, out); err != nil {
			return texturize.WrapOp(fmt.Sprintf("Cascade stage %d (%s)", i, f.Name()), err)
		}
		in = out
	}
	dst.Replace(in)
	return nil
}
