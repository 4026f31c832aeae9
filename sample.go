package texturize

import "fmt"

// Sample is a rectangular grid of floating-point texels with a fixed number
// of channels.
//
// Texels are stored interleaved in row-major order: the value of channel c
// at (x, y) lives at Data()[(y*Width()+x)*Channels()+c]. Values are
// conceptually normalized to [0, 1] but are not clamped; distance and
// feature channels routinely leave that range.
//
// Every constructor copies its input, so no two Samples share storage.
//
// Thread safety: a Sample is safe for concurrent reads. Writes (Set,
// SetValue, Replace, writes through Data) require external synchronization.
type Sample struct {
	data     []float64
	width    int
	height   int
	channels int
}

// NewSample creates a zeroed sample with the given dimensions.
// Returns ErrInvalidDimensions if any dimension is non-positive.
func NewSample(width, height, channels int) (*Sample, error) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil, WrapOp("NewSample", fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, width, height, channels))
	}
	return &Sample{
		data:     make([]float64, width*height*channels),
		width:    width,
		height:   height,
		channels: channels,
	}, nil
}

// MustSample is like NewSample but panics on invalid dimensions.
// Intended for tests and for sizes that were already validated.
func MustSample(width, height, channels int) *Sample {
	s, err := NewSample(width, height, channels)
	if err != nil {
		panic(err)
	}
	return s
}

// FromRaw creates a sample from interleaved texel data. The data is copied.
// Returns ErrDataTooSmall if data holds fewer than width*height*channels values.
func FromRaw(data []float64, width, height, channels int) (*Sample, error) {
	s, err := NewSample(width, height, channels)
	if err != nil {
		return nil, err
	}
	if len(data) < len(s.data) {
		return nil, WrapOp("FromRaw", fmt.Errorf("%w: got %d values, want %d", ErrDataTooSmall, len(data), len(s.data)))
	}
	copy(s.data, data)
	return s, nil
}

// Clone creates a deep copy of the sample.
func (s *Sample) Clone() *Sample {
	data := make([]float64, len(s.data))
	copy(data, s.data)
	return &Sample{data: data, width: s.width, height: s.height, channels: s.channels}
}

// Width returns the sample width in texels.
func (s *Sample) Width() int {
	return s.width
}

// Height returns the sample height in texels.
func (s *Sample) Height() int {
	return s.height
}

// Channels returns the number of values per texel.
func (s *Sample) Channels() int {
	return s.channels
}

// Bounds returns the sample dimensions as (width, height).
func (s *Sample) Bounds() (int, int) {
	return s.width, s.height
}

// Len returns the number of texels.
func (s *Sample) Len() int {
	return s.width * s.height
}

// Data returns the backing slice. Modifying it modifies the sample.
func (s *Sample) Data() []float64 {
	return s.data
}

// Row returns the interleaved values of row y, or nil if y is out of range.
func (s *Sample) Row(y int) []float64 {
	if y < 0 || y >= s.height {
		return nil
	}
	stride := s.width * s.channels
	return s.data[y*stride : (y+1)*stride]
}

// SameSize reports whether o has the same width and height as s.
func (s *Sample) SameSize(o *Sample) bool {
	return o != nil && s.width == o.width && s.height == o.height
}

// Replace makes s take over the grid of other. This is the explicit in-place
// operation filters use to commit a result; other must not be used afterwards.
func (s *Sample) Replace(other *Sample) {
	s.data = other.data
	s.width = other.width
	s.height = other.height
	s.channels = other.channels
	other.data = nil
}

func (s *Sample) offset(x, y int) int {
	return (y*s.width + x) * s.channels
}

func (s *Sample) inBounds(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

// Texel returns the channel values at (x, y) without bounds checks or copying.
// The returned slice aliases the sample. Used by hot loops that have
// already validated their coordinates.
func (s *Sample) Texel(x, y int) []float64 {
	o := s.offset(x, y)
	return s.data[o : o+s.channels : o+s.channels]
}

// At returns a copy of the channel values at (x, y).
// Returns ErrOutOfRange if the coordinates are outside the sample.
func (s *Sample) At(x, y int) ([]float64, error) {
	if !s.inBounds(x, y) {
		return nil, WrapOp("Sample.At", fmt.Errorf("%w: (%d, %d) not in %dx%d", ErrOutOfRange, x, y, s.width, s.height))
	}
	texel := make([]float64, s.channels)
	copy(texel, s.Texel(x, y))
	return texel, nil
}

// Set writes the channel values at (x, y).
func (s *Sample) Set(x, y int, texel []float64) error {
	if !s.inBounds(x, y) {
		return WrapOp("Sample.Set", fmt.Errorf("%w: (%d, %d) not in %dx%d", ErrOutOfRange, x, y, s.width, s.height))
	}
	if len(texel) != s.channels {
		return WrapOp("Sample.Set", fmt.Errorf("%w: got %d values, want %d", ErrChannelCount, len(texel), s.channels))
	}
	copy(s.Texel(x, y), texel)
	return nil
}

// Value returns channel c at (x, y).
func (s *Sample) Value(x, y, c int) (float64, error) {
	if !s.inBounds(x, y) {
		return 0, WrapOp("Sample.Value", fmt.Errorf("%w: (%d, %d) not in %dx%d", ErrOutOfRange, x, y, s.width, s.height))
	}
	if c < 0 || c >= s.channels {
		return 0, WrapOp("Sample.Value", fmt.Errorf("%w: channel %d of %d", ErrChannelRange, c, s.channels))
	}
	return s.data[s.offset(x, y)+c], nil
}

// SetValue writes channel c at (x, y).
func (s *Sample) SetValue(x, y, c int, v float64) error {
	if !s.inBounds(x, y) {
		return WrapOp("Sample.SetValue", fmt.Errorf("%w: (%d, %d) not in %dx%d", ErrOutOfRange, x, y, s.width, s.height))
	}
	if c < 0 || c >= s.channels {
		return WrapOp("Sample.SetValue", fmt.Errorf("%w: channel %d of %d", ErrChannelRange, c, s.channels))
	}
	s.data[s.offset(x, y)+c] = v
	return nil
}

// Wrap reduces (x, y) onto the sample with toroidal addressing, treating
// the sample as if it tiled the plane.
func (s *Sample) Wrap(x, y int) (int, int) {
	return wrap(x, s.width), wrap(y, s.height)
}

// wrap returns v mod n in [0, n).
func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Extract copies channels [first, first+count) into dst. dst is resized to
// the sample's width and height with count channels; its previous contents
// are discarded. Returns ErrChannelRange if the range exceeds the available
// channels.
func (s *Sample) Extract(first, count int, dst *Sample) error {
	if dst == nil {
		return WrapOp("Sample.Extract", ErrNilSample)
	}
	if first < 0 || count <= 0 || first+count > s.channels {
		return WrapOp("Sample.Extract", fmt.Errorf("%w: [%d, %d) of %d channels", ErrChannelRange, first, first+count, s.channels))
	}

	out := MustSample(s.width, s.height, count)
	for i := range s.Len() {
		src := s.data[i*s.channels+first : i*s.channels+first+count]
		copy(out.data[i*count:(i+1)*count], src)
	}
	dst.Replace(out)
	return nil
}

// Concat stacks the channels of equally sized samples, in argument order,
// into a new sample.
func Concat(samples ...*Sample) (*Sample, error) {
	if len(samples) == 0 {
		return nil, WrapOp("Concat", ErrNilSample)
	}
	channels := 0
	for i, s := range samples {
		if s == nil {
			return nil, WrapOp("Concat", fmt.Errorf("%w: argument %d", ErrNilSample, i))
		}
		if !s.SameSize(samples[0]) {
			return nil, WrapOp("Concat", fmt.Errorf("%w: argument %d is %dx%d, want %dx%d",
				ErrSizeMismatch, i, s.width, s.height, samples[0].width, samples[0].height))
		}
		channels += s.channels
	}

	out := MustSample(samples[0].width, samples[0].height, channels)
	for i := range out.Len() {
		dst := out.data[i*channels : (i+1)*channels]
		n := 0
		for _, s := range samples {
			n += copy(dst[n:], s.data[i*s.channels:(i+1)*s.channels])
		}
	}
	return out, nil
}

// Downsample returns a half-size sample using a 2x2 box filter. Odd
// dimensions wrap around, matching the toroidal addressing used elsewhere.
// A 1-texel dimension stays 1.
func (s *Sample) Downsample() *Sample {
	dw := max(1, s.width/2)
	dh := max(1, s.height/2)
	out := MustSample(dw, dh, s.channels)

	for dy := range dh {
		for dx := range dw {
			sx, sy := dx*2, dy*2
			a := s.Texel(sx, sy)
			b := s.Texel(wrap(sx+1, s.width), sy)
			c := s.Texel(sx, wrap(sy+1, s.height))
			d := s.Texel(wrap(sx+1, s.width), wrap(sy+1, s.height))
			dst := out.Texel(dx, dy)
			for ch := range dst {
				dst[ch] = (a[ch] + b[ch] + c[ch] + d[ch]) / 4
			}
		}
	}
	return out
}
