package texturize

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Interpolation selects the resampling kernel used by Resize.
type Interpolation uint8

const (
	// InterpNearest selects the closest texel (no interpolation).
	InterpNearest Interpolation = iota

	// InterpBilinear interpolates linearly between neighboring texels.
	InterpBilinear

	// InterpCatmullRom uses a Catmull-Rom cubic kernel. Highest quality, slowest.
	InterpCatmullRom
)

// String returns a string representation of the interpolation mode.
func (m Interpolation) String() string {
	switch m {
	case InterpNearest:
		return "Nearest"
	case InterpBilinear:
		return "Bilinear"
	case InterpCatmullRom:
		return "CatmullRom"
	default:
		return "Unknown"
	}
}

func (m Interpolation) interpolator() xdraw.Interpolator {
	switch m {
	case InterpBilinear:
		return xdraw.BiLinear
	case InterpCatmullRom:
		return xdraw.CatmullRom
	default:
		return xdraw.NearestNeighbor
	}
}

// Bilinear samples the sample at normalized coordinates (u, v) with bilinear
// interpolation and toroidal wrap.
//
// Coordinates address texel corners: u = x/W, v = y/H lands exactly on
// texel (x, y), so an identity coordinate map reproduces the sample.
func (s *Sample) Bilinear(u, v float64) []float64 {
	dst := make([]float64, s.channels)
	s.bilinearInto(dst, u, v)
	return dst
}

// BilinearClamp is like Bilinear but repeats the edge texels instead of
// wrapping, for coordinate fields that must not be averaged across the
// seam between opposite edges.
func (s *Sample) BilinearClamp(u, v float64) []float64 {
	dst := make([]float64, s.channels)
	x0, x1, tx := axis(u, s.width, clampIndex)
	y0, y1, ty := axis(v, s.height, clampIndex)
	s.lerpInto(dst, x0, x1, y0, y1, tx, ty)
	return dst
}

func (s *Sample) bilinearInto(dst []float64, u, v float64) {
	x0, x1, tx := axis(u, s.width, wrap)
	y0, y1, ty := axis(v, s.height, wrap)
	s.lerpInto(dst, x0, x1, y0, y1, tx, ty)
}

// axis splits a normalized coordinate into the two texel indices around it
// and the interpolation weight, reducing indices with address.
func axis(u float64, n int, address func(v, n int) int) (i0, i1 int, t float64) {
	f := u * float64(n)
	i := int(math.Floor(f))
	return address(i, n), address(i+1, n), f - float64(i)
}

func clampIndex(v, n int) int {
	return min(max(v, 0), n-1)
}

func (s *Sample) lerpInto(dst []float64, x0, x1, y0, y1 int, tx, ty float64) {
	p00 := s.Texel(x0, y0)
	p10 := s.Texel(x1, y0)
	p01 := s.Texel(x0, y1)
	p11 := s.Texel(x1, y1)

	for c := range dst {
		dst[c] = lerp2D(p00[c], p10[c], p01[c], p11[c], tx, ty)
	}
}

// Remap performs a per-texel indirection: for every texel of coords, a
// 2-channel sample of normalized (u, v) coordinates, the source is looked up
// with Bilinear and the result written to dst. dst takes the size of coords
// and the channel count of s.
func (s *Sample) Remap(coords, dst *Sample) error {
	if coords == nil || dst == nil {
		return WrapOp("Sample.Remap", ErrNilSample)
	}
	if coords.channels != 2 {
		return WrapOp("Sample.Remap", fmt.Errorf("%w: coordinate map has %d channels, want 2", ErrChannelCount, coords.channels))
	}

	out := MustSample(coords.width, coords.height, s.channels)
	for y := range coords.height {
		for x := range coords.width {
			uv := coords.Texel(x, y)
			s.bilinearInto(out.Texel(x, y), uv[0], uv[1])
		}
	}
	dst.Replace(out)
	return nil
}

// Resize resamples the sample to width×height using golang.org/x/image/draw.
//
// Each channel is resampled independently through a 16-bit plane spanning
// the channel's observed range, so values outside [0, 1] survive the trip.
func (s *Sample) Resize(width, height int, mode Interpolation) (*Sample, error) {
	out, err := NewSample(width, height, s.channels)
	if err != nil {
		return nil, err
	}

	interp := mode.interpolator()
	srcPlane := image.NewGray16(image.Rect(0, 0, s.width, s.height))
	dstPlane := image.NewGray16(image.Rect(0, 0, width, height))

	for c := range s.channels {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := range s.Len() {
			v := s.data[i*s.channels+c]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi <= lo {
			for i := range out.Len() {
				out.data[i*s.channels+c] = lo
			}
			continue
		}

		scale := 65535 / (hi - lo)
		for i := range s.Len() {
			q := uint16(math.Round((s.data[i*s.channels+c] - lo) * scale))
			srcPlane.Pix[2*i] = byte(q >> 8)
			srcPlane.Pix[2*i+1] = byte(q)
		}

		interp.Scale(dstPlane, dstPlane.Bounds(), srcPlane, srcPlane.Bounds(), xdraw.Src, nil)

		for i := range out.Len() {
			q := uint16(dstPlane.Pix[2*i])<<8 | uint16(dstPlane.Pix[2*i+1])
			out.data[i*s.channels+c] = lo + float64(q)/scale
		}
	}
	return out, nil
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// lerp2D performs bilinear interpolation on a 2x2 grid.
func lerp2D(v00, v10, v01, v11, tx, ty float64) float64 {
	v0 := lerp(v00, v10, tx)
	v1 := lerp(v01, v11, tx)
	return lerp(v0, v1, ty)
}
