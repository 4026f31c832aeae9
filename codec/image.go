package codec

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/crud89/texturize"
)

// FromImage converts a decoded image into a sample with values in [0, 1].
// Gray images yield 1 channel, opaque images 3 and others 4 channels of
// non-premultiplied color. An empty image fails with
// texturize.ErrInvalidDimensions.
func FromImage(img image.Image) (*texturize.Sample, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if bounds.Empty() {
		return nil, texturize.WrapOp("codec.FromImage", fmt.Errorf("%w: image is %dx%d",
			texturize.ErrInvalidDimensions, width, height))
	}

	switch src := img.(type) {
	case *image.Gray:
		s := texturize.MustSample(width, height, 1)
		for y := range height {
			row := s.Row(y)
			pix := src.Pix[y*src.Stride : y*src.Stride+width]
			for x, v := range pix {
				row[x] = float64(v) / 255
			}
		}
		return s, nil

	case *image.Gray16:
		s := texturize.MustSample(width, height, 1)
		for y := range height {
			row := s.Row(y)
			for x := range width {
				row[x] = float64(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y) / 65535
			}
		}
		return s, nil
	}

	channels := 4
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		channels = 3
	}

	s := texturize.MustSample(width, height, channels)
	for y := range height {
		for x := range width {
			c := color.NRGBA64Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA64)
			texel := s.Texel(x, y)
			texel[0] = float64(c.R) / 65535
			texel[1] = float64(c.G) / 65535
			texel[2] = float64(c.B) / 65535
			if channels == 4 {
				texel[3] = float64(c.A) / 65535
			}
		}
	}
	return s, nil
}

// ToImage converts a sample with 1 to 4 channels into an image with 8 or
// 16 bits per channel. Values are clamped to [0, 1].
func ToImage(s *texturize.Sample, bitDepth int) (image.Image, error) {
	if s == nil {
		return nil, texturize.WrapOp("codec.ToImage", texturize.ErrNilSample)
	}
	if bitDepth != 8 && bitDepth != 16 {
		return nil, texturize.WrapOp("codec.ToImage", fmt.Errorf("%w: %d", ErrBitDepth, bitDepth))
	}
	if s.Channels() > 4 {
		return nil, texturize.WrapOp("codec.ToImage", fmt.Errorf("%w: %d channels do not fit an image, use TSF",
			texturize.ErrChannelCount, s.Channels()))
	}

	w, h := s.Bounds()
	rect := image.Rect(0, 0, w, h)
	ch := s.Channels()

	if ch == 1 {
		if bitDepth == 8 {
			gray := image.NewGray(rect)
			for y := range h {
				for x, v := range s.Row(y) {
					gray.Pix[y*gray.Stride+x] = uint8(quantize(v, 255))
				}
			}
			return gray, nil
		}
		gray := image.NewGray16(rect)
		for y := range h {
			for x, v := range s.Row(y) {
				gray.SetGray16(x, y, color.Gray16{Y: uint16(quantize(v, 65535))})
			}
		}
		return gray, nil
	}

	if bitDepth == 8 {
		img := image.NewNRGBA(rect)
		for y := range h {
			for x := range w {
				r, g, b, a := rgba(s.Texel(x, y))
				off := y*img.Stride + x*4
				img.Pix[off] = uint8(quantize(r, 255))
				img.Pix[off+1] = uint8(quantize(g, 255))
				img.Pix[off+2] = uint8(quantize(b, 255))
				img.Pix[off+3] = uint8(quantize(a, 255))
			}
		}
		return img, nil
	}

	img := image.NewNRGBA64(rect)
	for y := range h {
		for x := range w {
			r, g, b, a := rgba(s.Texel(x, y))
			img.SetNRGBA64(x, y, color.NRGBA64{
				R: uint16(quantize(r, 65535)),
				G: uint16(quantize(g, 65535)),
				B: uint16(quantize(b, 65535)),
				A: uint16(quantize(a, 65535)),
			})
		}
	}
	return img, nil
}

// rgba expands a texel of 2 to 4 channels to RGBA: 2 channels map to red
// and green, a missing alpha is opaque.
func rgba(texel []float64) (r, g, b, a float64) {
	r, g, a = texel[0], texel[1], 1
	if len(texel) > 2 {
		b = texel[2]
	}
	if len(texel) > 3 {
		a = texel[3]
	}
	return r, g, b, a
}

// quantize maps v from [0, 1] to [0, maxValue], clamping and rounding.
func quantize(v, maxValue float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return maxValue
	}
	return math.Round(v * maxValue)
}
