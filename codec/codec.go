package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/crud89/texturize"
)

// Codec errors.
var (
	// ErrUnsupportedFormat is returned for unknown file extensions and for
	// formats that cannot hold the requested sample.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", texturize.ErrPrecondition)

	// ErrBitDepth is returned when a format does not support a bit depth.
	ErrBitDepth = fmt.Errorf("%w: unsupported bit depth", texturize.ErrPrecondition)
)

// Format identifies a file format.
type Format uint8

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatTIFF
	FormatBMP
	FormatTSF
)

// String returns a string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "PNG"
	case FormatJPEG:
		return "JPEG"
	case FormatTIFF:
		return "TIFF"
	case FormatBMP:
		return "BMP"
	case FormatTSF:
		return "TSF"
	default:
		return "Unknown"
	}
}

// DefaultBitDepth returns the bit depth used when 0 is requested.
func (f Format) DefaultBitDepth() int {
	if f == FormatTSF {
		return 16
	}
	return 8
}

func (f Format) supports(bitDepth int) bool {
	switch f {
	case FormatPNG, FormatTIFF:
		return bitDepth == 8 || bitDepth == 16
	case FormatJPEG, FormatBMP:
		return bitDepth == 8
	case FormatTSF:
		return bitDepth == 16 || bitDepth == 32
	default:
		return false
	}
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tsf":
		return FormatTSF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads a sample from the file at path, detecting the format from the
// content. Missing, unreadable or undecodable files fail with an error
// matching texturize.ErrResourceUnavailable.
func Load(path string) (*texturize.Sample, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, texturize.WrapOp("codec.Load", fmt.Errorf("%w: %w", texturize.ErrResourceUnavailable, err))
	}
	defer func() { _ = f.Close() }()

	s, err := decode(f)
	if err != nil {
		return nil, texturize.WrapOp("codec.Load", fmt.Errorf("%s: %w", path, err))
	}
	texturize.Logger().Debug("sample loaded", "path", path,
		"width", s.Width(), "height", s.Height(), "channels", s.Channels())
	return s, nil
}

// LoadFromBytes decodes a sample from a byte slice.
func LoadFromBytes(data []byte) (*texturize.Sample, error) {
	if len(data) == 0 {
		return nil, texturize.WrapOp("codec.LoadFromBytes", fmt.Errorf("%w: empty data", texturize.ErrResourceUnavailable))
	}
	s, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, texturize.WrapOp("codec.LoadFromBytes", err)
	}
	return s, nil
}

// Decode reads a sample in any supported format from r.
func Decode(r io.Reader) (*texturize.Sample, error) {
	s, err := decode(r)
	if err != nil {
		return nil, texturize.WrapOp("codec.Decode", err)
	}
	return s, nil
}

func decode(r io.Reader) (*texturize.Sample, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(len(tsfMagic)); err == nil && string(magic) == tsfMagic {
		return decodeTSF(br)
	}

	img, _, err := image.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", texturize.ErrResourceUnavailable, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: decoded image is %dx%d", texturize.ErrResourceUnavailable,
			img.Bounds().Dx(), img.Bounds().Dy())
	}
	return FromImage(img)
}

// Save writes s to path in the format implied by its extension. A bitDepth
// of 0 selects the format's default.
func Save(path string, s *texturize.Sample, bitDepth int) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return texturize.WrapOp("codec.Save", err)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return texturize.WrapOp("codec.Save", fmt.Errorf("%w: %w", texturize.ErrResourceUnavailable, err))
	}

	if err := encode(f, s, format, bitDepth); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return texturize.WrapOp("codec.Save", err)
	}
	if err := f.Close(); err != nil {
		return texturize.WrapOp("codec.Save", fmt.Errorf("%w: %w", texturize.ErrResourceUnavailable, err))
	}
	return nil
}

// Encode writes s to w in the given format. A bitDepth of 0 selects the
// format's default. JPEG and BMP support 8 bits, PNG and TIFF 8 or 16, TSF
// 16 (half precision) or 32 (single precision).
func Encode(w io.Writer, s *texturize.Sample, format Format, bitDepth int) error {
	return texturize.WrapOp("codec.Encode", encode(w, s, format, bitDepth))
}

func encode(w io.Writer, s *texturize.Sample, format Format, bitDepth int) error {
	if s == nil {
		return texturize.ErrNilSample
	}
	if format > FormatTSF {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if bitDepth == 0 {
		bitDepth = format.DefaultBitDepth()
	}
	if !format.supports(bitDepth) {
		return fmt.Errorf("%w: %s cannot store %d bits", ErrBitDepth, format, bitDepth)
	}

	if format == FormatTSF {
		return encodeTSF(w, s, bitDepth)
	}

	img, err := ToImage(s, bitDepth)
	if err != nil {
		return err
	}

	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		err = bmp.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}
