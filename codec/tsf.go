package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/x448/float16"

	"github.com/crud89/texturize"
)

// tsfMagic starts every TSF stream.
const tsfMagic = "TSF1"

// maxTSFValues bounds the payload a header may announce.
const maxTSFValues = 1 << 30

// tsfChunk is the number of values decoded per read. Memory grows with the
// payload actually present, not with the size the header announces.
const tsfChunk = 1 << 16

// tsfHeader follows the magic, little-endian.
type tsfHeader struct {
	Width    uint32
	Height   uint32
	Channels uint32
	BitDepth uint8
	_        [3]byte
}

func encodeTSF(w io.Writer, s *texturize.Sample, bitDepth int) error {
	if _, err := io.WriteString(w, tsfMagic); err != nil {
		return fmt.Errorf("write TSF magic: %w", err)
	}
	hdr := tsfHeader{
		Width:    uint32(s.Width()),
		Height:   uint32(s.Height()),
		Channels: uint32(s.Channels()),
		BitDepth: uint8(bitDepth),
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write TSF header: %w", err)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create TSF encoder: %w", err)
	}

	size := bitDepth / 8
	buf := make([]byte, s.Width()*s.Channels()*size)
	for y := range s.Height() {
		for i, v := range s.Row(y) {
			if size == 2 {
				binary.LittleEndian.PutUint16(buf[i*2:], float16.Fromfloat32(float32(v)).Bits())
			} else {
				binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
			}
		}
		if _, err := enc.Write(buf); err != nil {
			_ = enc.Close()
			return fmt.Errorf("write TSF payload: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write TSF payload: %w", err)
	}
	return nil
}

func decodeTSF(r io.Reader) (*texturize.Sample, error) {
	magic := make([]byte, len(tsfMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != tsfMagic {
		return nil, fmt.Errorf("%w: not a TSF stream", texturize.ErrResourceUnavailable)
	}

	var hdr tsfHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: read TSF header: %w", texturize.ErrResourceUnavailable, err)
	}
	if hdr.BitDepth != 16 && hdr.BitDepth != 32 {
		return nil, fmt.Errorf("%w: TSF bit depth %d", texturize.ErrResourceUnavailable, hdr.BitDepth)
	}
	w, h, c := int(hdr.Width), int(hdr.Height), int(hdr.Channels)
	if w == 0 || h == 0 || c == 0 || uint64(w)*uint64(h)*uint64(c) > maxTSFValues {
		return nil, fmt.Errorf("%w: TSF dimensions %dx%dx%d", texturize.ErrResourceUnavailable, w, h, c)
	}

	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1), zstd.WithDecoderLowmem(true))
	if err != nil {
		return nil, fmt.Errorf("%w: create TSF decoder: %w", texturize.ErrResourceUnavailable, err)
	}
	defer dec.Close()

	total := w * h * c
	size := int(hdr.BitDepth) / 8
	data := make([]float64, 0, min(total, tsfChunk))
	buf := make([]byte, min(total, tsfChunk)*size)
	for len(data) < total {
		n := min(total-len(data), tsfChunk)
		if _, err := io.ReadFull(dec, buf[:n*size]); err != nil {
			return nil, fmt.Errorf("%w: read TSF payload: %w", texturize.ErrResourceUnavailable, err)
		}
		for i := range n {
			if size == 2 {
				data = append(data, float64(float16.Frombits(binary.LittleEndian.Uint16(buf[i*2:])).Float32()))
			} else {
				data = append(data, float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))))
			}
		}
	}
	return texturize.FromRaw(data, w, h, c)
}
