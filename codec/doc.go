// Package codec reads and writes samples as image files.
//
// Raster formats (PNG, JPEG, TIFF and BMP) map channels as follows: gray
// images load with 1 channel, opaque color images with 3 and images with
// transparency with 4. Saving writes 1 channel as gray, 2 channels as red
// and green with a zero blue channel, 3 as RGB and 4 as RGBA. Values are
// clamped to [0, 1] and quantized to 8 or 16 bits.
//
// TSF is a lossless container for samples with any channel count and
// values outside [0, 1], such as feature samples: a small header followed
// by zstd-compressed half- or single-precision texels.
package codec
