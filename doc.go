// Package texturize provides exemplar-based texture synthesis.
//
// # Overview
//
// Given a small example texture (the exemplar), texturize synthesizes a
// larger, seamless, non-repeating texture with similar visual statistics,
// optionally guided by a control map of (u, v) coordinates.
//
// # Quick Start
//
//	exemplar, _ := codec.Load("bricks.png")
//
//	features, _ := feature.NewAppearance(feature.DefaultAppearanceConfig()).Build(exemplar)
//	index, _ := search.Build(features, search.DefaultConfig())
//
//	s, _ := synth.New(index, synth.DefaultConfig())
//	res, _ := s.Run(ctx, synth.Request{Width: 512, Height: 512, Exemplar: exemplar})
//
//	_ = codec.Save("out.png", res.Output, 8)
//
// # Architecture
//
// The library is organized into:
//   - texturize: Sample, the multi-channel float texel grid every stage works on
//   - filter: the Filter capability, its variants and Cascade
//   - feature: the appearance-space feature extractor
//   - search: the nearest-neighbor index over exemplar neighborhoods
//   - synth: the coherence-based synthesizer
//   - codec: image file I/O, including the TSF floating-point format
//
// # Coordinate System
//
//   - Origin (0,0) at top-left, X increases right, Y increases down
//   - Normalized coordinates address texel corners: u = x/W
//   - Out-of-range neighbors wrap around (toroidal addressing), since
//     textures are meant to tile
//
// # Errors
//
// Every error matches exactly one of ErrPrecondition, ErrResourceUnavailable
// or ErrNumericDegenerate with errors.Is. Use IsTransient to decide whether a
// retry could help.
package texturize
