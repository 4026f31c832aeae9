// Package filter provides the transforms that turn exemplar samples into
// appearance-space features.
//
// Every transform implements Filter and is a pure function of its input and
// its construction-time configuration:
//   - Grayscale: Rec. 709 luminance of an RGB sample
//   - Normalization: min-max rescale to [0, 1]
//   - DynamicThreshold: Otsu binarization
//   - EdgeDetector: edge response from a named EdgeModel
//   - FeatureDistance: exact Euclidean distance transform
//   - Blur: separable Gaussian blur with toroidal edges
//   - Lab: sRGB to CIE L*a*b*
//
// Filters compose with Cascade. Per-texel work is split into row bands on
// the internal worker pool; results do not depend on scheduling.
package filter
