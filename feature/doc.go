// Package feature builds the appearance space that texture synthesis
// searches in.
//
// An Extractor turns an analysis channel (luminance, an edge response) into
// a distance-to-feature channel by binarizing it with Otsu's method and
// running an exact Euclidean distance transform. Appearance assembles the
// full feature sample of an exemplar: weighted color channels followed by
// weighted structure channels.
//
// Distance channels carry long-range structure into the per-texel
// neighborhoods: two texels with the same local color but different
// distance to the nearest edge are told apart.
package feature
