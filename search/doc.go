// Package search indexes the neighborhoods of an exemplar's feature sample
// for best-match queries.
//
// Every exemplar texel contributes one descriptor: its flattened, optionally
// Gaussian-weighted neighborhood (see texturize.Sample.Neighborhood).
// Descriptors may be reduced with a principal component analysis before
// they are organized in a kd-tree. Queries return the texel whose
// descriptor is closest in squared Euclidean distance; ties go to the
// texel with the lowest row-major index, so the kd-tree and the exhaustive
// scan return identical matches.
//
// An Index is immutable once built and safe for concurrent queries.
package search
