// Package cache provides a small generic LRU cache for values that are
// expensive to compute and cheap to keep, such as filter kernels and
// neighborhood weights.
//
//	kernels := cache.New[int, []float64](64)
//	k := kernels.GetOrCreate(radius, func() []float64 { return compute(radius) })
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
