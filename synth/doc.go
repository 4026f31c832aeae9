// Package synth grows a texture of arbitrary size from an exemplar by
// neighborhood matching against a search index.
//
// Every output texel is assigned an exemplar texel. The assignment starts
// from random exemplar patches, or from a control map of (u, v)
// coordinates, and is refined in passes that alternate between forward and
// reverse scan order. In each pass a texel compares the neighborhood its
// current assignment produces against the index's best match and against
// coherence candidates, i.e. the continuations suggested by its eight
// neighbors, and switches only on strict improvement. A pass that raises the
// total cost is undone, so reported costs never increase.
//
// Output colors are looked up in the exemplar at the final assignment;
// feature channels only guide the search.
package synth
