// Package upscale implements the tiled inference compositor.
//
// A source image larger than the model's fixed input size is partitioned
// into overlapping tiles; each tile is run through the inference engine and
// only its interior (the tile minus the context padding) is committed into
// the output buffer. Committed regions of distinct tiles cover disjoint
// destination rectangles that together partition the output exactly, which
// is what makes the result free of seams, gaps, and double-painted pixels.
// Models that accept arbitrary input sizes are served with a single direct
// inference pass instead.
//
// # Coordinate Systems
//
// Tile rectangles live in source-image coordinates; committed regions pair a
// patch-local rectangle (in the patch result's own output pixels) with a
// destination rectangle in the final buffer. The first tile on each axis
// nominally starts at -padding so its interior begins at the image origin;
// edge tiles are clamped into the source and commit all the way to the
// image border, since no real context exists beyond it.
//
// # Concurrency
//
// Processing is single-threaded and synchronous per request. The engine
// handle is an exclusively-held resource with no reentrancy guarantee, so
// one inference call is in flight at a time. Cancellation is checked
// between tiles; an in-flight call runs to completion.
package upscale
