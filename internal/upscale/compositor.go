package upscale

import (
	"image"
	"math"
)

// CompositeRegion is the rectangle copied from one patch result into the
// final output buffer: SrcX/SrcY are patch-local (in output-scale pixels),
// DstX/DstY are global output coordinates. Invariants: the source rectangle
// never exceeds the patch's actual output bounds and the destination
// rectangle never exceeds the final buffer. These two bounds are what makes
// stitching seam-free.
type CompositeRegion struct {
	SrcX, SrcY int
	DstX, DstY int
	W, H       int
}

// compositor derives committed regions for tiles of one upscale request.
type compositor struct {
	pad  int
	step int

	// scale is the requested factor; it fixes global destination geometry.
	// Patch-local offsets use the per-tile observed scale instead.
	scale          float64
	finalW, finalH int
}

// region computes the committed region for one tile. outW/outH are the
// patch result's actual pixel dimensions as reported by the backend.
// The second return is false when the region collapses to zero area, which
// is a normal no-op for already-covered degenerate tiles, not an error.
func (c compositor) region(t TileRect, outW, outH int) (CompositeRegion, bool) {
	scaleX := float64(outW) / float64(t.W)
	scaleY := float64(outH) / float64(t.H)

	sx, dx, w := axisRegion(t.NominalX, t.X, c.pad, c.step, scaleX, c.scale, outW, c.finalW)
	sy, dy, h := axisRegion(t.NominalY, t.Y, c.pad, c.step, scaleY, c.scale, outH, c.finalH)
	if w <= 0 || h <= 0 {
		return CompositeRegion{}, false
	}
	return CompositeRegion{SrcX: sx, SrcY: sy, DstX: dx, DstY: dy, W: w, H: h}, true
}

// axisRegion resolves one axis of a committed region.
//
// The committed interior starts at max(0, nominal+pad) in source space: a
// tile whose nominal origin ran past the image border has no real context
// on that side, so it commits from the border itself instead of discarding
// a padding strip that does not exist. The patch-local offset is measured
// from the clamped extraction origin, which keeps content aligned for tiles
// clamped at the far edge as well.
//
// The extent is derived from the next interior boundary in destination
// space, so adjacent tiles partition the output exactly even for scale
// factors where rounding an isolated step*scale would drift by a pixel.
func axisRegion(nominal, actual, pad, step int, scaleObs, scaleReq float64, outDim, finalDim int) (srcOff, dstOff, extent int) {
	interior := nominal + pad
	if interior < 0 {
		interior = 0
	}

	srcOff = roundScale(interior-actual, scaleObs)
	dstOff = roundScale(interior, scaleReq)
	extent = roundScale(interior+step, scaleReq) - dstOff

	// Destination geometry is authoritative: the last tile on an axis is
	// shrunk to the output border.
	if dstOff+extent > finalDim {
		extent = finalDim - dstOff
	}
	// Rounding can push the source window past the patch edge by a
	// fraction of a pixel. Slide it back instead of shrinking it: the
	// destination partition must stay exact, and the sub-pixel content
	// shift is invisible.
	if srcOff+extent > outDim {
		srcOff = outDim - extent
		if srcOff < 0 {
			srcOff = 0
			extent = outDim
		}
	}
	return srcOff, dstOff, extent
}

func roundScale(v int, scale float64) int {
	return int(math.Round(float64(v) * scale))
}

// paint copies a committed region from a patch result into the output
// buffer. Regions of distinct tiles cover disjoint destination rectangles,
// so each destination pixel is written exactly once per request.
func paint(dst, patch *image.NRGBA, r CompositeRegion) {
	for y := 0; y < r.H; y++ {
		src := patch.Pix[(r.SrcY+y)*patch.Stride+r.SrcX*4:]
		out := dst.Pix[(r.DstY+y)*dst.Stride+r.DstX*4:]
		copy(out[:r.W*4], src[:r.W*4])
	}
}
