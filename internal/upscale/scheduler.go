package upscale

// TileRect is one tile's extraction rectangle in source-image coordinates.
// X/Y are the clamped origin actually read from the source; NominalX/NominalY
// are the unclamped grid positions (the first tile on an axis starts at
// -padding so that its committed interior begins at the image origin).
// Invariant: 0 <= X, Y and X+W <= sourceWidth, Y+H <= sourceHeight.
type TileRect struct {
	X, Y int
	W, H int

	NominalX int
	NominalY int
}

// TouchesLeft reports whether no real context exists beyond the tile's left
// edge: the nominal origin ran past the image border and was clamped, so
// there is no padding to discard on that side.
func (t TileRect) TouchesLeft() bool { return t.NominalX < 0 }

// TouchesTop is the vertical counterpart of TouchesLeft.
func (t TileRect) TouchesTop() bool { return t.NominalY < 0 }

// tilePlan generates the grid of overlapping tiles covering a source image.
// It is a stateless rectangle generator: iteration is restartable and holds
// no shared cursor.
type tilePlan struct {
	srcW, srcH int
	tile       int
	pad        int
	step       int
}

// newTilePlan computes the tile grid parameters. The step between tiles is
// tile - 2*pad; a padding of tile/2 or more would collapse the committed
// interior to nothing, so the step falls back to tile/2 to guarantee
// forward progress.
func newTilePlan(srcW, srcH, tile, pad int) tilePlan {
	step := tile - 2*pad
	if step <= 0 {
		step = tile / 2
	}
	return tilePlan{srcW: srcW, srcH: srcH, tile: tile, pad: pad, step: step}
}

// each yields tiles in raster order (top-to-bottom, left-to-right) until
// exhausted or yield returns false. Every tile is fully tile x tile even at
// the borders: origins are clamped into [0, srcDim-tile] (or 0 when the
// source is smaller than the tile), so edge tiles overlap their neighbors
// more than one step. Overlap is resolved by the compositor, not here.
func (p tilePlan) each(yield func(TileRect) bool) {
	for ny := -p.pad; ny < p.srcH; ny += p.step {
		for nx := -p.pad; nx < p.srcW; nx += p.step {
			t := TileRect{
				X:        clampOrigin(nx, p.srcW, p.tile),
				Y:        clampOrigin(ny, p.srcH, p.tile),
				W:        min(p.tile, p.srcW),
				H:        min(p.tile, p.srcH),
				NominalX: nx,
				NominalY: ny,
			}
			if !yield(t) {
				return
			}
		}
	}
}

// count returns the number of tiles the plan produces per axis.
func (p tilePlan) count() (cols, rows int) {
	for nx := -p.pad; nx < p.srcW; nx += p.step {
		cols++
	}
	for ny := -p.pad; ny < p.srcH; ny += p.step {
		rows++
	}
	return cols, rows
}

// clampOrigin clamps a nominal origin so the extraction rectangle stays
// inside the source, pinning to 0 when the source is smaller than the tile.
func clampOrigin(nominal, srcDim, tile int) int {
	maxOrigin := srcDim - tile
	if maxOrigin < 0 {
		return 0
	}
	if nominal < 0 {
		return 0
	}
	if nominal > maxOrigin {
		return maxOrigin
	}
	return nominal
}
