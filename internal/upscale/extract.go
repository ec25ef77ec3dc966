package upscale

import (
	"image"

	"github.com/disintegration/imaging"
)

// extractPatch materializes one tile's pixel data as a freshly allocated
// buffer of exactly rect.W x rect.H. The scheduler guarantees the rectangle
// lies inside the source, so extraction never reads out of bounds; a
// malformed rectangle here is a programming error, not a runtime condition.
func extractPatch(src *image.NRGBA, t TileRect) *image.NRGBA {
	return imaging.Crop(src, image.Rect(t.X, t.Y, t.X+t.W, t.Y+t.H))
}
