package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Default unsharp-mask parameters for post-processing upscaled output.
// The radius is small on purpose: the goal is to crisp edges softened by
// the model, not to introduce halos.
const (
	DefaultSharpenRadius = 1.5
	DefaultSharpenAmount = 0.5
)

// Sharpen applies an unsharp mask to an upscaled result. An amount <= 0
// uses DefaultSharpenAmount. Dimensions are preserved.
func Sharpen(img image.Image, amount float64) *image.NRGBA {
	if amount <= 0 {
		amount = DefaultSharpenAmount
	}
	return imaging.Clone(effect.UnsharpMask(img, DefaultSharpenRadius, amount))
}
