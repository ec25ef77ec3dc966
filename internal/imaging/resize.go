package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ResizeLanczos scales an image by factor using Lanczos resampling. It is
// the non-neural fallback used when no inference backend is available, and
// produces the same output geometry the model path would:
// round(w*scale) x round(h*scale).
func ResizeLanczos(img image.Image, scale float64) *image.NRGBA {
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
