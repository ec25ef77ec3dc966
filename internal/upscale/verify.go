package upscale

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// SeamReport summarizes color continuity across the destination-space tile
// boundaries of an assembled output. A correct composite shows no more
// discontinuity on the boundary lines than anywhere else in the image;
// pronounced Lab distances concentrated there indicate stitching artifacts.
type SeamReport struct {
	Boundaries int     `json:"boundaries"`
	Samples    int     `json:"samples"`
	MaxDeltaE  float64 `json:"max_delta_e"`
	MeanDeltaE float64 `json:"mean_delta_e"`
}

// VerifySeams scans out along every interior tile boundary and measures the
// CIE Lab distance between each pair of pixels facing each other across the
// boundary. srcW/srcH, tile, pad and scale must match the request that
// produced out.
func VerifySeams(out *image.NRGBA, srcW, srcH, tile, pad int, scale float64) SeamReport {
	plan := newTilePlan(srcW, srcH, tile, pad)
	w := out.Bounds().Dx()
	h := out.Bounds().Dy()

	xs := boundaryOffsets(plan.pad, plan.step, plan.srcW, w, scale)
	ys := boundaryOffsets(plan.pad, plan.step, plan.srcH, h, scale)

	rep := SeamReport{Boundaries: len(xs) + len(ys)}
	var total float64

	sample := func(a, b color.NRGBA) {
		d := labDistance(a, b)
		total += d
		rep.Samples++
		if d > rep.MaxDeltaE {
			rep.MaxDeltaE = d
		}
	}

	for _, x := range xs {
		for y := 0; y < h; y++ {
			sample(out.NRGBAAt(x-1, y), out.NRGBAAt(x, y))
		}
	}
	for _, y := range ys {
		for x := 0; x < w; x++ {
			sample(out.NRGBAAt(x, y-1), out.NRGBAAt(x, y))
		}
	}

	if rep.Samples > 0 {
		rep.MeanDeltaE = total / float64(rep.Samples)
	}
	return rep
}

// boundaryOffsets returns the destination-space positions where one tile's
// committed region ends and the next begins, interior boundaries only.
func boundaryOffsets(pad, step, srcDim, finalDim int, scale float64) []int {
	var offs []int
	for n := -pad + step; n < srcDim; n += step {
		at := roundScale(n+pad, scale)
		if at > 0 && at < finalDim {
			offs = append(offs, at)
		}
	}
	return offs
}

func labDistance(a, b color.NRGBA) float64 {
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	return ca.DistanceLab(cb)
}
