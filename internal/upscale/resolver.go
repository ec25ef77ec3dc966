package upscale

import "github.com/pileuszu/unity-ai-model-upscaler/internal/engine"

// Mode is the operating mode chosen for one upscale request.
type Mode int

const (
	// ModeDirect submits the whole image in a single inference call.
	// Used when the model accepts arbitrary input sizes on both axes.
	ModeDirect Mode = iota

	// ModeTiled partitions the image into overlapping fixed-size patches.
	ModeTiled
)

func (m Mode) String() string {
	if m == ModeDirect {
		return "direct"
	}
	return "tiled"
}

// resolveMode inspects the model's declared shape contract and decides the
// operating mode and tile size. It never fails: the declaration is
// untrustworthy metadata, so a fixed-but-degenerate axis (size <= 0) is
// silently corrected to the configured fallback instead of surfacing an
// error. When both axes are fixed, the width axis wins.
func resolveMode(spec engine.ShapeSpec, fallback int) (Mode, int) {
	if spec.FullyDynamic() {
		return ModeDirect, 0
	}

	tile := 0
	switch {
	case !spec.Width.Dynamic:
		tile = spec.Width.Size
	case !spec.Height.Dynamic:
		tile = spec.Height.Size
	}
	if tile <= 0 {
		tile = fallback
	}
	return ModeTiled, tile
}
