package upscale

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/pileuszu/unity-ai-model-upscaler/internal/engine"
)

// FailurePolicy controls what happens when inference fails for one tile.
type FailurePolicy string

const (
	// FailureAbort fails the whole request. This is the default: a hole in
	// a tiled output is worse than a failed request the caller can retry.
	FailureAbort FailurePolicy = "abort"

	// FailureSkip leaves the failed tile's destination region unpainted and
	// continues. The gap is reported in the log, not hidden.
	FailureSkip FailurePolicy = "skip"
)

// Sentinel errors for upscale requests.
var (
	ErrInvalidScale = errors.New("upscale: scale factor must be positive")
	ErrEmptyImage   = errors.New("upscale: source image has zero area")
	ErrNilEngine    = errors.New("upscale: no inference engine configured")
	ErrTileFailed   = errors.New("upscale: tile inference failed")
)

// Defaults applied to zero-valued Options fields.
const (
	DefaultTileSize       = 512
	DefaultContextPadding = 12
)

// Options configures an Upscaler.
type Options struct {
	// TileSizeDefault is used when the model declares a fixed axis with a
	// degenerate (non-positive) size. Default 512.
	TileSizeDefault int

	// ContextPadding is the strip of extra source pixels included around a
	// tile's committed region purely for model context, discarded before
	// compositing. Must stay below half the tile size or the interior
	// collapses; the scheduler falls back to a half-tile step if it does.
	// Default 12.
	ContextPadding int

	// FailurePolicy defaults to FailureAbort.
	FailurePolicy FailurePolicy

	Logger *zap.Logger
}

// Upscaler runs upscale requests against one exclusively-held engine handle.
//
// The pipeline is synchronous per request: tiles are processed strictly in
// raster order with one inference call in flight at a time, because the
// engine handle makes no reentrancy guarantee. The source image is read-only
// for the whole operation; every intermediate patch buffer is dropped as
// soon as its committed region has been painted.
type Upscaler struct {
	eng  engine.Engine
	opts Options
	log  *zap.Logger
}

// New wraps a loaded engine. The Upscaler takes no ownership of the handle;
// the caller closes it when done.
func New(eng engine.Engine, opts Options) *Upscaler {
	if opts.TileSizeDefault <= 0 {
		opts.TileSizeDefault = DefaultTileSize
	}
	if opts.ContextPadding <= 0 {
		opts.ContextPadding = DefaultContextPadding
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = FailureAbort
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Upscaler{eng: eng, opts: opts, log: opts.Logger}
}

// Plan reports the operating mode and tile size requests will use, resolved
// from the model's declared input shape. Tile size is 0 in direct mode.
func (u *Upscaler) Plan() (Mode, int) {
	if u.eng == nil {
		return ModeDirect, 0
	}
	return resolveMode(u.eng.InputShape(), u.opts.TileSizeDefault)
}

// Padding returns the context padding in effect.
func (u *Upscaler) Padding() int { return u.opts.ContextPadding }

// InputShape exposes the loaded model's declared input contract.
func (u *Upscaler) InputShape() engine.ShapeSpec {
	if u.eng == nil {
		return engine.ShapeSpec{Width: engine.DynamicAxis(), Height: engine.DynamicAxis()}
	}
	return u.eng.InputShape()
}

// Upscale runs one request and returns the finished output image, sized
// round(srcW*scale) x round(srcH*scale). On any unrecoverable failure it
// returns an error and no image, never a partially painted one. Cancellation
// via ctx is honored between tiles only: an in-flight inference call is not
// preemptible and runs to completion or error.
func (u *Upscaler) Upscale(ctx context.Context, src image.Image, scale float64) (*image.NRGBA, error) {
	if u.eng == nil {
		return nil, ErrNilEngine
	}
	if !(scale > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidScale, scale)
	}

	source := imaging.Clone(src)
	srcW := source.Bounds().Dx()
	srcH := source.Bounds().Dy()
	if srcW == 0 || srcH == 0 {
		return nil, ErrEmptyImage
	}

	outW := int(math.Round(float64(srcW) * scale))
	outH := int(math.Round(float64(srcH) * scale))

	mode, tile := resolveMode(u.eng.InputShape(), u.opts.TileSizeDefault)
	u.log.Info("upscale request",
		zap.Int("src_w", srcW), zap.Int("src_h", srcH),
		zap.Float64("scale", scale), zap.Stringer("mode", mode),
		zap.Int("tile", tile))

	if mode == ModeDirect {
		return u.direct(source, outW, outH)
	}
	return u.tiled(ctx, source, scale, tile, outW, outH)
}

// direct runs the whole image through a single inference call.
func (u *Upscaler) direct(src *image.NRGBA, outW, outH int) (*image.NRGBA, error) {
	res, err := u.eng.Infer(engine.FromImage(src))
	if err != nil {
		return nil, fmt.Errorf("upscale: direct inference: %w", err)
	}
	img, err := res.ToImage()
	if err != nil {
		return nil, fmt.Errorf("upscale: decoding direct result: %w", err)
	}

	// The backend is free to report a shape that is not an exact multiple
	// of the source; reconcile to the requested output geometry.
	if img.Bounds().Dx() != outW || img.Bounds().Dy() != outH {
		u.log.Debug("direct result resized to requested geometry",
			zap.Int("got_w", img.Bounds().Dx()), zap.Int("got_h", img.Bounds().Dy()),
			zap.Int("want_w", outW), zap.Int("want_h", outH))
		img = imaging.Resize(img, outW, outH, imaging.Lanczos)
	}
	return img, nil
}

// tiled partitions the source into overlapping tiles, infers each, and
// composites the committed interiors into one output buffer.
func (u *Upscaler) tiled(ctx context.Context, src *image.NRGBA, scale float64, tile, outW, outH int) (*image.NRGBA, error) {
	srcW := src.Bounds().Dx()
	srcH := src.Bounds().Dy()

	plan := newTilePlan(srcW, srcH, tile, u.opts.ContextPadding)
	comp := compositor{
		pad:    plan.pad,
		step:   plan.step,
		scale:  scale,
		finalW: outW,
		finalH: outH,
	}
	out := image.NewNRGBA(image.Rect(0, 0, outW, outH))

	var failed error
	skipped := 0
	plan.each(func(t TileRect) bool {
		if err := ctx.Err(); err != nil {
			failed = fmt.Errorf("upscale: canceled: %w", err)
			return false
		}

		patch := extractPatch(src, t)
		res, err := u.eng.Infer(engine.FromImage(patch))

		var pimg *image.NRGBA
		if err == nil {
			pimg, err = res.ToImage()
		}
		if err != nil {
			if u.opts.FailurePolicy == FailureSkip {
				skipped++
				u.log.Warn("skipping failed tile",
					zap.Int("x", t.X), zap.Int("y", t.Y), zap.Error(err))
				return true
			}
			failed = fmt.Errorf("%w at (%d,%d): %v", ErrTileFailed, t.X, t.Y, err)
			return false
		}

		if r, ok := comp.region(t, pimg.Bounds().Dx(), pimg.Bounds().Dy()); ok {
			paint(out, pimg, r)
			u.log.Debug("tile composited",
				zap.Int("x", t.X), zap.Int("y", t.Y),
				zap.Int("dst_x", r.DstX), zap.Int("dst_y", r.DstY),
				zap.Int("w", r.W), zap.Int("h", r.H))
		}
		// patch and pimg go out of scope here; nothing outlives the iteration
		return true
	})

	if failed != nil {
		return nil, failed
	}
	if skipped > 0 {
		u.log.Warn("output contains unpainted regions",
			zap.Int("skipped_tiles", skipped))
	}
	return out, nil
}
