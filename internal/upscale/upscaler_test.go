package upscale

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/pileuszu/unity-ai-model-upscaler/internal/engine"
)

// fakeEngine is a deterministic nearest-neighbor "model": it scales its
// input by an integer factor by pixel replication. Because the reference
// result for a whole image is trivially computable, it lets tests check the
// tiled pipeline byte-for-byte against a single-pass answer.
type fakeEngine struct {
	shape  engine.ShapeSpec
	factor int
	rank3  bool

	calls  int
	failOn func(call int) error
}

func (f *fakeEngine) InputShape() engine.ShapeSpec { return f.shape }

func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) Infer(in *engine.Tensor) (*engine.Result, error) {
	f.calls++
	if f.failOn != nil {
		if err := f.failOn(f.calls); err != nil {
			return nil, err
		}
	}

	k := f.factor
	w, h := in.Width*k, in.Height*k
	inPlane := in.Width * in.Height
	plane := w * h

	data := make([]float32, engine.Channels*plane)
	for c := 0; c < engine.Channels; c++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[c*plane+y*w+x] = in.Data[c*inPlane+(y/k)*in.Width+(x/k)]
			}
		}
	}

	var shape engine.OutputShape = engine.Rank4{N: 1, C: engine.Channels, H: h, W: w}
	if f.rank3 {
		shape = engine.Rank3{C: engine.Channels, H: h, W: w}
	}
	return &engine.Result{Data: data, Shape: shape}, nil
}

// gradientImage fills an image with a position-dependent pattern. Prime
// periods keep the pattern from repeating in sync with any tile step, so a
// misplaced committed region shows up as a pixel mismatch.
func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			img.Pix[i+0] = uint8(x % 251)
			img.Pix[i+1] = uint8(y % 241)
			img.Pix[i+2] = uint8((x*3 + y*7) % 253)
			img.Pix[i+3] = 255
		}
	}
	return img
}

// nnUpscale is the reference answer for fakeEngine applied to a whole image.
func nnUpscale(src *image.NRGBA, k int) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx()*k, b.Dy()*k))
	for y := 0; y < b.Dy()*k; y++ {
		for x := 0; x < b.Dx()*k; x++ {
			out.SetNRGBA(x, y, src.NRGBAAt(x/k, y/k))
		}
	}
	return out
}

func dynamicShape() engine.ShapeSpec {
	return engine.ShapeSpec{Width: engine.DynamicAxis(), Height: engine.DynamicAxis()}
}

func fixedShape(n int) engine.ShapeSpec {
	return engine.ShapeSpec{Width: engine.FixedAxis(n), Height: engine.FixedAxis(n)}
}

func TestUpscaleDirect(t *testing.T) {
	eng := &fakeEngine{shape: dynamicShape(), factor: 2}
	u := New(eng, Options{})

	src := gradientImage(50, 30)
	out, err := u.Upscale(context.Background(), src, 2.0)
	if err != nil {
		t.Fatalf("Upscale failed: %v", err)
	}
	if eng.calls != 1 {
		t.Errorf("inference calls: got %d, want 1", eng.calls)
	}

	want := nnUpscale(src, 2)
	if !bytes.Equal(out.Pix, want.Pix) {
		t.Error("direct output differs from reference")
	}
}

func TestUpscaleTiledMatchesDirect(t *testing.T) {
	src := gradientImage(150, 90)
	want := nnUpscale(src, 2)

	eng := &fakeEngine{shape: fixedShape(64), factor: 2}
	u := New(eng, Options{ContextPadding: 8})

	out, err := u.Upscale(context.Background(), src, 2.0)
	if err != nil {
		t.Fatalf("Upscale failed: %v", err)
	}
	if out.Bounds().Dx() != 300 || out.Bounds().Dy() != 180 {
		t.Fatalf("dims: got %dx%d, want 300x180", out.Bounds().Dx(), out.Bounds().Dy())
	}
	if eng.calls < 2 {
		t.Fatalf("expected a tiled run, got %d inference calls", eng.calls)
	}
	if !bytes.Equal(out.Pix, want.Pix) {
		t.Error("tiled output differs from single-pass reference")
	}
}

func TestUpscaleSmallSourceTiledEqualsDirect(t *testing.T) {
	// A source no larger than the tile goes through the tiled path as a
	// single clamped tile. Its pixels must match a direct run exactly.
	sizes := []struct{ w, h int }{
		{100, 80},
		{512, 512},
		{512, 100},
	}
	for _, sz := range sizes {
		src := gradientImage(sz.w, sz.h)

		tiled := New(&fakeEngine{shape: fixedShape(512), factor: 2}, Options{})
		gotTiled, err := tiled.Upscale(context.Background(), src, 2.0)
		if err != nil {
			t.Fatalf("%dx%d tiled: %v", sz.w, sz.h, err)
		}

		direct := New(&fakeEngine{shape: dynamicShape(), factor: 2}, Options{})
		gotDirect, err := direct.Upscale(context.Background(), src, 2.0)
		if err != nil {
			t.Fatalf("%dx%d direct: %v", sz.w, sz.h, err)
		}

		if gotTiled.Bounds() != gotDirect.Bounds() {
			t.Fatalf("%dx%d: bounds differ: %v vs %v",
				sz.w, sz.h, gotTiled.Bounds(), gotDirect.Bounds())
		}
		if !bytes.Equal(gotTiled.Pix, gotDirect.Pix) {
			t.Errorf("%dx%d: tiled pixels differ from direct", sz.w, sz.h)
		}
	}
}

func TestUpscaleTiledLargeImage(t *testing.T) {
	src := gradientImage(1000, 700)

	eng := &fakeEngine{shape: fixedShape(512), factor: 2}
	u := New(eng, Options{})

	out, err := u.Upscale(context.Background(), src, 2.0)
	if err != nil {
		t.Fatalf("Upscale failed: %v", err)
	}
	if out.Bounds().Dx() != 2000 || out.Bounds().Dy() != 1400 {
		t.Fatalf("dims: got %dx%d, want 2000x1400", out.Bounds().Dx(), out.Bounds().Dy())
	}
	// 512px tiles with 12px padding step by 488: 3 columns x 2 rows.
	if eng.calls != 6 {
		t.Errorf("inference calls: got %d, want 6", eng.calls)
	}
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatalf("unpainted pixel at offset %d", i)
		}
	}
}

func TestUpscaleRank3Output(t *testing.T) {
	eng := &fakeEngine{shape: dynamicShape(), factor: 2, rank3: true}
	u := New(eng, Options{})

	src := gradientImage(20, 20)
	out, err := u.Upscale(context.Background(), src, 2.0)
	if err != nil {
		t.Fatalf("Upscale failed: %v", err)
	}
	if !bytes.Equal(out.Pix, nnUpscale(src, 2).Pix) {
		t.Error("rank-3 output differs from reference")
	}
}

func TestUpscaleDirectReconcilesGeometry(t *testing.T) {
	// The model doubles, the caller asks for 3x: the result must still come
	// back at the requested geometry.
	eng := &fakeEngine{shape: dynamicShape(), factor: 2}
	u := New(eng, Options{})

	out, err := u.Upscale(context.Background(), gradientImage(40, 30), 3.0)
	if err != nil {
		t.Fatalf("Upscale failed: %v", err)
	}
	if out.Bounds().Dx() != 120 || out.Bounds().Dy() != 90 {
		t.Errorf("dims: got %dx%d, want 120x90", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestUpscaleAbortPolicy(t *testing.T) {
	boom := errors.New("boom")
	eng := &fakeEngine{
		shape:  fixedShape(64),
		factor: 2,
		failOn: func(call int) error {
			if call == 2 {
				return boom
			}
			return nil
		},
	}
	u := New(eng, Options{ContextPadding: 8})

	out, err := u.Upscale(context.Background(), gradientImage(150, 90), 2.0)
	if !errors.Is(err, ErrTileFailed) {
		t.Fatalf("error: got %v, want ErrTileFailed", err)
	}
	if out != nil {
		t.Error("expected no image on abort")
	}
	if eng.calls != 2 {
		t.Errorf("inference calls after abort: got %d, want 2", eng.calls)
	}
}

func TestUpscaleSkipPolicy(t *testing.T) {
	boom := errors.New("boom")
	eng := &fakeEngine{
		shape:  fixedShape(64),
		factor: 2,
		failOn: func(call int) error {
			if call == 2 {
				return boom
			}
			return nil
		},
	}
	u := New(eng, Options{ContextPadding: 8, FailurePolicy: FailureSkip})

	out, err := u.Upscale(context.Background(), gradientImage(150, 90), 2.0)
	if err != nil {
		t.Fatalf("skip policy must not fail the request: %v", err)
	}

	// The failed tile's committed region stays unpainted (zero alpha);
	// everything else is opaque.
	gaps := 0
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] == 0 {
			gaps++
		}
	}
	if gaps == 0 {
		t.Error("expected an unpainted gap for the skipped tile")
	}
	if gaps == len(out.Pix)/4 {
		t.Error("whole output unpainted; surviving tiles were not composited")
	}
}

func TestUpscaleCanceled(t *testing.T) {
	eng := &fakeEngine{shape: fixedShape(64), factor: 2}
	u := New(eng, Options{ContextPadding: 8})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := u.Upscale(ctx, gradientImage(150, 90), 2.0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error: got %v, want context.Canceled", err)
	}
	if eng.calls != 0 {
		t.Errorf("inference calls after pre-canceled context: got %d, want 0", eng.calls)
	}
}

func TestUpscaleArgumentErrors(t *testing.T) {
	u := New(&fakeEngine{shape: dynamicShape(), factor: 2}, Options{})

	if _, err := u.Upscale(context.Background(), gradientImage(10, 10), -1); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("negative scale: got %v, want ErrInvalidScale", err)
	}
	if _, err := u.Upscale(context.Background(), gradientImage(10, 10), 0); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("zero scale: got %v, want ErrInvalidScale", err)
	}
	if _, err := u.Upscale(context.Background(), image.NewNRGBA(image.Rect(0, 0, 0, 0)), 2); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("empty image: got %v, want ErrEmptyImage", err)
	}

	nilEng := New(nil, Options{})
	if _, err := nilEng.Upscale(context.Background(), gradientImage(10, 10), 2); !errors.Is(err, ErrNilEngine) {
		t.Errorf("nil engine: got %v, want ErrNilEngine", err)
	}
}

func TestUpscaleIsDeterministic(t *testing.T) {
	src := gradientImage(150, 90)
	eng := &fakeEngine{shape: fixedShape(64), factor: 2}
	u := New(eng, Options{ContextPadding: 8})

	first, err := u.Upscale(context.Background(), src, 2.0)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := u.Upscale(context.Background(), src, 2.0)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("repeated runs produced different output")
	}
}

func TestPlan(t *testing.T) {
	u := New(&fakeEngine{shape: fixedShape(256), factor: 2}, Options{})
	mode, tile := u.Plan()
	if mode != ModeTiled || tile != 256 {
		t.Errorf("got %v/%d, want tiled/256", mode, tile)
	}

	u = New(&fakeEngine{shape: dynamicShape(), factor: 2}, Options{})
	mode, tile = u.Plan()
	if mode != ModeDirect || tile != 0 {
		t.Errorf("got %v/%d, want direct/0", mode, tile)
	}

	u = New(nil, Options{})
	if mode, _ := u.Plan(); mode != ModeDirect {
		t.Errorf("nil engine mode: got %v, want direct", mode)
	}
}
