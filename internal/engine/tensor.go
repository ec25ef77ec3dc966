package engine

import (
	"fmt"
	"image"
)

// Channels is the fixed channel count for model input and output tensors.
// Alpha is dropped on the way in and restored opaque on the way out.
const Channels = 3

// Tensor is a single-image input tensor in NCHW layout ([1, 3, H, W]),
// RGB channel order, values normalized to [0, 1].
type Tensor struct {
	Data   []float32
	Height int
	Width  int
}

// FromImage converts a pixel patch into the model's expected tensor layout.
func FromImage(img *image.NRGBA) *Tensor {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h

	data := make([]float32, Channels*plane)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			i := y*w + x
			px := row[x*4:]
			data[0*plane+i] = float32(px[0]) / 255.0
			data[1*plane+i] = float32(px[1]) / 255.0
			data[2*plane+i] = float32(px[2]) / 255.0
		}
	}

	return &Tensor{Data: data, Height: h, Width: w}
}

// OutputShape is the shape a backend reports for one inference result.
// Backends are free to return rank 3 (CHW) or rank 4 (NCHW); anything else
// is unsupported. Normalize resolves the variants to a common NCHW form.
type OutputShape interface {
	normalize() (Rank4, bool)
}

// Rank3 is a CHW result shape (no batch axis).
type Rank3 struct{ C, H, W int }

func (s Rank3) normalize() (Rank4, bool) {
	return Rank4{N: 1, C: s.C, H: s.H, W: s.W}, true
}

// Rank4 is an NCHW result shape. Only unit batches are usable.
type Rank4 struct{ N, C, H, W int }

func (s Rank4) normalize() (Rank4, bool) {
	return s, s.N == 1
}

// Normalize converts an output shape to NCHW with a unit batch axis,
// inserting the axis for rank-3 results. A nil shape, a non-unit batch,
// or a channel count other than 3 is reported as unsupported.
func Normalize(s OutputShape) (Rank4, error) {
	if s == nil {
		return Rank4{}, ErrUnsupportedRank
	}
	n, ok := s.normalize()
	if !ok || n.C != Channels {
		return Rank4{}, fmt.Errorf("%w: batch=%d channels=%d", ErrUnsupportedRank, n.N, n.C)
	}
	return n, nil
}

// ShapeFromDims builds an OutputShape from raw backend dimensions.
func ShapeFromDims(dims []int64) (OutputShape, error) {
	switch len(dims) {
	case 3:
		return Rank3{C: int(dims[0]), H: int(dims[1]), W: int(dims[2])}, nil
	case 4:
		return Rank4{N: int(dims[0]), C: int(dims[1]), H: int(dims[2]), W: int(dims[3])}, nil
	default:
		return nil, fmt.Errorf("%w: rank %d", ErrUnsupportedRank, len(dims))
	}
}

// Result is the output of one inference call. Pixel dimensions must always
// be read from Shape rather than assumed from the input size and a nominal
// scale factor: backends may report shapes that are not exact multiples.
type Result struct {
	Data  []float32
	Shape OutputShape
}

// dims returns the pixel width and height of the result.
func (r *Result) dims() (w, h int, err error) {
	n, err := Normalize(r.Shape)
	if err != nil {
		return 0, 0, err
	}
	return n.W, n.H, nil
}

// ToImage decodes the result tensor into an opaque NRGBA patch, denormalizing
// from [0, 1] and clamping out-of-range values.
func (r *Result) ToImage() (*image.NRGBA, error) {
	n, err := Normalize(r.Shape)
	if err != nil {
		return nil, err
	}

	plane := n.W * n.H
	if len(r.Data) < Channels*plane {
		return nil, fmt.Errorf("%w: have %d values, shape needs %d",
			ErrBadTensorData, len(r.Data), Channels*plane)
	}

	img := image.NewNRGBA(image.Rect(0, 0, n.W, n.H))
	for y := 0; y < n.H; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < n.W; x++ {
			i := y*n.W + x
			px := row[x*4:]
			px[0] = clampByte(r.Data[0*plane+i] * 255.0)
			px[1] = clampByte(r.Data[1*plane+i] * 255.0)
			px[2] = clampByte(r.Data[2*plane+i] * 255.0)
			px[3] = 255
		}
	}
	return img, nil
}

// clampByte rounds to nearest so normalize/denormalize roundtrips are exact.
func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
