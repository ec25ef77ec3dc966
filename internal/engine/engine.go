package engine

import "errors"

// Sentinel errors for the inference boundary.
var (
	// Model loading errors
	ErrModelNotFound   = errors.New("engine: model file not found")
	ErrModelLoadFailed = errors.New("engine: failed to load model")

	// Per-call errors
	ErrInferenceFailed = errors.New("engine: inference failed")
	ErrUnsupportedRank = errors.New("engine: unsupported output tensor rank")
	ErrBadTensorData   = errors.New("engine: tensor data does not match its shape")

	// Returned by the stub backend when the binary was built without ONNX support
	ErrBackendUnavailable = errors.New("engine: onnxruntime backend not available in this build")
)

// AxisSpec declares the model's input requirement for one spatial axis:
// either a fixed pixel count or dynamic (any size accepted).
type AxisSpec struct {
	Dynamic bool
	Size    int
}

// FixedAxis returns an AxisSpec requiring exactly n pixels.
func FixedAxis(n int) AxisSpec { return AxisSpec{Size: n} }

// DynamicAxis returns an AxisSpec accepting any size.
func DynamicAxis() AxisSpec { return AxisSpec{Dynamic: true} }

// ShapeSpec is the model's declared input contract for the two spatial axes.
// It is queried once per loaded model, not per call. The declared values are
// untrustworthy metadata: a fixed axis may carry a non-positive size, which
// callers must correct to a configured default rather than reject.
type ShapeSpec struct {
	Width  AxisSpec
	Height AxisSpec
}

// FullyDynamic reports whether both axes accept arbitrary sizes, meaning the
// whole image can be submitted in a single inference call.
func (s ShapeSpec) FullyDynamic() bool {
	return s.Width.Dynamic && s.Height.Dynamic
}

// Engine is one loaded inference model. Implementations are not required to
// be safe for concurrent Infer calls; callers serialize access to a shared
// engine. Close releases the underlying model handle.
type Engine interface {
	// InputShape returns the model's declared input contract.
	InputShape() ShapeSpec

	// Infer runs one inference pass. The call is synchronous and not
	// preemptible; it runs to completion or error.
	Infer(t *Tensor) (*Result, error)

	Close() error
}
