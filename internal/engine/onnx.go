//go:build onnx

// ONNX Runtime backend.
//
// Build requirements:
//   - onnxruntime shared library (libonnxruntime.so/dylib/dll) on the
//     library search path, or pointed at via ONNXConfig.LibraryPath
//   - go build -tags onnx
//
// Without the "onnx" tag the stub implementation in onnx_stub.go is used
// and model loading reports ErrBackendUnavailable.
package engine

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func initRuntime(libraryPath string) error {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

type onnxEngine struct {
	session    *ort.DynamicAdvancedSession
	shape      ShapeSpec
	inputName  string
	outputName string
}

// NewONNX loads an ONNX model and queries its input shape contract once.
// The returned engine serializes nothing itself; callers must not issue
// concurrent Infer calls against the same handle.
func NewONNX(cfg ONNXConfig) (Engine, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}
	if err := initRuntime(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: initializing onnxruntime: %v", ErrModelLoadFailed, err)
	}

	inputName := cfg.InputName
	if inputName == "" {
		inputName = "input"
	}
	outputName := cfg.OutputName
	if outputName == "" {
		outputName = "output"
	}

	inputs, _, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading model metadata: %v", ErrModelLoadFailed, err)
	}
	shape, err := inputShapeSpec(inputs, inputName)
	if err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputName}, []string{outputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoadFailed, err)
	}

	return &onnxEngine{
		session:    session,
		shape:      shape,
		inputName:  inputName,
		outputName: outputName,
	}, nil
}

// inputShapeSpec extracts the spatial axes from the model's declared input,
// which is expected in NCHW order. Negative (symbolic) dimensions mean the
// axis is dynamic. A missing or low-rank declaration is treated as fully
// dynamic rather than rejected; the declaration is metadata, not a gate.
func inputShapeSpec(inputs []ort.InputOutputInfo, name string) (ShapeSpec, error) {
	dynamic := ShapeSpec{Width: DynamicAxis(), Height: DynamicAxis()}

	var info *ort.InputOutputInfo
	for i := range inputs {
		if inputs[i].Name == name {
			info = &inputs[i]
			break
		}
	}
	if info == nil {
		if len(inputs) == 0 {
			return ShapeSpec{}, fmt.Errorf("%w: model declares no inputs", ErrModelLoadFailed)
		}
		info = &inputs[0]
	}

	dims := info.Dimensions
	if len(dims) != 4 {
		return dynamic, nil
	}

	spec := dynamic
	if dims[2] >= 0 {
		spec.Height = FixedAxis(int(dims[2]))
	}
	if dims[3] >= 0 {
		spec.Width = FixedAxis(int(dims[3]))
	}
	return spec, nil
}

func (e *onnxEngine) InputShape() ShapeSpec { return e.shape }

func (e *onnxEngine) Infer(t *Tensor) (*Result, error) {
	input, err := ort.NewTensor(
		ort.NewShape(1, Channels, int64(t.Height), int64(t.Width)), t.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: creating input tensor: %v", ErrInferenceFailed, err)
	}
	defer func() { _ = input.Destroy() }()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInferenceFailed, err)
	}
	if outputs[0] == nil {
		return nil, fmt.Errorf("%w: backend produced no output", ErrInferenceFailed)
	}
	out := outputs[0]
	defer func() { _ = out.Destroy() }()

	ft, ok := out.(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("%w: output is not a float32 tensor", ErrInferenceFailed)
	}

	shape, err := ShapeFromDims(ft.GetShape())
	if err != nil {
		return nil, err
	}

	// Copy out before Destroy: the backend owns the tensor's memory.
	data := append([]float32(nil), ft.GetData()...)
	return &Result{Data: data, Shape: shape}, nil
}

func (e *onnxEngine) Close() error {
	if e.session != nil {
		err := e.session.Destroy()
		e.session = nil
		return err
	}
	return nil
}
