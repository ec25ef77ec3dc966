//go:build !onnx

// Stub implementation for builds without the onnxruntime library.
// Build with: go build -tags onnx to enable the real backend.

package engine

import (
	"fmt"
	"os"
)

// NewONNX is the stub implementation. It validates that the model file
// exists but cannot load it; callers fall back to non-neural resizing.
func NewONNX(cfg ONNXConfig) (Engine, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}
	return nil, fmt.Errorf("%w: rebuild with -tags onnx", ErrBackendUnavailable)
}
