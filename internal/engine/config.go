package engine

// ONNXConfig describes how to open an ONNX model.
type ONNXConfig struct {
	// ModelPath is the local path to the .onnx file.
	ModelPath string

	// InputName and OutputName are the model's tensor names.
	// Defaults: "input" and "output".
	InputName  string
	OutputName string

	// LibraryPath optionally overrides the onnxruntime shared library
	// location. Empty means the platform default search path.
	LibraryPath string
}
