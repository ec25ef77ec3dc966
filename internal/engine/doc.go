// Package engine is the boundary to the neural inference backend.
//
// An Engine wraps one loaded super-resolution model. The package defines the
// tensor layout contract ([1, 3, H, W] float32, RGB, values in [0, 1]), the
// per-axis fixed-or-dynamic input shape declaration (ShapeSpec), and the
// rank-tagged output shape union (Rank3/Rank4) that callers normalize before
// decoding pixels.
//
// The real backend uses ONNX Runtime and is gated behind the "onnx" build
// tag; the default build compiles a stub whose NewONNX reports
// ErrBackendUnavailable, letting the rest of the application run with a
// non-neural fallback.
//
// # Concurrency
//
// A loaded engine handle is an exclusively-held resource. Implementations
// make no thread-safety guarantee for concurrent Infer calls; callers must
// serialize access or hold one engine per worker.
package engine
