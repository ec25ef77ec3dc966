// Package imaging provides the pixel-format plumbing around the upscaler:
// decoding source files (with a small thread-safe cache so repeated tool
// calls against the same path hit disk once), PNG encoding of results, and
// an optional unsharp-mask post-process.
//
// All operations use standard Go image.Image types with a top-left origin.
// The cache is safe for concurrent use; individual operations are stateless.
package imaging
