// Package server implements the MCP (Model Context Protocol) server for the
// AI image upscaler.
//
// This package provides a JSON-RPC 2.0 server that exposes neural
// super-resolution upscaling through the MCP protocol, designed to work with
// Claude and other MCP-compatible clients.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logging goes to stderr; stdout carries only the protocol.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Upscaling:
//   - image_upscale: Super-resolution upscale by a scale factor
//   - upscale_verify_seams: Upscale and scan tile boundaries for artifacts
//   - model_info: Report the loaded model's input contract and mode
//
// When no inference backend is available (no model configured, or a build
// without the onnx tag), image_upscale falls back to Lanczos resampling and
// reports "lanczos" as its method.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
package server
