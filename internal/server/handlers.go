package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/pileuszu/unity-ai-model-upscaler/internal/imaging"
	"github.com/pileuszu/unity-ai-model-upscaler/internal/upscale"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_upscale").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Upscaling
	case "image_upscale":
		return s.handleImageUpscale(args)
	case "upscale_verify_seams":
		return s.handleVerifySeams(args)
	case "model_info":
		return s.handleModelInfo(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Upscaling Handlers ===

type imageUpscaleArgs struct {
	Path    string  `json:"path"`
	Scale   float64 `json:"scale"`
	OutPath string  `json:"out_path"`
}

// UpscaleResult is the tool result for image_upscale. Data carries the
// base64 PNG only when no out_path was given.
type UpscaleResult struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Method  string `json:"method"`
	OutPath string `json:"out_path,omitempty"`
	Data    string `json:"data,omitempty"`
}

func (s *Server) handleImageUpscale(args json.RawMessage) (interface{}, error) {
	var a imageUpscaleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 4.0
	}
	if a.Scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %v", a.Scale)
	}

	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	out, method, err := s.runUpscale(src, a.Scale)
	if err != nil {
		return nil, err
	}

	if s.cfg.Output.Sharpen {
		out = imaging.Sharpen(out, s.cfg.Output.SharpenAmount)
	}

	res := &UpscaleResult{
		Width:  out.Bounds().Dx(),
		Height: out.Bounds().Dy(),
		Method: method,
	}
	if a.OutPath != "" {
		if err := imaging.SavePNG(out, a.OutPath); err != nil {
			return nil, err
		}
		res.OutPath = a.OutPath
		return res, nil
	}

	data, err := imaging.EncodePNGBase64(out)
	if err != nil {
		return nil, err
	}
	res.Data = data
	return res, nil
}

type verifySeamsArgs struct {
	Path  string  `json:"path"`
	Scale float64 `json:"scale"`
}

// VerifySeamsResult pairs the seam scan with the geometry that produced it.
type VerifySeamsResult struct {
	Width  int                `json:"width"`
	Height int                `json:"height"`
	Mode   string             `json:"mode"`
	Tile   int                `json:"tile"`
	Report upscale.SeamReport `json:"report"`
}

func (s *Server) handleVerifySeams(args json.RawMessage) (interface{}, error) {
	var a verifySeamsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 4.0
	}
	if s.ups == nil {
		return nil, fmt.Errorf("no inference backend loaded; nothing to verify")
	}

	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	out, err := s.ups.Upscale(context.Background(), src, a.Scale)
	if err != nil {
		return nil, err
	}

	mode, tile := s.ups.Plan()
	res := &VerifySeamsResult{
		Width:  out.Bounds().Dx(),
		Height: out.Bounds().Dy(),
		Mode:   mode.String(),
		Tile:   tile,
	}
	if mode == upscale.ModeTiled {
		b := src.Bounds()
		res.Report = upscale.VerifySeams(out, b.Dx(), b.Dy(), tile, s.ups.Padding(), a.Scale)
	}
	return res, nil
}

// ModelInfoResult describes the loaded model's input contract and the
// operating mode requests will use.
type ModelInfoResult struct {
	Loaded  bool      `json:"loaded"`
	Mode    string    `json:"mode"`
	Tile    int       `json:"tile,omitempty"`
	Padding int       `json:"padding"`
	Input   SpatialAxes `json:"input"`
	Source  string    `json:"source,omitempty"`
}

// SpatialAxes reports the model's declared spatial input axes.
type SpatialAxes struct {
	Width  AxisInfo `json:"width"`
	Height AxisInfo `json:"height"`
}

// AxisInfo is one spatial axis: fixed with a size, or dynamic.
type AxisInfo struct {
	Dynamic bool `json:"dynamic"`
	Size    int  `json:"size,omitempty"`
}

func (s *Server) handleModelInfo(json.RawMessage) (interface{}, error) {
	if s.ups == nil {
		return &ModelInfoResult{
			Loaded: false,
			Mode:   "lanczos-fallback",
		}, nil
	}

	mode, tile := s.ups.Plan()
	shape := s.ups.InputShape()
	return &ModelInfoResult{
		Loaded:  true,
		Mode:    mode.String(),
		Tile:    tile,
		Padding: s.ups.Padding(),
		Input: SpatialAxes{
			Width:  AxisInfo{Dynamic: shape.Width.Dynamic, Size: shape.Width.Size},
			Height: AxisInfo{Dynamic: shape.Height.Dynamic, Size: shape.Height.Size},
		},
		Source: s.cfg.Model.Source,
	}, nil
}

// runUpscale dispatches to the inference pipeline when a backend is loaded,
// or to the Lanczos fallback otherwise. The returned method string tells the
// caller which path produced the result.
func (s *Server) runUpscale(src image.Image, scale float64) (*image.NRGBA, string, error) {
	if s.ups == nil {
		return imaging.ResizeLanczos(src, scale), "lanczos", nil
	}
	out, err := s.ups.Upscale(context.Background(), src, scale)
	if err != nil {
		return nil, "", err
	}
	mode, _ := s.ups.Plan()
	return out, "model-" + mode.String(), nil
}
