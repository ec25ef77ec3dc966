package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Upscaling
		{
			Name:        "image_upscale",
			Description: "Upscale an image by the given factor using the loaded super-resolution model (tiled automatically when the image exceeds the model's input size). Falls back to Lanczos resampling when no model is loaded. Writes to out_path when given, otherwise returns base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the source image",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor, must be positive (default 4.0)",
						"default":     4.0,
					},
					"out_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional output PNG path. If omitted the result is returned inline as base64.",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "upscale_verify_seams",
			Description: "Upscale an image and scan the result along tile boundaries for stitching artifacts. Reports Lab color-distance statistics across every boundary.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the source image",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor (default 4.0)",
						"default":     4.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "model_info",
			Description: "Report the loaded model's input shape contract and the operating mode (direct or tiled) the upscaler will use.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
