package server

import (
	"github.com/ironsheep/scantext-mcp/internal/config"
	"github.com/ironsheep/scantext-mcp/internal/imaging"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"minLength":   1,
		"description": "Absolute path to the image file",
	}
}

func noArguments() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and size. The image is cached for later captures.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file, after EXIF orientation.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Capture
		{
			Name: "ocr_capture",
			Description: "Recognize the text in an image and make it the current document. " +
				"Coordinates of the document, and of later tap/drag calls, are in preview pixels: " +
				"the image scaled to preview_width x preview_height. Every recognized line starts selected. " +
				"Starting a capture discards the previous document.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code, e.g. eng, deu, eng+fra. Defaults to the configured language",
					},
					"engine": map[string]interface{}{
						"type":        "string",
						"enum":        []string{config.EngineTesseract, config.EngineVision},
						"description": "Recognition engine. Defaults to the configured engine",
					},
					"preview_width": map[string]interface{}{
						"type":        "integer",
						"minimum":     0,
						"description": "Width of the host preview in pixels. 0 leaves X unscaled",
					},
					"preview_height": map[string]interface{}{
						"type":        "integer",
						"minimum":     0,
						"description": "Height of the host preview in pixels. 0 leaves Y unscaled",
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Only recognize this rectangle of the image (image pixels, x2/y2 exclusive)",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
					"region_name": map[string]interface{}{
						"type":        "string",
						"enum":        imaging.RegionNames,
						"description": "Only recognize a named part of the image. Ignored when region is given",
					},
					"preprocess": map[string]interface{}{
						"type":        "boolean",
						"description": "Convert to grayscale and boost contrast before recognition. Defaults to the configured setting",
					},
					"wait": map[string]interface{}{
						"type":        "boolean",
						"default":     true,
						"description": "Wait for recognition to finish. When false the capture runs in the background; poll ocr_document",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ocr_cancel",
			Description: "Cancel the running capture, if any, and discard the current document.",
			InputSchema: noArguments(),
		},
		{
			Name:        "ocr_engines",
			Description: "List the available recognition engines and the configured defaults.",
			InputSchema: noArguments(),
		},

		// Selection
		{
			Name:        "ocr_tap",
			Description: "Toggle the selection of the first line containing the point (preview pixels).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": "integer", "description": "X coordinate in preview pixels"},
					"y": map[string]interface{}{"type": "integer", "description": "Y coordinate in preview pixels"},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name: "ocr_drag",
			Description: "Apply one drag step at the pointer position. Dragging down (dy > 0) selects " +
				"unselected lines whose vertical band contains y; dragging up deselects selected ones.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x":  map[string]interface{}{"type": "integer", "description": "Pointer X in preview pixels"},
					"y":  map[string]interface{}{"type": "integer", "description": "Pointer Y in preview pixels"},
					"dx": map[string]interface{}{"type": "number", "description": "Horizontal movement since the last step"},
					"dy": map[string]interface{}{"type": "number", "description": "Vertical movement since the last step"},
				},
				"required": []string{"x", "y", "dy"},
			},
		},
		{
			Name:        "ocr_select_all",
			Description: "Select every recognized line.",
			InputSchema: noArguments(),
		},
		{
			Name:        "ocr_clear",
			Description: "Deselect every recognized line.",
			InputSchema: noArguments(),
		},

		// Text
		{
			Name:        "ocr_edit_text",
			Description: "Replace the editable copy of the selected text. Line selection is not changed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{"type": "string"},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "ocr_selected_text",
			Description: "Get the editable selected text, ready to copy.",
			InputSchema: noArguments(),
		},
		{
			Name:        "ocr_document",
			Description: "Get the session state and the current document with every block, line, element and symbol, including SVG selection paths.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"lines_only": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Omit elements and symbols",
					},
				},
			},
		},
		{
			Name:        "ocr_render",
			Description: "Render the current selection over the captured image at preview size and return it as base64-encoded PNG.",
			InputSchema: noArguments(),
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
