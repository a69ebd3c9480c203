// Package server implements the MCP (Model Context Protocol) server for
// interactive text capture.
//
// A client captures an image, which is recognized into a document of
// blocks, lines, words and symbols in preview coordinates. It then taps
// and drags over the preview to change which lines are selected, edits the
// aggregated text and reads it back.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Capture:
//   - ocr_capture: Recognize an image (optionally a region of it)
//   - ocr_cancel: Abandon the running capture and the current document
//   - ocr_engines: List recognition engines
//
// Selection:
//   - ocr_tap: Toggle the line under a point
//   - ocr_drag: Extend or shrink the selection with one drag step
//   - ocr_select_all, ocr_clear: Select or deselect every line
//
// Text:
//   - ocr_edit_text: Replace the editable selected text
//   - ocr_selected_text: Read the editable selected text
//   - ocr_document: Full document snapshot with SVG selection paths
//   - ocr_render: Selection overlay as base64 PNG
//
// # Response Format
//
// All tool responses are wrapped in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// # Error Codes
//
//   - -32700: Parse error (malformed JSON-RPC request)
//   - -32601: Method not found
//   - -32602: Invalid params (including arguments rejected by the tool's input schema)
//   - -32000: Tool execution failed (recognizer failure, no document, ...)
//
// # Concurrency
//
// Requests are handled one at a time. A capture started with wait=false
// runs in the background; a newer capture or ocr_cancel makes its result
// stale, and the session controller ignores it.
package server
