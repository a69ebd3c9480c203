package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ironsheep/scantext-mcp/internal/config"
	"github.com/ironsheep/scantext-mcp/internal/imaging"
	"github.com/ironsheep/scantext-mcp/internal/ocr"
	"github.com/ironsheep/scantext-mcp/internal/session"
)

// Version is reported in the initialize handshake. cmd/scantext-mcp
// overrides it from build flags.
var Version = "dev"

// Server handles MCP protocol communication
type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	cache       *imaging.ImageCache
	controller  *session.Controller
	recognizers map[string]ocr.Recognizer
	palette     imaging.Palette
	schemas     map[string]*jsonschema.Schema

	in  io.Reader
	out io.Writer

	mu            sync.Mutex
	capture       captureInfo
	cancelCapture context.CancelFunc
	pending       sync.WaitGroup
}

// captureInfo remembers what the current document was recognized from,
// for rendering.
type captureInfo struct {
	path          string
	engine        string
	previewWidth  int
	previewHeight int
}

// Option customizes a Server.
type Option func(*Server)

// WithRecognizer registers r under an engine name, replacing any default
// recognizer with that name.
func WithRecognizer(name string, r ocr.Recognizer) Option {
	return func(s *Server) { s.recognizers[name] = r }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithIO replaces stdin/stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server for cfg. A Tesseract recognizer is registered by
// default; other engines are added with WithRecognizer.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	palette, err := imaging.NewPalette(cfg.Highlight.Selected, cfg.Highlight.Recognized, cfg.Highlight.Alpha)
	if err != nil {
		return nil, fmt.Errorf("invalid highlight colors: %w", err)
	}
	schemas, err := compileToolSchemas(GetToolDefinitions())
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:   cfg,
		cache: imaging.NewImageCache(),
		recognizers: map[string]ocr.Recognizer{
			config.EngineTesseract: ocr.NewTesseract(),
		},
		palette: palette,
		schemas: schemas,
		in:      os.Stdin,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s.controller = session.New(s.logger.With("component", "session"))
	s.controller.Subscribe(func(st session.State) {
		s.logger.Debug("session state",
			"generation", st.Generation,
			"status", st.Status,
			"selected_chars", len(st.Text),
		)
	})
	return s, nil
}

// Run reads requests until the input ends, then waits for background
// captures to finish.
func (s *Server) Run() error {
	defer s.pending.Wait()

	scanner := bufio.NewScanner(s.in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(s.out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "scantext-mcp",
				"version": Version,
			},
		},
	}
}
