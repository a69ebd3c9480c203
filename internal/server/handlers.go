package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/scantext-mcp/internal/config"
	"github.com/ironsheep/scantext-mcp/internal/geometry"
	"github.com/ironsheep/scantext-mcp/internal/imaging"
	"github.com/ironsheep/scantext-mcp/internal/ocr"
	"github.com/ironsheep/scantext-mcp/internal/session"
	"github.com/ironsheep/scantext-mcp/internal/textmodel"
)

var (
	// ErrUnknownTool is returned for a tools/call with an unregistered name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrUnknownEngine is returned when a capture names an engine that has
	// no recognizer.
	ErrUnknownEngine = errors.New("unknown engine")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "ocr_capture", "ocr_tap").
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
// Arguments that do not match the tool's input schema return -32602. Tool
// execution errors return -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	if err := s.validateArguments(params.Name, params.Arguments); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool failed", "tool", params.Name, "error", err)
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
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Capture
	case "ocr_capture":
		return s.handleOCRCapture(args)
	case "ocr_cancel":
		return s.handleOCRCancel()
	case "ocr_engines":
		return s.handleOCREngines()

	// Selection
	case "ocr_tap":
		return s.handleOCRTap(args)
	case "ocr_drag":
		return s.handleOCRDrag(args)
	case "ocr_select_all":
		return s.withDocument(s.controller.OnSelectAll)
	case "ocr_clear":
		return s.withDocument(s.controller.OnClear)

	// Text
	case "ocr_edit_text":
		return s.handleOCREditText(args)
	case "ocr_selected_text":
		return s.handleOCRSelectedText()
	case "ocr_document":
		return s.handleOCRDocument(args)
	case "ocr_render":
		return s.handleOCRRender()

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments; absent arguments leave a zero value.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Capture Handlers ===

type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type ocrCaptureArgs struct {
	Path          string      `json:"path"`
	Language      string      `json:"language"`
	Engine        string      `json:"engine"`
	PreviewWidth  *int        `json:"preview_width"`
	PreviewHeight *int        `json:"preview_height"`
	Region        *regionArgs `json:"region"`
	RegionName    string      `json:"region_name"`
	Preprocess    *bool       `json:"preprocess"`
	Wait          *bool       `json:"wait"`
}

// stateResult is the session summary returned by most tools.
type stateResult struct {
	Generation    session.Generation `json:"generation"`
	Status        session.Status     `json:"status"`
	Text          string             `json:"text"`
	LineCount     int                `json:"line_count"`
	SelectedLines int                `json:"selected_lines"`
	Error         string             `json:"error,omitempty"`
}

func newStateResult(st session.State) stateResult {
	r := stateResult{
		Generation: st.Generation,
		Status:     st.Status,
		Text:       st.Text,
	}
	if st.Document != nil {
		r.LineCount = len(st.Document.Lines())
		r.SelectedLines = st.Document.SelectedCount()
	}
	if st.Err != nil {
		r.Error = st.Err.Error()
	}
	return r
}

type captureResult struct {
	stateResult
	Engine string         `json:"engine"`
	Scale  geometry.Scale `json:"scale"`
	Blocks int            `json:"blocks"`
}

func (s *Server) handleOCRCapture(args json.RawMessage) (interface{}, error) {
	var a ocrCaptureArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	// Apply defaults
	if a.Language == "" {
		a.Language = s.cfg.Language
	}
	if a.Engine == "" {
		a.Engine = s.cfg.Engine
	}
	previewWidth, previewHeight := s.cfg.PreviewWidth, s.cfg.PreviewHeight
	if a.PreviewWidth != nil {
		previewWidth = *a.PreviewWidth
	}
	if a.PreviewHeight != nil {
		previewHeight = *a.PreviewHeight
	}
	preprocess := s.cfg.Preprocess.Enabled
	if a.Preprocess != nil {
		preprocess = *a.Preprocess
	}
	wait := a.Wait == nil || *a.Wait

	recognizer, ok := s.recognizers[a.Engine]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, a.Engine)
	}
	if preprocess {
		recognizer = ocr.WithPreprocessing(recognizer, s.cfg.Preprocess.Contrast)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()

	var region image.Rectangle
	switch {
	case a.Region != nil:
		region, err = imaging.ValidateRegion(bounds, a.Region.X1, a.Region.Y1, a.Region.X2, a.Region.Y2)
	case a.RegionName != "":
		region, err = imaging.NamedRegion(bounds, a.RegionName)
	default:
		region = bounds
	}
	if err != nil {
		return nil, err
	}

	scale := geometry.ScaleFactors(bounds.Dx(), bounds.Dy(), previewWidth, previewHeight)

	ctx, cancel := context.WithCancel(context.Background())
	gen := s.controller.BeginCapture()

	s.mu.Lock()
	if s.cancelCapture != nil {
		s.cancelCapture()
	}
	s.cancelCapture = cancel
	s.capture = captureInfo{
		path:          a.Path,
		engine:        a.Engine,
		previewWidth:  previewWidth,
		previewHeight: previewHeight,
	}
	s.mu.Unlock()

	s.logger.Info("capture started",
		"generation", gen,
		"path", a.Path,
		"engine", a.Engine,
		"language", a.Language,
		"region", region,
	)

	run := func() {
		defer cancel()

		var raw *textmodel.RawText
		var err error
		if region == bounds {
			raw, err = recognizer.Recognize(ctx, img, a.Language)
		} else {
			raw, err = ocr.RecognizeRegion(ctx, recognizer, img, region, a.Language)
		}
		if err != nil {
			s.controller.OnRecognitionFailed(gen, fmt.Errorf("%s recognition failed: %w", a.Engine, err))
			return
		}
		s.controller.OnNewRecognitionResult(gen, raw, scale)
	}

	result := captureResult{Engine: a.Engine, Scale: scale}

	if !wait {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			run()
		}()
		result.stateResult = newStateResult(s.controller.Snapshot())
		return result, nil
	}

	run()
	st := s.controller.Snapshot()
	if st.Generation == gen && st.Status == session.StatusFailed {
		return nil, st.Err
	}
	result.stateResult = newStateResult(st)
	if st.Document != nil {
		result.Blocks = len(st.Document.Blocks)
	}
	return result, nil
}

func (s *Server) handleOCRCancel() (interface{}, error) {
	s.mu.Lock()
	if s.cancelCapture != nil {
		s.cancelCapture()
		s.cancelCapture = nil
	}
	s.capture = captureInfo{}
	s.mu.Unlock()

	return newStateResult(s.controller.Cancel()), nil
}

type engineInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
}

type enginesResult struct {
	Engines         []engineInfo `json:"engines"`
	DefaultEngine   string       `json:"default_engine"`
	DefaultLanguage string       `json:"default_language"`
	PreviewWidth    int          `json:"preview_width"`
	PreviewHeight   int          `json:"preview_height"`
	Preprocess      bool         `json:"preprocess"`
}

func (s *Server) handleOCREngines() (interface{}, error) {
	result := enginesResult{
		DefaultEngine:   s.cfg.Engine,
		DefaultLanguage: s.cfg.Language,
		PreviewWidth:    s.cfg.PreviewWidth,
		PreviewHeight:   s.cfg.PreviewHeight,
		Preprocess:      s.cfg.Preprocess.Enabled,
	}

	names := []string{config.EngineTesseract, config.EngineVision}
	for name := range s.recognizers {
		if name != config.EngineTesseract && name != config.EngineVision {
			names = append(names, name)
		}
	}
	sort.Strings(names[2:])

	for _, name := range names {
		r, ok := s.recognizers[name]
		info := engineInfo{Name: name, Available: ok}
		if _, isTesseract := r.(*ocr.Tesseract); isTesseract {
			info.Version = ocr.TesseractVersion()
		}
		result.Engines = append(result.Engines, info)
	}
	return result, nil
}

// === Selection Handlers ===

// withDocument runs a document operation, failing with
// session.ErrNoDocument before the first accepted capture.
func (s *Server) withDocument(op func() session.State) (interface{}, error) {
	if _, err := s.controller.RequireDocument(); err != nil {
		return nil, err
	}
	return newStateResult(op()), nil
}

type ocrTapArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// lineResult describes a line touched by a pointer operation, as it was
// before the change.
type lineResult struct {
	Text     string        `json:"text"`
	Rect     geometry.Rect `json:"rect"`
	Selected bool          `json:"selected"`
}

func newLineResult(l textmodel.Line) lineResult {
	return lineResult{Text: l.Text, Rect: l.Rect, Selected: l.Selected}
}

type tapResult struct {
	stateResult
	Hit  bool        `json:"hit"`
	Line *lineResult `json:"line,omitempty"`
}

func (s *Server) handleOCRTap(args json.RawMessage) (interface{}, error) {
	var a ocrTapArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.controller.RequireDocument(); err != nil {
		return nil, err
	}

	line, st := s.controller.OnTap(geometry.Point{X: a.X, Y: a.Y})
	result := tapResult{stateResult: newStateResult(st), Hit: line != nil}
	if line != nil {
		lr := newLineResult(*line)
		result.Line = &lr
	}
	return result, nil
}

type ocrDragArgs struct {
	X  int     `json:"x"`
	Y  int     `json:"y"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type dragResult struct {
	stateResult
	Flipped []lineResult `json:"flipped"`
}

func (s *Server) handleOCRDrag(args json.RawMessage) (interface{}, error) {
	var a ocrDragArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.controller.RequireDocument(); err != nil {
		return nil, err
	}

	flipped := []lineResult{}
	st := s.controller.OnDrag(
		geometry.Point{X: a.X, Y: a.Y},
		geometry.Offset{X: a.DX, Y: a.DY},
		func(l textmodel.Line) { flipped = append(flipped, newLineResult(l)) },
	)
	return dragResult{stateResult: newStateResult(st), Flipped: flipped}, nil
}

// === Text Handlers ===

type ocrEditTextArgs struct {
	Text string `json:"text"`
}

func (s *Server) handleOCREditText(args json.RawMessage) (interface{}, error) {
	var a ocrEditTextArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.controller.RequireDocument(); err != nil {
		return nil, err
	}
	return newStateResult(s.controller.OnTextEdited(a.Text)), nil
}

type selectedTextResult struct {
	Text          string `json:"text"`
	DocumentText  string `json:"document_text"`
	SelectedLines int    `json:"selected_lines"`
}

func (s *Server) handleOCRSelectedText() (interface{}, error) {
	st := s.controller.Snapshot()
	if st.Document == nil {
		return nil, session.ErrNoDocument
	}
	return selectedTextResult{
		Text:          st.Text,
		DocumentText:  st.Document.SelectedText(),
		SelectedLines: st.Document.SelectedCount(),
	}, nil
}

type ocrDocumentArgs struct {
	LinesOnly bool `json:"lines_only"`
}

type documentResult struct {
	stateResult
	Document *textmodel.Document `json:"document"`
}

func (s *Server) handleOCRDocument(args json.RawMessage) (interface{}, error) {
	var a ocrDocumentArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	st := s.controller.Snapshot()
	result := documentResult{stateResult: newStateResult(st)}
	if st.Document != nil {
		doc := *st.Document
		if a.LinesOnly {
			doc = withoutElements(doc)
		}
		result.Document = &doc
	}
	return result, nil
}

// withoutElements returns a copy of doc whose lines carry no elements.
func withoutElements(doc textmodel.Document) textmodel.Document {
	blocks := make([]textmodel.Block, len(doc.Blocks))
	for i, b := range doc.Blocks {
		lines := make([]textmodel.Line, len(b.Lines))
		for j, l := range b.Lines {
			l.Elements = nil
			lines[j] = l
		}
		b.Lines = lines
		blocks[i] = b
	}
	doc.Blocks = blocks
	return doc
}

func (s *Server) handleOCRRender() (interface{}, error) {
	doc, err := s.controller.RequireDocument()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	capture := s.capture
	s.mu.Unlock()
	if capture.path == "" {
		return nil, session.ErrNoDocument
	}

	img, err := s.cache.Load(capture.path)
	if err != nil {
		return nil, err
	}
	overlay := imaging.RenderSelection(img, doc, capture.previewWidth, capture.previewHeight, s.palette)
	return imaging.EncodePNG(overlay)
}
