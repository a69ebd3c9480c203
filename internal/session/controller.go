// Package session owns the live OCR document of one capture session and
// applies pointer interactions to it.
//
// A Controller is the only mutable piece of the selection core. Every
// update runs as a single read-modify-publish step under the controller's
// lock, so concurrent events are applied in arrival order and none of them
// is lost.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ironsheep/scantext-mcp/internal/geometry"
	"github.com/ironsheep/scantext-mcp/internal/selection"
	"github.com/ironsheep/scantext-mcp/internal/textmodel"
)

// ErrNoDocument is returned by RequireDocument before any recognition
// result has been accepted.
var ErrNoDocument = errors.New("no recognized document")

// Status describes where the session is in the capture lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusCapturing
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusCapturing:
		return "capturing"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for _, st := range []Status{StatusIdle, StatusCapturing, StatusReady, StatusFailed} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Generation tags a capture. Results carrying an older generation are
// stale and ignored.
type Generation uint64

// State is a published snapshot of the session.
type State struct {
	Generation Generation
	Status     Status

	// Document is nil until a recognition result is accepted, and again
	// after Cancel or a new capture.
	Document *textmodel.Document

	// Text is the editable copy of the selection. Pointer operations
	// overwrite it with the document's selected text; OnTextEdited
	// replaces it without touching line selection.
	Text string

	// Err is the recognizer failure of the current capture, if any.
	Err error
}

// Controller serializes updates to the session state.
type Controller struct {
	mu          sync.Mutex
	state       State
	resolved    bool
	subscribers map[int]func(State)
	nextSubID   int
	logger      *slog.Logger
}

// New creates an idle controller. A nil logger discards log output.
func New(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		subscribers: make(map[int]func(State)),
		logger:      logger,
	}
}

// Subscribe registers fn to receive every published state in order. fn
// runs while the controller lock is held and must not call back into the
// controller. The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RequireDocument returns the current document or ErrNoDocument.
func (c *Controller) RequireDocument() (textmodel.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Document == nil {
		return textmodel.Document{}, ErrNoDocument
	}
	return *c.state.Document, nil
}

// publish must be called with c.mu held.
func (c *Controller) publish() State {
	s := c.state
	for _, fn := range c.subscribers {
		fn(s)
	}
	return s
}

// updateDocument applies fn to the current document and publishes the
// result. Without a document it is a no-op.
func (c *Controller) updateDocument(fn func(textmodel.Document) textmodel.Document) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Document == nil {
		return c.state
	}
	doc := fn(*c.state.Document)
	c.state.Document = &doc
	c.state.Text = doc.SelectedText()
	return c.publish()
}

// OnTap toggles the line under p. It returns the tapped line as it was
// before the toggle, or nil when nothing is under p.
func (c *Controller) OnTap(p geometry.Point) (*textmodel.Line, State) {
	var tapped *textmodel.Line
	s := c.updateDocument(func(doc textmodel.Document) textmodel.Document {
		var next textmodel.Document
		next, tapped = selection.ToggleByTap(doc, p)
		return next
	})
	if tapped != nil {
		c.logger.Debug("line toggled", "text", tapped.Text, "selected", !tapped.Selected)
	}
	return tapped, s
}

// OnDrag extends the selection along a drag. onFlip is called for every
// line that changes state, before the new snapshot is published.
func (c *Controller) OnDrag(p geometry.Point, delta geometry.Offset, onFlip func(textmodel.Line)) State {
	return c.updateDocument(func(doc textmodel.Document) textmodel.Document {
		return selection.ExtendByDrag(doc, p, delta, onFlip)
	})
}

// OnSelectAll selects every line.
func (c *Controller) OnSelectAll() State {
	return c.updateDocument(selection.SelectAll)
}

// OnClear deselects every line.
func (c *Controller) OnClear() State {
	return c.updateDocument(selection.ClearAll)
}

// OnTextEdited replaces the editable selection text. Line selection is not
// affected.
func (c *Controller) OnTextEdited(text string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Text = text
	return c.publish()
}

// BeginCapture starts a new capture. The current document is discarded and
// any pending result for an earlier capture becomes stale.
func (c *Controller) BeginCapture() Generation {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = State{Generation: c.state.Generation + 1, Status: StatusCapturing}
	c.resolved = false
	c.publish()
	c.logger.Debug("capture started", "generation", c.state.Generation)
	return c.state.Generation
}

// OnNewRecognitionResult accepts the recognizer output of capture gen. It
// reports false, and changes nothing, when gen is stale or already
// resolved.
func (c *Controller) OnNewRecognitionResult(gen Generation, raw *textmodel.RawText, scale geometry.Scale) bool {
	doc := textmodel.FromRecognizerOutput(raw, scale)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.acceptLocked(gen) {
		return false
	}
	c.state.Status = StatusReady
	c.state.Document = &doc
	c.state.Text = doc.SelectedText()
	c.state.Err = nil
	c.publish()
	c.logger.Debug("recognition result accepted", "generation", gen, "blocks", len(doc.Blocks))
	return true
}

// OnRecognitionFailed records a recognizer failure for capture gen. Stale
// or duplicate deliveries are ignored.
func (c *Controller) OnRecognitionFailed(gen Generation, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.acceptLocked(gen) {
		return false
	}
	c.state.Status = StatusFailed
	c.state.Err = err
	c.publish()
	c.logger.Warn("recognition failed", "generation", gen, "error", err)
	return true
}

// acceptLocked must be called with c.mu held.
func (c *Controller) acceptLocked(gen Generation) bool {
	if gen != c.state.Generation || c.resolved || c.state.Status != StatusCapturing {
		c.logger.Debug("dropping stale recognition delivery", "generation", gen, "current", c.state.Generation)
		return false
	}
	c.resolved = true
	return true
}

// Cancel discards the document and invalidates any pending capture.
func (c *Controller) Cancel() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = State{Generation: c.state.Generation + 1, Status: StatusIdle}
	c.resolved = true
	return c.publish()
}
