// Package textmodel holds the immutable OCR result model: a Document of
// Blocks, Lines, Elements and Symbols in preview coordinates, and its
// construction from raw recognizer output.
//
// Values are never modified in place. Operations that change selection
// build a new Document that shares untouched blocks with the old one.
package textmodel

import (
	"strings"

	"github.com/ironsheep/scantext-mcp/internal/geometry"
)

// Object is the geometry carried by every recognized node.
type Object struct {
	Text    string         `json:"text"`
	Rect    geometry.Rect  `json:"rect"`
	Corners geometry.Quad  `json:"corners"`
	Path    geometry.Path  `json:"path"`
	Scale   geometry.Scale `json:"scale"`
}

// Geometry returns the node's shared geometric fields.
func (o Object) Geometry() Object { return o }

// Node is implemented by Block, Line, Element and Symbol.
type Node interface {
	Geometry() Object
}

// Document is the result of one recognition pass.
type Document struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks"`
}

// Block is a paragraph-like group of lines.
type Block struct {
	Object
	Language  string `json:"language,omitempty"`
	Lines     []Line `json:"lines"`
	LineCount int    `json:"line_count"`

	// SelectedText is the concatenation of the selected lines' text in
	// line order. It is kept in sync by WithLines.
	SelectedText string `json:"selected_text"`
}

// Line is the unit of selection.
type Line struct {
	Object
	Language     string    `json:"language,omitempty"`
	Elements     []Element `json:"elements"`
	ElementCount int       `json:"element_count"`
	Confidence   float64   `json:"confidence"`
	Rotation     float64   `json:"rotation"`
	Selected     bool      `json:"selected"`
}

// Element is a word-like group of symbols.
type Element struct {
	Object
	Language    string   `json:"language,omitempty"`
	Symbols     []Symbol `json:"symbols"`
	SymbolCount int      `json:"symbol_count"`
	Confidence  float64  `json:"confidence"`
	Rotation    float64  `json:"rotation"`
}

// Symbol is a single recognized character.
type Symbol struct {
	Object
	Confidence float64 `json:"confidence"`
	Rotation   float64 `json:"rotation"`
}

// WithLines returns a copy of b holding lines, with SelectedText
// recomputed.
func (b Block) WithLines(lines []Line) Block {
	b.Lines = lines
	b.SelectedText = joinSelected(lines)
	return b
}

// HasSelection reports whether any line of the block is selected.
func (b Block) HasSelection() bool {
	for _, l := range b.Lines {
		if l.Selected {
			return true
		}
	}
	return false
}

// WithSelected returns a copy of l with the selection flag set.
func (l Line) WithSelected(selected bool) Line {
	l.Selected = selected
	return l
}

// SelectedText joins the selection of every block that has at least one
// selected line, separated by newlines.
func (d Document) SelectedText() string {
	parts := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if !b.HasSelection() {
			continue
		}
		parts = append(parts, b.SelectedText)
	}
	return strings.Join(parts, "\n")
}

// Lines returns every line of the document in block and line order.
func (d Document) Lines() []Line {
	var lines []Line
	for _, b := range d.Blocks {
		lines = append(lines, b.Lines...)
	}
	return lines
}

// SelectedCount returns the number of selected lines.
func (d Document) SelectedCount() int {
	n := 0
	for _, b := range d.Blocks {
		for _, l := range b.Lines {
			if l.Selected {
				n++
			}
		}
	}
	return n
}

func joinSelected(lines []Line) string {
	var sb strings.Builder
	for _, l := range lines {
		if l.Selected {
			sb.WriteString(l.Text)
		}
	}
	return sb.String()
}
