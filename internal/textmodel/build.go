package textmodel

import (
	"golang.org/x/text/language"

	"github.com/ironsheep/scantext-mcp/internal/geometry"
)

// FromRecognizerOutput converts raw recognizer output into a Document in
// preview coordinates. Each level is mapped bottom-up; a node whose box or
// corners are missing or malformed is dropped together with its subtree.
//
// Every line starts out selected.
func FromRecognizerOutput(raw *RawText, s geometry.Scale) Document {
	if raw == nil {
		return Document{Blocks: []Block{}}
	}
	s = s.Normalized()

	blocks := make([]Block, 0, len(raw.Blocks))
	for _, rb := range raw.Blocks {
		if b, ok := mapBlock(rb, s); ok {
			blocks = append(blocks, b)
		}
	}
	return Document{Text: raw.Text, Blocks: blocks}
}

// mapObject computes the rescaled rect, corners and path of a node.
func mapObject(n RawNode, rotation float64, s geometry.Scale) (Object, bool) {
	if n.Box == nil {
		return Object{}, false
	}
	corners, ok := geometry.RescaleCorners(n.Corners, s)
	if !ok {
		return Object{}, false
	}
	return Object{
		Text:    n.Text,
		Rect:    geometry.RescaleRect(*n.Box, s),
		Corners: corners,
		Path:    geometry.BuildSelectionPath(corners, rotation),
		Scale:   s,
	}, true
}

func mapSymbol(n RawSymbol, s geometry.Scale) (Symbol, bool) {
	obj, ok := mapObject(n.RawNode, n.Angle, s)
	if !ok {
		return Symbol{}, false
	}
	return Symbol{Object: obj, Confidence: n.Confidence, Rotation: n.Angle}, true
}

func mapElement(n RawElement, s geometry.Scale) (Element, bool) {
	obj, ok := mapObject(n.RawNode, n.Angle, s)
	if !ok {
		return Element{}, false
	}
	symbols := make([]Symbol, 0, len(n.Symbols))
	for _, rs := range n.Symbols {
		if sym, ok := mapSymbol(rs, s); ok {
			symbols = append(symbols, sym)
		}
	}
	return Element{
		Object:      obj,
		Language:    NormalizeLanguage(n.Language),
		Symbols:     symbols,
		SymbolCount: len(n.Symbols),
		Confidence:  n.Confidence,
		Rotation:    n.Angle,
	}, true
}

func mapLine(n RawLine, s geometry.Scale) (Line, bool) {
	obj, ok := mapObject(n.RawNode, n.Angle, s)
	if !ok {
		return Line{}, false
	}
	elements := make([]Element, 0, len(n.Elements))
	for _, re := range n.Elements {
		if el, ok := mapElement(re, s); ok {
			elements = append(elements, el)
		}
	}
	return Line{
		Object:       obj,
		Language:     NormalizeLanguage(n.Language),
		Elements:     elements,
		ElementCount: len(n.Elements),
		Confidence:   n.Confidence,
		Rotation:     n.Angle,
		Selected:     true,
	}, true
}

func mapBlock(n RawBlock, s geometry.Scale) (Block, bool) {
	// Block outlines are always built unrotated.
	obj, ok := mapObject(n.RawNode, 0, s)
	if !ok {
		return Block{}, false
	}
	lines := make([]Line, 0, len(n.Lines))
	for _, rl := range n.Lines {
		if l, ok := mapLine(rl, s); ok {
			lines = append(lines, l)
		}
	}
	b := Block{
		Object:    obj,
		Language:  NormalizeLanguage(n.Language),
		LineCount: len(n.Lines),
	}
	return b.WithLines(lines), true
}

// NormalizeLanguage canonicalizes a recognizer language tag to BCP 47,
// so Tesseract's "eng" and Vision's "en" compare equal. Tags that do not
// parse are returned unchanged.
func NormalizeLanguage(tag string) string {
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	return t.String()
}
