package textmodel

import "github.com/ironsheep/scantext-mcp/internal/geometry"

// RawText is the hierarchy a recognizer reports for one image, in
// source-image pixels.
type RawText struct {
	Text   string     `json:"text"`
	Blocks []RawBlock `json:"blocks"`
}

// RawNode holds the fields every recognizer level reports. Box and Corners
// are optional; a node missing either is left out of the Document.
type RawNode struct {
	Text       string           `json:"text"`
	Box        *geometry.Rect   `json:"box,omitempty"`
	Corners    []geometry.Point `json:"corners,omitempty"`
	Angle      float64          `json:"angle"`
	Confidence float64          `json:"confidence"`
	Language   string           `json:"language,omitempty"`
}

// Translate shifts the box and corners by (dx, dy).
func (n RawNode) Translate(dx, dy int) RawNode {
	if n.Box != nil {
		box := n.Box.Translate(dx, dy)
		n.Box = &box
	}
	if n.Corners != nil {
		corners := make([]geometry.Point, len(n.Corners))
		for i, c := range n.Corners {
			corners[i] = geometry.Point{X: c.X + dx, Y: c.Y + dy}
		}
		n.Corners = corners
	}
	return n
}

type RawBlock struct {
	RawNode
	Lines []RawLine `json:"lines"`
}

type RawLine struct {
	RawNode
	Elements []RawElement `json:"elements"`
}

type RawElement struct {
	RawNode
	Symbols []RawSymbol `json:"symbols"`
}

type RawSymbol struct {
	RawNode
}

// Translate returns a copy of t with every node shifted by (dx, dy). It is
// used when recognition ran on a cropped region of a larger image.
func (t *RawText) Translate(dx, dy int) *RawText {
	if t == nil {
		return nil
	}
	out := &RawText{Text: t.Text, Blocks: make([]RawBlock, len(t.Blocks))}
	for bi, b := range t.Blocks {
		nb := RawBlock{RawNode: b.RawNode.Translate(dx, dy), Lines: make([]RawLine, len(b.Lines))}
		for li, l := range b.Lines {
			nl := RawLine{RawNode: l.RawNode.Translate(dx, dy), Elements: make([]RawElement, len(l.Elements))}
			for ei, e := range l.Elements {
				ne := RawElement{RawNode: e.RawNode.Translate(dx, dy), Symbols: make([]RawSymbol, len(e.Symbols))}
				for si, s := range e.Symbols {
					ne.Symbols[si] = RawSymbol{RawNode: s.RawNode.Translate(dx, dy)}
				}
				nl.Elements[ei] = ne
			}
			nb.Lines[li] = nl
		}
		out.Blocks[bi] = nb
	}
	return out
}
