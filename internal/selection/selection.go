// Package selection implements line selection over a textmodel.Document.
//
// Every function is pure: it returns a new Document and leaves its input
// untouched, so callers may hold on to earlier snapshots freely.
package selection

import (
	"github.com/ironsheep/scantext-mcp/internal/geometry"
	"github.com/ironsheep/scantext-mcp/internal/textmodel"
)

// SelectAll marks every line selected.
func SelectAll(doc textmodel.Document) textmodel.Document {
	return setAll(doc, true)
}

// ClearAll marks every line unselected.
func ClearAll(doc textmodel.Document) textmodel.Document {
	return setAll(doc, false)
}

func setAll(doc textmodel.Document, selected bool) textmodel.Document {
	blocks := make([]textmodel.Block, len(doc.Blocks))
	for i, b := range doc.Blocks {
		lines := make([]textmodel.Line, len(b.Lines))
		for j, l := range b.Lines {
			lines[j] = l.WithSelected(selected)
		}
		blocks[i] = b.WithLines(lines)
	}
	doc.Blocks = blocks
	return doc
}

// ToggleByTap flips the first line, in block then line order, whose rect
// contains p. It returns the updated document and the line as it was
// before the flip. When no line contains p the document is returned
// unchanged with a nil line.
func ToggleByTap(doc textmodel.Document, p geometry.Point) (textmodel.Document, *textmodel.Line) {
	for bi, b := range doc.Blocks {
		for li, l := range b.Lines {
			if !l.Rect.Contains(p) {
				continue
			}
			tapped := l

			lines := make([]textmodel.Line, len(b.Lines))
			copy(lines, b.Lines)
			lines[li] = l.WithSelected(!l.Selected)

			blocks := make([]textmodel.Block, len(doc.Blocks))
			copy(blocks, doc.Blocks)
			blocks[bi] = b.WithLines(lines)

			doc.Blocks = blocks
			return doc, &tapped
		}
	}
	return doc, nil
}

// ExtendByDrag updates lines whose vertical band [Top, Bottom) contains
// current.Y. Dragging down (delta.Y > 0) only selects unselected lines;
// dragging up (delta.Y < 0) only deselects selected ones. onFlip, when not
// nil, is called with each line before it is flipped.
//
// Lines outside the band, or whose state already matches the drag
// direction, are left untouched.
func ExtendByDrag(doc textmodel.Document, current geometry.Point, delta geometry.Offset, onFlip func(textmodel.Line)) textmodel.Document {
	var blocks []textmodel.Block
	for bi, b := range doc.Blocks {
		var lines []textmodel.Line
		for li, l := range b.Lines {
			if !l.Rect.ContainsY(current.Y) || !flips(l, delta) {
				continue
			}
			if onFlip != nil {
				onFlip(l)
			}
			if lines == nil {
				lines = make([]textmodel.Line, len(b.Lines))
				copy(lines, b.Lines)
			}
			lines[li] = l.WithSelected(delta.Y > 0)
		}
		if lines == nil {
			continue
		}
		if blocks == nil {
			blocks = make([]textmodel.Block, len(doc.Blocks))
			copy(blocks, doc.Blocks)
		}
		blocks[bi] = b.WithLines(lines)
	}
	if blocks != nil {
		doc.Blocks = blocks
	}
	return doc
}

func flips(l textmodel.Line, delta geometry.Offset) bool {
	return (l.Selected && delta.Y < 0) || (!l.Selected && delta.Y > 0)
}

// SelectedText returns the text the user would copy.
func SelectedText(doc textmodel.Document) string {
	return doc.SelectedText()
}
