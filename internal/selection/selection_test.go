package selection

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/scantext-mcp/internal/geometry"
	"github.com/ironsheep/scantext-mcp/internal/textmodel"
)

func rawNode(text string, left, top, right, bottom int) textmodel.RawNode {
	box := geometry.Rect{Left: left, Top: top, Right: right, Bottom: bottom}
	return textmodel.RawNode{Text: text, Box: &box, Corners: box.Corners()}
}

func rawLine(text string, top, bottom int) textmodel.RawLine {
	return textmodel.RawLine{RawNode: rawNode(text, 0, top, 100, bottom)}
}

// helloWorld is one block with "Hello" on [0,10) and "World" on [10,20).
func helloWorld() textmodel.Document {
	return textmodel.FromRecognizerOutput(&textmodel.RawText{
		Blocks: []textmodel.RawBlock{{
			RawNode: rawNode("Hello\nWorld", 0, 0, 100, 20),
			Lines:   []textmodel.RawLine{rawLine("Hello", 0, 10), rawLine("World", 10, 20)},
		}},
	}, geometry.Identity)
}

// twoBlocks has block A lines on [0,10),[10,20) and block B lines on
// [30,40),[40,50).
func twoBlocks() textmodel.Document {
	return textmodel.FromRecognizerOutput(&textmodel.RawText{
		Blocks: []textmodel.RawBlock{
			{
				RawNode: rawNode("A", 0, 0, 100, 20),
				Lines:   []textmodel.RawLine{rawLine("a1", 0, 10), rawLine("a2", 10, 20)},
			},
			{
				RawNode: rawNode("B", 0, 30, 100, 50),
				Lines:   []textmodel.RawLine{rawLine("b1", 30, 40), rawLine("b2", 40, 50)},
			},
		},
	}, geometry.Identity)
}

func allLineText(doc textmodel.Document) string {
	parts := make([]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		var sb strings.Builder
		for _, l := range b.Lines {
			sb.WriteString(l.Text)
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n")
}

func TestSelectAllClearAll(t *testing.T) {
	for name, doc := range map[string]textmodel.Document{
		"hello world": helloWorld(),
		"two blocks":  twoBlocks(),
		"empty":       {},
	} {
		t.Run(name, func(t *testing.T) {
			cleared := ClearAll(doc)
			assert.Equal(t, "", SelectedText(cleared))
			assert.Equal(t, cleared, ClearAll(cleared), "clear is idempotent")

			all := SelectAll(cleared)
			assert.Equal(t, allLineText(doc), SelectedText(all))
			assert.Equal(t, all, SelectAll(all), "select all is idempotent")
		})
	}
}

func TestToggleByTap_Scenario(t *testing.T) {
	doc := helloWorld()
	require.Equal(t, "HelloWorld", SelectedText(doc))

	next, tapped := ToggleByTap(doc, geometry.Point{X: 5, Y: 5})
	require.NotNil(t, tapped)
	assert.Equal(t, "Hello", tapped.Text)
	assert.True(t, tapped.Selected, "reported line is the pre-toggle value")
	assert.False(t, next.Blocks[0].Lines[0].Selected)
	assert.Equal(t, "World", SelectedText(next))

	assert.Equal(t, "HelloWorld", SelectedText(doc), "input snapshot is untouched")
	assert.True(t, doc.Blocks[0].Lines[0].Selected)
}

func TestToggleByTap_Miss(t *testing.T) {
	doc := twoBlocks()
	for _, p := range []geometry.Point{{X: 500, Y: 5}, {X: 5, Y: 25}, {X: 100, Y: 5}, {X: 5, Y: 50}} {
		next, tapped := ToggleByTap(doc, p)
		assert.Nil(t, tapped, "%+v", p)
		assert.Equal(t, doc, next, "%+v", p)
	}
}

func TestToggleByTap_OnlyTouchesOneBlock(t *testing.T) {
	doc := twoBlocks()
	next, tapped := ToggleByTap(doc, geometry.Point{X: 1, Y: 45})
	require.NotNil(t, tapped)
	assert.Equal(t, "b2", tapped.Text)

	assert.Equal(t, doc.Blocks[0], next.Blocks[0])
	assert.Equal(t, "b1", next.Blocks[1].SelectedText)

	flipped := 0
	for bi := range doc.Blocks {
		for li := range doc.Blocks[bi].Lines {
			if doc.Blocks[bi].Lines[li].Selected != next.Blocks[bi].Lines[li].Selected {
				flipped++
			}
		}
	}
	assert.Equal(t, 1, flipped)
}

func TestToggleByTap_FirstMatchWins(t *testing.T) {
	// Two overlapping lines: only the first in order flips.
	doc := textmodel.FromRecognizerOutput(&textmodel.RawText{
		Blocks: []textmodel.RawBlock{{
			RawNode: rawNode("", 0, 0, 100, 20),
			Lines:   []textmodel.RawLine{rawLine("first", 0, 15), rawLine("second", 5, 20)},
		}},
	}, geometry.Identity)

	next, tapped := ToggleByTap(doc, geometry.Point{X: 1, Y: 10})
	require.NotNil(t, tapped)
	assert.Equal(t, "first", tapped.Text)
	assert.True(t, next.Blocks[0].Lines[1].Selected)
}

func TestToggleByTap_Twice(t *testing.T) {
	doc := helloWorld()
	once, _ := ToggleByTap(doc, geometry.Point{X: 5, Y: 15})
	twice, _ := ToggleByTap(once, geometry.Point{X: 5, Y: 15})
	assert.Equal(t, doc, twice)
}

func TestExtendByDrag_SelectsDownward(t *testing.T) {
	doc := ClearAll(helloWorld())

	var added []string
	onFlip := func(l textmodel.Line) { added = append(added, l.Text) }

	next := ExtendByDrag(doc, geometry.Point{X: 50, Y: 5}, geometry.Offset{Y: 5}, onFlip)
	assert.Equal(t, []string{"Hello"}, added)
	assert.True(t, next.Blocks[0].Lines[0].Selected)
	assert.Equal(t, "Hello", SelectedText(next))

	// Same sample again: the line already agrees with the drag direction.
	again := ExtendByDrag(next, geometry.Point{X: 50, Y: 5}, geometry.Offset{Y: 5}, onFlip)
	assert.Equal(t, []string{"Hello"}, added)
	assert.Equal(t, next, again)
}

func TestExtendByDrag_DeselectsUpward(t *testing.T) {
	doc := helloWorld()
	var flipped []textmodel.Line

	next := ExtendByDrag(doc, geometry.Point{Y: 15}, geometry.Offset{Y: -3}, func(l textmodel.Line) {
		flipped = append(flipped, l)
	})
	require.Len(t, flipped, 1)
	assert.Equal(t, "World", flipped[0].Text)
	assert.True(t, flipped[0].Selected, "callback sees the line before commit")
	assert.Equal(t, "Hello", SelectedText(next))
}

func TestExtendByDrag_DirectionGuard(t *testing.T) {
	selected := helloWorld()
	cleared := ClearAll(selected)
	p := geometry.Point{X: 10, Y: 5}

	assert.Equal(t, selected, ExtendByDrag(selected, p, geometry.Offset{Y: 4}, nil), "down over selected line")
	assert.Equal(t, cleared, ExtendByDrag(cleared, p, geometry.Offset{Y: -4}, nil), "up over unselected line")
	assert.Equal(t, cleared, ExtendByDrag(cleared, p, geometry.Offset{X: 9}, nil), "horizontal drag")
}

func TestExtendByDrag_BandIgnoresX(t *testing.T) {
	doc := ClearAll(twoBlocks())
	next := ExtendByDrag(doc, geometry.Point{X: 9999, Y: 35}, geometry.Offset{Y: 1}, nil)
	assert.Equal(t, "b1", SelectedText(next))
	assert.Equal(t, doc.Blocks[0], next.Blocks[0])
}

func TestExtendByDrag_AllLinesInBand(t *testing.T) {
	// Side-by-side columns share a band: both lines are selected.
	doc := ClearAll(textmodel.FromRecognizerOutput(&textmodel.RawText{
		Blocks: []textmodel.RawBlock{
			{RawNode: rawNode("", 0, 0, 40, 10), Lines: []textmodel.RawLine{{RawNode: rawNode("left", 0, 0, 40, 10)}}},
			{RawNode: rawNode("", 60, 0, 100, 10), Lines: []textmodel.RawLine{{RawNode: rawNode("right", 60, 0, 100, 10)}}},
		},
	}, geometry.Identity))

	count := 0
	next := ExtendByDrag(doc, geometry.Point{Y: 3}, geometry.Offset{Y: 2}, func(textmodel.Line) { count++ })
	assert.Equal(t, 2, count)
	assert.Equal(t, "left\nright", SelectedText(next))
}

func TestExtendByDrag_InputUntouched(t *testing.T) {
	doc := ClearAll(helloWorld())
	_ = ExtendByDrag(doc, geometry.Point{Y: 5}, geometry.Offset{Y: 1}, nil)
	assert.False(t, doc.Blocks[0].Lines[0].Selected)
	assert.Equal(t, "", doc.Blocks[0].SelectedText)
}
