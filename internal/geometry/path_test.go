package geometry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectQuad(left, top, right, bottom int) Quad {
	return Quad{{left, top}, {right, top}, {right, bottom}, {left, bottom}}
}

func TestBuildSelectionPath_ClosedRectangle(t *testing.T) {
	p := BuildSelectionPath(rectQuad(100, 100, 300, 150), 0)

	require.True(t, p.IsClosed())
	start, ok := p.Start()
	require.True(t, ok)
	end, ok := p.End()
	require.True(t, ok)
	assert.Equal(t, start, end)
}

func TestBuildSelectionPath_Shape(t *testing.T) {
	// height 50 → padding 10, half height 25
	p := BuildSelectionPath(rectQuad(100, 100, 300, 150), 0)

	want := []Segment{
		{Op: MoveTo, Points: []Vec{{90, 90}}},
		{Op: LineTo, Points: []Vec{{310, 90}}},
		{Op: QuadTo, Points: []Vec{{360, 115}, {310, 160}}},
		{Op: LineTo, Points: []Vec{{90, 160}}},
		{Op: QuadTo, Points: []Vec{{40, 135}, {90, 90}}},
		{Op: Close},
	}
	assert.Equal(t, want, p.Segments())
}

func TestBuildSelectionPath_IntegerPadding(t *testing.T) {
	// height 12 → padding 2 (integer division), half height 6
	p := BuildSelectionPath(rectQuad(0, 0, 40, 12), 0)
	segs := p.Segments()
	assert.Equal(t, Vec{-2, -2}, segs[0].Points[0])
	assert.Equal(t, Vec{54, 4}, segs[2].Points[0])
}

func TestBuildSelectionPath_IgnoresRotation(t *testing.T) {
	q := Quad{{10, 12}, {80, 4}, {82, 30}, {12, 38}}
	assert.Equal(t, BuildSelectionPath(q, 0), BuildSelectionPath(q, 37.5))
}

func TestPath_SVG(t *testing.T) {
	var b PathBuilder
	p := b.MoveTo(0, 0).LineTo(10.5, 0).QuadTo(12, 2, 10, 4).Close().Path()
	assert.Equal(t, "M0 0 L10.5 0 Q12 2,10 4 Z", p.SVG())

	data, err := json.Marshal(struct {
		Path Path `json:"path"`
	}{p})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"M0 0 L10.5 0 Q12 2,10 4 Z"}`, string(data))
}

func TestPath_BuilderIsolation(t *testing.T) {
	var b PathBuilder
	first := b.MoveTo(1, 1).Path()
	b.LineTo(2, 2)

	assert.Len(t, first.Segments(), 1)
	assert.Len(t, b.Path().Segments(), 2)

	segs := first.Segments()
	segs[0].Op = Close
	assert.Equal(t, MoveTo, first.Segments()[0].Op, "Segments returns a copy")
}

func TestPath_Empty(t *testing.T) {
	var p Path
	assert.True(t, p.IsEmpty())
	assert.False(t, p.IsClosed())
	_, ok := p.Start()
	assert.False(t, ok)
	_, ok = p.End()
	assert.False(t, ok)
	assert.Equal(t, "", p.SVG())
}
