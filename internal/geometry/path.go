package geometry

import (
	"strconv"
	"strings"
)

// PathOp identifies a path drawing command.
type PathOp int

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo
	Close
)

func (op PathOp) String() string {
	switch op {
	case MoveTo:
		return "M"
	case LineTo:
		return "L"
	case QuadTo:
		return "Q"
	case Close:
		return "Z"
	}
	return "?"
}

// Vec is a path coordinate. Paths keep fractional coordinates so renderers
// can anti-alias them.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is one path command. MoveTo and LineTo use Points[0]; QuadTo uses
// Points[0] as the control point and Points[1] as the end point; Close uses
// none.
type Segment struct {
	Op     PathOp `json:"op"`
	Points []Vec  `json:"points,omitempty"`
}

// Path is an immutable outline built from segments. The zero value is an
// empty path.
type Path struct {
	segments []Segment
}

// PathBuilder accumulates segments for a Path.
type PathBuilder struct {
	segments []Segment
}

// MoveTo starts a new subpath.
func (b *PathBuilder) MoveTo(x, y float64) *PathBuilder {
	b.segments = append(b.segments, Segment{Op: MoveTo, Points: []Vec{{x, y}}})
	return b
}

// LineTo adds a straight line from the current point.
func (b *PathBuilder) LineTo(x, y float64) *PathBuilder {
	b.segments = append(b.segments, Segment{Op: LineTo, Points: []Vec{{x, y}}})
	return b
}

// QuadTo adds a quadratic Bézier curve with control point (cx, cy).
func (b *PathBuilder) QuadTo(cx, cy, x, y float64) *PathBuilder {
	b.segments = append(b.segments, Segment{Op: QuadTo, Points: []Vec{{cx, cy}, {x, y}}})
	return b
}

// Close joins the current point back to the start of the subpath.
func (b *PathBuilder) Close() *PathBuilder {
	b.segments = append(b.segments, Segment{Op: Close})
	return b
}

// Path returns the built path. The builder can keep appending without
// affecting the returned value.
func (b *PathBuilder) Path() Path {
	segs := make([]Segment, len(b.segments))
	copy(segs, b.segments)
	return Path{segments: segs}
}

// Segments returns a copy of the path commands.
func (p Path) Segments() []Segment {
	segs := make([]Segment, len(p.segments))
	copy(segs, p.segments)
	return segs
}

// IsEmpty reports whether the path has no segments.
func (p Path) IsEmpty() bool { return len(p.segments) == 0 }

// IsClosed reports whether the last segment is a Close.
func (p Path) IsClosed() bool {
	return len(p.segments) > 0 && p.segments[len(p.segments)-1].Op == Close
}

// Start returns the first MoveTo point.
func (p Path) Start() (Vec, bool) {
	for _, s := range p.segments {
		if s.Op == MoveTo {
			return s.Points[0], true
		}
	}
	return Vec{}, false
}

// End returns the current point after all segments have been applied.
// After a Close the current point is the start of the closed subpath.
func (p Path) End() (Vec, bool) {
	var cur, subpathStart Vec
	found := false
	for _, s := range p.segments {
		switch s.Op {
		case MoveTo:
			cur, subpathStart = s.Points[0], s.Points[0]
		case LineTo:
			cur = s.Points[0]
		case QuadTo:
			cur = s.Points[1]
		case Close:
			cur = subpathStart
		}
		found = true
	}
	return cur, found
}

// SVG renders the path as SVG path data, e.g. "M0 0 L10 0 Z".
func (p Path) SVG() string {
	var sb strings.Builder
	for i, s := range p.segments {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s.Op.String())
		for j, v := range s.Points {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatFloat(v.X, 'f', -1, 64))
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatFloat(v.Y, 'f', -1, 64))
		}
	}
	return sb.String()
}

// MarshalText encodes the path as SVG path data.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.SVG()), nil
}

// BuildSelectionPath builds the highlight outline around a text region.
//
// The outline is padded by height/5, where height is the vertical distance
// from the top-left to the bottom-left corner. Top and bottom edges are
// straight; the right and left ends are quadratic curves whose control
// points sit height pixels further out.
//
// rotation is currently unused: the curve construction depends only on the
// corners.
func BuildSelectionPath(q Quad, rotation float64) Path {
	_ = rotation

	tl, tr, br, bl := q.TopLeft(), q.TopRight(), q.BottomRight(), q.BottomLeft()
	height := bl.Y - tl.Y
	padding := height / 5

	f := func(v int) float64 { return float64(v) }
	var b PathBuilder
	b.MoveTo(f(tl.X-padding), f(tl.Y-padding)).
		LineTo(f(tr.X+padding), f(tr.Y-padding)).
		QuadTo(
			f(tr.X+padding+height), f(tr.Y-padding+height/2),
			f(br.X+padding), f(br.Y+padding),
		).
		LineTo(f(bl.X-padding), f(bl.Y+padding)).
		QuadTo(
			f(bl.X-padding-height), f(bl.Y+padding-height/2),
			f(tl.X-padding), f(tl.Y-padding),
		).
		Close()
	return b.Path()
}
