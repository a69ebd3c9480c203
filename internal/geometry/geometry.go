package geometry

import (
	"fmt"
	"math"
)

// Point is a position in pixel units.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Offset is a fractional pointer movement since the previous drag sample.
type Offset struct {
	X float64 `json:"dx"`
	Y float64 `json:"dy"`
}

// Rect is an axis-aligned rectangle. It is not guaranteed to be normalized
// after rescaling; see RescaleRect.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns Right-Left, which may be negative for a non-normalized rect.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns Bottom-Top, which may be negative for a non-normalized rect.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rect encloses no pixels.
func (r Rect) Empty() bool { return r.Left >= r.Right || r.Top >= r.Bottom }

// Contains reports whether p lies inside r. The left and top edges are
// inclusive, the right and bottom edges exclusive. An empty rect contains
// nothing.
func (r Rect) Contains(p Point) bool {
	return !r.Empty() &&
		p.X >= r.Left && p.X < r.Right &&
		p.Y >= r.Top && p.Y < r.Bottom
}

// ContainsY reports whether y falls in the vertical band [Top, Bottom).
func (r Rect) ContainsY(y int) bool {
	return y >= r.Top && y < r.Bottom
}

// Union returns the smallest rect containing both r and o. An empty
// operand is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

// Translate moves the rect by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Corners returns the four corners of the rect in Quad order.
func (r Rect) Corners() []Point {
	return []Point{
		{X: r.Left, Y: r.Top},
		{X: r.Right, Y: r.Top},
		{X: r.Right, Y: r.Bottom},
		{X: r.Left, Y: r.Bottom},
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// Quad holds the corners of a possibly rotated text region, ordered
// top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// TopLeft returns the first corner.
func (q Quad) TopLeft() Point { return q[0] }

// TopRight returns the second corner.
func (q Quad) TopRight() Point { return q[1] }

// BottomRight returns the third corner.
func (q Quad) BottomRight() Point { return q[2] }

// BottomLeft returns the fourth corner.
func (q Quad) BottomLeft() Point { return q[3] }

// Scale is the ratio between source-image pixels and preview pixels on each
// axis.
type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the scale that leaves coordinates unchanged.
var Identity = Scale{X: 1, Y: 1}

// Normalized returns s with every unusable factor replaced by 1.0.
func (s Scale) Normalized() Scale {
	return Scale{X: normalizeFactor(s.X), Y: normalizeFactor(s.Y)}
}

func normalizeFactor(f float64) float64 {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	return f
}

// ScaleFactors computes imageWidth/previewWidth and imageHeight/previewHeight.
// An axis whose preview dimension is unknown (zero or negative) gets 1.0.
func ScaleFactors(imageWidth, imageHeight, previewWidth, previewHeight int) Scale {
	s := Identity
	if previewWidth > 0 {
		s.X = float64(imageWidth) / float64(previewWidth)
	}
	if previewHeight > 0 {
		s.Y = float64(imageHeight) / float64(previewHeight)
	}
	return s.Normalized()
}

// RescalePoint divides p by the scale, truncating toward zero onto the
// preview pixel grid.
func RescalePoint(p Point, s Scale) Point {
	s = s.Normalized()
	return Point{
		X: int(float64(p.X) / s.X),
		Y: int(float64(p.Y) / s.Y),
	}
}

// RescaleRect divides each edge independently: left/right by s.X and
// top/bottom by s.Y. The result is not normalized.
func RescaleRect(r Rect, s Scale) Rect {
	s = s.Normalized()
	return Rect{
		Left:   int(float64(r.Left) / s.X),
		Top:    int(float64(r.Top) / s.Y),
		Right:  int(float64(r.Right) / s.X),
		Bottom: int(float64(r.Bottom) / s.Y),
	}
}

// RescaleCorners rescales a corner list into a Quad. It reports false when
// the list does not hold exactly four points; callers drop the node.
func RescaleCorners(points []Point, s Scale) (Quad, bool) {
	var q Quad
	if len(points) != 4 {
		return q, false
	}
	for i, p := range points {
		q[i] = RescalePoint(p, s)
	}
	return q, true
}
