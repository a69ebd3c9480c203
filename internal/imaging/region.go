package imaging

import (
	"fmt"
	"image"
)

// RegionNames lists the named regions accepted by NamedRegion.
var RegionNames = []string{
	"full", "top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// ValidateRegion checks that (x1,y1)-(x2,y2) is a non-empty rectangle
// inside bounds and returns it.
func ValidateRegion(bounds image.Rectangle, x1, y1, x2, y2 int) (image.Rectangle, error) {
	if x1 >= x2 || y1 >= y2 {
		return image.Rectangle{}, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return image.Rectangle{}, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	return image.Rect(x1, y1, x2, y2), nil
}

// NamedRegion resolves a region name such as "top-half" against bounds.
func NamedRegion(bounds image.Rectangle, name string) (image.Rectangle, error) {
	w := bounds.Dx()
	h := bounds.Dy()
	midX := w / 2
	midY := h / 2

	var x1, y1, x2, y2 int
	switch name {
	case "", "full":
		x1, y1, x2, y2 = 0, 0, w, h
	case "top-left":
		x1, y1, x2, y2 = 0, 0, midX, midY
	case "top-right":
		x1, y1, x2, y2 = midX, 0, w, midY
	case "bottom-left":
		x1, y1, x2, y2 = 0, midY, midX, h
	case "bottom-right":
		x1, y1, x2, y2 = midX, midY, w, h
	case "top-half":
		x1, y1, x2, y2 = 0, 0, w, midY
	case "bottom-half":
		x1, y1, x2, y2 = 0, midY, w, h
	case "left-half":
		x1, y1, x2, y2 = 0, 0, midX, h
	case "right-half":
		x1, y1, x2, y2 = midX, 0, w, h
	case "center":
		// Center 50% of the image
		qW := w / 4
		qH := h / 4
		x1, y1, x2, y2 = qW, qH, w-qW, h-qH
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", name)
	}

	return image.Rect(x1, y1, x2, y2).Add(bounds.Min), nil
}
