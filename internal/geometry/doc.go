// Package geometry converts recognizer coordinates into the preview
// coordinate space and builds the highlight outlines drawn behind
// selectable text.
//
// # Coordinate System
//
// Coordinates follow the image convention used throughout the server:
// (0,0) is the top-left corner, X grows rightward and Y grows downward.
// Rectangles are inclusive of their left/top edge and exclusive of their
// right/bottom edge.
//
// # Scale Factors
//
// A Scale maps source-image pixels to preview pixels by division:
// preview = source / scale. A scale of zero, a negative scale or a
// non-finite scale is treated as 1.0, so an unknown preview size during
// early layout never divides by zero.
//
// # Selection Paths
//
// BuildSelectionPath turns the four corners of a text region into a
// pill-shaped outline: straight top and bottom edges, with the left and
// right ends bowed outward by a quadratic curve.
package geometry
