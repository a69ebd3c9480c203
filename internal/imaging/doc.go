// Package imaging loads capture images and renders selection overlays.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Regions are given as
// (x1,y1) inclusive and (x2,y2) exclusive.
//
// Capture images are decoded with EXIF auto-orientation, so the pixel
// space seen by recognizers is the upright photo.
//
// # Overlays
//
// RenderSelection reproduces what the host shows: the capture resized to the
// preview, with every line's selection path filled in the palette's
// selected or recognized color.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Rendering never modifies its input
// image.
package imaging
