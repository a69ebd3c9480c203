package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/ironsheep/scantext-mcp/internal/geometry"
	"github.com/ironsheep/scantext-mcp/internal/textmodel"
)

// EncodedImage is a PNG ready to return to an MCP client.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// RenderSelection draws the document's line paths over img as the host
// would show them.
//
// img is resized to the preview size the document was built for; a zero
// preview dimension keeps the image's own size on that axis. Selected
// lines are filled with p.Selected, the others with p.Recognized.
func RenderSelection(img image.Image, doc textmodel.Document, previewWidth, previewHeight int, p Palette) image.Image {
	bounds := img.Bounds()
	w, h := previewWidth, previewHeight
	if w <= 0 {
		w = bounds.Dx()
	}
	if h <= 0 {
		h = bounds.Dy()
	}

	var base image.Image = img
	if w != bounds.Dx() || h != bounds.Dy() {
		base = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	dc := gg.NewContextForImage(base)
	for _, block := range doc.Blocks {
		for _, line := range block.Lines {
			if !tracePath(dc, line.Path) {
				continue
			}
			if line.Selected {
				dc.SetColor(p.Selected)
			} else {
				dc.SetColor(p.Recognized)
			}
			dc.Fill()
		}
	}
	return dc.Image()
}

// tracePath replays path onto dc. It reports false for an empty path.
func tracePath(dc *gg.Context, path geometry.Path) bool {
	if path.IsEmpty() {
		return false
	}
	for _, seg := range path.Segments() {
		switch seg.Op {
		case geometry.MoveTo:
			dc.MoveTo(seg.Points[0].X, seg.Points[0].Y)
		case geometry.LineTo:
			dc.LineTo(seg.Points[0].X, seg.Points[0].Y)
		case geometry.QuadTo:
			dc.QuadraticTo(seg.Points[0].X, seg.Points[0].Y, seg.Points[1].X, seg.Points[1].Y)
		case geometry.Close:
			dc.ClosePath()
		}
	}
	return true
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := img.Bounds()
	return &EncodedImage{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
