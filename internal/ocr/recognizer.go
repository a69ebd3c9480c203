package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/scantext-mcp/internal/textmodel"
)

// Recognizer extracts the text hierarchy of an image. Coordinates in the
// result are source-image pixels.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, language string) (*textmodel.RawText, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img image.Image, language string) (*textmodel.RawText, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image, language string) (*textmodel.RawText, error) {
	return f(ctx, img, language)
}

// WithPreprocessing converts images to grayscale and adjusts their
// contrast before passing them to r. contrast is a percentage in
// [-100, 100].
func WithPreprocessing(r Recognizer, contrast float64) Recognizer {
	return RecognizerFunc(func(ctx context.Context, img image.Image, language string) (*textmodel.RawText, error) {
		return r.Recognize(ctx, Preprocess(img, contrast), language)
	})
}

// Preprocess returns a grayscale, contrast-adjusted copy of img.
func Preprocess(img image.Image, contrast float64) image.Image {
	gray := effect.Grayscale(img)
	if contrast == 0 {
		return gray
	}
	return adjust.Contrast(gray, contrast/100)
}

// RecognizeRegion runs r on the part of img inside region and translates
// the result back into img's coordinates.
func RecognizeRegion(ctx context.Context, r Recognizer, img image.Image, region image.Rectangle, language string) (*textmodel.RawText, error) {
	bounds := img.Bounds()
	clipped := region.Intersect(bounds)
	if clipped.Empty() {
		return nil, fmt.Errorf("region %v does not overlap image bounds %v", region, bounds)
	}

	cropped := imaging.Crop(img, clipped)
	raw, err := r.Recognize(ctx, cropped, language)
	if err != nil {
		return nil, err
	}
	return raw.Translate(clipped.Min.X-bounds.Min.X, clipped.Min.Y-bounds.Min.Y), nil
}

// encodePNG serializes img for engines that take encoded bytes.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// primaryLanguage returns the first language of a "+"-joined Tesseract
// language list.
func primaryLanguage(language string) string {
	first, _, _ := strings.Cut(language, "+")
	return first
}
