package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/scantext-mcp/internal/geometry"
	"github.com/ironsheep/scantext-mcp/internal/textmodel"
)

// boxRecognizer reports one block covering the whole input image.
func boxRecognizer(seen *image.Rectangle) Recognizer {
	return RecognizerFunc(func(ctx context.Context, img image.Image, language string) (*textmodel.RawText, error) {
		b := img.Bounds()
		*seen = b
		box := geometry.Rect{Left: 0, Top: 0, Right: b.Dx(), Bottom: b.Dy()}
		node := textmodel.RawNode{Text: "x", Box: &box, Corners: box.Corners()}
		return &textmodel.RawText{
			Text:   "x",
			Blocks: []textmodel.RawBlock{{RawNode: node}},
		}, nil
	})
}

func TestRecognizeRegion_TranslatesResult(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))

	var seen image.Rectangle
	raw, err := RecognizeRegion(context.Background(), boxRecognizer(&seen), img, image.Rect(50, 40, 150, 60), "eng")
	if err != nil {
		t.Fatalf("RecognizeRegion failed: %v", err)
	}

	if seen.Dx() != 100 || seen.Dy() != 20 {
		t.Errorf("recognizer saw %v, want 100x20", seen)
	}
	got := *raw.Blocks[0].Box
	want := geometry.Rect{Left: 50, Top: 40, Right: 150, Bottom: 60}
	if got != want {
		t.Errorf("box: got %v, want %v", got, want)
	}
	if c := raw.Blocks[0].Corners[0]; c.X != 50 || c.Y != 40 {
		t.Errorf("first corner: got %v, want (50,40)", c)
	}
}

func TestRecognizeRegion_ClipsToBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	var seen image.Rectangle
	raw, err := RecognizeRegion(context.Background(), boxRecognizer(&seen), img, image.Rect(80, 80, 300, 300), "eng")
	if err != nil {
		t.Fatalf("RecognizeRegion failed: %v", err)
	}
	if seen.Dx() != 20 || seen.Dy() != 20 {
		t.Errorf("recognizer saw %v, want 20x20", seen)
	}
	if got := raw.Blocks[0].Box.Right; got != 100 {
		t.Errorf("right edge: got %d, want 100", got)
	}
}

func TestRecognizeRegion_OutsideImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	var seen image.Rectangle
	_, err := RecognizeRegion(context.Background(), boxRecognizer(&seen), img, image.Rect(200, 200, 300, 300), "eng")
	if err == nil {
		t.Error("expected error for region outside the image")
	}
}

func TestRecognizeRegion_PropagatesError(t *testing.T) {
	boom := errors.New("engine down")
	r := RecognizerFunc(func(context.Context, image.Image, string) (*textmodel.RawText, error) {
		return nil, boom
	})

	_, err := RecognizeRegion(context.Background(), r, image.NewRGBA(image.Rect(0, 0, 10, 10)), image.Rect(0, 0, 5, 5), "eng")
	if !errors.Is(err, boom) {
		t.Errorf("expected engine error, got %v", err)
	}
}

func TestWithPreprocessing_Grayscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{200, 30, 60, 255})
		}
	}

	var gotImg image.Image
	var gotLang string
	inner := RecognizerFunc(func(_ context.Context, in image.Image, language string) (*textmodel.RawText, error) {
		gotImg = in
		gotLang = language
		return &textmodel.RawText{}, nil
	})

	if _, err := WithPreprocessing(inner, 20).Recognize(context.Background(), img, "deu"); err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if gotLang != "deu" {
		t.Errorf("language: got %q, want deu", gotLang)
	}
	r, g, b, _ := gotImg.At(1, 1).RGBA()
	if r != g || g != b {
		t.Errorf("expected gray pixel, got r=%d g=%d b=%d", r, g, b)
	}
}

func TestPreprocess_KeepsDimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 20))
	out := Preprocess(img, 0)
	if out.Bounds().Dx() != 30 || out.Bounds().Dy() != 20 {
		t.Errorf("dimensions: got %v, want 30x20", out.Bounds())
	}
}

func TestPrimaryLanguage(t *testing.T) {
	tests := map[string]string{
		"eng":         "eng",
		"eng+deu":     "eng",
		"chi_sim+eng": "chi_sim",
		"":            "",
	}
	for in, want := range tests {
		if got := primaryLanguage(in); got != want {
			t.Errorf("primaryLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
