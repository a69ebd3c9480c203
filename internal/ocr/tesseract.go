package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/scantext-mcp/internal/geometry"
	"github.com/ironsheep/scantext-mcp/internal/textmodel"
)

// Tesseract recognizes text with a local Tesseract installation.
type Tesseract struct {
	// TessdataPrefix overrides the directory holding *.traineddata files.
	// Empty uses Tesseract's default.
	TessdataPrefix string
}

// NewTesseract returns a Tesseract recognizer using the default tessdata
// location.
func NewTesseract() *Tesseract {
	return &Tesseract{}
}

// Recognize runs Tesseract on img.
//
// Word-level boxes (with their block, paragraph and line numbers) define
// the hierarchy. Symbol boxes are attached to the word containing their
// center. If symbol extraction fails the words are still returned, without
// symbols.
//
// Tesseract calls cannot be interrupted; ctx is only checked before the
// engine starts.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, language string) (*textmodel.RawText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("failed to get word boxes: %w", err)
	}

	symbols, err := client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		symbols = nil
	}

	return assembleHierarchy(text, words, symbols, primaryLanguage(language)), nil
}

// TesseractVersion returns the installed Tesseract version.
func TesseractVersion() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

type lineKey struct {
	par, line int
}

type lineGroup struct {
	key   lineKey
	words []textmodel.RawElement
}

type blockGroup struct {
	num   int
	lines []*lineGroup
}

// assembleHierarchy groups Tesseract's flat word boxes into blocks and
// lines, keeping the engine's reading order.
func assembleHierarchy(fullText string, words, symbols []gosseract.BoundingBox, language string) *textmodel.RawText {
	var blocks []*blockGroup
	blockIndex := make(map[int]*blockGroup)
	lineIndex := make(map[int]map[lineKey]*lineGroup)

	for _, w := range words {
		if strings.TrimSpace(w.Word) == "" {
			continue
		}
		bg, ok := blockIndex[w.BlockNum]
		if !ok {
			bg = &blockGroup{num: w.BlockNum}
			blockIndex[w.BlockNum] = bg
			lineIndex[w.BlockNum] = make(map[lineKey]*lineGroup)
			blocks = append(blocks, bg)
		}
		key := lineKey{par: w.ParNum, line: w.LineNum}
		lg, ok := lineIndex[w.BlockNum][key]
		if !ok {
			lg = &lineGroup{key: key}
			lineIndex[w.BlockNum][key] = lg
			bg.lines = append(bg.lines, lg)
		}
		lg.words = append(lg.words, textmodel.RawElement{
			RawNode: boxNode(w.Word, w.Box, w.Confidence, language),
		})
	}

	for _, s := range symbols {
		if s.Word == "" {
			continue
		}
		attachSymbol(blocks, textmodel.RawSymbol{
			RawNode: boxNode(s.Word, s.Box, s.Confidence, language),
		}, centerOf(s.Box))
	}

	raw := &textmodel.RawText{Blocks: make([]textmodel.RawBlock, 0, len(blocks))}
	blockTexts := make([]string, 0, len(blocks))
	for _, bg := range blocks {
		rb := textmodel.RawBlock{Lines: make([]textmodel.RawLine, 0, len(bg.lines))}
		var box geometry.Rect
		lineTexts := make([]string, 0, len(bg.lines))
		confidence := 0.0
		for _, lg := range bg.lines {
			rl := buildLine(lg, language)
			box = box.Union(*rl.Box)
			confidence += rl.Confidence
			lineTexts = append(lineTexts, rl.Text)
			rb.Lines = append(rb.Lines, rl)
		}
		rb.RawNode = rectNode(strings.Join(lineTexts, "\n"), box, confidence/float64(len(bg.lines)), language)
		raw.Blocks = append(raw.Blocks, rb)
		blockTexts = append(blockTexts, rb.Text)
	}

	raw.Text = strings.TrimSpace(fullText)
	if raw.Text == "" {
		raw.Text = strings.Join(blockTexts, "\n\n")
	}
	return raw
}

func buildLine(lg *lineGroup, language string) textmodel.RawLine {
	var box geometry.Rect
	texts := make([]string, 0, len(lg.words))
	confidence := 0.0
	for _, w := range lg.words {
		box = box.Union(*w.Box)
		texts = append(texts, w.Text)
		confidence += w.Confidence
	}
	return textmodel.RawLine{
		RawNode:  rectNode(strings.Join(texts, " "), box, confidence/float64(len(lg.words)), language),
		Elements: lg.words,
	}
}

// attachSymbol adds s to the first word whose box contains center.
// Symbols outside every word are discarded.
func attachSymbol(blocks []*blockGroup, s textmodel.RawSymbol, center geometry.Point) {
	for _, bg := range blocks {
		for _, lg := range bg.lines {
			for i := range lg.words {
				if lg.words[i].Box.Contains(center) {
					lg.words[i].Symbols = append(lg.words[i].Symbols, s)
					return
				}
			}
		}
	}
}

// boxNode converts a gosseract box; confidence is mapped from 0-100 to 0-1.
func boxNode(text string, box image.Rectangle, confidence float64, language string) textmodel.RawNode {
	r := geometry.Rect{Left: box.Min.X, Top: box.Min.Y, Right: box.Max.X, Bottom: box.Max.Y}
	return rectNode(text, r, confidence/100.0, language)
}

func rectNode(text string, r geometry.Rect, confidence float64, language string) textmodel.RawNode {
	return textmodel.RawNode{
		Text:       text,
		Box:        &r,
		Corners:    r.Corners(),
		Confidence: confidence,
		Language:   language,
	}
}

func centerOf(r image.Rectangle) geometry.Point {
	return geometry.Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}
