package ocr

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/cenkalti/backoff/v4"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ironsheep/scantext-mcp/internal/geometry"
	"github.com/ironsheep/scantext-mcp/internal/textmodel"
)

// VisionClient is the subset of vision.ImageAnnotatorClient used here.
// Tests substitute a fake.
type VisionClient interface {
	DetectDocumentText(ctx context.Context, image *visionpb.Image, imageContext *visionpb.ImageContext, opts ...gax.CallOption) (*visionpb.TextAnnotation, error)
}

// NewVisionClient connects to Cloud Vision. An empty credentialsFile uses
// application default credentials.
func NewVisionClient(ctx context.Context, credentialsFile string) (*vision.ImageAnnotatorClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return client, nil
}

// Vision recognizes text with Cloud Vision DOCUMENT_TEXT_DETECTION.
type Vision struct {
	client     VisionClient
	maxRetries uint64
	interval   time.Duration
}

// NewVision wraps client. Transient failures are retried up to maxRetries
// times, interval apart.
func NewVision(client VisionClient, maxRetries uint64, interval time.Duration) *Vision {
	return &Vision{client: client, maxRetries: maxRetries, interval: interval}
}

// Recognize sends img to Cloud Vision with language as a hint.
func (v *Vision) Recognize(ctx context.Context, img image.Image, language string) (*textmodel.RawText, error) {
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	var imageContext *visionpb.ImageContext
	if hint := textmodel.NormalizeLanguage(primaryLanguage(language)); hint != "" {
		imageContext = &visionpb.ImageContext{LanguageHints: []string{hint}}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(v.interval), v.maxRetries),
		ctx,
	)
	annotation, err := backoff.RetryWithData(func() (*visionpb.TextAnnotation, error) {
		res, err := v.client.DetectDocumentText(ctx, &visionpb.Image{Content: data}, imageContext)
		if err != nil && !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return res, err
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("vision text detection failed: %w", err)
	}

	return FromTextAnnotation(annotation), nil
}

func retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Internal, codes.Unknown:
		return true
	}
	return false
}

// FromTextAnnotation maps a Vision document annotation onto the recognizer
// hierarchy. Paragraphs become lines. A nil annotation yields an empty
// result.
func FromTextAnnotation(annotation *visionpb.TextAnnotation) *textmodel.RawText {
	raw := &textmodel.RawText{Blocks: []textmodel.RawBlock{}}
	if annotation == nil {
		return raw
	}

	var blockTexts []string
	for _, page := range annotation.GetPages() {
		pageLang := languageOf(page.GetProperty(), "")
		for _, block := range page.GetBlocks() {
			rb := mapVisionBlock(block, pageLang)
			raw.Blocks = append(raw.Blocks, rb)
			blockTexts = append(blockTexts, rb.Text)
		}
	}

	raw.Text = strings.TrimSpace(annotation.GetText())
	if raw.Text == "" {
		raw.Text = strings.Join(blockTexts, "\n")
	}
	return raw
}

func mapVisionBlock(block *visionpb.Block, parentLang string) textmodel.RawBlock {
	lang := languageOf(block.GetProperty(), parentLang)
	rb := textmodel.RawBlock{
		RawNode: polyNode(block.GetBoundingBox(), block.GetConfidence(), lang),
	}
	texts := make([]string, 0, len(block.GetParagraphs()))
	for _, p := range block.GetParagraphs() {
		line := mapVisionLine(p, lang)
		rb.Lines = append(rb.Lines, line)
		texts = append(texts, line.Text)
	}
	rb.Text = strings.Join(texts, "\n")
	return rb
}

func mapVisionLine(p *visionpb.Paragraph, parentLang string) textmodel.RawLine {
	lang := languageOf(p.GetProperty(), parentLang)
	rl := textmodel.RawLine{
		RawNode: polyNode(p.GetBoundingBox(), p.GetConfidence(), lang),
	}
	var sb strings.Builder
	for _, w := range p.GetWords() {
		el := mapVisionElement(w, lang)
		rl.Elements = append(rl.Elements, el)
		sb.WriteString(el.Text)
		if n := len(w.GetSymbols()); n > 0 {
			sb.WriteString(breakText(w.GetSymbols()[n-1]))
		}
	}
	rl.Text = strings.Join(strings.Fields(sb.String()), " ")
	return rl
}

func mapVisionElement(w *visionpb.Word, parentLang string) textmodel.RawElement {
	lang := languageOf(w.GetProperty(), parentLang)
	el := textmodel.RawElement{
		RawNode: polyNode(w.GetBoundingBox(), w.GetConfidence(), lang),
	}
	var sb strings.Builder
	for _, s := range w.GetSymbols() {
		sym := textmodel.RawSymbol{
			RawNode: polyNode(s.GetBoundingBox(), s.GetConfidence(), languageOf(s.GetProperty(), lang)),
		}
		sym.Text = s.GetText()
		el.Symbols = append(el.Symbols, sym)
		sb.WriteString(s.GetText())
	}
	el.Text = sb.String()
	return el
}

// breakText renders the break detected after a symbol.
func breakText(s *visionpb.Symbol) string {
	switch s.GetProperty().GetDetectedBreak().GetType() {
	case visionpb.TextAnnotation_DetectedBreak_SPACE,
		visionpb.TextAnnotation_DetectedBreak_SURE_SPACE,
		visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE,
		visionpb.TextAnnotation_DetectedBreak_LINE_BREAK:
		return " "
	case visionpb.TextAnnotation_DetectedBreak_HYPHEN:
		return "-"
	}
	return ""
}

func languageOf(prop *visionpb.TextAnnotation_TextProperty, parent string) string {
	langs := prop.GetDetectedLanguages()
	if len(langs) == 0 || langs[0].GetLanguageCode() == "" {
		return parent
	}
	return langs[0].GetLanguageCode()
}

// polyNode converts a bounding polygon. Polygons without exactly four
// vertices keep no corners; an empty polygon also has no box.
func polyNode(poly *visionpb.BoundingPoly, confidence float32, lang string) textmodel.RawNode {
	node := textmodel.RawNode{
		Confidence: float64(confidence),
		Language:   lang,
	}
	vertices := poly.GetVertices()
	if len(vertices) == 0 {
		return node
	}

	points := make([]geometry.Point, len(vertices))
	box := geometry.Rect{
		Left: math.MaxInt, Top: math.MaxInt,
		Right: math.MinInt, Bottom: math.MinInt,
	}
	for i, v := range vertices {
		p := geometry.Point{X: int(v.GetX()), Y: int(v.GetY())}
		points[i] = p
		box.Left = min(box.Left, p.X)
		box.Top = min(box.Top, p.Y)
		box.Right = max(box.Right, p.X)
		box.Bottom = max(box.Bottom, p.Y)
	}
	node.Box = &box
	if len(points) == 4 {
		node.Corners = points
		node.Angle = topEdgeAngle(points[0], points[1])
	}
	return node
}

// topEdgeAngle is the clockwise rotation of the edge a->b, in degrees.
func topEdgeAngle(a, b geometry.Point) float64 {
	return math.Atan2(float64(b.Y-a.Y), float64(b.X-a.X)) * 180 / math.Pi
}
