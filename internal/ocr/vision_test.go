package ocr

import (
	"context"
	"image"
	"math"
	"testing"
	"time"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeVisionClient struct {
	errs     []error
	result   *visionpb.TextAnnotation
	calls    int
	lastHint []string
}

func (f *fakeVisionClient) DetectDocumentText(_ context.Context, img *visionpb.Image, ic *visionpb.ImageContext, _ ...gax.CallOption) (*visionpb.TextAnnotation, error) {
	f.calls++
	f.lastHint = ic.GetLanguageHints()
	if len(img.GetContent()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "empty image")
	}
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return f.result, nil
}

func poly(l, t, r, b int32) *visionpb.BoundingPoly {
	return &visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{
		{X: l, Y: t}, {X: r, Y: t}, {X: r, Y: b}, {X: l, Y: b},
	}}
}

func symbol(text string, box *visionpb.BoundingPoly, brk visionpb.TextAnnotation_DetectedBreak_BreakType) *visionpb.Symbol {
	s := &visionpb.Symbol{Text: text, BoundingBox: box, Confidence: 0.9}
	if brk != visionpb.TextAnnotation_DetectedBreak_UNKNOWN {
		s.Property = &visionpb.TextAnnotation_TextProperty{
			DetectedBreak: &visionpb.TextAnnotation_DetectedBreak{Type: brk},
		}
	}
	return s
}

func helloWorldAnnotation() *visionpb.TextAnnotation {
	hello := &visionpb.Word{
		BoundingBox: poly(10, 10, 60, 30),
		Confidence:  0.95,
		Symbols: []*visionpb.Symbol{
			symbol("H", poly(10, 10, 20, 30), visionpb.TextAnnotation_DetectedBreak_UNKNOWN),
			symbol("i", poly(20, 10, 30, 30), visionpb.TextAnnotation_DetectedBreak_SPACE),
		},
	}
	world := &visionpb.Word{
		BoundingBox: poly(70, 10, 120, 30),
		Confidence:  0.85,
		Symbols: []*visionpb.Symbol{
			symbol("you", poly(70, 10, 120, 30), visionpb.TextAnnotation_DetectedBreak_LINE_BREAK),
		},
	}
	return &visionpb.TextAnnotation{
		Text: "Hi you\n",
		Pages: []*visionpb.Page{{
			Property: &visionpb.TextAnnotation_TextProperty{
				DetectedLanguages: []*visionpb.TextAnnotation_DetectedLanguage{{LanguageCode: "en"}},
			},
			Blocks: []*visionpb.Block{{
				BoundingBox: poly(10, 10, 120, 30),
				Confidence:  0.9,
				Paragraphs: []*visionpb.Paragraph{{
					BoundingBox: poly(10, 10, 120, 30),
					Confidence:  0.9,
					Words:       []*visionpb.Word{hello, world},
				}},
			}},
		}},
	}
}

func TestFromTextAnnotation(t *testing.T) {
	raw := FromTextAnnotation(helloWorldAnnotation())

	if raw.Text != "Hi you" {
		t.Errorf("text: got %q", raw.Text)
	}
	if len(raw.Blocks) != 1 || len(raw.Blocks[0].Lines) != 1 {
		t.Fatalf("unexpected shape: %+v", raw)
	}

	line := raw.Blocks[0].Lines[0]
	if line.Text != "Hi you" {
		t.Errorf("line text: got %q", line.Text)
	}
	if len(line.Elements) != 2 {
		t.Fatalf("elements: got %d, want 2", len(line.Elements))
	}
	if line.Elements[0].Text != "Hi" {
		t.Errorf("element text: got %q", line.Elements[0].Text)
	}
	if len(line.Elements[0].Symbols) != 2 {
		t.Errorf("symbols: got %d, want 2", len(line.Elements[0].Symbols))
	}
	if line.Language != "en" || line.Elements[1].Symbols[0].Language != "en" {
		t.Errorf("language not inherited from page: %q", line.Language)
	}
	if got := *line.Box; got.Left != 10 || got.Right != 120 || got.Bottom != 30 {
		t.Errorf("line box: got %v", got)
	}
	if len(line.Corners) != 4 || line.Angle != 0 {
		t.Errorf("corners/angle: got %v, %v", line.Corners, line.Angle)
	}
	if math.Abs(line.Elements[0].Confidence-0.95) > 1e-6 {
		t.Errorf("confidence: got %v", line.Elements[0].Confidence)
	}
}

func TestFromTextAnnotation_RotatedAndMalformed(t *testing.T) {
	ann := &visionpb.TextAnnotation{
		Pages: []*visionpb.Page{{
			Blocks: []*visionpb.Block{
				{
					BoundingBox: &visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{
						{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 20}, {X: -10, Y: 10},
					}},
				},
				{
					BoundingBox: &visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{
						{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10},
					}},
				},
				{},
			},
		}},
	}

	raw := FromTextAnnotation(ann)
	if len(raw.Blocks) != 3 {
		t.Fatalf("blocks: got %d, want 3", len(raw.Blocks))
	}
	if a := raw.Blocks[0].Angle; math.Abs(a-45) > 1e-9 {
		t.Errorf("angle: got %v, want 45", a)
	}
	if raw.Blocks[1].Corners != nil {
		t.Error("three-vertex polygon should have no corners")
	}
	if raw.Blocks[1].Box == nil {
		t.Error("three-vertex polygon should still have a box")
	}
	if raw.Blocks[2].Box != nil {
		t.Error("missing polygon should have no box")
	}
}

func TestFromTextAnnotation_Nil(t *testing.T) {
	raw := FromTextAnnotation(nil)
	if raw == nil || len(raw.Blocks) != 0 {
		t.Errorf("expected empty result, got %+v", raw)
	}
}

func TestVision_RetriesTransientErrors(t *testing.T) {
	client := &fakeVisionClient{
		errs:   []error{status.Error(codes.Unavailable, "busy"), status.Error(codes.ResourceExhausted, "quota")},
		result: helloWorldAnnotation(),
	}
	v := NewVision(client, 4, time.Millisecond)

	raw, err := v.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)), "eng")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if client.calls != 3 {
		t.Errorf("calls: got %d, want 3", client.calls)
	}
	if raw.Text != "Hi you" {
		t.Errorf("text: got %q", raw.Text)
	}
	if len(client.lastHint) != 1 || client.lastHint[0] != "en" {
		t.Errorf("language hint: got %v, want [en]", client.lastHint)
	}
}

func TestVision_PermanentError(t *testing.T) {
	client := &fakeVisionClient{
		errs: []error{status.Error(codes.PermissionDenied, "no")},
	}
	v := NewVision(client, 4, time.Millisecond)

	_, err := v.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)), "eng")
	if err == nil {
		t.Fatal("expected error")
	}
	if client.calls != 1 {
		t.Errorf("calls: got %d, want 1", client.calls)
	}
	if status.Code(err) != codes.PermissionDenied {
		t.Errorf("status: got %v", status.Code(err))
	}
}

func TestVision_GivesUpAfterMaxRetries(t *testing.T) {
	client := &fakeVisionClient{
		errs: []error{
			status.Error(codes.Unavailable, "1"),
			status.Error(codes.Unavailable, "2"),
			status.Error(codes.Unavailable, "3"),
		},
	}
	v := NewVision(client, 1, time.Millisecond)

	if _, err := v.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)), "eng"); err == nil {
		t.Fatal("expected error")
	}
	if client.calls != 2 {
		t.Errorf("calls: got %d, want 2", client.calls)
	}
}
