package imaging

import (
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input    string
		alpha    float64
		expected color.NRGBA
		wantErr  bool
	}{
		{"#FF0000", 1, color.NRGBA{255, 0, 0, 255}, false},
		{"00FF00", 1, color.NRGBA{0, 255, 0, 255}, false},
		{"#4286F4", 0.4, color.NRGBA{66, 134, 244, 102}, false},
		{"#FFF", 0, color.NRGBA{255, 255, 255, 0}, false},
		{"#FF000080", 1, color.NRGBA{255, 0, 0, 128}, false},
		{"#0000FF", 2, color.NRGBA{0, 0, 255, 255}, false},
		{"", 1, color.NRGBA{}, true},
		{"#GGGGGG", 1, color.NRGBA{}, true},
		{"#FF00", 1, color.NRGBA{}, true},
		{"#FF0000ZZ", 1, color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHexColor(tt.input, tt.alpha)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseHexColor(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHexColor(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	if p.Selected != (color.NRGBA{66, 134, 244, 102}) {
		t.Errorf("Selected: got %v", p.Selected)
	}
	if p.Recognized != (color.NRGBA{255, 255, 255, 102}) {
		t.Errorf("Recognized: got %v", p.Recognized)
	}
}

func TestNewPalette_Errors(t *testing.T) {
	if _, err := NewPalette("nope", "#FFFFFF", 0.5); err == nil {
		t.Error("expected error for bad selected color")
	}
	if _, err := NewPalette("#FFFFFF", "", 0.5); err == nil {
		t.Error("expected error for bad recognized color")
	}
}
