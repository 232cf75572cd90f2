package garment

import (
	"testing"

	"github.com/felixgeelhaar/attire/internal/errors"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"top", CategoryTop},
		{"T-Shirt", CategoryTop},
		{"pants", CategoryBottom},
		{" skirt ", CategoryBottom},
		{"jacket", CategoryOuter},
		{"hat", CategoryAccessory},
		{"dress", CategoryFullBody},
		{"full-body", CategoryFullBody},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if err != nil {
				t.Fatalf("ParseCategory(%q) returned error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCategoryUnknown(t *testing.T) {
	_, err := ParseCategory("spacesuit")
	if err == nil {
		t.Fatal("expected error for unknown category")
	}
	if !errors.IsCode(err, errors.ErrCodeLayerInvalidCategory) {
		t.Errorf("expected LAYER-001, got %v", err)
	}
}

func TestNewLayer(t *testing.T) {
	layer, err := NewLayer(Selection{
		ImageRef: "blob://garments/42",
		Name:     "  Denim Jacket ",
		Category: "jacket",
	})
	if err != nil {
		t.Fatalf("NewLayer returned error: %v", err)
	}

	if layer.ID == "" {
		t.Error("layer should get a fresh id")
	}
	if layer.Name != "Denim Jacket" {
		t.Errorf("expected trimmed name, got %q", layer.Name)
	}
	if layer.Category != CategoryOuter {
		t.Errorf("expected outer category, got %s", layer.Category)
	}
}

func TestNewLayerUniqueIDs(t *testing.T) {
	sel := Selection{ImageRef: "blob://g", Name: "Tee", Category: "top"}
	a, _ := NewLayer(sel)
	b, _ := NewLayer(sel)

	if a.ID == b.ID {
		t.Error("each applied layer must get its own id")
	}
}

func TestNewLayerRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
		code errors.ErrorCode
	}{
		{"missing image", Selection{Name: "Tee", Category: "top"}, errors.ErrCodeLayerInvalidInput},
		{"missing name", Selection{ImageRef: "blob://g", Category: "top"}, errors.ErrCodeLayerInvalidInput},
		{"bad category", Selection{ImageRef: "blob://g", Name: "Tee", Category: "??"}, errors.ErrCodeLayerInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayer(tt.sel)
			if err == nil {
				t.Fatal("expected rejection at the selection boundary")
			}
			if !errors.IsCode(err, tt.code) {
				t.Errorf("expected code %s, got %v", tt.code, err)
			}
		})
	}
}
