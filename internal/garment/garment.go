// Package garment defines the garment-layer model and the validation
// applied at the selection boundary before a garment enters the session.
package garment

import (
	"strings"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/attire/internal/errors"
)

// Category is the isolation category of a garment. Applying a layer of one
// category never alters pixels belonging to another category already on the
// model; within a category a new layer replaces the existing one.
type Category string

const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryOuter     Category = "outer"
	CategoryAccessory Category = "accessory"
	CategoryFullBody  Category = "full-body"
)

// Categories lists all recognized categories in display order.
func Categories() []Category {
	return []Category{
		CategoryTop,
		CategoryBottom,
		CategoryOuter,
		CategoryAccessory,
		CategoryFullBody,
	}
}

// ParseCategory parses a string into a Category.
// Returns an AttireError with code LAYER-001 for unrecognized values.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "shirt", "tshirt", "t-shirt", "blouse":
		return CategoryTop, nil
	case "bottom", "pants", "trousers", "skirt", "shorts":
		return CategoryBottom, nil
	case "outer", "outerwear", "jacket", "coat":
		return CategoryOuter, nil
	case "accessory", "accessories", "hat", "scarf", "bag":
		return CategoryAccessory, nil
	case "full-body", "fullbody", "full_body", "dress", "jumpsuit":
		return CategoryFullBody, nil
	default:
		return "", errors.NewInvalidCategoryError(s)
	}
}

// Layer is one garment applied to the model. Layers are immutable once
// applied; a change of garment is a removal plus a fresh application.
type Layer struct {
	ID       string
	Name     string
	ImageRef string
	Category Category
	Order    int
}

// Selection is the raw payload emitted by the wardrobe collaborator when
// the user picks a garment. The image reference is opaque; the core never
// fetches or decodes it.
type Selection struct {
	ImageRef string
	Name     string
	Category string
}

// NewLayer validates a selection and mints a Layer with a fresh id.
// Rejections here carry code LAYER-003 (invalid input) or LAYER-001
// (unknown category) and never reach the session.
func NewLayer(sel Selection) (Layer, error) {
	if strings.TrimSpace(sel.ImageRef) == "" {
		return Layer{}, errors.NewInvalidInputError("missing garment image reference")
	}
	if strings.TrimSpace(sel.Name) == "" {
		return Layer{}, errors.NewInvalidInputError("missing garment name")
	}

	category, err := ParseCategory(sel.Category)
	if err != nil {
		return Layer{}, err
	}

	return Layer{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(sel.Name),
		ImageRef: sel.ImageRef,
		Category: category,
	}, nil
}
