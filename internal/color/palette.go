// Package color maps free-form color text from retailer pages and user
// input onto a closed palette of canonical color names.
package color

import (
	"sort"
	"strings"
)

// Name is a canonical color name such as "Red", "Light Blue" or
// "Leopard Print". Only Normalize produces values.
type Name string

func (n Name) String() string { return string(n) }

// Swatch is one palette entry: the canonical name and its display value,
// a hex code or a pattern tag.
type Swatch struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// IsPattern reports whether the swatch is a print rather than a solid color.
func (s Swatch) IsPattern() bool { return strings.HasPrefix(s.Value, patternPrefix) }

const patternPrefix = "pattern-"

var palette = []Swatch{
	{"Black", "#000000"},
	{"White", "#FFFFFF"},
	{"Ivory", "#FFFFF0"},
	{"Cream", "#FFFDD0"},
	{"Beige", "#F5F5DC"},
	{"Nude", "#E3BC9A"},
	{"Camel", "#C19A6B"},
	{"Brown", "#8B4513"},
	{"Chocolate", "#7B3F00"},
	{"Khaki", "#C3B091"},
	{"Olive", "#808000"},
	{"Green", "#008000"},
	{"Forest Green", "#228B22"},
	{"Mint", "#98FF98"},
	{"Emerald", "#50C878"},
	{"Teal", "#008080"},
	{"Turquoise", "#40E0D0"},
	{"Blue", "#0000FF"},
	{"Sky Blue", "#87CEEB"},
	{"Royal Blue", "#4169E1"},
	{"Navy", "#000080"},
	{"Denim", "#1560BD"},
	{"Purple", "#800080"},
	{"Lilac", "#C8A2C8"},
	{"Lavender", "#E6E6FA"},
	{"Burgundy", "#800020"},
	{"Wine", "#722F37"},
	{"Red", "#FF0000"},
	{"Coral", "#FF7F50"},
	{"Pink", "#FFC0CB"},
	{"Dusty Pink", "#D4A5A5"},
	{"Fuchsia", "#FF00FF"},
	{"Orange", "#FFA500"},
	{"Mustard", "#FFDB58"},
	{"Yellow", "#FFFF00"},
	{"Gold", "#FFD700"},
	{"Silver", "#C0C0C0"},
	{"Grey", "#808080"},
	{"Charcoal", "#36454F"},
	{"Multicolor", "multicolor"},
	{"Leopard Print", "pattern-leopard"},
	{"Tiger Print", "pattern-tiger"},
	{"Snake Print", "pattern-snake"},
	{"Zebra Print", "pattern-zebra"},
	{"Animal Print", "pattern-animal"},
	{"Floral Print", "pattern-floral"},
}

// patterns in detection order
var patterns = []string{"leopard", "tiger", "snake", "zebra", "animal", "floral"}

var modifiers = []string{"light", "dark", "bright", "pale", "deep"}

// bySize holds the solid swatches, longest name first, for substring matching.
var bySize []Swatch

func init() {
	for _, s := range palette {
		if !s.IsPattern() {
			bySize = append(bySize, s)
		}
	}
	sort.SliceStable(bySize, func(i, j int) bool {
		return len(bySize[i].Name) > len(bySize[j].Name)
	})
}

// Palette returns a copy of the palette in table order.
func Palette() []Swatch {
	return append([]Swatch(nil), palette...)
}

func lookup(folded string) (Swatch, bool) {
	for _, s := range palette {
		if strings.ToLower(s.Name) == folded {
			return s, true
		}
	}
	return Swatch{}, false
}

func isModifier(token string) bool {
	for _, m := range modifiers {
		if m == token {
			return true
		}
	}
	return false
}
