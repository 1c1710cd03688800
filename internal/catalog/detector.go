// Package catalog classifies garment descriptions into product types using
// an ordered, multilingual keyword taxonomy.
//
// Matching is first-match-wins over an ordered list of groups: specific,
// high-conflict groups (dresses, shoes, bags) are checked before broad ones
// so that "leather jacket boots" resolves to shoes rather than outerwear.
package catalog

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/valpere/DressCodex/internal/utils"
)

// ProductType is the (category, subcategory, display name) triple assigned
// to an item. Values are only produced by this package.
type ProductType struct {
	category    string
	subcategory string
	displayName string
}

func newType(category, subcategory, displayName string) ProductType {
	return ProductType{category: category, subcategory: subcategory, displayName: displayName}
}

// Category returns the top-level category, e.g. "clothes" or "shoes".
func (p ProductType) Category() string { return p.category }

// Subcategory returns the subcategory, e.g. "dresses" or "boots".
func (p ProductType) Subcategory() string { return p.subcategory }

// DisplayName returns the human label, e.g. "Dress".
func (p ProductType) DisplayName() string { return p.displayName }

// IsOther reports whether p is the catch-all type.
func (p ProductType) IsOther() bool { return p == other }

// IsZero reports whether p was never assigned.
func (p ProductType) IsZero() bool { return p == ProductType{} }

func (p ProductType) String() string {
	return p.category + "/" + p.subcategory
}

type productTypeJSON struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Name        string `json:"name"`
}

// MarshalJSON implements json.Marshaler.
func (p ProductType) MarshalJSON() ([]byte, error) {
	return json.Marshal(productTypeJSON{Category: p.category, Subcategory: p.subcategory, Name: p.displayName})
}

var other = newType("clothes", "other", "Other")

// Other returns the catch-all type used when no keyword matches.
func Other() ProductType { return other }

// Match describes which keyword classified a text.
type Match struct {
	Group   string      `json:"group"`
	Keyword string      `json:"keyword"`
	Type    ProductType `json:"type"`
}

// Detect classifies free text. It never fails; unmatched text yields Other().
func Detect(text string) ProductType {
	m, ok := Explain(text)
	if !ok {
		return other
	}
	return m.Type
}

// Explain is Detect plus the group and keyword that decided the result.
// ok is false when nothing matched.
func Explain(text string) (Match, bool) {
	words := strings.FieldsFunc(utils.FoldText(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return Match{}, false
	}
	// keywords may carry boundary spaces ("top ", " robe")
	padded := " " + strings.Join(words, " ") + " "

	for _, g := range taxonomy {
		for _, e := range g.Entries {
			for _, kw := range e.Keywords {
				if strings.Contains(padded, kw) {
					return Match{Group: g.Name, Keyword: kw, Type: e.Type}, true
				}
			}
		}
	}
	return Match{}, false
}

// FromLabel maps a stored type label (subcategory or display name) back to
// its ProductType. Unknown labels are classified as free text.
func FromLabel(label string) ProductType {
	folded := utils.FoldText(label)
	if folded == "" {
		return other
	}
	if folded == other.subcategory || folded == strings.ToLower(other.displayName) {
		return other
	}
	for _, g := range taxonomy {
		for _, e := range g.Entries {
			if folded == e.Type.subcategory || folded == strings.ToLower(e.Type.displayName) {
				return e.Type
			}
		}
	}
	return Detect(label)
}
