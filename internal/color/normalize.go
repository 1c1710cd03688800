package color

import (
	"strings"

	"github.com/valpere/DressCodex/internal/utils"
)

// Normalize maps raw color text to a canonical palette name. The second
// result is false for empty or unrecognised input. First success wins:
//
//  1. pattern keyword (leopard, tiger, ...) -> "<Pattern> Print"
//  2. exact palette name
//  3. modifier + palette name ("light blue" -> "Light Blue")
//  4. palette name contained in the input, longest name first, then the
//     earliest in the input
//  5. a word of a multi-word palette name contained in the input
//
// Names and words shorter than five letters only match whole words, so
// "colored" is not "Red".
//
// Foreign color words are translated to English before step 1.
func Normalize(raw string) (Name, bool) {
	text := translate(utils.FoldText(raw))
	if text == "" {
		return "", false
	}

	for _, p := range patterns {
		if strings.Contains(text, p) {
			return Name(utils.Capitalize(p) + " Print"), true
		}
	}

	if s, ok := lookup(text); ok {
		return Name(s.Name), true
	}

	if n, ok := compound(text); ok {
		return n, true
	}

	if s, ok := firstContained(text); ok {
		return Name(s.Name), true
	}

	for _, s := range palette {
		parts := strings.Fields(strings.ToLower(s.Name))
		if len(parts) < 2 || s.IsPattern() {
			continue
		}
		for _, w := range parts {
			if len(w) >= 3 && indexName(text, w) >= 0 {
				return Name(s.Name), true
			}
		}
	}

	return "", false
}

// firstContained returns the longest solid swatch named in text. Equal
// lengths go to the name that appears first.
func firstContained(text string) (Swatch, bool) {
	best, bestPos := -1, 0
	for i, s := range bySize {
		if best >= 0 && len(s.Name) < len(bySize[best].Name) {
			break
		}
		pos := indexName(text, strings.ToLower(s.Name))
		if pos < 0 {
			continue
		}
		if best < 0 || pos < bestPos {
			best, bestPos = i, pos
		}
	}
	if best < 0 {
		return Swatch{}, false
	}
	return bySize[best], true
}

// shortName is the length below which a name must match a whole word.
const shortName = 5

// indexName reports where name occurs in text, or -1.
func indexName(text, name string) int {
	if len(name) >= shortName {
		return strings.Index(text, name)
	}
	return strings.Index(" "+text+" ", " "+name+" ")
}

// compound matches "<modifier> <palette name>".
func compound(text string) (Name, bool) {
	tokens := strings.Fields(text)
	if len(tokens) < 2 || !isModifier(tokens[0]) {
		return "", false
	}
	base, ok := lookup(strings.Join(tokens[1:], " "))
	if !ok || base.IsPattern() {
		return "", false
	}
	return Name(utils.Capitalize(tokens[0]) + " " + base.Name), true
}

// Display returns the palette display value for a normalized name: a hex
// code, a pattern tag such as "pattern-leopard", or "" for unknown names.
// Compound colors share their base color's value.
func Display(n Name) string {
	key := strings.ToLower(string(n))
	if s, ok := lookup(key); ok {
		return s.Value
	}
	tokens := strings.Fields(key)
	if len(tokens) >= 2 && isModifier(tokens[0]) {
		if s, ok := lookup(strings.Join(tokens[1:], " ")); ok {
			return s.Value
		}
	}
	return ""
}

// Equal reports whether two raw color strings normalize to the same name.
// Unrecognised values compare by their folded text.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// Key is the comparison key for a raw color: the lower-cased canonical
// name when it normalizes, the folded raw text otherwise.
func Key(raw string) string {
	if n, ok := Normalize(raw); ok {
		return strings.ToLower(string(n))
	}
	return utils.FoldText(raw)
}
