package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/valpere/DressCodex/internal/retailer"
)

// pricePattern matches units, optionally grouped in thousands, then a
// two-digit fraction not followed by another digit.
var pricePattern = regexp.MustCompile(`(\d{1,3}(?:[.,\x{00a0}\x{202f}]\d{3})+|\d+)[.,](\d{2})(?:\D|$)`)

// ParsePrice extracts the first "units{.|,}cc" amount from text. Grouped
// thousands collapse ("1.234,56" -> 1234.56). A three-digit fraction
// ("1.234") is never read as a fractional price.
func ParsePrice(text string) (decimal.Decimal, bool) {
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}

	units, err := decimal.NewFromString(stripGrouping(m[1]))
	if err != nil {
		return decimal.Zero, false
	}
	cents, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return decimal.Zero, false
	}
	return units.Add(decimal.New(cents, -2)), true
}

func stripGrouping(units string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, units)
}

// DetectCurrency reports the currency named or symbolised in text.
func DetectCurrency(text string) (retailer.Currency, bool) {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(text, "€") || strings.Contains(upper, "EUR"):
		return retailer.EUR, true
	case strings.Contains(text, "$") || strings.Contains(upper, "USD"):
		return retailer.USD, true
	}
	return "", false
}
