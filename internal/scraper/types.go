package scraper

import (
	"github.com/valpere/DressCodex/internal/catalog"
	"github.com/valpere/DressCodex/internal/color"
	"github.com/valpere/DressCodex/internal/retailer"
)

// ExtractedProduct is the structured result of extracting a product page.
// Only Name and Type are guaranteed; missing optional fields are nil.
type ExtractedProduct struct {
	Name      string              `json:"name"`
	ImageURL  *string             `json:"imageUrl,omitempty"`
	Price     *float64            `json:"price,omitempty"`
	Currency  retailer.Currency   `json:"currency,omitempty"`
	Color     *color.Name         `json:"color,omitempty"`
	RawColor  string              `json:"-"`
	Brand     *string             `json:"brand,omitempty"`
	Type      catalog.ProductType `json:"type"`
	SourceURL string              `json:"sourceUrl"`
	Retailer  string              `json:"retailer,omitempty"`
}

// Page is a fetched product page.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	Attempts    int
}
