package api

import (
	"github.com/valpere/DressCodex/internal/catalog"
	"github.com/valpere/DressCodex/internal/color"
	"github.com/valpere/DressCodex/internal/duplicate"
	"github.com/valpere/DressCodex/internal/scraper"
	"github.com/valpere/DressCodex/pkg/types"
)

// Re-export types from internal packages for public API
type (
	ExtractedProduct = scraper.ExtractedProduct
	ProductType      = catalog.ProductType
	ColorName        = color.Name
	Finding          = duplicate.Finding
	FindingItem      = duplicate.FindingItem
	Verdict          = duplicate.Verdict
	Report           = duplicate.Report
	WardrobeItem     = types.WardrobeItem
)

// ExtractRequest is the body of an extraction request.
type ExtractRequest struct {
	URL string `json:"url"`
}

// ParseRequest extracts from HTML the caller already has.
type ParseRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// DuplicateCheckRequest compares one candidate against existing items.
type DuplicateCheckRequest struct {
	Candidate     WardrobeItem   `json:"candidate"`
	ExistingItems []WardrobeItem `json:"existingItems"`
}

// Validate checks the candidate. Existing items are taken as stored.
func (r DuplicateCheckRequest) Validate() error {
	return r.Candidate.Validate()
}

// Classification annotates free text with a product type and color.
type Classification struct {
	Type         ProductType    `json:"type"`
	Match        *catalog.Match `json:"match,omitempty"`
	Color        *ColorName     `json:"color,omitempty"`
	ColorDisplay string         `json:"colorDisplay,omitempty"`
}

// ErrorResponse is the JSON error body of the HTTP API.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}
