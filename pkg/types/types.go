// pkg/types/types.go
package types

import (
	"fmt"
	"strings"
)

// WardrobeItem is a clothing item a participant plans to wear to an event.
// Items are read by the detection pipeline and never mutated by it.
type WardrobeItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Color     string   `json:"color,omitempty"`
	Brand     string   `json:"brand,omitempty"`
	Type      string   `json:"type,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	ImageURL  string   `json:"imageUrl,omitempty"`
	OwnerID   string   `json:"ownerId,omitempty"`
	OwnerName string   `json:"ownerName,omitempty"`
	EventID   string   `json:"eventId,omitempty"`
}

// Validate checks the fields the detection pipeline relies on.
func (w WardrobeItem) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("item name is required")
	}
	if w.Price != nil && *w.Price < 0 {
		return fmt.Errorf("item price cannot be negative: %v", *w.Price)
	}
	return nil
}

// Describe renders the item as one line of text for similarity prompts,
// e.g. "Red midi dress | color: Red | brand: Zara | type: Dress".
func (w WardrobeItem) Describe() string {
	parts := []string{strings.TrimSpace(w.Name)}
	for _, field := range [][2]string{{"color", w.Color}, {"brand", w.Brand}, {"type", w.Type}} {
		if v := strings.TrimSpace(field[1]); v != "" {
			parts = append(parts, field[0]+": "+v)
		}
	}
	return strings.Join(parts, " | ")
}
