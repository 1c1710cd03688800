package wardrobe

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/valpere/DressCodex/pkg/types"
)

// itemDocument is the stored shape of a wardrobe item. Reference fields
// may hold an ObjectID or a plain string depending on the writer.
type itemDocument struct {
	ID        interface{} `bson:"_id,omitempty"`
	Name      string      `bson:"name"`
	Color     string      `bson:"color,omitempty"`
	Brand     string      `bson:"brand,omitempty"`
	Type      string      `bson:"type,omitempty"`
	Price     *float64    `bson:"price,omitempty"`
	ImageURL  string      `bson:"image_url,omitempty"`
	OwnerID   interface{} `bson:"owner_id,omitempty"`
	OwnerName string      `bson:"owner_name,omitempty"`
	EventID   interface{} `bson:"event_id,omitempty"`
}

func (d itemDocument) toItem() types.WardrobeItem {
	return types.WardrobeItem{
		ID:        idString(d.ID),
		Name:      d.Name,
		Color:     d.Color,
		Brand:     d.Brand,
		Type:      d.Type,
		Price:     d.Price,
		ImageURL:  d.ImageURL,
		OwnerID:   idString(d.OwnerID),
		OwnerName: d.OwnerName,
		EventID:   idString(d.EventID),
	}
}

func fromItem(item types.WardrobeItem) itemDocument {
	return itemDocument{
		ID:        idValue(item.ID),
		Name:      item.Name,
		Color:     item.Color,
		Brand:     item.Brand,
		Type:      item.Type,
		Price:     item.Price,
		ImageURL:  item.ImageURL,
		OwnerID:   idValue(item.OwnerID),
		OwnerName: item.OwnerName,
		EventID:   idValue(item.EventID),
	}
}

// eventFilter matches the event reference stored either way.
func eventFilter(eventID string) bson.M {
	return bson.M{"event_id": bson.M{"$in": idValues(eventID)}}
}

// idValue converts a hex ID to an ObjectID; other strings are kept.
func idValue(id string) interface{} {
	if id == "" {
		return nil
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idValues(id string) bson.A {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.A{oid, id}
	}
	return bson.A{id}
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
