package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item availability states. Stock is a flag, not a counter: creating an
// order never decrements anything.
const (
	AvailabilityInStock    = "In Stock"
	AvailabilityOutOfStock = "Out of Stock"
)

// Item represents a catalog product.
type Item struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name"`
	Category       string             `bson:"category" json:"category"`
	Price          float64            `bson:"price" json:"price"`
	DiscountPrice  *float64           `bson:"discountPrice,omitempty" json:"discountPrice,omitempty"`
	Rating         float64            `bson:"rating" json:"rating"`
	TotalReviews   int                `bson:"totalReviews" json:"totalReviews"`
	Availability   string             `bson:"availability" json:"availability"`
	Images         []string           `bson:"images" json:"images"`
	Description    string             `bson:"description" json:"description"`
	Specifications map[string]string  `bson:"specifications,omitempty" json:"specifications,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectivePrice is the authoritative unit price: the discount price when
// one is set, the list price otherwise. Order line items must match it.
func (i *Item) EffectivePrice() float64 {
	if i.DiscountPrice != nil {
		return *i.DiscountPrice
	}
	return i.Price
}
