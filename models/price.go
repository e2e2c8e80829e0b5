package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Price is a standalone discount configuration. It is not consulted by
// order validation; items carry their own discount price.
type Price struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OriginalPrice      float64            `bson:"originalPrice" json:"originalPrice"`
	DiscountedPrice    float64            `bson:"discountedPrice" json:"discountedPrice"`
	DiscountPercentage float64            `bson:"discountPercentage" json:"discountPercentage"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RecalculateDiscount derives the discount percentage from the two prices.
func (p *Price) RecalculateDiscount() {
	if p.OriginalPrice > 0 {
		p.DiscountPercentage = (p.OriginalPrice - p.DiscountedPrice) / p.OriginalPrice * 100
	}
}
