package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses.
const (
	StatusPending    = "Pending"
	StatusConfirmed  = "Confirmed"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
	StatusRefunded   = "Refunded"
)

// ValidOrderStatuses lists every recognized status value.
var ValidOrderStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusRefunded,
}

// IsValidOrderStatus reports whether s is a recognized status value.
func IsValidOrderStatus(s string) bool {
	for _, v := range ValidOrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Payment methods.
const (
	PaymentCreditCard     = "Credit Card"
	PaymentPayPal         = "PayPal"
	PaymentBankTransfer   = "Bank Transfer"
	PaymentCashOnDelivery = "Cash on Delivery"
)

// IsValidPaymentMethod reports whether m is a recognized payment method.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentBankTransfer, PaymentCashOnDelivery:
		return true
	}
	return false
}

// Cancellation attribution values.
const (
	CancelledByUser  = "user"
	CancelledByAdmin = "admin"
)

// OrderItem is a point-in-time snapshot of a catalog item at order time.
type OrderItem struct {
	Item     primitive.ObjectID `bson:"item" json:"item"`
	Name     string             `bson:"name" json:"name"`
	Price    float64            `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Image    string             `bson:"image" json:"image"`
}

// ShippingAddress is the delivery destination; all fields are required.
type ShippingAddress struct {
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
	Phone      string `bson:"phone" json:"phone"`
}

// Order represents a customer order.
type Order struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	User               primitive.ObjectID `bson:"user" json:"user"`
	OrderItems         []OrderItem        `bson:"orderItems" json:"orderItems"`
	ShippingAddress    ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod      string             `bson:"paymentMethod" json:"paymentMethod"`
	ItemsPrice         float64            `bson:"itemsPrice" json:"itemsPrice"`
	TaxPrice           float64            `bson:"taxPrice" json:"taxPrice"`
	ShippingPrice      float64            `bson:"shippingPrice" json:"shippingPrice"`
	TotalPrice         float64            `bson:"totalPrice" json:"totalPrice"`
	Status             string             `bson:"status" json:"status"`
	IsPaid             bool               `bson:"isPaid" json:"isPaid"`
	PaidAt             *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	IsDelivered        bool               `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt        *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	Notes              string             `bson:"notes" json:"notes"`
	CancellationReason string             `bson:"cancellationReason" json:"cancellationReason"`
	CancelledBy        string             `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time         `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	Version            int64              `bson:"version" json:"version"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RecalculateTotal derives totalPrice from its parts. Client-submitted
// totals are never trusted.
func (o *Order) RecalculateTotal() {
	o.TotalPrice = o.ItemsPrice + o.TaxPrice + o.ShippingPrice
}

// TotalItems is the summed quantity across all line items.
func (o *Order) TotalItems() int {
	total := 0
	for _, it := range o.OrderItems {
		total += it.Quantity
	}
	return total
}
