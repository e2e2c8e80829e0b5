package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Query categories.
const (
	QueryCategoryGeneral   = "general"
	QueryCategoryTechnical = "technical"
	QueryCategoryBilling   = "billing"
	QueryCategoryOrder     = "order"
	QueryCategoryProduct   = "product"
	QueryCategoryOther     = "other"
)

// Query priorities.
const (
	QueryPriorityLow    = "low"
	QueryPriorityMedium = "medium"
	QueryPriorityHigh   = "high"
	QueryPriorityUrgent = "urgent"
)

// Query statuses.
const (
	QueryStatusOpen       = "open"
	QueryStatusInProgress = "in_progress"
	QueryStatusResolved   = "resolved"
	QueryStatusClosed     = "closed"
)

// IsValidQueryCategory reports whether c is a recognized query category.
func IsValidQueryCategory(c string) bool {
	switch c {
	case QueryCategoryGeneral, QueryCategoryTechnical, QueryCategoryBilling,
		QueryCategoryOrder, QueryCategoryProduct, QueryCategoryOther:
		return true
	}
	return false
}

// IsValidQueryPriority reports whether p is a recognized query priority.
func IsValidQueryPriority(p string) bool {
	switch p {
	case QueryPriorityLow, QueryPriorityMedium, QueryPriorityHigh, QueryPriorityUrgent:
		return true
	}
	return false
}

// IsValidQueryStatus reports whether s is a recognized query status.
func IsValidQueryStatus(s string) bool {
	switch s {
	case QueryStatusOpen, QueryStatusInProgress, QueryStatusResolved, QueryStatusClosed:
		return true
	}
	return false
}

// AdminResponse is an administrator's reply attached to a query.
type AdminResponse struct {
	Message     string             `bson:"message" json:"message"`
	AdminID     primitive.ObjectID `bson:"adminId" json:"adminId"`
	RespondedAt time.Time          `bson:"respondedAt" json:"respondedAt"`
}

// Query represents a customer support ticket.
type Query struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	Subject       string             `bson:"subject" json:"subject"`
	Message       string             `bson:"message" json:"message"`
	Category      string             `bson:"category" json:"category"`
	Priority      string             `bson:"priority" json:"priority"`
	Status        string             `bson:"status" json:"status"`
	AdminResponse *AdminResponse     `bson:"adminResponse,omitempty" json:"adminResponse,omitempty"`
	Tags          []string           `bson:"tags" json:"tags"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
