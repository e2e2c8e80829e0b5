// Package store defines the persistence interfaces and their MongoDB and
// in-memory implementations. Services depend only on the interfaces, so
// tests run against the in-memory stores.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewellery-backend/models"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrConflict is returned when a conditional save loses a concurrent
	// update (version mismatch).
	ErrConflict = errors.New("store: concurrent modification")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("store: duplicate document")
)

// Page describes offset pagination. The zero value means "no pagination".
type Page struct {
	Number int
	Size   int
}

// Skip returns the number of documents to skip.
func (p Page) Skip() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Sort describes a single-field sort.
type Sort struct {
	Field string
	Desc  bool
}

// OrderFilter narrows order listings. Nil/zero fields are ignored.
type OrderFilter struct {
	User          *primitive.ObjectID
	Status        string
	City          string // case-insensitive substring on shippingAddress.city
	MinPrice      *float64
	MaxPrice      *float64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// OrderStore persists orders. Save is conditional on the order's version
// as read, so a lost update surfaces as ErrConflict instead of a silent
// overwrite.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	Find(ctx context.Context, filter OrderFilter, sort Sort, page Page) ([]models.Order, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
}

// ItemFilter narrows item listings.
type ItemFilter struct {
	Category     string
	Availability string
	MinPrice     *float64
	MaxPrice     *float64
	Search       string // case-insensitive substring on name/description/category
}

// ItemStore persists catalog items.
type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Item, error)
	Save(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Find(ctx context.Context, filter ItemFilter, sort Sort, page Page) ([]models.Item, error)
	Count(ctx context.Context, filter ItemFilter) (int64, error)
}

// CategoryStore persists catalog categories.
type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	Save(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Find(ctx context.Context, search string, sort Sort, page Page) ([]models.Category, error)
	Count(ctx context.Context, search string) (int64, error)
}

// PriceStore persists standalone price configurations.
type PriceStore interface {
	Create(ctx context.Context, price *models.Price) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Price, error)
	FindActive(ctx context.Context) (*models.Price, error)
	Save(ctx context.Context, price *models.Price) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Find(ctx context.Context, sort Sort, page Page) ([]models.Price, error)
	Count(ctx context.Context) (int64, error)
}

// QueryFilter narrows support-query listings.
type QueryFilter struct {
	User         *primitive.ObjectID
	Status       string
	Category     string
	Priority     string
	Search       string // case-insensitive substring on subject/message
	Responded    *bool  // filter on presence of an admin response
	CreatedAfter *time.Time
}

// QueryBulkUpdate is applied to many queries at once. Nil fields are left
// untouched.
type QueryBulkUpdate struct {
	Status   *string
	Response *models.AdminResponse
}

// QueryStore persists support queries.
type QueryStore interface {
	Create(ctx context.Context, query *models.Query) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Query, error)
	Save(ctx context.Context, query *models.Query) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Find(ctx context.Context, filter QueryFilter, sort Sort, page Page) ([]models.Query, error)
	Count(ctx context.Context, filter QueryFilter) (int64, error)
	UpdateMany(ctx context.Context, ids []primitive.ObjectID, update QueryBulkUpdate) (int64, error)
}

// UserStore persists users. Create enforces email uniqueness.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
