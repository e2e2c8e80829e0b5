package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewellery-backend/models"
)

func TestOrderStoreVersioning(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	order := models.Order{User: primitive.NewObjectID(), Status: models.StatusPending}
	require.NoError(t, s.Create(ctx, &order))
	assert.Equal(t, int64(1), order.Version)

	first, err := s.FindByID(ctx, order.ID)
	require.NoError(t, err)
	second, err := s.FindByID(ctx, order.ID)
	require.NoError(t, err)

	first.Status = models.StatusConfirmed
	require.NoError(t, s.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	// The second reader's save loses; its read is now stale.
	second.Status = models.StatusCancelled
	assert.ErrorIs(t, s.Save(ctx, second), ErrConflict)

	stored, err := s.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestOrderStoreSaveUnknown(t *testing.T) {
	s := NewMemoryOrderStore()
	order := models.Order{ID: primitive.NewObjectID(), Version: 1}
	assert.ErrorIs(t, s.Save(context.Background(), &order), ErrNotFound)
}

func TestOrderStorePagination(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()
	user := primitive.NewObjectID()

	for i := 0; i < 5; i++ {
		order := models.Order{User: user, Status: models.StatusPending, TotalPrice: float64(100 * (i + 1))}
		require.NoError(t, s.Create(ctx, &order))
	}

	page1, err := s.Find(ctx, OrderFilter{}, Sort{Field: "totalPrice"}, Page{Number: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, 100.0, page1[0].TotalPrice)

	page3, err := s.Find(ctx, OrderFilter{}, Sort{Field: "totalPrice"}, Page{Number: 3, Size: 2})
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, 500.0, page3[0].TotalPrice)

	empty, err := s.Find(ctx, OrderFilter{}, Sort{}, Page{Number: 4, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, empty)

	count, err := s.Count(ctx, OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestItemStoreSearch(t *testing.T) {
	s := NewMemoryItemStore()
	ctx := context.Background()

	seed := func(name, category, description string) {
		item := models.Item{
			Name:         name,
			Category:     category,
			Description:  description,
			Availability: models.AvailabilityInStock,
		}
		require.NoError(t, s.Create(ctx, &item))
	}
	seed("Gold Ring", "Rings", "18k gold band")
	seed("Silver Necklace", "Necklaces", "Sterling silver chain")
	seed("Gold Necklace", "Necklaces", "Thin gold chain")

	byName, err := s.Find(ctx, ItemFilter{Search: "gold"}, Sort{}, Page{})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byDescription, err := s.Find(ctx, ItemFilter{Search: "sterling"}, Sort{}, Page{})
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	assert.Equal(t, "Silver Necklace", byDescription[0].Name)

	byCategory, err := s.Find(ctx, ItemFilter{Category: "Necklaces"}, Sort{}, Page{})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	none, err := s.Find(ctx, ItemFilter{Search: "platinum"}, Sort{}, Page{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCategoryStoreUniqueName(t *testing.T) {
	s := NewMemoryCategoryStore()
	ctx := context.Background()

	first := models.Category{Name: "Rings"}
	require.NoError(t, s.Create(ctx, &first))

	dup := models.Category{Name: "Rings"}
	assert.ErrorIs(t, s.Create(ctx, &dup), ErrDuplicate)

	found, err := s.FindByName(ctx, "Rings")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestUserStoreUniqueEmail(t *testing.T) {
	s := NewMemoryUserStore()
	ctx := context.Background()

	user := models.User{Name: "Amina", Email: "amina@example.com", Role: models.RoleUser}
	require.NoError(t, s.Create(ctx, &user))

	dup := models.User{Name: "Other", Email: "amina@example.com", Role: models.RoleUser}
	assert.ErrorIs(t, s.Create(ctx, &dup), ErrDuplicate)

	found, err := s.FindByEmail(ctx, "amina@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Amina", found.Name)

	_, err = s.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
