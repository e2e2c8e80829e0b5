package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jewellery-backend/models"
	"jewellery-backend/store"
)

func newItemController() (*ItemController, *store.MemoryItemStore) {
	items := store.NewMemoryItemStore()
	return NewItemController(items), items
}

func withVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

func TestCreateItem(t *testing.T) {
	ic, _ := newItemController()

	rec := postJSON(t, ic.CreateItem, "/api/items",
		`{"name":"Gold Ring","category":"Rings","price":200}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Item created successfully", body["message"])
	item, ok := body["item"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, models.AvailabilityInStock, item["availability"])
}

func TestCreateItemValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			"missing fields",
			`{"name":"Gold Ring"}`,
			"Name, category and price are required fields",
		},
		{
			"discount not below price",
			`{"name":"Gold Ring","category":"Rings","price":200,"discountPrice":250}`,
			"Discount price must be less than regular price",
		},
		{
			"bad availability",
			`{"name":"Gold Ring","category":"Rings","price":200,"availability":"Backordered"}`,
			"Invalid availability value",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ic, _ := newItemController()
			rec := postJSON(t, ic.CreateItem, "/api/items", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, decodeBody(t, rec)["message"])
		})
	}
}

func TestGetItemByID(t *testing.T) {
	ic, items := newItemController()

	ring := models.Item{Name: "Gold Ring", Category: "Rings", Price: 200, Availability: models.AvailabilityInStock}
	require.NoError(t, items.Create(context.Background(), &ring))

	t.Run("found", func(t *testing.T) {
		req := withVars(httptest.NewRequest(http.MethodGet, "/api/items/"+ring.ID.Hex(), nil),
			map[string]string{"id": ring.ID.Hex()})
		rec := httptest.NewRecorder()
		ic.GetItemByID(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		req := withVars(httptest.NewRequest(http.MethodGet, "/api/items/xyz", nil),
			map[string]string{"id": "xyz"})
		rec := httptest.NewRecorder()
		ic.GetItemByID(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		missing := "64f1a2b3c4d5e6f708091a0b"
		req := withVars(httptest.NewRequest(http.MethodGet, "/api/items/"+missing, nil),
			map[string]string{"id": missing})
		rec := httptest.NewRecorder()
		ic.GetItemByID(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateItemPartial(t *testing.T) {
	ic, items := newItemController()

	ring := models.Item{Name: "Gold Ring", Category: "Rings", Price: 200, Availability: models.AvailabilityInStock}
	require.NoError(t, items.Create(context.Background(), &ring))

	req := withVars(httptest.NewRequest(http.MethodPut, "/api/items/"+ring.ID.Hex(),
		strings.NewReader(`{"availability":"Out of Stock"}`)),
		map[string]string{"id": ring.ID.Hex()})
	rec := httptest.NewRecorder()
	ic.UpdateItem(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := items.FindByID(context.Background(), ring.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityOutOfStock, stored.Availability)
	assert.Equal(t, "Gold Ring", stored.Name)
	assert.Equal(t, 200.0, stored.Price)
}

func TestSearchItemsRequiresQuery(t *testing.T) {
	ic, _ := newItemController()

	req := httptest.NewRequest(http.MethodGet, "/api/items/search", nil)
	rec := httptest.NewRecorder()
	ic.SearchItems(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Search query is required", decodeBody(t, rec)["message"])
}

func TestDeleteItem(t *testing.T) {
	ic, items := newItemController()

	ring := models.Item{Name: "Gold Ring", Category: "Rings", Price: 200, Availability: models.AvailabilityInStock}
	require.NoError(t, items.Create(context.Background(), &ring))

	req := withVars(httptest.NewRequest(http.MethodDelete, "/api/items/"+ring.ID.Hex(), nil),
		map[string]string{"id": ring.ID.Hex()})
	rec := httptest.NewRecorder()
	ic.DeleteItem(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := items.FindByID(context.Background(), ring.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
