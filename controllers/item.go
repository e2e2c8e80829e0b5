package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewellery-backend/models"
	"jewellery-backend/store"
)

// ItemController handles catalog item requests.
type ItemController struct {
	Items store.ItemStore
}

// NewItemController creates a new ItemController.
func NewItemController(items store.ItemStore) *ItemController {
	return &ItemController{Items: items}
}

type itemRequest struct {
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Price          float64           `json:"price"`
	DiscountPrice  *float64          `json:"discountPrice"`
	Availability   string            `json:"availability"`
	Images         []string          `json:"images"`
	Description    string            `json:"description"`
	Specifications map[string]string `json:"specifications"`
}

func (req *itemRequest) validatePrices() string {
	if req.Price <= 0 {
		return "Price must be greater than 0"
	}
	if req.DiscountPrice != nil && *req.DiscountPrice >= req.Price {
		return "Discount price must be less than regular price"
	}
	return ""
}

// CreateItem adds a catalog item (admin).
func (ic *ItemController) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Category == "" || req.Price == 0 {
		writeMessage(w, http.StatusBadRequest, "Name, category and price are required fields")
		return
	}
	if msg := req.validatePrices(); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	availability := req.Availability
	if availability == "" {
		availability = models.AvailabilityInStock
	}
	if availability != models.AvailabilityInStock && availability != models.AvailabilityOutOfStock {
		writeMessage(w, http.StatusBadRequest, "Invalid availability value")
		return
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}
	item := &models.Item{
		Name:           req.Name,
		Category:       req.Category,
		Price:          req.Price,
		DiscountPrice:  req.DiscountPrice,
		Availability:   availability,
		Images:         images,
		Description:    req.Description,
		Specifications: req.Specifications,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := ic.Items.Create(ctx, item); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while creating item")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Item created successfully",
		"item":    item,
	})
}

// GetAllItems lists items with catalog filters.
func (ic *ItemController) GetAllItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.ItemFilter{
		Category:     query.Get("category"),
		Availability: query.Get("availability"),
		MinPrice:     parseFloatQuery(r, "minPrice"),
		MaxPrice:     parseFloatQuery(r, "maxPrice"),
	}
	sortBy := store.Sort{Field: query.Get("sortBy"), Desc: query.Get("sortOrder") != "asc"}
	if sortBy.Field == "" {
		sortBy.Field = "createdAt"
	}
	page := parsePage(r)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	items, err := ic.Items.Find(ctx, filter, sortBy, page)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while retrieving items")
		return
	}
	total, err := ic.Items.Count(ctx, filter)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while retrieving items")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Items retrieved successfully",
		"items":      items,
		"pagination": paginationFor(page, total),
	})
}

// SearchItems matches a term against name, description and category.
func (ic *ItemController) SearchItems(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		writeMessage(w, http.StatusBadRequest, "Search query is required")
		return
	}
	filter := store.ItemFilter{Search: term}
	page := parsePage(r)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	items, err := ic.Items.Find(ctx, filter, store.Sort{Field: "createdAt", Desc: true}, page)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while searching items")
		return
	}
	total, err := ic.Items.Count(ctx, filter)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while searching items")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Search completed successfully",
		"items":      items,
		"query":      term,
		"pagination": paginationFor(page, total),
	})
}

// GetItemsByCategory lists items of one category, newest first.
func (ic *ItemController) GetItemsByCategory(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	filter := store.ItemFilter{Category: category}
	page := parsePage(r)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	items, err := ic.Items.Find(ctx, filter, store.Sort{Field: "createdAt", Desc: true}, page)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while retrieving items by category")
		return
	}
	total, err := ic.Items.Count(ctx, filter)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while retrieving items by category")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Items retrieved successfully",
		"items":      items,
		"category":   category,
		"pagination": paginationFor(page, total),
	})
}

// GetItemByID returns a single item.
func (ic *ItemController) GetItemByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := ic.Items.FindByID(ctx, id)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while retrieving item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Item retrieved successfully",
		"item":    item,
	})
}

// UpdateItem edits a catalog item (admin).
func (ic *ItemController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Price < 0 {
		writeMessage(w, http.StatusBadRequest, "Price must be greater than 0")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := ic.Items.FindByID(ctx, id)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while updating item")
		return
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.Price > 0 {
		item.Price = req.Price
	}
	if req.DiscountPrice != nil {
		if *req.DiscountPrice >= item.Price {
			writeMessage(w, http.StatusBadRequest, "Discount price must be less than regular price")
			return
		}
		item.DiscountPrice = req.DiscountPrice
	}
	if req.Availability != "" {
		if req.Availability != models.AvailabilityInStock && req.Availability != models.AvailabilityOutOfStock {
			writeMessage(w, http.StatusBadRequest, "Invalid availability value")
			return
		}
		item.Availability = req.Availability
	}
	if req.Images != nil {
		item.Images = req.Images
	}
	if req.Description != "" {
		item.Description = req.Description
	}
	if req.Specifications != nil {
		item.Specifications = req.Specifications
	}

	if err := ic.Items.Save(ctx, item); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while updating item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Item updated successfully",
		"item":    item,
	})
}

// DeleteItem removes a catalog item (admin).
func (ic *ItemController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err = ic.Items.Delete(ctx, id)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while deleting item")
		return
	}

	writeMessage(w, http.StatusOK, "Item deleted successfully")
}
