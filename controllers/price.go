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

// PriceController handles standalone price-configuration requests. These
// records are independent of catalog items and are not consulted by order
// validation.
type PriceController struct {
	Prices store.PriceStore
}

// NewPriceController creates a new PriceController.
func NewPriceController(prices store.PriceStore) *PriceController {
	return &PriceController{Prices: prices}
}

type priceRequest struct {
	OriginalPrice   float64 `json:"originalPrice"`
	DiscountedPrice float64 `json:"discountedPrice"`
	IsActive        *bool   `json:"isActive"`
}

func (req *priceRequest) validate() string {
	if req.OriginalPrice <= 0 || req.DiscountedPrice <= 0 {
		return "Prices must be greater than 0"
	}
	if req.DiscountedPrice >= req.OriginalPrice {
		return "Discounted price must be less than original price"
	}
	return ""
}

// GetAllPrices lists price configurations.
func (pc *PriceController) GetAllPrices(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	prices, err := pc.Prices.Find(ctx, store.Sort{Field: "createdAt", Desc: true}, page)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while retrieving prices")
		return
	}
	total, err := pc.Prices.Count(ctx)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while retrieving prices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Prices retrieved successfully",
		"prices":     prices,
		"pagination": paginationFor(page, total),
	})
}

// GetActivePrice returns the active configuration.
func (pc *PriceController) GetActivePrice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	price, err := pc.Prices.FindActive(ctx)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "No active price configuration found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while retrieving prices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Prices retrieved successfully",
		"price":   price,
	})
}

// GetPriceByID returns a single price configuration.
func (pc *PriceController) GetPriceByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid price ID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	price, err := pc.Prices.FindByID(ctx, id)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "Price not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while retrieving price")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Price retrieved successfully",
		"price":   price,
	})
}

// CreatePrice adds a price configuration (admin). The discount percentage
// is derived, never submitted.
func (pc *PriceController) CreatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	price := &models.Price{
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
		IsActive:        true,
	}
	if req.IsActive != nil {
		price.IsActive = *req.IsActive
	}
	price.RecalculateDiscount()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := pc.Prices.Create(ctx, price); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while adding price")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Price added successfully",
		"price":   price,
	})
}

// UpdatePrice edits a price configuration (admin).
func (pc *PriceController) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid price ID format")
		return
	}

	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	price, err := pc.Prices.FindByID(ctx, id)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "Price not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while updating price")
		return
	}

	if req.OriginalPrice != 0 {
		if req.OriginalPrice < 0 {
			writeMessage(w, http.StatusBadRequest, "Original price must be greater than 0")
			return
		}
		price.OriginalPrice = req.OriginalPrice
	}
	if req.DiscountedPrice != 0 {
		if req.DiscountedPrice < 0 {
			writeMessage(w, http.StatusBadRequest, "Discounted price must be greater than 0")
			return
		}
		price.DiscountedPrice = req.DiscountedPrice
	}
	if price.DiscountedPrice >= price.OriginalPrice {
		writeMessage(w, http.StatusBadRequest, "Discounted price must be less than original price")
		return
	}
	if req.IsActive != nil {
		price.IsActive = *req.IsActive
	}
	price.RecalculateDiscount()

	if err := pc.Prices.Save(ctx, price); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while updating price")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Price updated successfully",
		"price":   price,
	})
}

// TogglePriceStatus flips a configuration's active flag (admin).
func (pc *PriceController) TogglePriceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid price ID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	price, err := pc.Prices.FindByID(ctx, id)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "Price not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while updating price")
		return
	}

	price.IsActive = !price.IsActive
	if err := pc.Prices.Save(ctx, price); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while updating price")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Price status toggled successfully",
		"price":   price,
	})
}

// DeletePrice removes a price configuration (admin).
func (pc *PriceController) DeletePrice(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid price ID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err = pc.Prices.Delete(ctx, id)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "Price not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while deleting price")
		return
	}

	writeMessage(w, http.StatusOK, "Price deleted successfully")
}
