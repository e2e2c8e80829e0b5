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

// CategoryController handles category requests.
type CategoryController struct {
	Categories store.CategoryStore
}

// NewCategoryController creates a new CategoryController.
func NewCategoryController(categories store.CategoryStore) *CategoryController {
	return &CategoryController{Categories: categories}
}

type categoryRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=50"`
	Image string `json:"image"`
}

// GetAllCategories lists categories with optional name search.
func (cc *CategoryController) GetAllCategories(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	search := query.Get("search")
	sortBy := store.Sort{Field: "name", Desc: query.Get("sortOrder") == "desc"}
	page := parsePage(r)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	categories, err := cc.Categories.Find(ctx, search, sortBy, page)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while fetching categories")
		return
	}
	total, err := cc.Categories.Count(ctx, search)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while fetching categories")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Categories retrieved successfully",
		"categories": categories,
		"pagination": paginationFor(page, total),
	})
}

// GetCategoryByID returns a single category.
func (cc *CategoryController) GetCategoryByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	category, err := cc.Categories.FindByID(ctx, id)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while fetching category")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Category retrieved successfully",
		"category": category,
	})
}

// CreateCategory adds a category (admin). Names are unique.
func (cc *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Category name must be between 2 and 50 characters")
		return
	}

	category := &models.Category{Name: req.Name, Image: req.Image}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := cc.Categories.Create(ctx, category)
	if err == store.ErrDuplicate {
		writeMessage(w, http.StatusBadRequest, "Category already exists")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while creating category")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Category created successfully",
		"category": category,
	})
}

// UpdateCategory edits a category (admin).
func (cc *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	category, err := cc.Categories.FindByID(ctx, id)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while updating category")
		return
	}

	if req.Name != "" {
		if len(req.Name) < 2 || len(req.Name) > 50 {
			writeMessage(w, http.StatusBadRequest, "Category name must be between 2 and 50 characters")
			return
		}
		category.Name = req.Name
	}
	if req.Image != "" {
		category.Image = req.Image
	}

	if err := cc.Categories.Save(ctx, category); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while updating category")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Category updated successfully",
		"category": category,
	})
}

// DeleteCategory removes a category (admin).
func (cc *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err = cc.Categories.Delete(ctx, id)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error while deleting category")
		return
	}

	writeMessage(w, http.StatusOK, "Category deleted successfully")
}
