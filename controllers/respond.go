package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"jewellery-backend/services"
	"jewellery-backend/store"
)

// Shared request-payload validator.
var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeServiceError maps a classified service failure to an HTTP status.
// Unclassified store failures are logged server-side and surfaced with a
// generic message only.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		log.Printf("unclassified error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	status := http.StatusBadRequest
	switch svcErr.Kind {
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindAccessDenied:
		status = http.StatusForbidden
	case services.KindConflict:
		status = http.StatusConflict
	case services.KindStore:
		status = http.StatusInternalServerError
		if cause := svcErr.Unwrap(); cause != nil {
			log.Printf("store error: %v", cause)
		}
	}
	writeMessage(w, status, svcErr.Message)
}

// pagination is the listing metadata block shared by every list response.
type pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	PerPage     int   `json:"perPage"`
}

func paginationFor(page store.Page, total int64) pagination {
	totalPages := 0
	if page.Size > 0 {
		totalPages = int((total + int64(page.Size) - 1) / int64(page.Size))
	}
	return pagination{
		CurrentPage: page.Number,
		TotalPages:  totalPages,
		TotalCount:  total,
		PerPage:     page.Size,
	}
}

// parsePage reads ?page= and ?limit= with the usual defaults.
func parsePage(r *http.Request) store.Page {
	page := store.Page{Number: 1, Size: 10}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Number = n
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Size = n
		}
	}
	return page
}

func parseFloatQuery(r *http.Request, key string) *float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
