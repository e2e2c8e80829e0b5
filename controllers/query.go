package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewellery-backend/models"
	"jewellery-backend/services"
	"jewellery-backend/store"
	"jewellery-backend/utils"
)

// QueryController handles support-query requests.
type QueryController struct {
	Queries      *services.QueryService
	Users        store.UserStore
	EmailService *utils.EmailService
}

// NewQueryController creates a new QueryController.
func NewQueryController(queries *services.QueryService, users store.UserStore, emailService *utils.EmailService) *QueryController {
	return &QueryController{
		Queries:      queries,
		Users:        users,
		EmailService: emailService,
	}
}

type createQueryRequest struct {
	Subject  string   `json:"subject" validate:"required"`
	Message  string   `json:"message" validate:"required"`
	Category string   `json:"category"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags"`
}

// CreateQuery opens a support ticket for the caller.
func (qc *QueryController) CreateQuery(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Subject and message are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query, err := qc.Queries.Create(ctx, principal.ID, services.CreateQueryInput{
		Subject:  req.Subject,
		Message:  req.Message,
		Category: req.Category,
		Priority: req.Priority,
		Tags:     req.Tags,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Query created successfully",
		"query":   query,
	})
}

// GetMyQueries lists the caller's own queries.
func (qc *QueryController) GetMyQueries(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	page := parsePage(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	queries, total, err := qc.Queries.ListForUser(ctx, principal.ID, q.Get("status"), q.Get("category"), q.Get("priority"), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Queries retrieved successfully",
		"queries":    queries,
		"pagination": paginationFor(page, total),
	})
}

// GetQueryByID returns one query, visible to its owner or an admin.
func (qc *QueryController) GetQueryByID(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid query ID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query, err := qc.Queries.Get(ctx, principal, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Query retrieved successfully",
		"query":   query,
	})
}

type updateQueryRequest struct {
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
	Category string   `json:"category"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags"`
}

// UpdateQuery lets the owner edit an open query.
func (qc *QueryController) UpdateQuery(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid query ID format")
		return
	}

	var req updateQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query, err := qc.Queries.Update(ctx, principal, id, services.UpdateQueryInput{
		Subject:  req.Subject,
		Message:  req.Message,
		Category: req.Category,
		Priority: req.Priority,
		Tags:     req.Tags,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Query updated successfully",
		"query":   query,
	})
}

// DeleteQuery lets the owner remove a query.
func (qc *QueryController) DeleteQuery(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid query ID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := qc.Queries.Delete(ctx, principal, id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Query deleted successfully")
}

// GetAllQueries lists queries across all users (admin).
func (qc *QueryController) GetAllQueries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := services.AdminQueryListInput{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Priority: q.Get("priority"),
		Search:   q.Get("search"),
		SortBy:   q.Get("sortBy"),
		SortDesc: q.Get("sortOrder") != "asc",
		Page:     parsePage(r),
	}
	if raw := q.Get("userId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid user ID format")
			return
		}
		in.User = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	queries, total, err := qc.Queries.ListAll(ctx, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	breakdown, err := qc.Queries.StatusBreakdown(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Queries retrieved successfully",
		"queries":    queries,
		"pagination": paginationFor(in.Page, total),
		"statistics": breakdown,
	})
}

type adminUpdateQueryRequest struct {
	Status        string `json:"status"`
	AdminResponse string `json:"adminResponse"`
}

// AdminUpdateQuery sets the status and/or attaches a response (admin).
func (qc *QueryController) AdminUpdateQuery(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid query ID format")
		return
	}

	var req adminUpdateQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query, err := qc.Queries.AdminUpdate(ctx, principal.ID, id, req.Status, req.AdminResponse)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.AdminResponse != "" {
		qc.notifyResponse(query, req.AdminResponse)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Query updated successfully",
		"query":   query,
	})
}

type bulkUpdateRequest struct {
	QueryIDs      []string `json:"queryIds"`
	Status        string   `json:"status"`
	AdminResponse string   `json:"adminResponse"`
}

// BulkUpdateQueries applies a status/response to many queries (admin).
func (qc *QueryController) BulkUpdateQueries(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.QueryIDs))
	for _, raw := range req.QueryIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Please provide valid query IDs")
			return
		}
		ids = append(ids, id)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	modified, err := qc.Queries.BulkUpdate(ctx, principal.ID, ids, req.Status, req.AdminResponse)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Queries updated successfully",
		"modifiedCount": modified,
	})
}

// GetQueryStats returns the trailing-window summary (admin).
func (qc *QueryController) GetQueryStats(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("period"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	stats, err := qc.Queries.Stats(ctx, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Query statistics retrieved successfully",
		"stats":   stats,
	})
}

func (qc *QueryController) notifyResponse(query *models.Query, response string) {
	if qc.EmailService == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := qc.Users.FindByID(ctx, query.User)
		if err != nil {
			log.Printf("query notification: user lookup failed: %v", err)
			return
		}
		if err := qc.EmailService.SendQueryResponse(user.Email, user.Name, query.Subject, response); err != nil {
			log.Printf("Failed to send email to %s: %v", user.Email, err)
		}
	}()
}
