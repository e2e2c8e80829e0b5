package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewellery-backend/models"
	"jewellery-backend/store"
)

// QueryService owns the support-ticket workflow: user CRUD plus the admin
// response path. Queries share no invariants with orders.
type QueryService struct {
	queries store.QueryStore
	now     func() time.Time
}

// NewQueryService wires a QueryService to its store.
func NewQueryService(queries store.QueryStore) *QueryService {
	return &QueryService{queries: queries, now: time.Now}
}

// CreateQueryInput is a new support ticket as submitted by a user.
type CreateQueryInput struct {
	Subject  string
	Message  string
	Category string
	Priority string
	Tags     []string
}

func validateQueryContent(subject, message string) error {
	if len(subject) < 5 || len(subject) > 100 {
		return E(KindValidation, "Subject must be between 5 and 100 characters")
	}
	if len(message) < 10 || len(message) > 1000 {
		return E(KindValidation, "Message must be between 10 and 1000 characters")
	}
	return nil
}

// Create opens a new query for the user, defaulting category, priority and
// status.
func (s *QueryService) Create(ctx context.Context, userID primitive.ObjectID, in CreateQueryInput) (*models.Query, error) {
	if err := validateQueryContent(in.Subject, in.Message); err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = models.QueryCategoryGeneral
	}
	if !models.IsValidQueryCategory(in.Category) {
		return nil, E(KindValidation, "Invalid query category")
	}
	if in.Priority == "" {
		in.Priority = models.QueryPriorityMedium
	}
	if !models.IsValidQueryPriority(in.Priority) {
		return nil, E(KindValidation, "Invalid query priority")
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	query := &models.Query{
		User:     userID,
		Subject:  in.Subject,
		Message:  in.Message,
		Category: in.Category,
		Priority: in.Priority,
		Status:   models.QueryStatusOpen,
		Tags:     tags,
	}
	if err := s.queries.Create(ctx, query); err != nil {
		return nil, StoreError(err, "Server error while creating query")
	}
	return query, nil
}

// Get returns a query visible to the principal: its owner or any admin.
func (s *QueryService) Get(ctx context.Context, p Principal, id primitive.ObjectID) (*models.Query, error) {
	query, err := s.findQuery(ctx, id)
	if err != nil {
		return nil, err
	}
	if query.User != p.ID && !p.IsAdmin() {
		return nil, E(KindAccessDenied, "Not authorized to access this query")
	}
	return query, nil
}

// ListForUser returns the user's own queries, newest first.
func (s *QueryService) ListForUser(ctx context.Context, userID primitive.ObjectID, status, category, priority string, page store.Page) ([]models.Query, int64, error) {
	filter := store.QueryFilter{User: &userID, Status: status, Category: category, Priority: priority}
	return s.list(ctx, filter, store.Sort{Field: "createdAt", Desc: true}, page)
}

// AdminQueryListInput narrows the admin query listing.
type AdminQueryListInput struct {
	Status   string
	Category string
	Priority string
	User     *primitive.ObjectID
	Search   string
	SortBy   string
	SortDesc bool
	Page     store.Page
}

// ListAll returns queries across all users for administrators.
func (s *QueryService) ListAll(ctx context.Context, in AdminQueryListInput) ([]models.Query, int64, error) {
	filter := store.QueryFilter{
		Status:   in.Status,
		Category: in.Category,
		Priority: in.Priority,
		User:     in.User,
		Search:   in.Search,
	}
	sortBy := store.Sort{Field: in.SortBy, Desc: in.SortDesc}
	if sortBy.Field == "" {
		sortBy = store.Sort{Field: "createdAt", Desc: true}
	}
	return s.list(ctx, filter, sortBy, in.Page)
}

// StatusBreakdown counts all queries by status.
func (s *QueryService) StatusBreakdown(ctx context.Context) (map[string]int64, error) {
	breakdown := make(map[string]int64)
	for _, status := range []string{
		models.QueryStatusOpen,
		models.QueryStatusInProgress,
		models.QueryStatusResolved,
		models.QueryStatusClosed,
	} {
		count, err := s.queries.Count(ctx, store.QueryFilter{Status: status})
		if err != nil {
			return nil, StoreError(err, "Server error while fetching statistics")
		}
		if count > 0 {
			breakdown[status] = count
		}
	}
	return breakdown, nil
}

// UpdateQueryInput carries the fields a user may edit while a query is
// still open.
type UpdateQueryInput struct {
	Subject  string
	Message  string
	Category string
	Priority string
	Tags     []string
}

// Update lets the owner edit a query, but only while it is still open.
func (s *QueryService) Update(ctx context.Context, p Principal, id primitive.ObjectID, in UpdateQueryInput) (*models.Query, error) {
	query, err := s.findQuery(ctx, id)
	if err != nil {
		return nil, err
	}
	if query.User != p.ID {
		return nil, E(KindAccessDenied, "Not authorized to update this query")
	}
	if query.Status != models.QueryStatusOpen {
		return nil, E(KindValidation, "Cannot update query that is not in open status")
	}
	if err := validateQueryContent(in.Subject, in.Message); err != nil {
		return nil, err
	}
	if !models.IsValidQueryCategory(in.Category) {
		return nil, E(KindValidation, "Invalid query category")
	}
	if !models.IsValidQueryPriority(in.Priority) {
		return nil, E(KindValidation, "Invalid query priority")
	}

	query.Subject = in.Subject
	query.Message = in.Message
	query.Category = in.Category
	query.Priority = in.Priority
	if in.Tags != nil {
		query.Tags = in.Tags
	}
	if err := s.queries.Save(ctx, query); err != nil {
		return nil, StoreError(err, "Server error while updating query")
	}
	return query, nil
}

// Delete lets the owner remove a query.
func (s *QueryService) Delete(ctx context.Context, p Principal, id primitive.ObjectID) error {
	query, err := s.findQuery(ctx, id)
	if err != nil {
		return err
	}
	if query.User != p.ID {
		return E(KindAccessDenied, "Not authorized to delete this query")
	}
	if err := s.queries.Delete(ctx, id); err != nil {
		return StoreError(err, "Server error while deleting query")
	}
	return nil
}

// AdminUpdate sets the status and/or attaches an admin response.
func (s *QueryService) AdminUpdate(ctx context.Context, adminID primitive.ObjectID, id primitive.ObjectID, status, response string) (*models.Query, error) {
	if status == "" && response == "" {
		return nil, E(KindValidation, "Status or admin response is required")
	}
	if status != "" && !models.IsValidQueryStatus(status) {
		return nil, E(KindValidation, "Invalid query status")
	}

	query, err := s.findQuery(ctx, id)
	if err != nil {
		return nil, err
	}
	if status != "" {
		query.Status = status
	}
	if response != "" {
		query.AdminResponse = &models.AdminResponse{
			Message:     response,
			AdminID:     adminID,
			RespondedAt: s.now(),
		}
	}
	if err := s.queries.Save(ctx, query); err != nil {
		return nil, StoreError(err, "Server error while updating query")
	}
	return query, nil
}

// BulkUpdate applies a status and/or response to many queries at once and
// returns the number modified.
func (s *QueryService) BulkUpdate(ctx context.Context, adminID primitive.ObjectID, ids []primitive.ObjectID, status, response string) (int64, error) {
	if len(ids) == 0 {
		return 0, E(KindValidation, "Please provide valid query IDs")
	}
	if status == "" && response == "" {
		return 0, E(KindValidation, "Status or admin response is required")
	}
	if status != "" && !models.IsValidQueryStatus(status) {
		return 0, E(KindValidation, "Invalid query status")
	}

	update := store.QueryBulkUpdate{}
	if status != "" {
		update.Status = &status
	}
	if response != "" {
		update.Response = &models.AdminResponse{
			Message:     response,
			AdminID:     adminID,
			RespondedAt: s.now(),
		}
	}
	modified, err := s.queries.UpdateMany(ctx, ids, update)
	if err != nil {
		return 0, StoreError(err, "Server error while bulk updating queries")
	}
	return modified, nil
}

// QueryStats summarizes support-ticket activity over a trailing window.
type QueryStats struct {
	Period              string           `json:"period"`
	RecentQueries       int64            `json:"recentQueries"`
	StatusBreakdown     map[string]int64 `json:"statusBreakdown"`
	AverageResponseMS   int64            `json:"averageResponseTime"`
	RespondedQueryCount int              `json:"respondedQueryCount"`
}

// Stats aggregates query activity in the last `days` days. Average response
// time is measured over responded queries in the window.
func (s *QueryService) Stats(ctx context.Context, days int) (*QueryStats, error) {
	if days < 1 {
		days = 30
	}
	since := s.now().AddDate(0, 0, -days)

	recent, err := s.queries.Count(ctx, store.QueryFilter{CreatedAfter: &since})
	if err != nil {
		return nil, StoreError(err, "Server error while fetching statistics")
	}

	breakdown := make(map[string]int64)
	for _, status := range []string{
		models.QueryStatusOpen,
		models.QueryStatusInProgress,
		models.QueryStatusResolved,
		models.QueryStatusClosed,
	} {
		count, err := s.queries.Count(ctx, store.QueryFilter{Status: status, CreatedAfter: &since})
		if err != nil {
			return nil, StoreError(err, "Server error while fetching statistics")
		}
		if count > 0 {
			breakdown[status] = count
		}
	}

	responded := true
	respondedQueries, err := s.queries.Find(ctx, store.QueryFilter{Responded: &responded, CreatedAfter: &since}, store.Sort{}, store.Page{})
	if err != nil {
		return nil, StoreError(err, "Server error while fetching statistics")
	}
	var totalResponse time.Duration
	for _, query := range respondedQueries {
		totalResponse += query.AdminResponse.RespondedAt.Sub(query.CreatedAt)
	}
	stats := &QueryStats{
		Period:              fmt.Sprintf("%d days", days),
		RecentQueries:       recent,
		StatusBreakdown:     breakdown,
		RespondedQueryCount: len(respondedQueries),
	}
	if len(respondedQueries) > 0 {
		stats.AverageResponseMS = (totalResponse / time.Duration(len(respondedQueries))).Milliseconds()
	}
	return stats, nil
}

func (s *QueryService) list(ctx context.Context, filter store.QueryFilter, sortBy store.Sort, page store.Page) ([]models.Query, int64, error) {
	queries, err := s.queries.Find(ctx, filter, sortBy, page)
	if err != nil {
		return nil, 0, StoreError(err, "Server error while fetching queries")
	}
	total, err := s.queries.Count(ctx, filter)
	if err != nil {
		return nil, 0, StoreError(err, "Server error while fetching queries")
	}
	return queries, total, nil
}

func (s *QueryService) findQuery(ctx context.Context, id primitive.ObjectID) (*models.Query, error) {
	query, err := s.queries.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, E(KindNotFound, "Query not found")
	}
	if err != nil {
		return nil, StoreError(err, "Server error while fetching query")
	}
	return query, nil
}
