package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewellery-backend/models"
	"jewellery-backend/store"
)

type queryEnv struct {
	svc     *QueryService
	queries *store.MemoryQueryStore
	user    Principal
	admin   Principal
}

func newQueryEnv(t *testing.T) *queryEnv {
	t.Helper()
	queries := store.NewMemoryQueryStore()
	return &queryEnv{
		svc:     NewQueryService(queries),
		queries: queries,
		user:    Principal{ID: primitive.NewObjectID(), Role: models.RoleUser},
		admin:   Principal{ID: primitive.NewObjectID(), Role: models.RoleAdmin},
	}
}

func validQueryInput() CreateQueryInput {
	return CreateQueryInput{
		Subject: "Ring arrived scratched",
		Message: "The gold ring I received yesterday has a visible scratch on the band.",
	}
}

func (e *queryEnv) openQuery(t *testing.T) *models.Query {
	t.Helper()
	query, err := e.svc.Create(context.Background(), e.user.ID, validQueryInput())
	require.NoError(t, err)
	return query
}

func TestCreateQuery(t *testing.T) {
	env := newQueryEnv(t)

	query, err := env.svc.Create(context.Background(), env.user.ID, validQueryInput())
	require.NoError(t, err)

	assert.Equal(t, models.QueryStatusOpen, query.Status)
	assert.Equal(t, models.QueryCategoryGeneral, query.Category)
	assert.Equal(t, models.QueryPriorityMedium, query.Priority)
	assert.NotNil(t, query.Tags)
	assert.Empty(t, query.Tags)
	assert.Equal(t, env.user.ID, query.User)
}

func TestCreateQueryValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateQueryInput)
	}{
		{"short subject", func(in *CreateQueryInput) { in.Subject = "Hi" }},
		{"long subject", func(in *CreateQueryInput) { in.Subject = strings.Repeat("x", 101) }},
		{"short message", func(in *CreateQueryInput) { in.Message = "too short" }},
		{"long message", func(in *CreateQueryInput) { in.Message = strings.Repeat("x", 1001) }},
		{"unknown category", func(in *CreateQueryInput) { in.Category = "complaints" }},
		{"unknown priority", func(in *CreateQueryInput) { in.Priority = "critical" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newQueryEnv(t)
			in := validQueryInput()
			tc.mutate(&in)

			_, err := env.svc.Create(context.Background(), env.user.ID, in)
			assert.Equal(t, KindValidation, kindOf(t, err))
		})
	}
}

func TestGetQuery(t *testing.T) {
	env := newQueryEnv(t)
	query := env.openQuery(t)

	_, err := env.svc.Get(context.Background(), env.user, query.ID)
	assert.NoError(t, err)

	_, err = env.svc.Get(context.Background(), env.admin, query.ID)
	assert.NoError(t, err)

	stranger := Principal{ID: primitive.NewObjectID(), Role: models.RoleUser}
	_, err = env.svc.Get(context.Background(), stranger, query.ID)
	assert.Equal(t, KindAccessDenied, kindOf(t, err))

	_, err = env.svc.Get(context.Background(), env.user, primitive.NewObjectID())
	assert.Equal(t, KindNotFound, kindOf(t, err))
}

func TestUpdateQuery(t *testing.T) {
	env := newQueryEnv(t)
	query := env.openQuery(t)

	in := UpdateQueryInput{
		Subject:  "Ring arrived scratched badly",
		Message:  "The scratch is deeper than I first thought, requesting a replacement.",
		Category: models.QueryCategoryProduct,
		Priority: models.QueryPriorityHigh,
		Tags:     []string{"replacement"},
	}
	updated, err := env.svc.Update(context.Background(), env.user, query.ID, in)
	require.NoError(t, err)
	assert.Equal(t, in.Subject, updated.Subject)
	assert.Equal(t, models.QueryCategoryProduct, updated.Category)
	assert.Equal(t, []string{"replacement"}, updated.Tags)
}

func TestUpdateQueryNotOpen(t *testing.T) {
	env := newQueryEnv(t)
	query := env.openQuery(t)

	_, err := env.svc.AdminUpdate(context.Background(), env.admin.ID, query.ID, models.QueryStatusInProgress, "")
	require.NoError(t, err)

	in := UpdateQueryInput{
		Subject:  "Ring arrived scratched badly",
		Message:  "The scratch is deeper than I first thought, requesting a replacement.",
		Category: models.QueryCategoryProduct,
		Priority: models.QueryPriorityHigh,
	}
	_, err = env.svc.Update(context.Background(), env.user, query.ID, in)
	assert.Equal(t, KindValidation, kindOf(t, err))
	assert.EqualError(t, err, "Cannot update query that is not in open status")
}

func TestUpdateQueryNotOwner(t *testing.T) {
	env := newQueryEnv(t)
	query := env.openQuery(t)

	stranger := Principal{ID: primitive.NewObjectID(), Role: models.RoleUser}
	_, err := env.svc.Update(context.Background(), stranger, query.ID, UpdateQueryInput{
		Subject:  "Hijacking this ticket",
		Message:  "This message is long enough to pass content validation.",
		Category: models.QueryCategoryGeneral,
		Priority: models.QueryPriorityLow,
	})
	assert.Equal(t, KindAccessDenied, kindOf(t, err))
}

func TestDeleteQuery(t *testing.T) {
	env := newQueryEnv(t)
	query := env.openQuery(t)

	stranger := Principal{ID: primitive.NewObjectID(), Role: models.RoleUser}
	err := env.svc.Delete(context.Background(), stranger, query.ID)
	assert.Equal(t, KindAccessDenied, kindOf(t, err))

	require.NoError(t, env.svc.Delete(context.Background(), env.user, query.ID))

	err = env.svc.Delete(context.Background(), env.user, query.ID)
	assert.Equal(t, KindNotFound, kindOf(t, err))
}

func TestAdminUpdateQuery(t *testing.T) {
	env := newQueryEnv(t)
	query := env.openQuery(t)

	t.Run("nothing to change", func(t *testing.T) {
		_, err := env.svc.AdminUpdate(context.Background(), env.admin.ID, query.ID, "", "")
		assert.Equal(t, KindValidation, kindOf(t, err))
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := env.svc.AdminUpdate(context.Background(), env.admin.ID, query.ID, "escalated", "")
		assert.Equal(t, KindValidation, kindOf(t, err))
	})

	t.Run("response attaches attribution", func(t *testing.T) {
		updated, err := env.svc.AdminUpdate(context.Background(), env.admin.ID, query.ID, models.QueryStatusResolved, "A replacement ring has been dispatched.")
		require.NoError(t, err)
		assert.Equal(t, models.QueryStatusResolved, updated.Status)
		require.NotNil(t, updated.AdminResponse)
		assert.Equal(t, env.admin.ID, updated.AdminResponse.AdminID)
		assert.Equal(t, "A replacement ring has been dispatched.", updated.AdminResponse.Message)
		assert.False(t, updated.AdminResponse.RespondedAt.IsZero())
	})
}

func TestBulkUpdateQueries(t *testing.T) {
	env := newQueryEnv(t)
	first := env.openQuery(t)
	second := env.openQuery(t)

	t.Run("no ids", func(t *testing.T) {
		_, err := env.svc.BulkUpdate(context.Background(), env.admin.ID, nil, models.QueryStatusClosed, "")
		assert.Equal(t, KindValidation, kindOf(t, err))
	})

	t.Run("no change requested", func(t *testing.T) {
		_, err := env.svc.BulkUpdate(context.Background(), env.admin.ID, []primitive.ObjectID{first.ID}, "", "")
		assert.Equal(t, KindValidation, kindOf(t, err))
	})

	t.Run("closes both", func(t *testing.T) {
		modified, err := env.svc.BulkUpdate(context.Background(), env.admin.ID,
			[]primitive.ObjectID{first.ID, second.ID, primitive.NewObjectID()},
			models.QueryStatusClosed, "Closing stale tickets")
		require.NoError(t, err)
		assert.Equal(t, int64(2), modified)

		stored, err := env.queries.FindByID(context.Background(), first.ID)
		require.NoError(t, err)
		assert.Equal(t, models.QueryStatusClosed, stored.Status)
		require.NotNil(t, stored.AdminResponse)
		assert.Equal(t, "Closing stale tickets", stored.AdminResponse.Message)
	})
}

func TestQueryStatusBreakdown(t *testing.T) {
	env := newQueryEnv(t)
	env.openQuery(t)
	resolved := env.openQuery(t)
	_, err := env.svc.AdminUpdate(context.Background(), env.admin.ID, resolved.ID, models.QueryStatusResolved, "")
	require.NoError(t, err)

	breakdown, err := env.svc.StatusBreakdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		models.QueryStatusOpen:     1,
		models.QueryStatusResolved: 1,
	}, breakdown)
}

func TestQueryStats(t *testing.T) {
	env := newQueryEnv(t)

	env.openQuery(t)
	answered := env.openQuery(t)

	respondedAt := time.Now().Add(2 * time.Hour)
	env.svc.now = func() time.Time { return respondedAt }
	_, err := env.svc.AdminUpdate(context.Background(), env.admin.ID, answered.ID, models.QueryStatusResolved, "Sorted.")
	require.NoError(t, err)
	env.svc.now = time.Now

	stats, err := env.svc.Stats(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "7 days", stats.Period)
	assert.Equal(t, int64(2), stats.RecentQueries)
	assert.Equal(t, int64(1), stats.StatusBreakdown[models.QueryStatusOpen])
	assert.Equal(t, int64(1), stats.StatusBreakdown[models.QueryStatusResolved])
	assert.Equal(t, 1, stats.RespondedQueryCount)
	assert.InDelta(t, (2 * time.Hour).Milliseconds(), stats.AverageResponseMS, float64(time.Minute.Milliseconds()))
}
