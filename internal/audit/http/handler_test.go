package audithttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/rbac"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
	"github.com/reprimand-panel/reprimand-panel/internal/testing/sessiontest"
)

type grantTable rbac.Grants

func (g grantTable) LoadGrants(ctx context.Context) (rbac.Grants, error) {
	return rbac.Grants(g), nil
}

func (g grantTable) ReplaceGrants(ctx context.Context, grants rbac.Grants, entry audit.Entry) error {
	return nil
}

func (g grantTable) AddGrants(ctx context.Context, roleID string, keys []string) error {
	return nil
}

type windowRepo struct {
	rows                 []audit.TimelineRow
	actor, action        string
	offset, limit, calls int
}

func (w *windowRepo) Window(ctx context.Context, actor, action string, offset, limit int) ([]audit.TimelineRow, error) {
	w.actor, w.action, w.offset, w.limit = actor, action, offset, limit
	w.calls++
	if offset >= len(w.rows) {
		return nil, nil
	}
	end := min(offset+limit, len(w.rows))
	return w.rows[offset:end], nil
}

func newLogsRouter(repo *windowRepo) chi.Router {
	mw := rbac.Middleware{Service: rbac.NewService(grantTable{"AUDITOR": {shared.PermLogsView}}, nil)}
	h := NewHandler(slog.Default(), audit.NewService(repo), mw)
	r := chi.NewRouter()
	r.Route("/api/logs", h.MountRoutes)
	return r
}

func TestListPassesFiltersAndPaging(t *testing.T) {
	at := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	repo := &windowRepo{rows: []audit.TimelineRow{
		{ID: 3, ActorID: "1001", Action: audit.ActionReprimandCreate, At: at},
		{ID: 2, ActorID: "1001", Action: audit.ActionReprimandCreate, At: at.Add(-time.Minute)},
		{ID: 1, ActorID: "1001", Action: audit.ActionReprimandCreate, At: at.Add(-2 * time.Minute)},
	}}
	router := newLogsRouter(repo)
	auditor := &shared.Principal{ID: "7", RoleIDs: []string{"AUDITOR"}}

	rec := httptest.NewRecorder()
	target := "/api/logs?page=1&page_size=2&actor=1001&action=" + audit.ActionReprimandCreate
	router.ServeHTTP(rec, sessiontest.Request(t, http.MethodGet, target, "", auditor))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "1001", repo.actor)
	assert.Equal(t, audit.ActionReprimandCreate, repo.action)
	assert.Equal(t, 3, repo.limit)

	var got audit.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Rows, 2)
	assert.Equal(t, int64(3), got.Rows[0].ID)
	assert.True(t, got.Paging.HasNext)
	assert.Equal(t, 2, got.Paging.NextPage)
}

func TestListRequiresLogsView(t *testing.T) {
	repo := &windowRepo{}
	router := newLogsRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessiontest.Request(t, http.MethodGet, "/api/logs", "", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, sessiontest.Request(t, http.MethodGet, "/api/logs", "", &shared.Principal{ID: "8", RoleIDs: []string{"MEMBER"}}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, repo.calls)
}
