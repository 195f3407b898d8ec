package deadline

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reprimand-panel/reprimand-panel/internal/rbac"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
	"github.com/reprimand-panel/reprimand-panel/internal/testing/sessiontest"
)

const brokenStore = `[{"punishment_type":"A","days":"5","task":"typed days"},{"days":2,"task":"any"}]`

func newLogicRouter(repo *memoryRepo) chi.Router {
	svc := NewService(repo, keyAuthorizer{shared.PermSettingsEditLogic: true}, nil, terminal)
	h := NewHandler(slog.Default(), svc, rbac.Middleware{})
	r := chi.NewRouter()
	r.Route("/api/settings/logic", h.MountRoutes)
	return r
}

func TestHandlerShowReportsUnreadableRules(t *testing.T) {
	repo := &memoryRepo{raw: json.RawMessage(brokenStore)}
	router := newLogicRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessiontest.Request(t, http.MethodGet, "/api/settings/logic", "", editor))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got LogicSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []Rule{{Days: 2, Task: "any"}}, got.DeadlineRules)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, 0, got.Issues[0].Index)
	assert.Contains(t, got.Issues[0].Error, "not an integer")
	assert.JSONEq(t, `{"punishment_type":"A","days":"5","task":"typed days"}`, string(got.Issues[0].Raw))
}

func TestHandlerReplaceKeepsUnreadableRulesUntilDiscarded(t *testing.T) {
	repo := &memoryRepo{raw: json.RawMessage(brokenStore)}
	router := newLogicRouter(repo)

	rec := httptest.NewRecorder()
	body := `{"deadline_rules":[{"days":2,"task":"any"}]}`
	router.ServeHTTP(rec, sessiontest.Request(t, http.MethodPost, "/api/settings/logic", body, editor))
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Zero(t, repo.replaces)
	assert.JSONEq(t, brokenStore, string(repo.raw))

	rec = httptest.NewRecorder()
	body = `{"deadline_rules":[{"punishment_type":"A","days":5,"task":"typed days"},{"days":2,"task":"any"}],"discard_broken":true}`
	router.ServeHTTP(rec, sessiontest.Request(t, http.MethodPost, "/api/settings/logic", body, editor))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	loaded, issues := InspectRules(repo.raw)
	assert.Empty(t, issues)
	assert.Equal(t, []Rule{{PunishmentType: "A", Days: 5, Task: "typed days"}, {Days: 2, Task: "any"}}, loaded)
	require.Len(t, repo.entries, 1)
	assert.Equal(t, 1, repo.entries[0].Details["discarded"])
}

func TestHandlerLogicRequiresLogin(t *testing.T) {
	router := newLogicRouter(&memoryRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessiontest.Request(t, http.MethodGet, "/api/settings/logic", "", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
