package deadline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

type memoryRepo struct {
	raw      json.RawMessage
	entries  []audit.Entry
	replaces int
	err      error
}

func (m *memoryRepo) LoadRules(ctx context.Context) (json.RawMessage, error) {
	return m.raw, m.err
}

func (m *memoryRepo) ReplaceRules(ctx context.Context, rules []Rule, entry audit.Entry) error {
	m.replaces++
	if m.err != nil {
		return m.err
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	m.raw = raw
	m.entries = append(m.entries, entry)
	return nil
}

type keyAuthorizer map[string]bool

func (k keyAuthorizer) Check(ctx context.Context, p *shared.Principal, key string) error {
	if p == nil {
		return shared.ErrUnauthenticated
	}
	if !k[key] {
		return shared.ErrForbidden
	}
	return nil
}

var editor = &shared.Principal{ID: "42", Username: "editor"}

func TestServiceReplaceRulesRoundTrip(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, keyAuthorizer{shared.PermSettingsEditLogic: true}, nil, terminal)
	ctx := context.Background()

	rules := []Rule{{PunishmentType: "warning", Days: 3, Task: "essay"}, {Days: 1, Task: "any"}}
	saved, err := svc.ReplaceRules(ctx, editor, rules, false)
	require.NoError(t, err)
	assert.Equal(t, rules, saved)

	loaded, err := svc.Rules(ctx)
	require.NoError(t, err)
	assert.Equal(t, rules, loaded)

	require.Len(t, repo.entries, 1)
	assert.Equal(t, audit.ActionLogicSettingsUpdate, repo.entries[0].Action)
}

func TestServiceReplaceRulesRejectsBeforeStore(t *testing.T) {
	ctx := context.Background()

	repo := &memoryRepo{}
	svc := NewService(repo, keyAuthorizer{}, nil, terminal)
	_, err := svc.ReplaceRules(ctx, editor, []Rule{{Days: 1}}, false)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.ReplaceRules(ctx, nil, []Rule{{Days: 1}}, false)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	svc = NewService(repo, keyAuthorizer{shared.PermSettingsEditLogic: true}, nil, terminal)
	_, err = svc.ReplaceRules(ctx, editor, []Rule{{Days: -3}}, false)
	assert.ErrorIs(t, err, shared.ErrValidation)

	assert.Zero(t, repo.replaces)
}

func TestServiceResolveUsesFreshSnapshot(t *testing.T) {
	repo := &memoryRepo{raw: json.RawMessage(`[{"punishment_type":"warning","days":2,"task":"first"}]`)}
	svc := NewService(repo, keyAuthorizer{}, nil, terminal)
	ctx := context.Background()

	res, err := svc.Resolve(ctx, "warning", shared.NewRoleSet())
	require.NoError(t, err)
	assert.Equal(t, Resolution{Days: 2, Task: "first"}, res)

	repo.raw = json.RawMessage(`[{"punishment_type":"warning","days":9,"task":"second"}]`)
	res, err = svc.Resolve(ctx, "warning", shared.NewRoleSet())
	require.NoError(t, err)
	assert.Equal(t, Resolution{Days: 9, Task: "second"}, res)

	res, err = svc.Resolve(ctx, " dismissal ", shared.NewRoleSet())
	require.NoError(t, err)
	assert.Equal(t, NoRemediation(), res)
}

func TestServiceResolveSkipsBrokenRules(t *testing.T) {
	repo := &memoryRepo{raw: json.RawMessage(`[{"days":"x","task":"broken"},{"days":-1,"task":"neg"},{"days":4,"task":"ok"}]`)}
	svc := NewService(repo, keyAuthorizer{}, nil, terminal)

	res, err := svc.Resolve(context.Background(), "warning", shared.NewRoleSet())
	require.NoError(t, err)
	assert.Equal(t, Resolution{Days: 4, Task: "ok"}, res)
}

func TestServiceResolveStoreOutage(t *testing.T) {
	outage := errors.Join(shared.ErrUpstreamUnavailable, errors.New("dial tcp"))
	svc := NewService(&memoryRepo{err: outage}, keyAuthorizer{}, nil, terminal)

	_, err := svc.Resolve(context.Background(), "warning", shared.NewRoleSet())
	assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
}
