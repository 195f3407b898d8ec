package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reprimand-panel/reprimand-panel/internal/roles"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

type stubSyncer struct {
	roles []roles.Role
	err   error
	calls int
}

func (s *stubSyncer) Sync(ctx context.Context, p *shared.Principal) ([]roles.Role, error) {
	s.calls++
	return s.roles, s.err
}

type stubGranter struct {
	roleID string
	keys   []string
}

func (s *stubGranter) Grant(ctx context.Context, roleID string, keys ...string) error {
	s.roleID = roleID
	s.keys = keys
	return nil
}

func TestGrantAdminJSON(t *testing.T) {
	syncer := &stubSyncer{roles: []roles.Role{{ID: "10", Name: "Leadership"}, {ID: "11", Name: "Officer"}}}
	granter := &stubGranter{}
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	code := NewAdminCLI(syncer, granter).GrantAdminCommand(context.Background(), GrantAdminOptions{
		RoleID:     " 10 ",
		JSONOutput: true,
		Stdout:     stdout,
		Stderr:     stderr,
	})
	require.Zero(t, code)
	require.Empty(t, stderr.String())
	require.Equal(t, "10", granter.roleID)
	require.ElementsMatch(t, shared.AdminScopes(), granter.keys)

	var summary GrantAdminSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.Equal(t, "Leadership", summary.RoleName)
	require.Equal(t, 2, summary.SyncedRoles)
}

func TestGrantAdminUnknownRole(t *testing.T) {
	syncer := &stubSyncer{roles: []roles.Role{{ID: "11", Name: "Officer"}}}
	granter := &stubGranter{}
	stderr := new(bytes.Buffer)

	code := NewAdminCLI(syncer, granter).GrantAdminCommand(context.Background(), GrantAdminOptions{
		RoleID: "10",
		Stdout: new(bytes.Buffer),
		Stderr: stderr,
	})
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "not an assignable guild role")
	require.Empty(t, granter.roleID)
}

func TestGrantAdminSkipSync(t *testing.T) {
	syncer := &stubSyncer{err: shared.ErrUpstreamUnavailable}
	granter := &stubGranter{}
	stdout := new(bytes.Buffer)

	code := NewAdminCLI(syncer, granter).GrantAdminCommand(context.Background(), GrantAdminOptions{
		RoleID:   "10",
		SkipSync: true,
		Stdout:   stdout,
		Stderr:   new(bytes.Buffer),
	})
	require.Zero(t, code)
	require.Zero(t, syncer.calls)
	require.Contains(t, stdout.String(), "granted")
}

func TestGrantAdminRequiresRole(t *testing.T) {
	stderr := new(bytes.Buffer)
	code := NewAdminCLI(&stubSyncer{}, &stubGranter{}).GrantAdminCommand(context.Background(), GrantAdminOptions{Stderr: stderr})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "--role is required")
}

func TestGrantAdminSyncFailure(t *testing.T) {
	stderr := new(bytes.Buffer)
	code := NewAdminCLI(&stubSyncer{err: shared.ErrUpstreamUnavailable}, &stubGranter{}).GrantAdminCommand(context.Background(), GrantAdminOptions{
		RoleID: "10",
		Stdout: new(bytes.Buffer),
		Stderr: stderr,
	})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "sync roles")
}
