package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

func TestAuthorizeScenario(t *testing.T) {
	grants := Grants{"R1": {shared.PermReprimandCreate}}

	assert.True(t, Authorize(shared.NewRoleSet("R1", "R2"), shared.PermReprimandCreate, grants))
	assert.False(t, Authorize(shared.NewRoleSet("R2"), shared.PermReprimandCreate, grants))
}

func TestAuthorizeEmptyRoleSetAlwaysDenies(t *testing.T) {
	grants := Grants{
		"R1": shared.AdminScopes(),
		"":   {shared.PermReprimandCreate},
	}
	for _, info := range shared.Catalog() {
		assert.False(t, Authorize(shared.NewRoleSet(), info.Key, grants), info.Key)
	}
	assert.False(t, Authorize(nil, shared.PermLogsView, grants))
}

func TestAuthorizeMissingRoleEntryIsEmptyGrantSet(t *testing.T) {
	assert.False(t, Authorize(shared.NewRoleSet("ghost"), shared.PermLogsView, Grants{"R1": {shared.PermLogsView}}))
	assert.False(t, Authorize(shared.NewRoleSet("R1"), shared.PermLogsView, nil))
}

func TestAuthorizeUnknownKeyIsUngranted(t *testing.T) {
	grants := Grants{"R1": shared.AdminScopes()}
	assert.False(t, Authorize(shared.NewRoleSet("R1"), "reprimand.teleport", grants))
	assert.False(t, Authorize(shared.NewRoleSet("R1"), "", grants))
}

func TestAuthorizeIsMonotonic(t *testing.T) {
	roles := shared.NewRoleSet("R1", "R2", "R3")
	keys := []string{shared.PermReprimandCreate, shared.PermLogsView, shared.PermCharterEdit}
	grants := Grants{"R2": {shared.PermLogsView}}

	for _, key := range keys {
		before := Authorize(roles, key, grants)
		for _, role := range roles.IDs() {
			extended := Grants{}
			for r, ks := range grants {
				extended[r] = append([]string(nil), ks...)
			}
			extended[role] = append(extended[role], shared.PermCharterEdit)
			after := Authorize(roles, key, extended)
			if before {
				assert.True(t, after, "adding a grant must never revoke %s", key)
			}
		}
	}
}

func TestAuthorizeIsOrderIndependent(t *testing.T) {
	grants := Grants{"B": {shared.PermReprimandDelete}}
	a := shared.NewRoleSet("A", "B", "C")
	b := shared.NewRoleSet("C", "B", "A", "B")

	assert.Equal(t, Authorize(a, shared.PermReprimandDelete, grants), Authorize(b, shared.PermReprimandDelete, grants))
	assert.True(t, Authorize(b, shared.PermReprimandDelete, grants))
}

func TestEffective(t *testing.T) {
	grants := Grants{
		"R1": {shared.PermLogsView, shared.PermCharterView},
		"R2": {shared.PermCharterView, shared.PermReprimandCreate},
		"R3": {shared.PermSettingsEdit},
	}
	got := Effective(shared.NewRoleSet("R1", "R2"), grants)
	assert.Equal(t, []string{shared.PermCharterView, shared.PermLogsView, shared.PermReprimandCreate}, got)
	assert.Empty(t, Effective(shared.NewRoleSet(), grants))
}

func TestGrantsNormalize(t *testing.T) {
	in := Grants{
		" R1 ": {"logs.view", " reprimand.create", "logs.view", ""},
		"R1":   {"charter.view"},
		"R2":   {"", "  "},
		"":     {"settings.edit"},
	}
	got := in.Normalize()

	assert.Equal(t, Grants{"R1": {"charter.view", "logs.view", "reprimand.create"}}, got)
	assert.Equal(t, got, got.Normalize(), "normalize is idempotent")
}

func TestFromPairsRoundTrip(t *testing.T) {
	grants := Grants{"R1": {"b", "a"}, "R2": {"c"}}
	assert.Equal(t, grants.Normalize(), FromPairs(grants.Pairs()))
	assert.Equal(t, []Grant{{"R1", "a"}, {"R1", "b"}, {"R2", "c"}}, grants.Normalize().Pairs())
}
