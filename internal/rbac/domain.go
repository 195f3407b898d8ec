package rbac

import (
	"sort"
	"strings"
)

// Grants maps a role identifier to the permission keys granted to it.
// A role absent from the map holds no permissions.
type Grants map[string][]string

// Grant is a single (role, permission) pair as stored.
type Grant struct {
	RoleID        string
	PermissionKey string
}

// Normalize trims identifiers, removes duplicate pairs and empty roles, and
// sorts keys so equal tables compare equal.
func (g Grants) Normalize() Grants {
	out := make(Grants, len(g))
	for roleID, keys := range g {
		roleID = strings.TrimSpace(roleID)
		if roleID == "" {
			continue
		}
		// Identifiers that differ only by surrounding space collapse into one role.
		candidates := append(append([]string(nil), out[roleID]...), keys...)
		seen := make(map[string]struct{}, len(candidates))
		merged := make([]string, 0, len(candidates))
		for _, k := range candidates {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, k)
		}
		if len(merged) == 0 {
			delete(out, roleID)
			continue
		}
		sort.Strings(merged)
		out[roleID] = merged
	}
	return out
}

// Pairs flattens the table into sorted (role, key) pairs.
func (g Grants) Pairs() []Grant {
	var pairs []Grant
	for roleID, keys := range g {
		for _, k := range keys {
			pairs = append(pairs, Grant{RoleID: roleID, PermissionKey: k})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].RoleID != pairs[j].RoleID {
			return pairs[i].RoleID < pairs[j].RoleID
		}
		return pairs[i].PermissionKey < pairs[j].PermissionKey
	})
	return pairs
}

// FromPairs rebuilds a normalized table from stored pairs.
func FromPairs(pairs []Grant) Grants {
	g := make(Grants)
	for _, p := range pairs {
		g[p.RoleID] = append(g[p.RoleID], p.PermissionKey)
	}
	return g.Normalize()
}
