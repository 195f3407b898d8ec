package rbac

import (
	"sort"

	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// Authorize reports whether any role in roles has key in its grant set.
// There is no explicit deny and no role hierarchy, so an empty role set never
// authorizes and adding a grant can only turn a denial into an allow.
func Authorize(roles shared.RoleSet, key string, grants Grants) bool {
	if key == "" {
		return false
	}
	for roleID := range roles {
		for _, granted := range grants[roleID] {
			if granted == key {
				return true
			}
		}
	}
	return false
}

// Effective returns the union of keys granted to roles, sorted.
func Effective(roles shared.RoleSet, grants Grants) []string {
	set := make(map[string]struct{})
	for roleID := range roles {
		for _, k := range grants[roleID] {
			set[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
