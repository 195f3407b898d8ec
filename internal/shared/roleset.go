package shared

import (
	"sort"
	"strings"
)

// RoleSet is an unordered set of role identifiers held by a member.
type RoleSet map[string]struct{}

// NewRoleSet builds a RoleSet, ignoring blank identifiers.
func NewRoleSet(ids ...string) RoleSet {
	set := make(RoleSet, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s RoleSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the identifiers in sorted order.
func (s RoleSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
