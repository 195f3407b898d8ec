package shared

// Principal describes the authenticated actor and the roles it held at login.
type Principal struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	RoleIDs     []string `json:"role_ids"`
}

// Roles returns the principal's role snapshot as a set.
func (p *Principal) Roles() RoleSet {
	if p == nil {
		return RoleSet{}
	}
	return NewRoleSet(p.RoleIDs...)
}

// Name prefers the guild display name over the account name.
func (p *Principal) Name() string {
	if p == nil {
		return ""
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}
