// Package identity declares the ports the panel uses to reach the community
// server: looking up members and roles, and acting on them.
package identity

import (
	"context"

	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// Member is a guild member as seen at lookup time.
type Member struct {
	ID          string
	Username    string
	DisplayName string
	RoleIDs     []string
}

// Roles returns the member's roles as a set.
func (m Member) Roles() shared.RoleSet {
	return shared.NewRoleSet(m.RoleIDs...)
}

// Name prefers the guild display name.
func (m Member) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Username
}

// Role is a guild role. Managed roles belong to integrations and bots.
type Role struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	GuildID string `json:"guild_id"`
	Managed bool   `json:"-"`
}

// User is the account behind an OAuth login.
type User struct {
	ID          string
	Username    string
	DisplayName string
}

// Directory looks up members and roles. Unknown members yield
// shared.ErrNotFound; transport failures yield shared.ErrUpstreamUnavailable.
type Directory interface {
	Member(ctx context.Context, userID string) (Member, error)
	GuildRoles(ctx context.Context) ([]Role, error)
}

// NoticeField is one labelled value of a Notice.
type NoticeField struct {
	Name   string
	Value  string
	Inline bool
}

// Notice is a channel announcement.
type Notice struct {
	Content string
	Title   string
	Color   int
	Fields  []NoticeField
	Footer  string
}

// Sink performs the side effects that follow a committed change.
type Sink interface {
	AddRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
	PostNotice(ctx context.Context, channelID string, notice Notice) error
}
