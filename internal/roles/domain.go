package roles

import (
	"time"

	"github.com/reprimand-panel/reprimand-panel/internal/identity"
)

// Role is a guild role mirrored into the store.
type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GuildID   string    `json:"guild_id"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

const everyoneRole = "@everyone"

// assignable drops roles owned by integrations and the implicit @everyone role.
func assignable(in []identity.Role) []Role {
	out := make([]Role, 0, len(in))
	for _, r := range in {
		if r.Managed || r.Name == everyoneRole || (r.GuildID != "" && r.ID == r.GuildID) {
			continue
		}
		out = append(out, Role{ID: r.ID, Name: r.Name, GuildID: r.GuildID})
	}
	return out
}
