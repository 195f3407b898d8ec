package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reprimand-panel/reprimand-panel/internal/roles"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// RoleSyncer mirrors the guild roles into the store.
type RoleSyncer interface {
	Sync(ctx context.Context, p *shared.Principal) ([]roles.Role, error)
}

// Granter adds permissions to a role without touching its other grants.
type Granter interface {
	Grant(ctx context.Context, roleID string, keys ...string) error
}

// AdminCLI bootstraps the first administrator role. Until some role holds
// settings.edit nobody can edit the grant table from the panel itself.
type AdminCLI struct {
	roles  RoleSyncer
	grants Granter
}

// NewAdminCLI constructs the bootstrap helpers.
func NewAdminCLI(syncer RoleSyncer, granter Granter) *AdminCLI {
	return &AdminCLI{roles: syncer, grants: granter}
}

// GrantAdminOptions defines the flags of the grant-admin command.
type GrantAdminOptions struct {
	RoleID     string
	SkipSync   bool
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// GrantAdminSummary is the JSON output of grant-admin.
type GrantAdminSummary struct {
	RoleID      string   `json:"role_id"`
	RoleName    string   `json:"role_name,omitempty"`
	Permissions []string `json:"permissions"`
	SyncedRoles int      `json:"synced_roles"`
}

// GrantAdminCommand syncs the guild roles, checks the role exists and grants it
// every permission. It returns the process exit code.
func (c *AdminCLI) GrantAdminCommand(ctx context.Context, opts GrantAdminOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	roleID := strings.TrimSpace(opts.RoleID)
	if roleID == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "grant-admin: --role is required")
		return 1
	}

	summary := GrantAdminSummary{RoleID: roleID, Permissions: shared.AdminScopes()}
	if !opts.SkipSync {
		synced, err := c.roles.Sync(ctx, nil)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "grant-admin: sync roles: %v\n", err)
			return 1
		}
		summary.SyncedRoles = len(synced)
		for _, role := range synced {
			if role.ID == roleID {
				summary.RoleName = role.Name
			}
		}
		if summary.RoleName == "" {
			_, _ = fmt.Fprintf(opts.Stderr, "grant-admin: role %s is not an assignable guild role\n", roleID)
			return 2
		}
	}

	if err := c.grants.Grant(ctx, roleID, summary.Permissions...); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "grant-admin: %v\n", err)
		return 1
	}

	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "grant-admin: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	name := summary.RoleName
	if name == "" {
		name = roleID
	}
	_, _ = fmt.Fprintf(opts.Stdout, "granted %d permissions to %s\n", len(summary.Permissions), name)
	for _, key := range summary.Permissions {
		_, _ = fmt.Fprintf(opts.Stdout, "  %s\n", key)
	}
	return 0
}
