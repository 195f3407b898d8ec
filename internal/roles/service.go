package roles

import (
	"context"
	"fmt"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/identity"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// SystemActor is recorded as the actor of unattended syncs.
const SystemActor = "system"

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	UpsertRoles(ctx context.Context, roles []Role, entry audit.Entry) error
}

// Service mirrors guild roles into the store.
type Service struct {
	repo      RepositoryPort
	directory identity.Directory
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, directory identity.Directory) *Service {
	return &Service{repo: repo, directory: directory}
}

// ListRoles returns all stored roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// Sync fetches the guild's assignable roles and upserts them. Roles gone from
// the guild stay in the store. A nil principal records the sync as SystemActor.
func (s *Service) Sync(ctx context.Context, p *shared.Principal) ([]Role, error) {
	fetched, err := s.directory.GuildRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("roles: fetch guild roles: %w", err)
	}
	roles := assignable(fetched)

	entry := audit.Entry{ActorID: SystemActor, ActorName: SystemActor, Action: audit.ActionRolesSync}
	if p != nil {
		entry.ActorID, entry.ActorName = p.ID, p.Name()
	}
	entry.Details = map[string]any{"roles": len(roles)}
	if err := s.repo.UpsertRoles(ctx, roles, entry); err != nil {
		return nil, fmt.Errorf("roles: upsert: %w", err)
	}
	return roles, nil
}
