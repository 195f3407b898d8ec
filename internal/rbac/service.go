package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// DecisionObserver receives every authorization outcome, typically for metrics.
type DecisionObserver interface {
	ObserveAuthorization(permission string, allowed bool)
}

// Service orchestrates RBAC operations. The grant table is read fresh on every
// check; there is no cache to invalidate after SetGrants.
type Service struct {
	repo     Repository
	validate *validator.Validate
	observer DecisionObserver
}

// NewService constructs a Service. observer may be nil.
func NewService(repo Repository, observer DecisionObserver) *Service {
	return &Service{repo: repo, validate: validator.New(), observer: observer}
}

// Grants returns the current grant table.
func (s *Service) Grants(ctx context.Context) (Grants, error) {
	grants, err := s.repo.LoadGrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("rbac: load grants: %w", err)
	}
	return grants, nil
}

// Check returns nil when p holds key, shared.ErrUnauthenticated when there is
// no principal and shared.ErrForbidden when the grant table denies it.
func (s *Service) Check(ctx context.Context, p *shared.Principal, key string) error {
	return s.CheckAny(ctx, p, key)
}

// CheckAny is Check succeeding when any one of keys is held.
func (s *Service) CheckAny(ctx context.Context, p *shared.Principal, keys ...string) error {
	if p == nil || p.ID == "" {
		return shared.ErrUnauthenticated
	}
	grants, err := s.Grants(ctx)
	if err != nil {
		return err
	}
	roles := p.Roles()
	for _, key := range keys {
		if Authorize(roles, key, grants) {
			s.observe(key, true)
			return nil
		}
	}
	for _, key := range keys {
		s.observe(key, false)
	}
	return fmt.Errorf("%w: requires %s", shared.ErrForbidden, strings.Join(keys, " or "))
}

// EffectivePermissions lists the keys p currently holds.
func (s *Service) EffectivePermissions(ctx context.Context, p *shared.Principal) ([]string, error) {
	if p == nil {
		return []string{}, nil
	}
	grants, err := s.Grants(ctx)
	if err != nil {
		return nil, err
	}
	return Effective(p.Roles(), grants), nil
}

// SetGrants replaces the whole grant table on behalf of p. Invalid input is
// rejected before the store is touched.
func (s *Service) SetGrants(ctx context.Context, p *shared.Principal, grants Grants) (Grants, error) {
	if err := s.Check(ctx, p, shared.PermSettingsEdit); err != nil {
		return nil, err
	}
	if err := s.validateGrants(grants); err != nil {
		return nil, err
	}
	normalized := grants.Normalize()
	entry := audit.Entry{
		ActorID:   p.ID,
		ActorName: p.Name(),
		Action:    audit.ActionPermissionsUpdate,
		Details:   map[string]any{"roles": len(normalized), "grants": len(normalized.Pairs())},
	}
	if err := s.repo.ReplaceGrants(ctx, normalized, entry); err != nil {
		return nil, fmt.Errorf("rbac: replace grants: %w", err)
	}
	return normalized, nil
}

// Grant adds keys to roleID without touching other grants. Used for bootstrap,
// so it performs no permission check of its own.
func (s *Service) Grant(ctx context.Context, roleID string, keys ...string) error {
	g := Grants{roleID: keys}
	if err := s.validateGrants(g); err != nil {
		return err
	}
	normalized := g.Normalize()
	roleID = strings.TrimSpace(roleID)
	if len(normalized[roleID]) == 0 {
		return nil
	}
	if err := s.repo.AddGrants(ctx, roleID, normalized[roleID]); err != nil {
		return fmt.Errorf("rbac: add grants: %w", err)
	}
	return nil
}

func (s *Service) validateGrants(grants Grants) error {
	for roleID, keys := range grants {
		if err := s.validate.Var(strings.TrimSpace(roleID), "required,max=64"); err != nil {
			return fmt.Errorf("%w: role id %q: %w", shared.ErrValidation, roleID, err)
		}
		for _, k := range keys {
			if err := s.validate.Var(strings.TrimSpace(k), "required,max=100"); err != nil {
				return fmt.Errorf("%w: permission for role %s: %w", shared.ErrValidation, roleID, err)
			}
		}
	}
	return nil
}

func (s *Service) observe(key string, allowed bool) {
	if s.observer != nil {
		s.observer.ObserveAuthorization(key, allowed)
	}
}
