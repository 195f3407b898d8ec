package charter

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// Service reads and edits the charter.
type Service struct {
	repo     Repository
	authz    shared.Authorizer
	policy   *bluemonday.Policy
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository, authz shared.Authorizer) *Service {
	return &Service{
		repo:     repo,
		authz:    authz,
		policy:   bluemonday.UGCPolicy(),
		validate: validator.New(),
	}
}

// Get returns the charter.
func (s *Service) Get(ctx context.Context) (Charter, error) {
	return s.repo.Get(ctx)
}

// Rules returns the citable rules of the current charter.
func (s *Service) Rules(ctx context.Context) ([]RuleOption, error) {
	c, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return ParseRules(c.Content), nil
}

// Save replaces the charter on behalf of p. Content is sanitised before it is stored.
func (s *Service) Save(ctx context.Context, p *shared.Principal, in SaveInput) (Charter, error) {
	if err := s.authz.Check(ctx, p, shared.PermCharterEdit); err != nil {
		return Charter{}, err
	}
	if err := s.validate.Struct(in); err != nil {
		return Charter{}, fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}
	c := Charter{
		Content:           s.policy.Sanitize(in.Content),
		LastUpdatedByID:   p.ID,
		LastUpdatedByName: p.Username,
	}
	entry := audit.Entry{ActorID: p.ID, ActorName: p.Name(), Action: audit.ActionCharterUpdate}
	saved, err := s.repo.Save(ctx, c, entry)
	if err != nil {
		return Charter{}, fmt.Errorf("charter: save: %w", err)
	}
	return saved, nil
}
