package deadline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// Service exposes the rule list and resolves cases against it.
type Service struct {
	repo     Repository
	authz    shared.Authorizer
	validate *validator.Validate
	logger   *slog.Logger
	terminal string
}

// NewService constructs a Service. terminal names the punishment type that
// never carries a remediation.
func NewService(repo Repository, authz shared.Authorizer, logger *slog.Logger, terminal string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		authz:    authz,
		validate: validator.New(),
		logger:   logger,
		terminal: NormalizeType(terminal),
	}
}

// Rules returns the usable stored rules in order. Broken entries are logged and left out.
func (s *Service) Rules(ctx context.Context) ([]Rule, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if len(settings.Issues) > 0 {
		s.logger.Warn("deadline rules skipped", slog.Any("error", issuesError(settings.Issues)))
	}
	return settings.DeadlineRules, nil
}

// Settings returns the stored logic document with the unreadable entries
// listed in Issues.
func (s *Service) Settings(ctx context.Context) (LogicSettings, error) {
	raw, err := s.repo.LoadRules(ctx)
	if err != nil {
		return LogicSettings{}, fmt.Errorf("deadline: load rules: %w", err)
	}
	rules, issues := InspectRules(raw)
	return LogicSettings{DeadlineRules: rules, Issues: issues}, nil
}

// Resolve reads a fresh rule snapshot and resolves punishmentType for a
// recipient holding roles.
func (s *Service) Resolve(ctx context.Context, punishmentType string, roles shared.RoleSet) (Resolution, error) {
	rules, err := s.Rules(ctx)
	if err != nil {
		return Resolution{}, err
	}
	res, issues := Resolve(NormalizeType(punishmentType), roles, rules, s.terminal)
	if issues != nil {
		s.logger.Warn("deadline rules skipped", slog.Any("error", issues))
	}
	return res, nil
}

// ReplaceRules swaps the whole rule list on behalf of p. While the stored list
// holds unreadable entries the swap is refused with shared.ErrConflict unless
// discardBroken is set, so entries the editor never saw are not lost silently.
func (s *Service) ReplaceRules(ctx context.Context, p *shared.Principal, rules []Rule, discardBroken bool) ([]Rule, error) {
	if err := s.authz.Check(ctx, p, shared.PermSettingsEditLogic); err != nil {
		return nil, err
	}
	valid, err := ValidateRules(s.validate, rules)
	if err != nil {
		return nil, err
	}
	current, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if len(current.Issues) > 0 && !discardBroken {
		return nil, fmt.Errorf("%w: %d stored deadline rules are unreadable; repair them or save with discard_broken", shared.ErrConflict, len(current.Issues))
	}
	entry := audit.Entry{
		ActorID:   p.ID,
		ActorName: p.Name(),
		Action:    audit.ActionLogicSettingsUpdate,
		Details:   map[string]any{"rules": len(valid)},
	}
	if len(current.Issues) > 0 {
		entry.Details["discarded"] = len(current.Issues)
	}
	if err := s.repo.ReplaceRules(ctx, valid, entry); err != nil {
		return nil, fmt.Errorf("deadline: replace rules: %w", err)
	}
	return valid, nil
}
