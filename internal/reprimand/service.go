package reprimand

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/deadline"
	"github.com/reprimand-panel/reprimand-panel/internal/identity"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

const listLimit = 500

// RuleResolver resolves a punishment against a fresh rule snapshot.
type RuleResolver interface {
	Resolve(ctx context.Context, punishmentType string, roles shared.RoleSet) (deadline.Resolution, error)
}

// Dispatcher hands committed outcomes to whatever executes their side effects.
type Dispatcher interface {
	Dispatch(ctx context.Context, outcome Outcome) error
}

// Service issues and manages reprimands.
type Service struct {
	repo       Repository
	authz      shared.Authorizer
	directory  identity.Directory
	rules      RuleResolver
	dispatcher Dispatcher
	validate   *validator.Validate
	logger     *slog.Logger
	clock      func() time.Time
}

// ServiceConfig collects the service dependencies. Dispatcher may be nil, in
// which case outcomes are returned but nothing acts on them.
type ServiceConfig struct {
	Repo       Repository
	Authz      shared.Authorizer
	Directory  identity.Directory
	Rules      RuleResolver
	Dispatcher Dispatcher
	Logger     *slog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       cfg.Repo,
		authz:      cfg.Authz,
		directory:  cfg.Directory,
		rules:      cfg.Rules,
		dispatcher: cfg.Dispatcher,
		validate:   validator.New(),
		logger:     logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Create issues a reprimand on behalf of p. The recipient's roles and both
// display names are looked up now, the deadline is resolved from the current
// rules, and the case is stored with its audit entry in one transaction.
// Side effects are dispatched after the commit; their failure is only logged.
func (s *Service) Create(ctx context.Context, p *shared.Principal, in CreateInput) (Outcome, error) {
	if err := s.authz.Check(ctx, p, shared.PermReprimandCreate); err != nil {
		return Outcome{}, err
	}
	in = in.normalized()
	if err := s.validate.Struct(in); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}

	issuer, recipient, err := s.lookupParties(ctx, p, in.RecipientID)
	if err != nil {
		return Outcome{}, err
	}

	res, err := s.rules.Resolve(ctx, in.PunishmentType, recipient.Roles())
	if err != nil {
		return Outcome{}, fmt.Errorf("reprimand: resolve deadline: %w", err)
	}

	now := s.clock()
	c := Case{
		IssuerID:       p.ID,
		IssuerName:     issuer.Name(),
		RecipientID:    recipient.ID,
		RecipientName:  recipient.Name(),
		PunishmentType: in.PunishmentType,
		Reason:         in.Reason,
		Evidence:       in.Evidence,
		Task:           res.Task,
		Days:           res.Days,
		Deadline:       res.Deadline(now),
		Status:         StatusActive,
		IssuedAt:       now,
	}
	saved, err := s.repo.Create(ctx, c, func(stored Case) audit.Entry {
		return audit.Entry{
			ActorID:   p.ID,
			ActorName: p.Name(),
			Action:    audit.ActionReprimandCreate,
			Details: map[string]any{
				"reprimandId": stored.ID,
				"recipientId": stored.RecipientID,
				"reason":      stored.Reason,
			},
		}
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("reprimand: create: %w", err)
	}

	outcome := Outcome{Case: saved, Effects: creationEffects()}
	s.dispatch(ctx, outcome)
	return outcome, nil
}

func (s *Service) lookupParties(ctx context.Context, p *shared.Principal, recipientID string) (identity.Member, identity.Member, error) {
	var issuer, recipient identity.Member
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.directory.Member(gctx, p.ID)
		if errors.Is(err, shared.ErrNotFound) {
			// Issuers who have since left the server keep their login name.
			m, err = identity.Member{ID: p.ID, Username: p.Username, DisplayName: p.DisplayName}, nil
		}
		if err != nil {
			return fmt.Errorf("reprimand: look up issuer: %w", err)
		}
		issuer = m
		return nil
	})
	g.Go(func() error {
		m, err := s.directory.Member(gctx, recipientID)
		if err != nil {
			return fmt.Errorf("reprimand: look up recipient %s: %w", recipientID, err)
		}
		if m.ID == "" {
			m.ID = recipientID
		}
		recipient = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return identity.Member{}, identity.Member{}, err
	}
	return issuer, recipient, nil
}

// UpdateStatus moves a case into a new status. Served and revoked cases
// request removal of the reprimand role.
func (s *Service) UpdateStatus(ctx context.Context, p *shared.Principal, id int64, in StatusInput) (Outcome, error) {
	if err := s.authz.Check(ctx, p, shared.PermReprimandUpdateStatus); err != nil {
		return Outcome{}, err
	}
	in.Status = Status(strings.TrimSpace(string(in.Status)))
	if err := s.validate.Struct(in); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}
	entry := audit.Entry{
		ActorID:   p.ID,
		ActorName: p.Name(),
		Action:    audit.ActionReprimandUpdateStatus,
		Details:   map[string]any{"reprimandId": id, "newStatus": string(in.Status)},
	}
	updated, err := s.repo.UpdateStatus(ctx, id, in.Status, entry)
	if err != nil {
		return Outcome{}, fmt.Errorf("reprimand: update status: %w", err)
	}
	outcome := Outcome{Case: updated, Effects: statusEffects(updated.Status)}
	s.dispatch(ctx, outcome)
	return outcome, nil
}

// Delete removes a case and requests removal of the reprimand role.
func (s *Service) Delete(ctx context.Context, p *shared.Principal, id int64) (Outcome, error) {
	if err := s.authz.Check(ctx, p, shared.PermReprimandDelete); err != nil {
		return Outcome{}, err
	}
	entry := audit.Entry{
		ActorID:   p.ID,
		ActorName: p.Name(),
		Action:    audit.ActionReprimandDelete,
		Details:   map[string]any{"reprimandId": id},
	}
	deleted, err := s.repo.Delete(ctx, id, entry)
	if err != nil {
		return Outcome{}, fmt.Errorf("reprimand: delete: %w", err)
	}
	outcome := Outcome{Case: deleted, Effects: deletionEffects()}
	s.dispatch(ctx, outcome)
	return outcome, nil
}

// Get returns one case.
func (s *Service) Get(ctx context.Context, id int64) (Case, error) {
	return s.repo.Get(ctx, id)
}

// List returns cases newest first.
func (s *Service) List(ctx context.Context) ([]Case, error) {
	return s.repo.List(ctx, listLimit)
}

func (s *Service) dispatch(ctx context.Context, outcome Outcome) {
	if s.dispatcher == nil || !outcome.Effects.Due() {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, outcome); err != nil {
		s.logger.Warn("dispatch reprimand side effects",
			slog.Int64("reprimand_id", outcome.Case.ID),
			slog.Any("error", err))
	}
}
