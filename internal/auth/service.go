package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/reprimand-panel/reprimand-panel/internal/identity"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// Discord OAuth2 endpoints.
var discordEndpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// NewOAuthConfig returns the code-flow configuration for the panel's Discord application.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     discordEndpoint,
		Scopes:       []string{"identify", "guilds"},
	}
}

// CodeExchanger is the part of *oauth2.Config the login flow needs.
type CodeExchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// UserFetcher resolves the account behind an access token.
type UserFetcher interface {
	CurrentUser(ctx context.Context, token *oauth2.Token) (identity.User, error)
}

// Service wraps the login flow.
type Service struct {
	oauth     CodeExchanger
	users     UserFetcher
	directory identity.Directory
	repo      Repository
}

// NewService constructs a new Service. repo may be nil.
func NewService(oauth CodeExchanger, users UserFetcher, directory identity.Directory, repo Repository) *Service {
	return &Service{oauth: oauth, users: users, directory: directory, repo: repo}
}

// NewState returns an unguessable OAuth state value.
func NewState() string {
	return uuid.NewString()
}

// LoginURL returns the provider consent URL for state.
func (s *Service) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// Complete exchanges an authorization code for a principal carrying the
// member's current guild roles. Accounts that are not guild members get an
// empty role set, which every permission check denies.
func (s *Service) Complete(ctx context.Context, code string) (*shared.Principal, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code missing", shared.ErrUnauthenticated)
	}
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %v", shared.ErrUnauthenticated, err)
	}
	user, err := s.users.CurrentUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("auth: current user: %w", err)
	}
	principal := &shared.Principal{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		RoleIDs:     []string{},
	}
	member, err := s.directory.Member(ctx, user.ID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return principal, nil
	case err != nil:
		return nil, fmt.Errorf("auth: guild member: %w", err)
	}
	principal.RoleIDs = member.Roles().IDs()
	if member.DisplayName != "" {
		principal.DisplayName = member.DisplayName
	}
	return principal, nil
}

// RegisterSession persists the session metadata.
func (s *Service) RegisterSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes the session metadata.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.DeleteSession(ctx, id)
}
