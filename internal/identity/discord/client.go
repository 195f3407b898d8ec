// Package discord implements the identity ports on top of the Discord REST API.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/oauth2"

	"github.com/reprimand-panel/reprimand-panel/internal/identity"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// Client talks to one guild with a bot token.
type Client struct {
	session *discordgo.Session
	guildID string
}

// New constructs a bot client bound to guildID.
func New(botToken, guildID string) (*Client, error) {
	if strings.TrimSpace(botToken) == "" || strings.TrimSpace(guildID) == "" {
		return nil, fmt.Errorf("%w: discord bot token and guild id are required", shared.ErrConfiguration)
	}
	s, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("discord: new session: %w", err)
	}
	s.Client = &http.Client{Timeout: 10 * time.Second}
	s.ShouldRetryOnRateLimit = true
	s.MaxRestRetries = 2
	return &Client{session: s, guildID: guildID}, nil
}

// Member implements identity.Directory.
func (c *Client) Member(ctx context.Context, userID string) (identity.Member, error) {
	m, err := c.session.GuildMember(c.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return identity.Member{}, classify(err, "member "+userID)
	}
	return toMember(m), nil
}

// GuildRoles implements identity.Directory.
func (c *Client) GuildRoles(ctx context.Context) ([]identity.Role, error) {
	roles, err := c.session.GuildRoles(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err, "guild roles")
	}
	out := make([]identity.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, identity.Role{ID: r.ID, Name: r.Name, GuildID: c.guildID, Managed: r.Managed})
	}
	return out, nil
}

// AddRole implements identity.Sink.
func (c *Client) AddRole(ctx context.Context, userID, roleID string) error {
	if err := c.session.GuildMemberRoleAdd(c.guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return classify(err, "add role to "+userID)
	}
	return nil
}

// RemoveRole implements identity.Sink.
func (c *Client) RemoveRole(ctx context.Context, userID, roleID string) error {
	if err := c.session.GuildMemberRoleRemove(c.guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return classify(err, "remove role from "+userID)
	}
	return nil
}

// PostNotice implements identity.Sink.
func (c *Client) PostNotice(ctx context.Context, channelID string, notice identity.Notice) error {
	_, err := c.session.ChannelMessageSendComplex(channelID, toMessage(notice), discordgo.WithContext(ctx))
	if err != nil {
		return classify(err, "post notice")
	}
	return nil
}

// CurrentUser resolves the account an OAuth access token belongs to.
func (c *Client) CurrentUser(ctx context.Context, token *oauth2.Token) (identity.User, error) {
	if token == nil || token.AccessToken == "" {
		return identity.User{}, shared.ErrUnauthenticated
	}
	s, err := discordgo.New("Bearer " + token.AccessToken)
	if err != nil {
		return identity.User{}, fmt.Errorf("discord: new session: %w", err)
	}
	s.Client = c.session.Client
	u, err := s.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return identity.User{}, classify(err, "current user")
	}
	return identity.User{ID: u.ID, Username: u.Username, DisplayName: u.GlobalName}, nil
}

func toMember(m *discordgo.Member) identity.Member {
	out := identity.Member{RoleIDs: append([]string(nil), m.Roles...), DisplayName: m.Nick}
	if m.User != nil {
		out.ID = m.User.ID
		out.Username = m.User.Username
		if out.DisplayName == "" {
			out.DisplayName = m.User.GlobalName
		}
	}
	return out
}

func toMessage(n identity.Notice) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title:     n.Title,
		Color:     n.Color,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for _, f := range n.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if n.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: n.Footer}
	}
	return &discordgo.MessageSend{Content: n.Content, Embeds: []*discordgo.MessageEmbed{embed}}
}

// classify maps Discord failures onto the shared error taxonomy.
func classify(err error, what string) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			switch restErr.Message.Code {
			case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser, discordgo.ErrCodeUnknownRole:
				return fmt.Errorf("%w: discord %s: %s", shared.ErrNotFound, what, restErr.Message.Message)
			}
		}
		if restErr.Response != nil {
			switch status := restErr.Response.StatusCode; {
			case status == http.StatusBadRequest:
				return fmt.Errorf("%w: discord %s: request rejected: %s", shared.ErrValidation, what, restErr.Error())
			case status == http.StatusUnauthorized:
				return fmt.Errorf("%w: discord %s: bot token rejected", shared.ErrConfiguration, what)
			case status == http.StatusForbidden:
				return fmt.Errorf("%w: discord %s: missing bot permission", shared.ErrConfiguration, what)
			case status == http.StatusNotFound:
				return fmt.Errorf("%w: discord %s", shared.ErrNotFound, what)
			case status == http.StatusTooManyRequests || status >= 500:
				return fmt.Errorf("%w: discord %s: status %d", shared.ErrUpstreamUnavailable, what, status)
			}
		}
		return fmt.Errorf("discord %s: %w", what, err)
	}
	if errors.Is(err, discordgo.ErrJSONUnmarshal) {
		return fmt.Errorf("discord %s: %w", what, err)
	}
	return fmt.Errorf("%w: discord %s: %v", shared.ErrUpstreamUnavailable, what, err)
}

var (
	_ identity.Directory = (*Client)(nil)
	_ identity.Sink      = (*Client)(nil)
)
