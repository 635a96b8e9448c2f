package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"discadian/internal/platform/config"
)

// DiscordApplier reads and edits guild members through Discord's REST API.
// It never opens a gateway connection. Roles are added and removed one at a
// time so roles granted by other bots are left alone, and discordgo's
// per-route rate limiter paces and retries the calls.
type DiscordApplier struct {
	session *discordgo.Session
	logger  *slog.Logger
}

// DiscordOption configures a DiscordApplier.
type DiscordOption func(*DiscordApplier)

func WithDiscordLogger(logger *slog.Logger) DiscordOption {
	return func(a *DiscordApplier) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewDiscordApplier builds a REST-only session. baseURL replaces the API root
// discordgo was built with, which also selects the API version.
func NewDiscordApplier(baseURL, token string, timeout time.Duration, opts ...DiscordOption) (*DiscordApplier, error) {
	if token == "" {
		return nil, errors.New("discord bot token is required")
	}
	base, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid discord base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.StateEnabled = false
	session.Client = &http.Client{
		Timeout:   timeout,
		Transport: apiRoot{base: base, next: http.DefaultTransport},
	}

	a := &DiscordApplier{
		session: session,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *DiscordApplier) Member(ctx context.Context, guildID, discordID string) (Member, bool, error) {
	dm, err := a.session.GuildMember(guildID, discordID, discordgo.WithContext(ctx))
	if unknownMember(err) {
		return Member{}, false, nil
	}
	if err != nil {
		return Member{}, false, a.failed("read member", guildID, discordID, err)
	}
	m := Member{Nickname: dm.Nick, Roles: make([]config.Snowflake, 0, len(dm.Roles))}
	for _, r := range dm.Roles {
		m.Roles = append(m.Roles, config.Snowflake(r))
	}
	return m, true, nil
}

// Apply removes, then adds, each planned role and finally sets the nickname.
// A member who left the guild part way is not an error.
func (a *DiscordApplier) Apply(ctx context.Context, discordID string, plan Plan) error {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if plan.Reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(url.PathEscape(plan.Reason)))
	}

	for _, role := range plan.Remove {
		err := a.session.GuildMemberRoleRemove(plan.GuildID, discordID, string(role), opts...)
		if stop, failure := a.settle("remove role "+string(role), plan.GuildID, discordID, err); stop {
			return failure
		}
	}
	for _, role := range plan.Add {
		err := a.session.GuildMemberRoleAdd(plan.GuildID, discordID, string(role), opts...)
		if stop, failure := a.settle("add role "+string(role), plan.GuildID, discordID, err); stop {
			return failure
		}
	}
	if plan.Nickname != nil {
		err := a.session.GuildMemberNickname(plan.GuildID, discordID, *plan.Nickname, opts...)
		if _, failure := a.settle("set nickname", plan.GuildID, discordID, err); failure != nil {
			return failure
		}
	}
	return nil
}

// settle reports whether Apply should stop after a call and with what error.
func (a *DiscordApplier) settle(op, guildID, discordID string, err error) (bool, error) {
	switch {
	case err == nil:
		return false, nil
	case unknownMember(err):
		a.logger.Info("member left the guild during role update",
			"guild_id", guildID,
			"discord_id", discordID,
		)
		return true, nil
	default:
		return true, a.failed(op, guildID, discordID, err)
	}
}

func (a *DiscordApplier) failed(op, guildID, discordID string, err error) error {
	a.logger.Warn("discord request failed",
		"op", op,
		"guild_id", guildID,
		"discord_id", discordID,
		"error", err,
	)
	return fmt.Errorf("discord %s: %w", op, err)
}

// unknownMember matches Discord's answer for an account that is not in the
// guild. A bare 404 without an error code is treated the same way.
func unknownMember(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code != 0 {
		return restErr.Message.Code == discordgo.ErrCodeUnknownMember
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// apiRoot sends requests discordgo addresses to its built-in API root to base
// instead.
type apiRoot struct {
	base *url.URL
	next http.RoundTripper
}

func (t apiRoot) RoundTrip(req *http.Request) (*http.Response, error) {
	rest, ok := strings.CutPrefix(req.URL.String(), discordgo.EndpointAPI)
	if !ok {
		return t.next.RoundTrip(req)
	}
	target, err := t.base.Parse(rest)
	if err != nil {
		return nil, fmt.Errorf("rewrite discord url: %w", err)
	}
	out := req.Clone(req.Context())
	out.URL = target
	out.Host = target.Host
	return t.next.RoundTrip(out)
}
