// Package links checks that a Discord account and a Minecraft account claim
// each other in the registry's link table before a verification proceeds.
package links

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"discadian/internal/registry"
)

// Checker fetches link rows for a Discord ID and player UUID.
type Checker interface {
	CheckLink(ctx context.Context, discordID, playerUUID string) registry.Result[[]registry.DiscordLink]
}

// Verdict is the outcome of a link check.
type Verdict struct {
	// HasContradiction is true for link conflicts and for lookup failures.
	HasContradiction bool
	// LookupFailed marks a contradiction-shaped verdict caused by the
	// registry being unreachable rather than an actual conflict.
	LookupFailed bool
	// Detail is the staff-facing report text (or the lookup error text).
	Detail string
	// IsFullyLinked is true when both sides point at each other.
	IsFullyLinked bool
}

// Validator runs link checks against the registry.
type Validator struct {
	checker Checker
	logger  *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a Validator.
func New(checker Checker, opts ...Option) (*Validator, error) {
	if checker == nil {
		return nil, errors.New("link checker is required")
	}
	v := &Validator{
		checker: checker,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// VerifyLinks fetches link rows and evaluates them. A registry failure yields
// a terminal verdict with LookupFailed set.
func (v *Validator) VerifyLinks(ctx context.Context, discordID, ign, playerUUID string) Verdict {
	res := v.checker.CheckLink(ctx, discordID, playerUUID)
	if !res.OK() {
		v.logger.WarnContext(ctx, "discord link lookup failed",
			"discord_id", discordID,
			"player_uuid", playerUUID,
			"reason", res.Reason,
		)
		return Verdict{
			HasContradiction: true,
			LookupFailed:     true,
			Detail:           "Error checking Discord link: " + res.Reason,
		}
	}

	verdict := Evaluate(res.Value, discordID, ign, playerUUID)
	if verdict.HasContradiction {
		v.logger.InfoContext(ctx, "link contradiction detected",
			"discord_id", discordID,
			"ign", ign,
			"player_uuid", playerUUID,
		)
	}
	return verdict
}

// Evaluate applies the contradiction rules to rows already fetched. Rows with
// a null id or uuid are ignored.
func Evaluate(rows []registry.DiscordLink, discordID, ign, playerUUID string) Verdict {
	var discordLink, minecraftLink *registry.DiscordLink
	for i := range rows {
		row := &rows[i]
		if !row.Valid() {
			continue
		}
		if *row.ID == discordID && discordLink == nil {
			discordLink = row
		}
		if *row.UUID == playerUUID {
			// A row claiming both sides wins over a stray row for the UUID.
			if minecraftLink == nil || *row.ID == discordID {
				minecraftLink = row
			}
		}
	}

	header := fmt.Sprintf("**Link Contradiction Detected**\nDiscord: <@%s>\nAttempted IGN: `%s`\n", discordID, ign)

	switch {
	case discordLink != nil && minecraftLink != nil:
		if *discordLink.UUID != playerUUID {
			return contradiction(header + fmt.Sprintf("Issue: Discord is linked to UUID `%s`, but `%s` has UUID `%s`",
				*discordLink.UUID, ign, playerUUID))
		}
		if *minecraftLink.ID != discordID {
			return contradiction(header + fmt.Sprintf("Issue: IGN `%s` is linked to Discord ID `%s`, not the provided Discord account",
				ign, *minecraftLink.ID))
		}
		return Verdict{IsFullyLinked: true}
	case discordLink != nil:
		return contradiction(header + fmt.Sprintf("Issue: Discord is linked to UUID `%s`, not `%s`",
			*discordLink.UUID, ign))
	case minecraftLink != nil:
		return contradiction(header + fmt.Sprintf("Issue: IGN `%s` is linked to Discord ID `%s`, not the provided Discord account",
			ign, *minecraftLink.ID))
	default:
		return Verdict{}
	}
}

func contradiction(detail string) Verdict {
	return Verdict{HasContradiction: true, Detail: detail}
}
