package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"discadian/internal/county"
	"discadian/internal/platform/config"
	dErrors "discadian/pkg/domain-errors"
)

// Applier reads and changes guild members.
type Applier interface {
	// Member returns the member's current state; ok is false when the account
	// is not in the guild.
	Member(ctx context.Context, guildID, discordID string) (m Member, ok bool, err error)
	Apply(ctx context.Context, discordID string, plan Plan) error
}

// NationDirectory lists the configured nation guilds.
type NationDirectory interface {
	List() []config.Nation
}

// CountyLookup resolves county roles.
type CountyLookup interface {
	Resolve(nationUUIDOrName, townUUID string) county.Resolution
	RoleIDs(nationUUIDOrName string) []config.Snowflake
}

// GuildChange records what happened in one guild.
type GuildChange struct {
	GuildID      string             `json:"guild_id"`
	Nation       string             `json:"nation"`
	Relationship Relationship       `json:"relationship,omitempty"`
	Added        []config.Snowflake `json:"added,omitempty"`
	Removed      []config.Snowflake `json:"removed,omitempty"`
	Nickname     *string            `json:"nickname,omitempty"`
}

// Outcome summarises a sync or revoke across guilds.
type Outcome struct {
	Changes []GuildChange `json:"changes"`
	Failed  int           `json:"failed"`
}

// Mutations counts guilds where something was applied.
func (o Outcome) Mutations() int {
	return len(o.Changes)
}

// Syncer keeps member roles in every nation guild aligned with a player's
// verified state.
type Syncer struct {
	nations  NationDirectory
	counties CountyLookup
	applier  Applier
	logger   *slog.Logger
}

type Option func(*Syncer)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSyncer(nations NationDirectory, counties CountyLookup, applier Applier, opts ...Option) (*Syncer, error) {
	if nations == nil {
		return nil, errors.New("nation directory is required")
	}
	if counties == nil {
		return nil, errors.New("county lookup is required")
	}
	if applier == nil {
		return nil, errors.New("role applier is required")
	}
	s := &Syncer{
		nations:  nations,
		counties: counties,
		applier:  applier,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sync aligns the member in homeGuildID, and in every other nation guild
// where they already hold the verified role, with t.
func (s *Syncer) Sync(ctx context.Context, discordID, homeGuildID string, t Target) (Outcome, error) {
	var (
		out  Outcome
		errs []error
	)
	for _, guild := range s.nations.List() {
		m, ok, err := s.applier.Member(ctx, guild.GuildID.String(), discordID)
		if err != nil {
			out.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", guild.Name, err))
			continue
		}
		if !ok {
			continue
		}
		if guild.GuildID.String() != homeGuildID && !m.holds(guild.VerifiedRoleID) {
			continue
		}

		var countyRole config.Snowflake
		if Classify(guild, t.NationUUID) == Citizen {
			countyRole = s.counties.Resolve(guild.NationUUID, t.TownUUID).RoleID
		}
		rel, plan := PlanSync(guild, m, t, countyRole, s.counties.RoleIDs(guild.NationUUID))
		if err := s.apply(ctx, discordID, guild, plan, rel, &out); err != nil {
			errs = append(errs, err)
		}
	}
	return out, joinFailures(errs)
}

// Revoke strips managed roles and nicknames in every nation guild.
func (s *Syncer) Revoke(ctx context.Context, discordID string) (Outcome, error) {
	var (
		out  Outcome
		errs []error
	)
	for _, guild := range s.nations.List() {
		m, ok, err := s.applier.Member(ctx, guild.GuildID.String(), discordID)
		if err != nil {
			out.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", guild.Name, err))
			continue
		}
		if !ok {
			continue
		}
		plan := PlanDeparture(guild, m, s.counties.RoleIDs(guild.NationUUID))
		if err := s.apply(ctx, discordID, guild, plan, "", &out); err != nil {
			errs = append(errs, err)
		}
	}
	return out, joinFailures(errs)
}

func (s *Syncer) apply(ctx context.Context, discordID string, guild config.Nation, plan Plan, rel Relationship, out *Outcome) error {
	if plan.Empty() {
		return nil
	}
	plan.DiscordID = discordID
	if err := s.applier.Apply(ctx, discordID, plan); err != nil {
		out.Failed++
		s.logger.WarnContext(ctx, "role change failed",
			"guild_id", plan.GuildID,
			"nation", guild.Name,
			"discord_id", discordID,
			"error", err,
		)
		return fmt.Errorf("%s: %w", guild.Name, err)
	}
	out.Changes = append(out.Changes, GuildChange{
		GuildID:      plan.GuildID,
		Nation:       guild.Name,
		Relationship: rel,
		Added:        plan.Add,
		Removed:      plan.Remove,
		Nickname:     plan.Nickname,
	})
	s.logger.InfoContext(ctx, "roles updated",
		"guild_id", plan.GuildID,
		"nation", guild.Name,
		"discord_id", discordID,
		"relationship", rel,
		"added", len(plan.Add),
		"removed", len(plan.Remove),
	)
	return nil
}

func joinFailures(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return dErrors.Wrap(errors.Join(errs...), dErrors.CodeUpstreamFailure, "role update failed")
}
