package verification

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"discadian/internal/identity"
	"discadian/internal/platform/config"
	"discadian/internal/roles"
	dErrors "discadian/pkg/domain-errors"
	"discadian/pkg/platform/clock"
)

// Decider is the verification decision.
type Decider interface {
	Verify(ctx context.Context, req Request) Result
}

// IdentityStore persists verified identities.
type IdentityStore interface {
	GetByDiscordID(discordID string) (identity.Identity, bool)
	Add(ctx context.Context, rec identity.Identity) (identity.Identity, error)
	UpdateByDiscordID(ctx context.Context, discordID string, patch identity.Patch) (identity.Identity, error)
}

// RoleSyncer updates guild roles.
type RoleSyncer interface {
	Sync(ctx context.Context, discordID, homeGuildID string, t roles.Target) (roles.Outcome, error)
}

// NationDirectory resolves the nation a guild acts for.
type NationDirectory interface {
	ByName(name string) (config.Nation, bool)
	ByGuild(guildID string) (config.Nation, bool)
}

// Command is a staff request to verify a member.
type Command struct {
	GuildID         string `json:"guild_id"`
	DiscordID       string `json:"discord_id"`
	DiscordUsername string `json:"discord_username"`
	IGN             string `json:"ign"`
	Nation          string `json:"nation,omitempty"`
	AdminID         string `json:"-"`
}

// Receipt is the outcome of a committed verification.
type Receipt struct {
	Result   Result            `json:"result"`
	Identity identity.Identity `json:"identity"`
	Roles    roles.Outcome     `json:"roles"`
	// Partial is set when the identity was stored but a role change failed.
	Partial bool `json:"partial"`
}

// Service verifies members and commits successful verifications to the
// identity store and guild roles.
type Service struct {
	decider    Decider
	identities IdentityStore
	roles      RoleSyncer
	nations    NationDirectory
	clock      clock.Clock
	logger     *slog.Logger
}

type ServiceOption func(*Service)

func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithServiceClock(c clock.Clock) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

func NewService(decider Decider, identities IdentityStore, roleSyncer RoleSyncer, nations NationDirectory, opts ...ServiceOption) (*Service, error) {
	switch {
	case decider == nil:
		return nil, errors.New("decider is required")
	case identities == nil:
		return nil, errors.New("identity store is required")
	case roleSyncer == nil:
		return nil, errors.New("role syncer is required")
	case nations == nil:
		return nil, errors.New("nation directory is required")
	}
	s := &Service{
		decider:    decider,
		identities: identities,
		roles:      roleSyncer,
		nations:    nations,
		clock:      clock.New(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Verify decides cmd and, on success, stores the identity then syncs roles.
// A failed decision returns the Result together with its coded error.
func (s *Service) Verify(ctx context.Context, cmd Command) (Receipt, error) {
	cmd.DiscordID = strings.TrimSpace(cmd.DiscordID)
	cmd.IGN = strings.TrimSpace(cmd.IGN)
	if cmd.DiscordID == "" || cmd.IGN == "" {
		return Receipt{}, dErrors.New(dErrors.CodeValidation, "discord_id and ign are required")
	}

	target := cmd.Nation
	if target == "" {
		if guild, ok := s.nations.ByGuild(cmd.GuildID); ok {
			target = guild.Name
		}
	}
	if target == "" {
		return Receipt{}, dErrors.New(dErrors.CodeBadRequest,
			"Please specify a nation or ensure this guild is configured for a specific nation.")
	}
	if cmd.GuildID == "" {
		if n, ok := s.nations.ByName(target); ok {
			cmd.GuildID = n.GuildID.String()
		}
	}

	res := s.decider.Verify(ctx, Request{DiscordID: cmd.DiscordID, IGN: cmd.IGN, TargetNation: target})
	if !res.Success {
		return Receipt{Result: res}, res.Err()
	}

	stored, err := s.commit(ctx, cmd, res)
	if err != nil {
		return Receipt{Result: res}, err
	}

	receipt := Receipt{Result: res, Identity: stored}
	receipt.Roles, err = s.roles.Sync(ctx, cmd.DiscordID, cmd.GuildID, roles.Target{
		IGN:        res.IGN,
		NationName: res.Nation,
		NationUUID: res.NationUUID,
		TownUUID:   res.TownUUID,
		IsMayor:    res.IsMayor,
	})
	if err != nil {
		receipt.Partial = true
		s.logger.WarnContext(ctx, "verification stored but role sync failed",
			"discord_id", cmd.DiscordID,
			"player_uuid", res.PlayerUUID,
			"error", err,
		)
	}
	return receipt, nil
}

func (s *Service) commit(ctx context.Context, cmd Command, res Result) (identity.Identity, error) {
	if res.IsReverification && res.Previous != nil && res.Previous.PlayerUUID == res.PlayerUUID {
		now := s.clock.Now()
		admin := cmd.AdminID
		patch := identity.Patch{
			IGN:            &res.IGN,
			Nation:         &res.Nation,
			NationUUID:     &res.NationUUID,
			Town:           &res.Town,
			TownUUID:       &res.TownUUID,
			IsMayor:        &res.IsMayor,
			County:         &res.County,
			LastVerifiedBy: &admin,
			LastVerifiedAt: &now,
		}
		if cmd.DiscordUsername != "" {
			patch.DiscordUsername = &cmd.DiscordUsername
		}
		return s.identities.UpdateByDiscordID(ctx, cmd.DiscordID, patch)
	}

	rec := identity.Identity{
		DiscordID:       cmd.DiscordID,
		DiscordUsername: cmd.DiscordUsername,
		IGN:             res.IGN,
		PlayerUUID:      res.PlayerUUID,
		Nation:          res.Nation,
		NationUUID:      res.NationUUID,
		Town:            res.Town,
		TownUUID:        res.TownUUID,
		IsMayor:         res.IsMayor,
		GuildID:         cmd.GuildID,
		VerifiedBy:      cmd.AdminID,
	}
	if res.County != "" {
		c := res.County
		rec.County = &c
	}
	return s.identities.Add(ctx, rec)
}
