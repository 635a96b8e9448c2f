// Package reconcile periodically re-checks every verified identity against
// the registry and applies the resulting cache and role changes.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"discadian/internal/county"
	"discadian/internal/identity"
	"discadian/internal/registry"
	"discadian/internal/report"
	"discadian/internal/roles"
	dErrors "discadian/pkg/domain-errors"
	"discadian/pkg/platform/clock"
)

// SystemActor is recorded as the re-verifying admin for changes made by a run.
const SystemActor = "periodic_system"

const unknownTown = "Unknown"

// PlayerLookup fetches players from the registry.
type PlayerLookup interface {
	LookupPlayer(ctx context.Context, nameOrUUID string) registry.Result[registry.Player]
}

// IdentityStore is the verification cache as seen by a run.
type IdentityStore interface {
	List() []identity.Identity
	GetByUUID(uuid string) (identity.Identity, bool)
	Update(ctx context.Context, uuid string, patch identity.Patch) (identity.Identity, error)
	Remove(ctx context.Context, uuid string) (identity.Identity, error)
}

// CountyResolver places towns in counties.
type CountyResolver interface {
	Resolve(nationUUIDOrName, townUUID string) county.Resolution
}

// RoleSyncer aligns guild roles with a player's state.
type RoleSyncer interface {
	Sync(ctx context.Context, discordID, homeGuildID string, t roles.Target) (roles.Outcome, error)
	Revoke(ctx context.Context, discordID string) (roles.Outcome, error)
}

// Eligibility decides which nations may stay verified.
type Eligibility interface {
	IsApproved(nation string) bool
}

// Change is what reconciling one identity did.
type Change string

const (
	ChangeNone     Change = "unchanged"
	ChangeUpdated  Change = "updated"
	ChangeDeparted Change = "departed"
	// ChangeSkipped means the record was removed or re-linked while the
	// run was looking it up.
	ChangeSkipped Change = "skipped"
)

// Reconciler brings one cached identity in line with the registry.
type Reconciler struct {
	players    PlayerLookup
	identities IdentityStore
	counties   CountyResolver
	roles      RoleSyncer
	approved   Eligibility
	reports    report.Sink
	clock      clock.Clock
	logger     *slog.Logger
}

type ReconcilerOption func(*Reconciler)

func WithReconcilerLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReportSink sets where departure reports go.
func WithReportSink(sink report.Sink) ReconcilerOption {
	return func(r *Reconciler) {
		r.reports = sink
	}
}

func WithReconcilerClock(c clock.Clock) ReconcilerOption {
	return func(r *Reconciler) {
		if c != nil {
			r.clock = c
		}
	}
}

func NewReconciler(players PlayerLookup, identities IdentityStore, counties CountyResolver, roleSyncer RoleSyncer, approved Eligibility, opts ...ReconcilerOption) (*Reconciler, error) {
	switch {
	case players == nil:
		return nil, errors.New("player lookup is required")
	case identities == nil:
		return nil, errors.New("identity store is required")
	case counties == nil:
		return nil, errors.New("county resolver is required")
	case roleSyncer == nil:
		return nil, errors.New("role syncer is required")
	case approved == nil:
		return nil, errors.New("eligibility is required")
	}
	r := &Reconciler{
		players:    players,
		identities: identities,
		counties:   counties,
		roles:      roleSyncer,
		approved:   approved,
		clock:      clock.New(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Reconcile re-fetches rec's player and applies what changed. rec may be
// stale: the stored record is re-read after the lookup and the run backs off
// if it is gone or now belongs to another Discord account. A departed player
// loses their roles and then their record, so a failed revoke is retried on
// the next run.
func (r *Reconciler) Reconcile(ctx context.Context, rec identity.Identity) (Change, error) {
	if rec.DiscordID == "" || rec.IGN == "" {
		return ChangeNone, dErrors.New(dErrors.CodeValidation, "incomplete identity record "+rec.PlayerUUID)
	}

	player, err := r.fetch(ctx, rec)
	if err != nil {
		return ChangeNone, err
	}

	stored, ok := r.identities.GetByUUID(rec.PlayerUUID)
	if !ok || stored.DiscordID != rec.DiscordID {
		r.logger.InfoContext(ctx, "identity changed during run, skipping",
			"player_uuid", rec.PlayerUUID,
			"discord_id", rec.DiscordID,
			"still_stored", ok,
		)
		return ChangeSkipped, nil
	}
	rec = stored

	if !player.Nation.Present() {
		return ChangeDeparted, r.depart(ctx, rec, player.Name, "no longer in any nation")
	}
	if !r.approved.IsApproved(player.Nation.Name) {
		return ChangeDeparted, r.depart(ctx, rec, player.Name,
			fmt.Sprintf("moved to unapproved nation %s", player.Nation.Name))
	}

	current := observed(player)
	if player.Town.Present() {
		current.County = r.counties.Resolve(current.NationUUID, current.TownUUID).CountyName
	}
	target := roles.Target{
		IGN:        current.IGN,
		NationName: current.Nation,
		NationUUID: current.NationUUID,
		TownUUID:   current.TownUUID,
		IsMayor:    current.IsMayor,
	}

	changes, patch := diff(rec, current)
	if len(changes) == 0 {
		if _, err := r.roles.Sync(ctx, rec.DiscordID, rec.GuildID, target); err != nil {
			return ChangeNone, err
		}
		return ChangeNone, nil
	}

	r.logger.InfoContext(ctx, "identity changed",
		"player_uuid", rec.PlayerUUID,
		"ign", current.IGN,
		"changes", strings.Join(changes, ", "),
	)
	now := r.clock.Now()
	actor := SystemActor
	patch.LastVerifiedBy = &actor
	patch.LastVerifiedAt = &now
	if _, err := r.identities.Update(ctx, rec.PlayerUUID, patch); err != nil {
		return ChangeNone, err
	}
	if _, err := r.roles.Sync(ctx, rec.DiscordID, rec.GuildID, target); err != nil {
		return ChangeUpdated, err
	}
	return ChangeUpdated, nil
}

// fetch looks the player up by UUID, then by IGN. The IGN fallback only
// counts when it resolves to the same UUID.
func (r *Reconciler) fetch(ctx context.Context, rec identity.Identity) (registry.Player, error) {
	res := r.players.LookupPlayer(ctx, rec.PlayerUUID)
	if res.OK() {
		return res.Value, nil
	}
	byName := r.players.LookupPlayer(ctx, rec.IGN)
	if byName.OK() && strings.EqualFold(byName.Value.UUID, rec.PlayerUUID) {
		return byName.Value, nil
	}
	if byName.OK() {
		return registry.Player{}, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("%s now belongs to a different player", rec.IGN))
	}
	return registry.Player{}, dErrors.Wrap(byName.Err(), dErrors.CodeOf(byName.Err()),
		fmt.Sprintf("could not look up %s", rec.IGN))
}

func (r *Reconciler) depart(ctx context.Context, rec identity.Identity, ign, reason string) error {
	if ign == "" {
		ign = rec.IGN
	}
	if _, err := r.roles.Revoke(ctx, rec.DiscordID); err != nil {
		return err
	}
	if _, err := r.identities.Remove(ctx, rec.PlayerUUID); err != nil {
		return err
	}
	report.Emit(ctx, r.logger, r.reports, report.Event{
		Kind:       report.KindDeparture,
		Nation:     rec.Nation,
		DiscordID:  rec.DiscordID,
		PlayerUUID: rec.PlayerUUID,
		IGN:        ign,
		Message:    fmt.Sprintf("%s %s; roles revoked", ign, reason),
		OccurredAt: r.clock.Now(),
	})
	return nil
}

type snapshot struct {
	IGN        string
	Nation     string
	NationUUID string
	Town       string
	TownUUID   string
	County     string
	IsMayor    bool
}

func observed(p registry.Player) snapshot {
	s := snapshot{
		IGN:     p.Name,
		IsMayor: p.Status.IsMayor,
		Town:    unknownTown,
	}
	if p.Nation != nil {
		s.Nation, s.NationUUID = p.Nation.Name, p.Nation.UUID
	}
	if p.Town.Present() {
		s.Town, s.TownUUID = p.Town.Name, p.Town.UUID
	}
	return s
}

// diff lists the fields of rec that differ from cur, formatted for logs,
// and a patch touching only those fields.
func diff(rec identity.Identity, cur snapshot) ([]string, identity.Patch) {
	var (
		out   []string
		patch identity.Patch
	)
	if rec.IGN != cur.IGN {
		out = append(out, fmt.Sprintf("IGN: %s -> %s", rec.IGN, cur.IGN))
		patch.IGN = &cur.IGN
	}
	if rec.NationUUID != cur.NationUUID {
		out = append(out, fmt.Sprintf("Nation: %s -> %s", rec.Nation, cur.Nation))
		patch.Nation, patch.NationUUID = &cur.Nation, &cur.NationUUID
	}
	if rec.TownUUID != cur.TownUUID {
		out = append(out, fmt.Sprintf("Town: %s -> %s", rec.Town, cur.Town))
		patch.Town, patch.TownUUID = &cur.Town, &cur.TownUUID
	}
	if rec.CountyName() != cur.County {
		out = append(out, fmt.Sprintf("County: %s -> %s", rec.CountyName(), cur.County))
		patch.County = &cur.County
	}
	if rec.IsMayor != cur.IsMayor {
		out = append(out, fmt.Sprintf("Mayor: %t -> %t", rec.IsMayor, cur.IsMayor))
		patch.IsMayor = &cur.IsMayor
	}
	return out, patch
}
