// Package verification decides whether a claimed Discord account and player
// name pair can be verified, and applies successful decisions.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"discadian/internal/county"
	"discadian/internal/identity"
	"discadian/internal/links"
	"discadian/internal/registry"
	"discadian/internal/report"
)

// PlayerLookup fetches players from the registry.
type PlayerLookup interface {
	LookupPlayer(ctx context.Context, nameOrUUID string) registry.Result[registry.Player]
}

// LinkVerifier checks the registry's Discord link records.
type LinkVerifier interface {
	VerifyLinks(ctx context.Context, discordID, ign, playerUUID string) links.Verdict
}

// CountyResolver places towns in counties.
type CountyResolver interface {
	Resolve(nationUUIDOrName, townUUID string) county.Resolution
}

// IdentityReader finds existing verifications.
type IdentityReader interface {
	GetByDiscordID(discordID string) (identity.Identity, bool)
}

// Eligibility decides which nations may be verified.
type Eligibility interface {
	IsApproved(nation string) bool
}

// Engine runs the verification decision. It reads from its collaborators
// but never writes to the identity store or guild roles.
type Engine struct {
	players    PlayerLookup
	links      LinkVerifier
	counties   CountyResolver
	identities IdentityReader
	approved   Eligibility
	reports    report.Sink
	tracer     trace.Tracer
	logger     *slog.Logger
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReportSink sets where contradiction reports go.
func WithReportSink(sink report.Sink) Option {
	return func(e *Engine) {
		e.reports = sink
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

func NewEngine(players PlayerLookup, linkVerifier LinkVerifier, counties CountyResolver, identities IdentityReader, approved Eligibility, opts ...Option) (*Engine, error) {
	switch {
	case players == nil:
		return nil, errors.New("player lookup is required")
	case linkVerifier == nil:
		return nil, errors.New("link verifier is required")
	case counties == nil:
		return nil, errors.New("county resolver is required")
	case identities == nil:
		return nil, errors.New("identity reader is required")
	case approved == nil:
		return nil, errors.New("eligibility is required")
	}
	e := &Engine{
		players:    players,
		links:      linkVerifier,
		counties:   counties,
		identities: identities,
		approved:   approved,
		tracer:     otel.Tracer("discadian/verification"),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Verify runs player lookup, link validation, nation checks and county
// resolution, stopping at the first failure. Registry failures are not
// retried here.
func (e *Engine) Verify(ctx context.Context, req Request) Result {
	ctx, span := e.tracer.Start(ctx, "verification.Verify", trace.WithAttributes(
		attribute.String("discord.id", req.DiscordID),
		attribute.String("player.ign", req.IGN),
	))
	defer span.End()

	res := e.verify(ctx, req)
	span.SetAttributes(attribute.String("verification.outcome", string(res.Outcome)))
	if !res.Success {
		span.SetStatus(codes.Error, string(res.Outcome))
	}
	e.logger.InfoContext(ctx, "verification decided",
		"discord_id", req.DiscordID,
		"ign", req.IGN,
		"outcome", res.Outcome,
		"reverification", res.IsReverification,
	)
	return res
}

func (e *Engine) verify(ctx context.Context, req Request) Result {
	res := Result{IGN: req.IGN}
	if prev, ok := e.identities.GetByDiscordID(req.DiscordID); ok {
		res.IsReverification = true
		res.Previous = &prev
	}

	lookup := e.players.LookupPlayer(ctx, req.IGN)
	if !lookup.OK() {
		res.Outcome = OutcomeLookupFailed
		if lookup.Kind == registry.FailureNotFound {
			res.Outcome = OutcomePlayerNotFound
		}
		res.Message = fmt.Sprintf(msgLookupFailed, req.IGN, lookup.Reason)
		return res
	}
	player := lookup.Value
	if player.Name != "" {
		res.IGN = player.Name
	}
	res.PlayerUUID = player.UUID

	verdict := e.links.VerifyLinks(ctx, req.DiscordID, res.IGN, player.UUID)
	switch {
	case verdict.LookupFailed:
		res.Outcome = OutcomeLinkCheckFailed
		res.Message = verdict.Detail
		return res
	case verdict.HasContradiction:
		res.Outcome = OutcomeContradiction
		res.Message = msgContradiction
		res.ContradictionDetail = verdict.Detail
		e.report(ctx, req, res)
		return res
	}
	res.IsLinked = verdict.IsFullyLinked

	if !player.Nation.Present() {
		res.Outcome = OutcomeNoNation
		res.Message = fmt.Sprintf(msgNoNation, res.IGN)
		return res
	}
	res.Nation = player.Nation.Name
	res.NationUUID = player.Nation.UUID
	if !e.approved.IsApproved(res.Nation) {
		res.Outcome = OutcomeUnapproved
		res.Message = fmt.Sprintf(msgUnapproved, res.IGN, res.Nation)
		return res
	}

	res.Town = "Unknown"
	res.HasCounty = true
	if player.Town.Present() {
		res.Town = player.Town.Name
		res.TownUUID = player.Town.UUID
		placed := e.counties.Resolve(res.NationUUID, res.TownUUID)
		res.County = placed.CountyName
		res.CountyRoleID = placed.RoleID
		res.HasCounty = placed.HasCounty
	}
	res.IsMayor = player.Status.IsMayor

	res.Success = true
	res.Outcome = OutcomeVerified
	res.Message = successMessage(res)
	return res
}

func (e *Engine) report(ctx context.Context, req Request, res Result) {
	report.Emit(ctx, e.logger, e.reports, report.Event{
		Kind:       report.KindContradiction,
		Nation:     req.TargetNation,
		DiscordID:  req.DiscordID,
		PlayerUUID: res.PlayerUUID,
		IGN:        res.IGN,
		Message:    res.ContradictionDetail,
		OccurredAt: time.Now(),
	})
}
