package verification

//go:generate mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks PlayerLookup,LinkVerifier

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"discadian/internal/county"
	"discadian/internal/identity"
	"discadian/internal/links"
	"discadian/internal/registry"
	"discadian/internal/report"
	"discadian/internal/verification/mocks"
	dErrors "discadian/pkg/domain-errors"
)

const (
	notchUUID    = "069a79f4-44e9-4726-a5be-fca90e38aaf5"
	atlantisUUID = "aaaaaaaa-0000-0000-0000-000000000001"
	townUUID     = "bbbbbbbb-0000-0000-0000-000000000001"
)

type countyStub map[string]county.Resolution

func (c countyStub) Resolve(_, town string) county.Resolution {
	if r, ok := c[town]; ok {
		return r
	}
	return county.Resolution{HasCounty: true}
}

type identityStub map[string]identity.Identity

func (i identityStub) GetByDiscordID(id string) (identity.Identity, bool) {
	rec, ok := i[id]
	return rec, ok
}

type approvedList []string

func (a approvedList) IsApproved(nation string) bool {
	for _, n := range a {
		if strings.EqualFold(n, nation) {
			return true
		}
	}
	return false
}

type EngineSuite struct {
	suite.Suite
	ctx        context.Context
	ctrl       *gomock.Controller
	players    *mocks.MockPlayerLookup
	links      *mocks.MockLinkVerifier
	identities identityStub
	reports    *report.Buffer
	engine     *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.players = mocks.NewMockPlayerLookup(s.ctrl)
	s.links = mocks.NewMockLinkVerifier(s.ctrl)
	s.identities = identityStub{}
	s.reports = report.NewBuffer(10)

	counties := countyStub{townUUID: {CountyName: "East", RoleID: "123", HasCounty: true, Configured: true}}
	var err error
	s.engine, err = NewEngine(s.players, s.links, counties, s.identities, approvedList{"Atlantis"},
		WithReportSink(s.reports))
	s.Require().NoError(err)
}

func notch(nation string) registry.Player {
	p := registry.Player{
		Name:   "Notch",
		UUID:   notchUUID,
		Town:   &registry.Ref{Name: "Springfield", UUID: townUUID},
		Status: registry.PlayerStatus{IsMayor: true},
	}
	if nation != "" {
		p.Nation = &registry.Ref{Name: nation, UUID: atlantisUUID}
	}
	return p
}

func (s *EngineSuite) TestSuccess() {
	s.players.EXPECT().LookupPlayer(gomock.Any(), "notch").Return(registry.Success(notch("Atlantis")))
	s.links.EXPECT().VerifyLinks(gomock.Any(), "555", "Notch", notchUUID).Return(links.Verdict{IsFullyLinked: true})

	res := s.engine.Verify(s.ctx, Request{DiscordID: "555", IGN: "notch", TargetNation: "Atlantis"})
	s.True(res.Success)
	s.NoError(res.Err())
	s.Equal("Notch", res.IGN)
	s.Equal("Atlantis", res.Nation)
	s.Equal("Springfield", res.Town)
	s.Equal("East", res.County)
	s.Equal("123", res.CountyRoleID.String())
	s.True(res.HasCounty)
	s.True(res.IsMayor)
	s.True(res.IsLinked)
	s.False(res.IsReverification)
	s.Contains(res.Message, "**Verified** `Notch`")
	s.Contains(res.Message, "County: **East**")
}

func (s *EngineSuite) TestReverificationUsesUpdateTemplate() {
	s.identities["555"] = identity.Identity{DiscordID: "555", PlayerUUID: notchUUID, Nation: "Lemuria", Town: "Old"}
	s.players.EXPECT().LookupPlayer(gomock.Any(), "Notch").Return(registry.Success(notch("Atlantis")))
	s.links.EXPECT().VerifyLinks(gomock.Any(), "555", "Notch", notchUUID).Return(links.Verdict{})

	res := s.engine.Verify(s.ctx, Request{DiscordID: "555", IGN: "Notch"})
	s.True(res.Success)
	s.True(res.IsReverification)
	s.Require().NotNil(res.Previous)
	s.Contains(res.Message, "**Verification updated**")
	s.Contains(res.Message, "Previously: Lemuria (Old)")
	s.Contains(res.Message, "Not linked")
}

func (s *EngineSuite) TestPlayerLookupFailures() {
	s.Run("not found", func() {
		s.players.EXPECT().LookupPlayer(gomock.Any(), "Ghost").Return(registry.NotFound[registry.Player]("Player not found"))
		res := s.engine.Verify(s.ctx, Request{DiscordID: "555", IGN: "Ghost"})
		s.False(res.Success)
		s.Equal(OutcomePlayerNotFound, res.Outcome)
		s.True(dErrors.HasCode(res.Err(), dErrors.CodeNotFound))
	})

	s.Run("upstream error carries raw text", func() {
		s.players.EXPECT().LookupPlayer(gomock.Any(), "Notch").Return(registry.Upstream[registry.Player]("API error 503"))
		res := s.engine.Verify(s.ctx, Request{DiscordID: "555", IGN: "Notch"})
		s.Equal(OutcomeLookupFailed, res.Outcome)
		s.Contains(res.Message, "API error 503")
		s.True(dErrors.HasCode(res.Err(), dErrors.CodeUpstreamFailure))
	})
}

func (s *EngineSuite) TestContradictionIsReported() {
	s.players.EXPECT().LookupPlayer(gomock.Any(), "Notch").Return(registry.Success(notch("Atlantis")))
	s.links.EXPECT().VerifyLinks(gomock.Any(), "111", "Notch", notchUUID).
		Return(links.Verdict{HasContradiction: true, Detail: "Discord is linked to UUID `bbb`"})

	res := s.engine.Verify(s.ctx, Request{DiscordID: "111", IGN: "Notch", TargetNation: "Atlantis"})
	s.Equal(OutcomeContradiction, res.Outcome)
	s.Contains(res.Message, "reported to staff")
	s.True(dErrors.HasCode(res.Err(), dErrors.CodeContradiction))

	reports := s.reports.Recent(0)
	s.Require().Len(reports, 1)
	s.Equal(report.KindContradiction, reports[0].Kind)
	s.Equal("Atlantis", reports[0].Nation)
	s.Contains(reports[0].Message, "bbb")
}

func (s *EngineSuite) TestLinkLookupFailureAbortsWithoutReport() {
	s.players.EXPECT().LookupPlayer(gomock.Any(), "Notch").Return(registry.Success(notch("Atlantis")))
	s.links.EXPECT().VerifyLinks(gomock.Any(), "555", "Notch", notchUUID).
		Return(links.Verdict{HasContradiction: true, LookupFailed: true, Detail: "Error checking Discord link: API error 500"})

	res := s.engine.Verify(s.ctx, Request{DiscordID: "555", IGN: "Notch"})
	s.Equal(OutcomeLinkCheckFailed, res.Outcome)
	s.Equal("Error checking Discord link: API error 500", res.Message)
	s.Zero(s.reports.Len())
}

func (s *EngineSuite) TestIneligible() {
	s.Run("no nation", func() {
		s.players.EXPECT().LookupPlayer(gomock.Any(), "Notch").Return(registry.Success(notch("")))
		s.links.EXPECT().VerifyLinks(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(links.Verdict{})
		res := s.engine.Verify(s.ctx, Request{DiscordID: "555", IGN: "Notch"})
		s.Equal(OutcomeNoNation, res.Outcome)
		s.Contains(res.Message, "not a member of any nation")
	})

	s.Run("unapproved nation", func() {
		s.players.EXPECT().LookupPlayer(gomock.Any(), "Notch").Return(registry.Success(notch("Mu")))
		s.links.EXPECT().VerifyLinks(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(links.Verdict{})
		res := s.engine.Verify(s.ctx, Request{DiscordID: "555", IGN: "Notch"})
		s.Equal(OutcomeUnapproved, res.Outcome)
		s.True(dErrors.HasCode(res.Err(), dErrors.CodeIneligible))
		s.Contains(res.Message, "**Mu**")
	})
}

func (s *EngineSuite) TestUnassignedTownReportsMissingCounty() {
	p := notch("Atlantis")
	p.Town = &registry.Ref{Name: "Shelbyville", UUID: "bbbbbbbb-0000-0000-0000-000000000002"}
	engine, err := NewEngine(s.players, s.links,
		countyStub{p.Town.UUID: {RoleID: "999", Configured: true}},
		s.identities, approvedList{"Atlantis"})
	s.Require().NoError(err)

	s.players.EXPECT().LookupPlayer(gomock.Any(), "Notch").Return(registry.Success(p))
	s.links.EXPECT().VerifyLinks(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(links.Verdict{})

	res := engine.Verify(s.ctx, Request{DiscordID: "555", IGN: "Notch"})
	s.True(res.Success)
	s.False(res.HasCounty)
	s.Empty(res.County)
	s.Equal("999", res.CountyRoleID.String())
	s.Contains(res.Message, "not assigned to a county")
}
