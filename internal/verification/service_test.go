package verification_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"discadian/internal/county"
	"discadian/internal/identity"
	"discadian/internal/links"
	"discadian/internal/platform/config"
	"discadian/internal/registry"
	"discadian/internal/registry/metrics"
	"discadian/internal/report"
	"discadian/internal/roles"
	"discadian/internal/verification"
	dErrors "discadian/pkg/domain-errors"
	"discadian/pkg/platform/filestore"
)

const (
	notchUUID       = "069a79f4-44e9-4726-a5be-fca90e38aaf5"
	atlantisUUID    = "aaaaaaaa-0000-0000-0000-000000000001"
	springfieldUUID = "bbbbbbbb-0000-0000-0000-000000000001"
)

const nationsDoc = `{
  "nations": {
    "Atlantis": {
      "nation_uuid": "aaaaaaaa-0000-0000-0000-000000000001",
      "guild_id": "1000",
      "verified_role_id": "2000",
      "mayor_role_id": "2001",
      "allied_role_id": "2002",
      "foreigner_role_id": "2003"
    }
  },
  "approved_nations": ["Atlantis"]
}`

type registryStub struct {
	players map[string]registry.Player
	towns   map[string]registry.Town
	links   []registry.DiscordLink
}

func (f *registryStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query json.RawMessage `json:"query"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/players":
		var ids []string
		_ = json.Unmarshal(body.Query, &ids)
		out := []registry.Player{}
		for _, id := range ids {
			if p, ok := f.players[strings.ToLower(id)]; ok {
				out = append(out, p)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	case "/towns":
		var ids []string
		_ = json.Unmarshal(body.Query, &ids)
		out := []registry.Town{}
		for _, id := range ids {
			if t, ok := f.towns[strings.ToLower(id)]; ok {
				out = append(out, t)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	case "/discord":
		_ = json.NewEncoder(w).Encode(f.links)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	stub       *registryStub
	identities *identity.Store
	applier    *roles.MemoryApplier
	reports    *report.Buffer
	service    *verification.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()

	springfield := registry.Town{
		Name:   "Springfield",
		UUID:   springfieldUUID,
		Nation: &registry.Ref{Name: "Atlantis", UUID: atlantisUUID},
	}
	notch := registry.Player{
		Name:   "Notch",
		UUID:   notchUUID,
		Town:   &registry.Ref{Name: "Springfield", UUID: springfieldUUID},
		Nation: &registry.Ref{Name: "Atlantis", UUID: atlantisUUID},
	}
	s.stub = &registryStub{
		players: map[string]registry.Player{"notch": notch, notchUUID: notch},
		towns:   map[string]registry.Town{"springfield": springfield, springfieldUUID: springfield},
		links:   []registry.DiscordLink{},
	}
	server := httptest.NewServer(s.stub)
	s.T().Cleanup(server.Close)

	client, err := registry.New(server.URL,
		registry.WithBudget(registry.NewBudget(registry.WithMinSpacing(0))),
		registry.WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
	s.Require().NoError(err)

	nations, err := config.ParseNations([]byte(nationsDoc))
	s.Require().NoError(err)

	dir := s.T().TempDir()
	s.identities, err = identity.Open(filestore.New(filepath.Join(dir, "verification_cache.json")))
	s.Require().NoError(err)

	counties, err := county.New(filestore.New(filepath.Join(dir, "counties.json")), client,
		county.WithIdentityUpdater(s.identities))
	s.Require().NoError(err)
	s.Require().NoError(counties.EnableNation("Atlantis", atlantisUUID))
	s.Require().NoError(counties.CreateCounty("Atlantis", "East", "123"))
	_, err = counties.Assign(s.ctx, "Atlantis", "East", "Springfield")
	s.Require().NoError(err)

	validator, err := links.New(client)
	s.Require().NoError(err)

	s.reports = report.NewBuffer(10)
	engine, err := verification.NewEngine(client, validator, counties, s.identities, nations,
		verification.WithReportSink(s.reports))
	s.Require().NoError(err)

	s.applier = roles.NewMemoryApplier()
	s.applier.Join("1000", "555", roles.Member{})
	syncer, err := roles.NewSyncer(nations, counties, s.applier)
	s.Require().NoError(err)

	s.service, err = verification.NewService(engine, s.identities, syncer, nations)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestVerifyStoresIdentityAndGrantsRoles() {
	receipt, err := s.service.Verify(s.ctx, verification.Command{
		GuildID:   "1000",
		DiscordID: "555",
		IGN:       "Notch",
		AdminID:   "staff-1",
	})
	s.Require().NoError(err)
	s.True(receipt.Result.Success)
	s.False(receipt.Partial)
	s.Equal("East", receipt.Result.County)

	stored, ok := s.identities.GetByDiscordID("555")
	s.Require().True(ok)
	s.Equal(notchUUID, stored.PlayerUUID)
	s.Equal("Atlantis", stored.Nation)
	s.Equal("Springfield", stored.Town)
	s.Equal("East", stored.CountyName())
	s.Equal("staff-1", stored.VerifiedBy)

	m, ok, err := s.applier.Member(s.ctx, "1000", "555")
	s.Require().NoError(err)
	s.Require().True(ok)
	s.ElementsMatch([]config.Snowflake{"2000", "123"}, m.Roles)
	s.Equal("Notch (Atlantis)", m.Nickname)
}

func (s *ServiceSuite) TestReverificationUpdatesInPlace() {
	_, err := s.service.Verify(s.ctx, verification.Command{GuildID: "1000", DiscordID: "555", IGN: "Notch"})
	s.Require().NoError(err)

	receipt, err := s.service.Verify(s.ctx, verification.Command{GuildID: "1000", DiscordID: "555", IGN: "notch", AdminID: "staff-2"})
	s.Require().NoError(err)
	s.True(receipt.Result.IsReverification)
	s.Contains(receipt.Result.Message, "Verification updated")

	stored, ok := s.identities.GetByDiscordID("555")
	s.Require().True(ok)
	s.Require().NotNil(stored.LastVerifiedBy)
	s.Equal("staff-2", *stored.LastVerifiedBy)
	s.Len(s.identities.List(), 1)
}

func (s *ServiceSuite) TestContradictionStoresNothing() {
	other := "bbbbbbbb-aaaa-0000-0000-000000000009"
	id := "555"
	s.stub.links = []registry.DiscordLink{{ID: &id, UUID: &other}}

	receipt, err := s.service.Verify(s.ctx, verification.Command{GuildID: "1000", DiscordID: "555", IGN: "Notch"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeContradiction))
	s.Equal(verification.OutcomeContradiction, receipt.Result.Outcome)

	_, ok := s.identities.GetByDiscordID("555")
	s.False(ok)
	s.Empty(s.applier.Applied())
	s.Equal(1, s.reports.Len())
}

func (s *ServiceSuite) TestRequiresTargetNation() {
	_, err := s.service.Verify(s.ctx, verification.Command{GuildID: "9999", DiscordID: "555", IGN: "Notch"})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.service.Verify(s.ctx, verification.Command{GuildID: "1000", IGN: "Notch"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
