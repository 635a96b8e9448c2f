package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNations = `{
  "nations": {
    "Atlantis": {
      "nation_uuid": "nation-1",
      "guild_id": 123,
      "verified_role_id": "900",
      "mayor_role_id": 901,
      "allied_role_id": "902",
      "foreigner_role_id": "903",
      "revocation_roles": [904],
      "allied_nations": ["nation-2"]
    },
    "Lemuria": {
      "nation_uuid": "nation-2",
      "guild_id": "456",
      "verified_role_id": "800",
      "nickname_format": "{ign} | {nation}"
    }
  },
  "approved_nations": ["Atlantis", "Lemuria", "Mu"],
  "periodic_verification": {"enabled": true, "interval": "12h", "user_delay": 1}
}`

func TestParseNations(t *testing.T) {
	n, err := ParseNations([]byte(sampleNations))
	require.NoError(t, err)

	atlantis, ok := n.ByName("atlantis")
	require.True(t, ok)
	assert.Equal(t, "Atlantis", atlantis.Name)
	assert.Equal(t, Snowflake("123"), atlantis.GuildID)
	assert.Equal(t, Snowflake("901"), atlantis.MayorRoleID)
	assert.Equal(t, []Snowflake{"904"}, atlantis.RevocationRoles)
	assert.Equal(t, DefaultNicknameFormat, atlantis.NicknameFormat)
	assert.True(t, atlantis.IsAllied("nation-2"))
	assert.False(t, atlantis.IsAllied("nation-3"))

	lemuria, ok := n.ByGuild("456")
	require.True(t, ok)
	assert.Equal(t, "{ign} | {nation}", lemuria.NicknameFormat)

	assert.True(t, n.IsApproved("mu"))
	assert.False(t, n.IsApproved("Atlantica"))

	r := n.Reconcile
	assert.True(t, r.Enabled)
	assert.Equal(t, 12*time.Hour, r.Interval.Std())
	assert.Equal(t, time.Second, r.UserDelay.Std())
	assert.Equal(t, 10, r.BatchSize)
	assert.Equal(t, 30*time.Second, r.BatchDelay.Std())
	assert.Equal(t, time.Hour, r.CheckEvery.Std())

	names := []string{}
	for _, nation := range n.List() {
		names = append(names, nation.Name)
	}
	assert.Equal(t, []string{"Atlantis", "Lemuria"}, names)
}

func TestParseNationsValidation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "missing nation uuid",
			doc:     `{"nations": {"A": {"guild_id": "1", "verified_role_id": "2"}}}`,
			wantErr: "nation_uuid is required",
		},
		{
			name:    "duplicate guild",
			doc:     `{"nations": {"A": {"nation_uuid": "a", "guild_id": "1", "verified_role_id": "2"}, "B": {"nation_uuid": "b", "guild_id": "1", "verified_role_id": "3"}}}`,
			wantErr: "already used by",
		},
		{
			name:    "nickname without ign",
			doc:     `{"nations": {"A": {"nation_uuid": "a", "guild_id": "1", "verified_role_id": "2", "nickname_format": "{nation}"}}}`,
			wantErr: "nickname_format must contain {ign}",
		},
		{
			name:    "unknown field",
			doc:     `{"nations": {}, "county_systm": {}}`,
			wantErr: "unknown field",
		},
		{
			name:    "non numeric snowflake",
			doc:     `{"nations": {"A": {"nation_uuid": "a", "guild_id": 1.5, "verified_role_id": "2"}}}`,
			wantErr: "invalid snowflake",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNations([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApprovedDefaultsToConfiguredNations(t *testing.T) {
	n, err := ParseNations([]byte(`{"nations": {"B": {"nation_uuid": "b", "guild_id": "2", "verified_role_id": "3"}, "A": {"nation_uuid": "a", "guild_id": "1", "verified_role_id": "2"}}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, n.ApprovedNations)
}

func TestLoadNationsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nations.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleNations), 0o644))
	n, err := LoadNations(path)
	require.NoError(t, err)
	assert.Len(t, n.Nations, 2)

	_, err = LoadNations(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("DISCADIAN_ADDR", ":9999")
	t.Setenv("REGISTRY_TIMEOUT", "5s")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, 175, cfg.Registry.PauseAt)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "discadian.reports", cfg.Kafka.Topic)
	assert.Equal(t, "./discadian/verification_cache.json", cfg.VerificationCachePath())
}
