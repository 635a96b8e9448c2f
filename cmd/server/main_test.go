package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discadian/internal/identity"
	jwttoken "discadian/internal/jwt_token"
	"discadian/internal/platform/config"
	"discadian/internal/platform/logger"
	platformredis "discadian/internal/platform/redis"
)

const testNations = `{
  "nations": {
    "Atlantis": {
      "nation_uuid": "aaaaaaaa-0000-0000-0000-000000000001",
      "guild_id": "1000",
      "verified_role_id": "2000"
    }
  },
  "approved_nations": ["Atlantis"]
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	nations := filepath.Join(dir, "nations.json")
	require.NoError(t, os.WriteFile(nations, []byte(testNations), 0o644))
	t.Setenv("DISCADIAN_DATA_DIR", dir)
	t.Setenv("DISCADIAN_NATIONS_FILE", nations)
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestTokenCommandIssuesAdminToken(t *testing.T) {
	testEnv(t)

	out, err := execute(t, "token", "424242", "--name", "Staff")
	require.NoError(t, err)

	claims, err := jwttoken.NewJWTService("test-signing-key", "discadian").ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "424242", claims.AdminID)
	assert.Equal(t, "Staff", claims.Name)
}

func TestTokenCommandRequiresAdminID(t *testing.T) {
	testEnv(t)

	_, err := execute(t, "token")
	assert.Error(t, err)
}

func TestExportWritesHeaderForEmptyCache(t *testing.T) {
	testEnv(t)

	out, err := execute(t, "export")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, identity.ExportHeader, rows[0])
}

func TestExportToFile(t *testing.T) {
	dir := testEnv(t)
	target := filepath.Join(dir, "verified_users.csv")

	_, err := execute(t, "export", "-o", target)
	require.NoError(t, err)

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "player_uuid,discord_id"))
}

func TestCleanupRejectsNonPositiveDays(t *testing.T) {
	testEnv(t)

	_, err := execute(t, "cleanup", "--days", "0")
	assert.ErrorContains(t, err, "--days must be positive")
}

func TestReconcileCompletesOnEmptyCache(t *testing.T) {
	dir := testEnv(t)

	out, err := execute(t, "reconcile")
	require.NoError(t, err)

	var summary struct {
		TotalUsers int `json:"total_users"`
		TotalRuns  int `json:"total_runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 0, summary.TotalUsers)
	assert.Equal(t, 1, summary.TotalRuns)
	assert.FileExists(t, filepath.Join(dir, "reconcile_state.json"))
}

func TestDataDirFlagOverridesEnvironment(t *testing.T) {
	testEnv(t)
	other := t.TempDir()

	_, err := execute(t, "--data-dir", other, "rebuild-indexes")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(other, "verification_cache.json"))
}

func TestHealthReportsRedisOutage(t *testing.T) {
	log = logger.NewWithWriter(&bytes.Buffer{}, "error", "json")
	mini := miniredis.RunT(t)
	rc, err := platformredis.New(context.Background(), config.Redis{URL: "redis://" + mini.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	a := &app{redis: rc}
	rec := httptest.NewRecorder()
	a.health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	mini.SetError("ERR down")
	rec = httptest.NewRecorder()
	a.health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestHealthWithoutRedis(t *testing.T) {
	rec := httptest.NewRecorder()
	(&app{}).health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
