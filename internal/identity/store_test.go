package identity

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "discadian/pkg/domain-errors"
	"discadian/pkg/platform/clock"
	"discadian/pkg/platform/filestore"
)

const (
	uuidNotch = "069a79f4-44e9-4726-a5be-fca90e38aaf5"
	uuidJeb   = "853c80ef-3c37-49fd-aa49-938b674adae6"
)

type memoryPersister struct {
	saved   []byte
	saves   int
	failErr error
}

func (m *memoryPersister) Load(v any) (bool, error) {
	if m.saved == nil {
		return false, nil
	}
	return true, json.Unmarshal(m.saved, v)
}

func (m *memoryPersister) Save(v any) error {
	if m.failErr != nil {
		return m.failErr
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.saved = raw
	m.saves++
	return nil
}

func str(s string) *string { return &s }

type StoreSuite struct {
	suite.Suite
	ctx       context.Context
	clock     *clock.MockClock
	persister *memoryPersister
	store     *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewMock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	s.persister = &memoryPersister{}
	var err error
	s.store, err = Open(s.persister, WithClock(s.clock))
	s.Require().NoError(err)
}

func (s *StoreSuite) notch() Identity {
	return Identity{
		DiscordID:       "555",
		DiscordUsername: "notch#0001",
		IGN:             "Notch",
		PlayerUUID:      uuidNotch,
		Nation:          "Atlantis",
		NationUUID:      "nation-1",
		Town:            "Springfield",
		TownUUID:        "town-1",
		IsMayor:         true,
		County:          str("East"),
		GuildID:         "123",
		VerifiedBy:      "admin-1",
	}
}

func (s *StoreSuite) TestAdd() {
	s.Run("rejects empty uuid", func() {
		rec := s.notch()
		rec.PlayerUUID = " "
		_, err := s.store.Add(s.ctx, rec)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(0, s.persister.saves)
	})

	s.Run("stores record and indexes", func() {
		got, err := s.store.Add(s.ctx, s.notch())
		s.Require().NoError(err)
		s.Equal(s.clock.Now(), got.VerifiedAt.Time)
		s.Equal(1, s.persister.saves)

		byUUID, ok := s.store.GetByUUID(uuidNotch)
		s.True(ok)
		s.Equal("Notch", byUUID.IGN)

		byDiscord, ok := s.store.GetByDiscordID("555")
		s.True(ok)
		s.Equal(uuidNotch, byDiscord.PlayerUUID)

		byIGN, ok := s.store.GetByIGN("NOTCH")
		s.True(ok)
		s.Equal(uuidNotch, byIGN.PlayerUUID)
	})

	s.Run("same discord account with new player supersedes old record", func() {
		rec := s.notch()
		rec.PlayerUUID = uuidJeb
		rec.IGN = "jeb_"
		_, err := s.store.Add(s.ctx, rec)
		s.Require().NoError(err)

		_, ok := s.store.GetByUUID(uuidNotch)
		s.False(ok)
		_, ok = s.store.GetByIGN("Notch")
		s.False(ok)
		got, ok := s.store.GetByDiscordID("555")
		s.True(ok)
		s.Equal(uuidJeb, got.PlayerUUID)
	})
}

func (s *StoreSuite) TestUpdate() {
	_, err := s.store.Add(s.ctx, s.notch())
	s.Require().NoError(err)
	other := s.notch()
	other.PlayerUUID = uuidJeb
	other.DiscordID = "777"
	other.IGN = "jeb_"
	_, err = s.store.Add(s.ctx, other)
	s.Require().NoError(err)

	s.Run("merges fields and refreshes last updated", func() {
		s.clock.Advance(time.Hour)
		got, err := s.store.Update(s.ctx, uuidNotch, Patch{Town: str("Shelbyville"), IsMayor: new(bool)})
		s.Require().NoError(err)
		s.Equal("Shelbyville", got.Town)
		s.False(got.IsMayor)
		s.Equal(s.clock.Now(), got.LastUpdated.Time)
		s.True(got.VerifiedAt.Before(got.LastUpdated.Time))
	})

	s.Run("ign change repairs the index without touching other entries", func() {
		_, err := s.store.Update(s.ctx, uuidNotch, Patch{IGN: str("Notch2")})
		s.Require().NoError(err)

		_, ok := s.store.GetByIGN("Notch")
		s.False(ok)
		got, ok := s.store.GetByIGN("notch2")
		s.True(ok)
		s.Equal(uuidNotch, got.PlayerUUID)

		jeb, ok := s.store.GetByIGN("jeb_")
		s.True(ok)
		s.Equal(uuidJeb, jeb.PlayerUUID)
	})

	s.Run("discord change repairs both discord indexes", func() {
		_, err := s.store.Update(s.ctx, uuidNotch, Patch{DiscordID: str("556")})
		s.Require().NoError(err)
		_, ok := s.store.GetByDiscordID("555")
		s.False(ok)
		got, ok := s.store.GetByDiscordID("556")
		s.True(ok)
		s.Equal(uuidNotch, got.PlayerUUID)
		s.Equal(2, s.store.Stats().MappingTables.DiscordToUUID)
	})

	s.Run("empty county clears it", func() {
		got, err := s.store.Update(s.ctx, uuidNotch, Patch{County: str("")})
		s.Require().NoError(err)
		s.Nil(got.County)
	})

	s.Run("missing record is not found", func() {
		_, err := s.store.Update(s.ctx, "nope", Patch{Town: str("x")})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *StoreSuite) TestConcurrentWritesAreNotLost() {
	path := filepath.Join(s.T().TempDir(), "verified_users.json")
	store, err := Open(filestore.New(path), WithClock(s.clock))
	s.Require().NoError(err)
	_, err = store.Add(s.ctx, s.notch())
	s.Require().NoError(err)

	const writers = 20
	errs := make(chan error, 3*writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := store.Update(s.ctx, uuidNotch, Patch{IsMayor: new(bool)})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := store.SetCountyForTowns(s.ctx, "nation-1", []string{"town-1"}, "West")
			errs <- err
		}()
		go func() {
			defer wg.Done()
			rec := s.notch()
			rec.PlayerUUID = fmt.Sprintf("00000000-0000-0000-0000-%012d", i)
			rec.DiscordID = fmt.Sprintf("9%02d", i)
			rec.IGN = fmt.Sprintf("player%02d", i)
			rec.TownUUID = "town-2"
			_, err := store.Add(s.ctx, rec)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	check := func(st *Store) {
		got, ok := st.GetByUUID(uuidNotch)
		s.Require().True(ok)
		s.False(got.IsMayor)
		s.Equal("West", got.CountyName())
		s.Len(st.List(), writers+1)
		s.Equal(writers+1, st.Stats().MappingTables.DiscordToUUID)
	}
	check(store)

	reopened, err := Open(filestore.New(path), WithClock(s.clock))
	s.Require().NoError(err)
	check(reopened)
}

func (s *StoreSuite) TestPersistFailureRevertsMemory() {
	_, err := s.store.Add(s.ctx, s.notch())
	s.Require().NoError(err)

	s.persister.failErr = errors.New("disk full")

	_, err = s.store.Update(s.ctx, uuidNotch, Patch{IGN: str("Renamed")})
	s.True(dErrors.HasCode(err, dErrors.CodePersistenceFailure))

	got, ok := s.store.GetByIGN("Notch")
	s.True(ok)
	s.Equal("Notch", got.IGN)
	_, ok = s.store.GetByIGN("Renamed")
	s.False(ok)

	_, err = s.store.Remove(s.ctx, uuidNotch)
	s.True(dErrors.HasCode(err, dErrors.CodePersistenceFailure))
	_, ok = s.store.GetByUUID(uuidNotch)
	s.True(ok)
}

func (s *StoreSuite) TestRemove() {
	_, err := s.store.Add(s.ctx, s.notch())
	s.Require().NoError(err)

	removed, err := s.store.RemoveByDiscordID(s.ctx, "555")
	s.Require().NoError(err)
	s.Equal(uuidNotch, removed.PlayerUUID)

	st := s.store.Stats()
	s.Equal(0, st.TotalVerifiedUsers)
	s.Equal(IndexSizes{}, st.MappingTables)

	_, err = s.store.Remove(s.ctx, uuidNotch)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *StoreSuite) TestListsAndStats() {
	_, err := s.store.Add(s.ctx, s.notch())
	s.Require().NoError(err)
	jeb := s.notch()
	jeb.PlayerUUID, jeb.DiscordID, jeb.IGN, jeb.IsMayor, jeb.County = uuidJeb, "777", "jeb_", false, nil
	jeb.TownUUID = "town-2"
	_, err = s.store.Add(s.ctx, jeb)
	s.Require().NoError(err)

	s.Len(s.store.ListByNation("atlantis"), 2)
	s.Len(s.store.ListByNationUUID("nation-1"), 2)
	s.Len(s.store.ListByCounty("Atlantis", "east"), 1)
	s.Len(s.store.ListByTown("town-2"), 1)
	mayors := s.store.ListMayors()
	s.Require().Len(mayors, 1)
	s.Equal("Notch", mayors[0].IGN)

	st := s.store.Stats()
	s.Equal(2, st.TotalVerifiedUsers)
	s.Equal(1, st.TotalMayors)
	s.Equal(map[string]int{"Atlantis": 2}, st.Nations)
	s.Equal(map[string]int{"Atlantis:East": 1}, st.Counties)
	s.Equal(CurrentVersion, st.CacheVersion)
}

func (s *StoreSuite) TestCountyPropagation() {
	_, err := s.store.Add(s.ctx, s.notch())
	s.Require().NoError(err)

	n, err := s.store.SetCountyForTowns(s.ctx, "nation-1", []string{"town-1"}, "West")
	s.Require().NoError(err)
	s.Equal(1, n)

	n, err = s.store.SetCountyForTowns(s.ctx, "nation-1", []string{"town-1"}, "West")
	s.Require().NoError(err)
	s.Equal(0, n, "unchanged records are not counted")

	n, err = s.store.RenameCounty(s.ctx, "nation-1", "west", "North")
	s.Require().NoError(err)
	s.Equal(1, n)
	got, _ := s.store.GetByUUID(uuidNotch)
	s.Equal("North", got.CountyName())
}

func (s *StoreSuite) TestRebuildAndCleanup() {
	_, err := s.store.Add(s.ctx, s.notch())
	s.Require().NoError(err)
	s.Require().NoError(s.store.RebuildIndexes(s.ctx))
	_, ok := s.store.GetByDiscordID("555")
	s.True(ok)

	s.clock.Advance(31 * 24 * time.Hour)
	removed, err := s.store.CleanupOlderThan(s.ctx, 30*24*time.Hour)
	s.Require().NoError(err)
	s.Equal(1, removed)
	_, ok = s.store.GetByDiscordID("555")
	s.False(ok)
}

func (s *StoreSuite) TestWriteCSV() {
	_, err := s.store.Add(s.ctx, s.notch())
	s.Require().NoError(err)

	var buf bytes.Buffer
	s.Require().NoError(s.store.WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(ExportHeader, rows[0])
	s.Equal(uuidNotch, rows[1][0])
	s.Equal("true", rows[1][8])
	s.Equal("East", rows[1][9])
	s.Equal("2025-03-01T10:00:00Z", rows[1][12])
}

func TestOpenFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "verification_cache.json")
	clk := clock.NewMock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))

	legacy := `{
  "verified_users": {
    "555": {"discord_id": "555", "ign": "Notch", "player_uuid": "` + uuidNotch + `", "nation": "Atlantis", "verified_at": 1700000000.5},
    "777": {"ign": "jeb_", "player_uuid": "` + uuidJeb + `", "nation": "Atlantis"},
    "888": {"ign": "ghost"}
  },
  "metadata": {"created": 1690000000, "last_updated": 1700000001}
}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := Open(filestore.New(path), WithClock(clk))
	require.NoError(t, err)

	got, ok := store.GetByDiscordID("777")
	assert.True(t, ok, "discord id recovered from legacy key")
	assert.Equal(t, uuidJeb, got.PlayerUUID)
	_, ok = store.GetByIGN("ghost")
	assert.False(t, ok, "records without uuid are dropped")

	notch, ok := store.GetByUUID(uuidNotch)
	require.True(t, ok)
	assert.Equal(t, time.Unix(1700000000, 500000000).UTC(), notch.VerifiedAt.Time)

	meta := store.Metadata()
	assert.Equal(t, CurrentVersion, meta.Version)
	require.NotNil(t, meta.MigratedAt)
	assert.Equal(t, clk.Now(), meta.MigratedAt.Time)
	assert.Equal(t, time.Unix(1690000000, 0).UTC(), meta.Created.Time)

	_, err = os.Stat(path + filestore.BackupSuffix)
	assert.NoError(t, err, "legacy file kept as backup")

	clk.Advance(time.Hour)
	reopened, err := Open(filestore.New(path), WithClock(clk))
	require.NoError(t, err)
	again := reopened.Metadata()
	assert.Equal(t, meta.MigratedAt.Time, again.MigratedAt.Time, "second open does not migrate again")
	assert.Len(t, reopened.List(), 2)
}
