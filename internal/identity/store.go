// Package identity is the durable verification cache: one record per verified
// player UUID plus derived lookup indexes by Discord ID and lowercase IGN.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	dErrors "discadian/pkg/domain-errors"
	"discadian/pkg/platform/clock"
)

// CurrentVersion is the on-disk format written by this package.
const CurrentVersion = "2.0"

// Persister loads and saves the whole document.
type Persister interface {
	Load(v any) (bool, error)
	Save(v any) error
}

type document struct {
	VerifiedUsers map[string]*Identity `json:"verified_users"`
	UUIDToDiscord map[string]string    `json:"uuid_to_discord"`
	DiscordToUUID map[string]string    `json:"discord_to_uuid"`
	IGNToUUID     map[string]string    `json:"ign_to_uuid"`
	Metadata      Metadata             `json:"metadata"`
}

func newDocument(now time.Time) *document {
	created := At(now)
	return &document{
		VerifiedUsers: map[string]*Identity{},
		UUIDToDiscord: map[string]string{},
		DiscordToUUID: map[string]string{},
		IGNToUUID:     map[string]string{},
		Metadata: Metadata{
			Created:     &created,
			LastUpdated: &created,
			Version:     CurrentVersion,
		},
	}
}

func (d *document) ensureMaps() {
	if d.VerifiedUsers == nil {
		d.VerifiedUsers = map[string]*Identity{}
	}
	if d.UUIDToDiscord == nil {
		d.UUIDToDiscord = map[string]string{}
	}
	if d.DiscordToUUID == nil {
		d.DiscordToUUID = map[string]string{}
	}
	if d.IGNToUUID == nil {
		d.IGNToUUID = map[string]string{}
	}
}

func (d *document) clone() *document {
	out := &document{
		VerifiedUsers: make(map[string]*Identity, len(d.VerifiedUsers)),
		UUIDToDiscord: make(map[string]string, len(d.UUIDToDiscord)),
		DiscordToUUID: make(map[string]string, len(d.DiscordToUUID)),
		IGNToUUID:     make(map[string]string, len(d.IGNToUUID)),
		Metadata:      d.Metadata,
	}
	for k, v := range d.VerifiedUsers {
		c := v.clone()
		out.VerifiedUsers[k] = &c
	}
	for k, v := range d.UUIDToDiscord {
		out.UUIDToDiscord[k] = v
	}
	for k, v := range d.DiscordToUUID {
		out.DiscordToUUID[k] = v
	}
	for k, v := range d.IGNToUUID {
		out.IGNToUUID[k] = v
	}
	return out
}

// index points the lookup tables at uuid.
func (d *document) index(uuid, discordID, ign string) {
	if discordID != "" {
		d.UUIDToDiscord[uuid] = discordID
		d.DiscordToUUID[discordID] = uuid
	}
	if ign != "" {
		d.IGNToUUID[strings.ToLower(ign)] = uuid
	}
}

// unindex drops lookup entries for rec that still point at it.
func (d *document) unindex(rec *Identity) {
	uuid := rec.PlayerUUID
	delete(d.UUIDToDiscord, uuid)
	if rec.DiscordID != "" && d.DiscordToUUID[rec.DiscordID] == uuid {
		delete(d.DiscordToUUID, rec.DiscordID)
	}
	if rec.IGN != "" && d.IGNToUUID[strings.ToLower(rec.IGN)] == uuid {
		delete(d.IGNToUUID, strings.ToLower(rec.IGN))
	}
}

func (d *document) rebuildIndexes() {
	d.UUIDToDiscord = map[string]string{}
	d.DiscordToUUID = map[string]string{}
	d.IGNToUUID = map[string]string{}
	for uuid, rec := range d.VerifiedUsers {
		d.index(uuid, rec.DiscordID, rec.IGN)
	}
}

// Store is the verification cache. All mutations are serialised, persisted
// synchronously, and rolled back in memory when persisting fails.
type Store struct {
	mu        sync.RWMutex
	doc       *document
	persister Persister
	clock     clock.Clock
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// Open loads the document through p, migrating the legacy Discord-ID-keyed
// layout if found. A migrated document is written back immediately.
func Open(p Persister, opts ...Option) (*Store, error) {
	if p == nil {
		return nil, errors.New("persister is required")
	}
	s := &Store{
		persister: p,
		clock:     clock.New(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc := &document{}
	found, err := p.Load(doc)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistenceFailure, "load verification cache")
	}
	if !found {
		s.doc = newDocument(s.clock.Now())
		s.logger.Info("verification cache not found, starting empty")
		return s, nil
	}
	doc.ensureMaps()

	if NeedsMigration(doc.VerifiedUsers, doc.Metadata.Version) {
		migrated, skipped := migrate(doc, s.clock.Now())
		s.logger.Info("migrated verification cache to uuid keys",
			"records", len(migrated.VerifiedUsers),
			"skipped", skipped,
		)
		if err := p.Save(migrated); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodePersistenceFailure, "persist migrated verification cache")
		}
		doc = migrated
	}
	s.doc = doc
	return s, nil
}

func (s *Store) mutate(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.doc.clone()
	if err := fn(s.doc); err != nil {
		s.doc = prev
		return err
	}
	now := At(s.clock.Now())
	s.doc.Metadata.LastUpdated = &now
	if err := s.persister.Save(s.doc); err != nil {
		s.doc = prev
		s.logger.Error("verification cache persist failed, in-memory state reverted", "error", err)
		return dErrors.Wrap(err, dErrors.CodePersistenceFailure, "persist verification cache")
	}
	return nil
}

// Add stores rec as a fresh verification. VerifiedAt and LastUpdated are set
// to now. A previous record for the same Discord account under another UUID
// is superseded and removed.
func (s *Store) Add(_ context.Context, rec Identity) (Identity, error) {
	rec.PlayerUUID = strings.TrimSpace(rec.PlayerUUID)
	if rec.PlayerUUID == "" {
		return Identity{}, dErrors.New(dErrors.CodeValidation, "cannot add verified user without UUID")
	}
	now := At(s.clock.Now())
	rec.VerifiedAt = now
	rec.LastUpdated = now
	stored := rec.clone()

	err := s.mutate(func(doc *document) error {
		if old, ok := doc.VerifiedUsers[rec.PlayerUUID]; ok {
			doc.unindex(old)
		}
		if rec.DiscordID != "" {
			if prevUUID, ok := doc.DiscordToUUID[rec.DiscordID]; ok && prevUUID != rec.PlayerUUID {
				if prev, ok := doc.VerifiedUsers[prevUUID]; ok {
					doc.unindex(prev)
					delete(doc.VerifiedUsers, prevUUID)
					s.logger.Info("superseded verification for discord account",
						"discord_id", rec.DiscordID,
						"previous_uuid", prevUUID,
						"player_uuid", rec.PlayerUUID,
					)
				}
			}
		}
		doc.VerifiedUsers[rec.PlayerUUID] = &stored
		doc.index(rec.PlayerUUID, rec.DiscordID, rec.IGN)
		return nil
	})
	if err != nil {
		return Identity{}, err
	}
	s.logger.Info("added verified user", "ign", rec.IGN, "player_uuid", rec.PlayerUUID, "discord_id", rec.DiscordID)
	return stored.clone(), nil
}

// Update merges patch into the record for uuid and refreshes LastUpdated.
func (s *Store) Update(_ context.Context, uuid string, patch Patch) (Identity, error) {
	var out Identity
	err := s.mutate(func(doc *document) error {
		rec, ok := doc.VerifiedUsers[uuid]
		if !ok {
			return dErrors.New(dErrors.CodeNotFound, "verified user not found")
		}
		doc.unindex(rec)
		patch.apply(rec)
		rec.LastUpdated = At(s.clock.Now())
		doc.index(uuid, rec.DiscordID, rec.IGN)
		out = rec.clone()
		return nil
	})
	if err != nil {
		return Identity{}, err
	}
	return out, nil
}

// UpdateByDiscordID is Update addressed by Discord ID.
func (s *Store) UpdateByDiscordID(ctx context.Context, discordID string, patch Patch) (Identity, error) {
	s.mu.RLock()
	uuid, ok := s.doc.DiscordToUUID[discordID]
	s.mu.RUnlock()
	if !ok {
		return Identity{}, dErrors.New(dErrors.CodeNotFound, "no verified user for discord id")
	}
	return s.Update(ctx, uuid, patch)
}

// Remove deletes the record for uuid and its index entries.
func (s *Store) Remove(_ context.Context, uuid string) (Identity, error) {
	var out Identity
	err := s.mutate(func(doc *document) error {
		rec, ok := doc.VerifiedUsers[uuid]
		if !ok {
			return dErrors.New(dErrors.CodeNotFound, "verified user not found")
		}
		out = rec.clone()
		doc.unindex(rec)
		delete(doc.VerifiedUsers, uuid)
		return nil
	})
	if err != nil {
		return Identity{}, err
	}
	s.logger.Info("removed verified user", "ign", out.IGN, "player_uuid", uuid)
	return out, nil
}

// RemoveByDiscordID is Remove addressed by Discord ID.
func (s *Store) RemoveByDiscordID(ctx context.Context, discordID string) (Identity, error) {
	s.mu.RLock()
	uuid, ok := s.doc.DiscordToUUID[discordID]
	s.mu.RUnlock()
	if !ok {
		return Identity{}, dErrors.New(dErrors.CodeNotFound, "no verified user for discord id")
	}
	return s.Remove(ctx, uuid)
}

// GetByUUID returns the record for a player UUID.
func (s *Store) GetByUUID(uuid string) (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.doc.VerifiedUsers[uuid]
	if !ok {
		return Identity{}, false
	}
	return rec.clone(), true
}

// GetByDiscordID returns the record linked to a Discord account.
func (s *Store) GetByDiscordID(discordID string) (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uuid, ok := s.doc.DiscordToUUID[discordID]
	if !ok {
		return Identity{}, false
	}
	rec, ok := s.doc.VerifiedUsers[uuid]
	if !ok {
		return Identity{}, false
	}
	return rec.clone(), true
}

// GetByIGN returns the record for an in-game name, case-insensitively.
func (s *Store) GetByIGN(ign string) (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uuid, ok := s.doc.IGNToUUID[strings.ToLower(strings.TrimSpace(ign))]
	if !ok {
		return Identity{}, false
	}
	rec, ok := s.doc.VerifiedUsers[uuid]
	if !ok {
		return Identity{}, false
	}
	return rec.clone(), true
}

func (s *Store) filter(keep func(*Identity) bool) []Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Identity, 0)
	for _, rec := range s.doc.VerifiedUsers {
		if keep(rec) {
			out = append(out, rec.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].IGN) < strings.ToLower(out[j].IGN)
	})
	return out
}

// List returns every record ordered by IGN.
func (s *Store) List() []Identity {
	return s.filter(func(*Identity) bool { return true })
}

// ListByNation matches the nation name case-insensitively.
func (s *Store) ListByNation(nation string) []Identity {
	return s.filter(func(r *Identity) bool { return strings.EqualFold(r.Nation, nation) })
}

// ListByNationUUID matches the nation UUID exactly.
func (s *Store) ListByNationUUID(nationUUID string) []Identity {
	return s.filter(func(r *Identity) bool { return r.NationUUID == nationUUID })
}

// ListByCounty matches nation and county names case-insensitively.
func (s *Store) ListByCounty(nation, county string) []Identity {
	return s.filter(func(r *Identity) bool {
		return strings.EqualFold(r.Nation, nation) && r.County != nil && strings.EqualFold(*r.County, county)
	})
}

// ListByTown matches the town UUID exactly.
func (s *Store) ListByTown(townUUID string) []Identity {
	return s.filter(func(r *Identity) bool { return r.TownUUID == townUUID })
}

// ListMayors returns every mayor.
func (s *Store) ListMayors() []Identity {
	return s.filter(func(r *Identity) bool { return r.IsMayor })
}

// SetCountyForTowns sets (or clears, with "") the county of every record in
// nationUUID whose town is in townUUIDs. It returns how many records changed.
func (s *Store) SetCountyForTowns(_ context.Context, nationUUID string, townUUIDs []string, county string) (int, error) {
	towns := make(map[string]struct{}, len(townUUIDs))
	for _, t := range townUUIDs {
		towns[t] = struct{}{}
	}
	changed := 0
	err := s.mutate(func(doc *document) error {
		now := At(s.clock.Now())
		for _, rec := range doc.VerifiedUsers {
			if _, ok := towns[rec.TownUUID]; !ok || rec.NationUUID != nationUUID {
				continue
			}
			if rec.CountyName() == county {
				continue
			}
			if county == "" {
				rec.County = nil
			} else {
				c := county
				rec.County = &c
			}
			rec.LastUpdated = now
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// RenameCounty rewrites county oldName to newName for every record in
// nationUUID.
func (s *Store) RenameCounty(_ context.Context, nationUUID, oldName, newName string) (int, error) {
	changed := 0
	err := s.mutate(func(doc *document) error {
		now := At(s.clock.Now())
		for _, rec := range doc.VerifiedUsers {
			if rec.NationUUID != nationUUID || rec.County == nil || !strings.EqualFold(*rec.County, oldName) {
				continue
			}
			c := newName
			rec.County = &c
			rec.LastUpdated = now
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// RebuildIndexes recomputes every lookup table from the records.
func (s *Store) RebuildIndexes(_ context.Context) error {
	err := s.mutate(func(doc *document) error {
		doc.rebuildIndexes()
		return nil
	})
	if err == nil {
		s.logger.Info("rebuilt verification cache indexes")
	}
	return err
}

// CleanupOlderThan removes records verified more than maxAge ago.
func (s *Store) CleanupOlderThan(_ context.Context, maxAge time.Duration) (int, error) {
	removed := 0
	err := s.mutate(func(doc *document) error {
		cutoff := s.clock.Now().Add(-maxAge)
		for uuid, rec := range doc.VerifiedUsers {
			if rec.VerifiedAt.Before(cutoff) {
				doc.unindex(rec)
				delete(doc.VerifiedUsers, uuid)
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("cleaned up old verification entries", "removed", removed)
	}
	return removed, nil
}

// Stats summarises the store contents.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalVerifiedUsers: len(s.doc.VerifiedUsers),
		Nations:            map[string]int{},
		Counties:           map[string]int{},
		CacheVersion:       s.doc.Metadata.Version,
		MappingTables: IndexSizes{
			UUIDToDiscord: len(s.doc.UUIDToDiscord),
			DiscordToUUID: len(s.doc.DiscordToUUID),
			IGNToUUID:     len(s.doc.IGNToUUID),
		},
	}
	if st.CacheVersion == "" {
		st.CacheVersion = "1.0"
	}
	for _, rec := range s.doc.VerifiedUsers {
		nation := rec.Nation
		if nation == "" {
			nation = "Unknown"
		}
		st.Nations[nation]++
		if rec.IsMayor {
			st.TotalMayors++
		}
		if rec.County != nil {
			st.Counties[nation+":"+*rec.County]++
		}
	}
	if c := s.doc.Metadata.Created; c != nil {
		t := c.Time
		st.CacheCreated = &t
	}
	if u := s.doc.Metadata.LastUpdated; u != nil {
		t := u.Time
		st.LastUpdated = &t
	}
	if p, ok := s.persister.(interface{ Path() string }); ok {
		st.CacheFile = p.Path()
	}
	return st
}

// Metadata returns a copy of the document metadata.
func (s *Store) Metadata() Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Metadata
}
