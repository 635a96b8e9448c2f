package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Identity is a verified Discord↔player association keyed by player UUID.
type Identity struct {
	DiscordID       string     `json:"discord_id"`
	DiscordUsername string     `json:"discord_username"`
	IGN             string     `json:"ign"`
	PlayerUUID      string     `json:"player_uuid"`
	Nation          string     `json:"nation"`
	NationUUID      string     `json:"nation_uuid,omitempty"`
	Town            string     `json:"town"`
	TownUUID        string     `json:"town_uuid,omitempty"`
	IsMayor         bool       `json:"is_mayor"`
	County          *string    `json:"county"`
	GuildID         string     `json:"guild_id,omitempty"`
	VerifiedBy      string     `json:"verified_by,omitempty"`
	VerifiedAt      Timestamp  `json:"verified_at"`
	LastUpdated     Timestamp  `json:"last_updated"`
	LastVerifiedBy  *string    `json:"last_verified_by,omitempty"`
	LastVerifiedAt  *Timestamp `json:"last_verified_at,omitempty"`
}

// CountyName returns the county or "".
func (i Identity) CountyName() string {
	if i.County == nil {
		return ""
	}
	return *i.County
}

func (i Identity) clone() Identity {
	out := i
	if i.County != nil {
		c := *i.County
		out.County = &c
	}
	if i.LastVerifiedBy != nil {
		v := *i.LastVerifiedBy
		out.LastVerifiedBy = &v
	}
	if i.LastVerifiedAt != nil {
		v := *i.LastVerifiedAt
		out.LastVerifiedAt = &v
	}
	return out
}

// Patch is a partial update. Nil fields are left alone. A County pointing at
// "" clears the county.
type Patch struct {
	DiscordID       *string
	DiscordUsername *string
	IGN             *string
	Nation          *string
	NationUUID      *string
	Town            *string
	TownUUID        *string
	IsMayor         *bool
	County          *string
	GuildID         *string
	LastVerifiedBy  *string
	LastVerifiedAt  *time.Time
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

func (p Patch) apply(rec *Identity) {
	if p.DiscordID != nil {
		rec.DiscordID = *p.DiscordID
	}
	if p.DiscordUsername != nil {
		rec.DiscordUsername = *p.DiscordUsername
	}
	if p.IGN != nil {
		rec.IGN = *p.IGN
	}
	if p.Nation != nil {
		rec.Nation = *p.Nation
	}
	if p.NationUUID != nil {
		rec.NationUUID = *p.NationUUID
	}
	if p.Town != nil {
		rec.Town = *p.Town
	}
	if p.TownUUID != nil {
		rec.TownUUID = *p.TownUUID
	}
	if p.IsMayor != nil {
		rec.IsMayor = *p.IsMayor
	}
	if p.County != nil {
		if *p.County == "" {
			rec.County = nil
		} else {
			c := *p.County
			rec.County = &c
		}
	}
	if p.GuildID != nil {
		rec.GuildID = *p.GuildID
	}
	if p.LastVerifiedBy != nil {
		v := *p.LastVerifiedBy
		rec.LastVerifiedBy = &v
	}
	if p.LastVerifiedAt != nil {
		ts := Timestamp{Time: *p.LastVerifiedAt}
		rec.LastVerifiedAt = &ts
	}
}

// Timestamp is stored on disk as fractional Unix seconds. RFC 3339 strings
// are accepted on read.
type Timestamp struct {
	time.Time
}

// At wraps t.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	secs := float64(t.UnixNano()) / float64(time.Second)
	return []byte(strconv.FormatFloat(secs, 'f', -1, 64)), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		t.Time = parsed.UTC()
		return nil
	}
	secs, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %s: %w", b, err)
	}
	whole, frac := math.Modf(secs)
	t.Time = time.Unix(int64(whole), int64(math.Round(frac*1e6))*int64(time.Microsecond)).UTC()
	return nil
}

// Metadata describes the persisted document.
type Metadata struct {
	Created     *Timestamp `json:"created,omitempty"`
	LastUpdated *Timestamp `json:"last_updated,omitempty"`
	Version     string     `json:"version,omitempty"`
	MigratedAt  *Timestamp `json:"migrated_at,omitempty"`
}

// IndexSizes reports the size of each secondary index.
type IndexSizes struct {
	UUIDToDiscord int `json:"uuid_to_discord"`
	DiscordToUUID int `json:"discord_to_uuid"`
	IGNToUUID     int `json:"ign_to_uuid"`
}

// Stats summarises the store.
type Stats struct {
	TotalVerifiedUsers int            `json:"total_verified_users"`
	TotalMayors        int            `json:"total_mayors"`
	Nations            map[string]int `json:"nations"`
	Counties           map[string]int `json:"counties"`
	CacheCreated       *time.Time     `json:"cache_created,omitempty"`
	LastUpdated        *time.Time     `json:"last_updated,omitempty"`
	CacheFile          string         `json:"cache_file,omitempty"`
	CacheVersion       string         `json:"cache_version"`
	MappingTables      IndexSizes     `json:"mapping_tables"`
}
