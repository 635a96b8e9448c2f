package identity

import (
	"time"
	"unicode"
)

// NeedsMigration reports whether records are keyed by Discord ID (every key
// numeric) or the document predates CurrentVersion.
func NeedsMigration(records map[string]*Identity, version string) bool {
	if len(records) > 0 && allNumeric(records) {
		return true
	}
	return version != CurrentVersion
}

func allNumeric(records map[string]*Identity) bool {
	for key := range records {
		if key == "" {
			return false
		}
		for _, r := range key {
			if !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

// migrate re-keys records by player UUID and rebuilds the indexes. Records
// without a UUID are dropped. Created and LastUpdated metadata carry over.
func migrate(old *document, now time.Time) (*document, int) {
	out := newDocument(now)
	skipped := 0
	numericKeys := allNumeric(old.VerifiedUsers)

	for key, rec := range old.VerifiedUsers {
		if rec == nil || rec.PlayerUUID == "" {
			skipped++
			continue
		}
		c := rec.clone()
		if c.DiscordID == "" && numericKeys {
			c.DiscordID = key
		}
		out.VerifiedUsers[c.PlayerUUID] = &c
	}
	out.rebuildIndexes()

	if old.Metadata.Created != nil {
		out.Metadata.Created = old.Metadata.Created
	}
	if old.Metadata.LastUpdated != nil {
		out.Metadata.LastUpdated = old.Metadata.LastUpdated
	}
	migratedAt := At(now)
	out.Metadata.MigratedAt = &migratedAt
	out.Metadata.Version = CurrentVersion
	return out, skipped
}
