package identity

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportHeader is the column order of ExportRows.
var ExportHeader = []string{
	"player_uuid", "discord_id", "discord_username", "ign",
	"nation", "nation_uuid", "town", "town_uuid", "is_mayor", "county", "guild_id",
	"verified_by", "verified_at", "last_updated",
}

// ExportRows flattens every record into string rows (without header).
// Timestamps are ISO-8601 in UTC.
func (s *Store) ExportRows() [][]string {
	records := s.List()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.PlayerUUID,
			r.DiscordID,
			r.DiscordUsername,
			r.IGN,
			r.Nation,
			r.NationUUID,
			r.Town,
			r.TownUUID,
			strconv.FormatBool(r.IsMayor),
			r.CountyName(),
			r.GuildID,
			r.VerifiedBy,
			isoTime(r.VerifiedAt.Time),
			isoTime(r.LastUpdated.Time),
		})
	}
	return rows
}

// WriteCSV writes a header and every record to w.
func (s *Store) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(s.ExportRows()); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
