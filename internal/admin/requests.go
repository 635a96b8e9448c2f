package admin

import (
	"strings"

	"discadian/internal/platform/config"
	"discadian/internal/registry"
	dErrors "discadian/pkg/domain-errors"
)

// VerifyRequest asks to verify a Discord member as a player.
type VerifyRequest struct {
	GuildID         string `json:"guild_id"`
	DiscordID       string `json:"discord_id"`
	DiscordUsername string `json:"discord_username"`
	IGN             string `json:"ign"`
	Nation          string `json:"nation"`
}

func (r *VerifyRequest) Validate() error {
	r.GuildID = strings.TrimSpace(r.GuildID)
	r.DiscordID = strings.TrimSpace(r.DiscordID)
	r.IGN = strings.TrimSpace(r.IGN)
	r.Nation = strings.TrimSpace(r.Nation)
	if r.DiscordID == "" {
		return dErrors.New(dErrors.CodeValidation, "discord_id is required")
	}
	if !isSnowflake(r.DiscordID) {
		return dErrors.New(dErrors.CodeValidation, "discord_id must be numeric")
	}
	if r.IGN == "" {
		return dErrors.New(dErrors.CodeValidation, "ign is required")
	}
	if r.GuildID != "" && !isSnowflake(r.GuildID) {
		return dErrors.New(dErrors.CodeValidation, "guild_id must be numeric")
	}
	return nil
}

// EnableCountiesRequest turns on the county system for a nation.
type EnableCountiesRequest struct {
	NationUUID string `json:"nation_uuid"`
}

func (r *EnableCountiesRequest) Validate() error {
	r.NationUUID = strings.TrimSpace(r.NationUUID)
	if !registry.IsUUID(r.NationUUID) {
		return dErrors.New(dErrors.CodeValidation, "nation_uuid must be a uuid")
	}
	return nil
}

// CreateCountyRequest adds a county with its Discord role.
type CreateCountyRequest struct {
	Name   string           `json:"name"`
	RoleID config.Snowflake `json:"role_id"`
}

func (r *CreateCountyRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.RoleID == "" {
		return dErrors.New(dErrors.CodeValidation, "role_id is required")
	}
	return nil
}

// RoleRequest sets a single role.
type RoleRequest struct {
	RoleID config.Snowflake `json:"role_id"`
}

func (r *RoleRequest) Validate() error {
	if r.RoleID == "" {
		return dErrors.New(dErrors.CodeValidation, "role_id is required")
	}
	return nil
}

type RenameCountyRequest struct {
	NewName string `json:"new_name"`
}

func (r *RenameCountyRequest) Validate() error {
	r.NewName = strings.TrimSpace(r.NewName)
	if r.NewName == "" {
		return dErrors.New(dErrors.CodeValidation, "new_name is required")
	}
	return nil
}

func isSnowflake(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
