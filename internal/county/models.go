package county

import (
	"strings"

	"discadian/internal/platform/config"
)

// County is one administrative grouping of towns inside a nation.
type County struct {
	Towns  []string         `json:"towns"`
	RoleID config.Snowflake `json:"role_id,omitempty"`
}

func (c *County) has(townUUID string) bool {
	for _, t := range c.Towns {
		if t == townUUID {
			return true
		}
	}
	return false
}

func (c *County) remove(townUUID string) bool {
	for i, t := range c.Towns {
		if t == townUUID {
			c.Towns = append(c.Towns[:i], c.Towns[i+1:]...)
			return true
		}
	}
	return false
}

// NationCounties is the county table of one nation.
type NationCounties struct {
	NationUUID     string             `json:"nation_uuid"`
	NoCountyRoleID config.Snowflake   `json:"no_county_role_id,omitempty"`
	Counties       map[string]*County `json:"counties"`
}

// countyOf returns the county holding townUUID.
func (n *NationCounties) countyOf(townUUID string) (string, *County, bool) {
	for name, c := range n.Counties {
		if c.has(townUUID) {
			return name, c, true
		}
	}
	return "", nil, false
}

func (n *NationCounties) clone() *NationCounties {
	out := &NationCounties{
		NationUUID:     n.NationUUID,
		NoCountyRoleID: n.NoCountyRoleID,
		Counties:       make(map[string]*County, len(n.Counties)),
	}
	for name, c := range n.Counties {
		out.Counties[name] = &County{Towns: append([]string(nil), c.Towns...), RoleID: c.RoleID}
	}
	return out
}

// table is the persisted document, keyed by nation name.
type table map[string]*NationCounties

func (t table) clone() table {
	out := make(table, len(t))
	for name, n := range t {
		out[name] = n.clone()
	}
	return out
}

// find matches a nation by UUID first, then by case-insensitive name.
func (t table) find(nationUUIDOrName string) (string, *NationCounties, bool) {
	for name, n := range t {
		if n.NationUUID != "" && n.NationUUID == nationUUIDOrName {
			return name, n, true
		}
	}
	for name, n := range t {
		if strings.EqualFold(name, nationUUIDOrName) {
			return name, n, true
		}
	}
	return "", nil, false
}

// Resolution is the county placement of one town.
//
// HasCounty is true both when the town sits in a county and when the nation
// has no county system at all; Configured tells the two apart. An unassigned
// town in a configured nation gets the nation's no-county role.
type Resolution struct {
	CountyName string
	RoleID     config.Snowflake
	HasCounty  bool
	Configured bool
}

// Summary describes one county for listings.
type Summary struct {
	Name   string           `json:"name"`
	RoleID config.Snowflake `json:"role_id,omitempty"`
	Towns  []string         `json:"towns"`
}

// AssignResult reports an assignment.
type AssignResult struct {
	Message           string `json:"message"`
	Nation            string `json:"nation"`
	County            string `json:"county"`
	TownName          string `json:"town_name"`
	TownUUID          string `json:"town_uuid"`
	PreviousCounty    string `json:"previous_county,omitempty"`
	UpdatedIdentities int    `json:"updated_identities"`
}

// UnassignResult reports a removal.
type UnassignResult struct {
	Message           string `json:"message"`
	County            string `json:"county"`
	UpdatedIdentities int    `json:"updated_identities"`
}

// RenameResult reports a rename.
type RenameResult struct {
	Message           string `json:"message"`
	Towns             int    `json:"towns"`
	UpdatedIdentities int    `json:"updated_identities"`
}
