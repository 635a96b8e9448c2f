// Package roles derives the Discord role set and nickname a verified player
// should hold in each nation guild, and applies the difference.
package roles

import (
	"sort"
	"strings"
	"unicode/utf8"

	"discadian/internal/platform/config"
)

// MaxNicknameLength is Discord's nickname limit in characters.
const MaxNicknameLength = 32

// Relationship is how a player's nation relates to a guild's nation.
type Relationship string

const (
	Citizen   Relationship = "citizen"
	Allied    Relationship = "allied"
	Foreigner Relationship = "foreigner"
)

// Classify returns the relationship between guild's nation and the player's
// nation UUID.
func Classify(guild config.Nation, nationUUID string) Relationship {
	switch {
	case nationUUID != "" && nationUUID == guild.NationUUID:
		return Citizen
	case nationUUID != "" && guild.IsAllied(nationUUID):
		return Allied
	default:
		return Foreigner
	}
}

// Target is the verified state a member's roles should reflect.
type Target struct {
	IGN        string
	NationName string
	NationUUID string
	TownUUID   string
	IsMayor    bool
}

// Member is the current role state of a guild member.
type Member struct {
	Roles    []config.Snowflake
	Nickname string
}

func (m Member) holds(role config.Snowflake) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Plan is a minimal change to one member. A non-nil Nickname of "" resets it.
type Plan struct {
	GuildID   string
	DiscordID string
	Add       []config.Snowflake
	Remove    []config.Snowflake
	Nickname  *string
	Reason    string
}

// Empty reports whether applying the plan would change nothing.
func (p Plan) Empty() bool {
	return len(p.Add) == 0 && len(p.Remove) == 0 && p.Nickname == nil
}

// Nickname renders a nation's nickname format, truncated to Discord's limit.
func Nickname(format, ign, nation string) string {
	if format == "" {
		format = config.DefaultNicknameFormat
	}
	out := strings.NewReplacer("{ign}", ign, "{nation}", nation).Replace(format)
	if utf8.RuneCountInString(out) <= MaxNicknameLength {
		return out
	}
	return string([]rune(out)[:MaxNicknameLength])
}

type roleSet map[config.Snowflake]struct{}

func (s roleSet) add(ids ...config.Snowflake) {
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
}

func (s roleSet) has(id config.Snowflake) bool {
	_, ok := s[id]
	return ok
}

func sorted(ids []config.Snowflake) []config.Snowflake {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// managed is every role this system grants in a guild.
func managed(guild config.Nation, countyRoles []config.Snowflake) roleSet {
	s := roleSet{}
	s.add(guild.VerifiedRoleID, guild.MayorRoleID, guild.AlliedRoleID, guild.ForeignerRoleID)
	s.add(countyRoles...)
	return s
}

// desired computes the roles a member should hold for t in guild. countyRole
// is the county or no-county role of the player's town, if any.
func desired(guild config.Nation, t Target, countyRole config.Snowflake) (Relationship, roleSet) {
	rel := Classify(guild, t.NationUUID)
	s := roleSet{}
	s.add(guild.VerifiedRoleID)
	switch rel {
	case Citizen:
		if t.IsMayor {
			s.add(guild.MayorRoleID)
		}
		s.add(countyRole)
	case Allied:
		s.add(guild.AlliedRoleID)
	case Foreigner:
		s.add(guild.ForeignerRoleID)
	}
	return rel, s
}

// PlanSync returns the minimal change moving m to the state t calls for.
// Roles outside the managed set are never touched.
func PlanSync(guild config.Nation, m Member, t Target, countyRole config.Snowflake, countyRoles []config.Snowflake) (Relationship, Plan) {
	rel, want := desired(guild, t, countyRole)
	owned := managed(guild, countyRoles)

	p := Plan{GuildID: guild.GuildID.String(), Reason: "EarthMC Verification - " + guild.Name}
	for id := range want {
		if !m.holds(id) {
			p.Add = append(p.Add, id)
		}
	}
	for id := range owned {
		if m.holds(id) && !want.has(id) {
			p.Remove = append(p.Remove, id)
		}
	}
	p.Add, p.Remove = sorted(p.Add), sorted(p.Remove)

	if nick := Nickname(guild.NicknameFormat, t.IGN, t.NationName); nick != m.Nickname {
		p.Nickname = &nick
	}
	return rel, p
}

// PlanDeparture strips every managed and revocation role and resets the
// nickname.
func PlanDeparture(guild config.Nation, m Member, countyRoles []config.Snowflake) Plan {
	owned := managed(guild, countyRoles)
	owned.add(guild.RevocationRoles...)

	p := Plan{GuildID: guild.GuildID.String(), Reason: "EarthMC Nation Departure - " + guild.Name}
	for id := range owned {
		if m.holds(id) {
			p.Remove = append(p.Remove, id)
		}
	}
	p.Remove = sorted(p.Remove)
	// Members who never held a managed role keep their nickname.
	if len(p.Remove) > 0 && m.Nickname != "" {
		reset := ""
		p.Nickname = &reset
	}
	return p
}
