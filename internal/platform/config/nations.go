package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultNicknameFormat renders "{ign} ({nation})".
const DefaultNicknameFormat = "{ign} ({nation})"

// Snowflake is a Discord ID. JSON numbers and strings are both accepted.
type Snowflake string

func (s *Snowflake) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = Snowflake(strings.TrimSpace(v))
	default:
		if _, err := strconv.ParseUint(string(b), 10, 64); err != nil {
			return fmt.Errorf("invalid snowflake %s", b)
		}
		*s = Snowflake(b)
	}
	return nil
}

// String returns the raw ID.
func (s Snowflake) String() string {
	return string(s)
}

// Duration accepts Go duration strings ("30s") or numbers of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
		return nil
	}
	secs, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid duration %s: %w", b, err)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Nation is the per-guild configuration of one nation.
type Nation struct {
	Name                   string      `json:"-"`
	NationUUID             string      `json:"nation_uuid"`
	GuildID                Snowflake   `json:"guild_id"`
	VerifiedRoleID         Snowflake   `json:"verified_role_id"`
	MayorRoleID            Snowflake   `json:"mayor_role_id"`
	AlliedRoleID           Snowflake   `json:"allied_role_id"`
	ForeignerRoleID        Snowflake   `json:"foreigner_role_id"`
	RevocationRoles        []Snowflake `json:"revocation_roles"`
	AdminRoleIDs           []Snowflake `json:"admin_role_ids"`
	AlliedNations          []string    `json:"allied_nations"`
	NicknameFormat         string      `json:"nickname_format"`
	ContradictionChannelID Snowflake   `json:"contradiction_channel_id"`
	ReportChannelID        Snowflake   `json:"report_channel_id"`
}

// IsAllied reports whether nationUUID is in this nation's allied list.
func (n Nation) IsAllied(nationUUID string) bool {
	for _, a := range n.AlliedNations {
		if a == nationUUID {
			return true
		}
	}
	return false
}

// Reconcile configures the periodic reconciliation scheduler.
type Reconcile struct {
	Enabled     bool     `json:"enabled"`
	Interval    Duration `json:"interval"`
	CheckEvery  Duration `json:"check_every"`
	BatchSize   int      `json:"batch_size"`
	UserDelay   Duration `json:"user_delay"`
	BatchDelay  Duration `json:"batch_delay"`
	CallTimeout Duration `json:"call_timeout"`
	SendSummary bool     `json:"send_summary"`
}

// Nations is the domain configuration loaded once at startup.
type Nations struct {
	Nations         map[string]*Nation `json:"nations"`
	ApprovedNations []string           `json:"approved_nations"`
	Reconcile       Reconcile          `json:"periodic_verification"`
}

// LoadNations reads and validates the nations document at path.
func LoadNations(path string) (*Nations, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nations config: %w", err)
	}
	return ParseNations(raw)
}

// ParseNations decodes, defaults and validates a nations document.
func ParseNations(raw []byte) (*Nations, error) {
	var n Nations
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("decode nations config: %w", err)
	}
	n.applyDefaults()
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

func (n *Nations) applyDefaults() {
	if n.Nations == nil {
		n.Nations = map[string]*Nation{}
	}
	for name, nation := range n.Nations {
		if nation == nil {
			continue
		}
		nation.Name = name
		if nation.NicknameFormat == "" {
			nation.NicknameFormat = DefaultNicknameFormat
		}
	}
	if len(n.ApprovedNations) == 0 {
		for name := range n.Nations {
			n.ApprovedNations = append(n.ApprovedNations, name)
		}
		sort.Strings(n.ApprovedNations)
	}
	r := &n.Reconcile
	if r.Interval <= 0 {
		r.Interval = Duration(24 * time.Hour)
	}
	if r.CheckEvery <= 0 {
		r.CheckEvery = Duration(time.Hour)
	}
	if r.BatchSize <= 0 {
		r.BatchSize = 10
	}
	if r.UserDelay <= 0 {
		r.UserDelay = Duration(2 * time.Second)
	}
	if r.BatchDelay <= 0 {
		r.BatchDelay = Duration(30 * time.Second)
	}
	if r.CallTimeout <= 0 {
		r.CallTimeout = Duration(30 * time.Second)
	}
}

// Validate checks the document for missing or conflicting settings.
func (n *Nations) Validate() error {
	var errs []error
	guilds := map[Snowflake]string{}
	for name, nation := range n.Nations {
		if nation == nil {
			errs = append(errs, fmt.Errorf("nation %q: empty configuration", name))
			continue
		}
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("nation with empty name"))
		}
		if nation.NationUUID == "" {
			errs = append(errs, fmt.Errorf("nation %q: nation_uuid is required", name))
		}
		if nation.GuildID == "" {
			errs = append(errs, fmt.Errorf("nation %q: guild_id is required", name))
		} else if other, ok := guilds[nation.GuildID]; ok {
			errs = append(errs, fmt.Errorf("nation %q: guild_id %s already used by %q", name, nation.GuildID, other))
		} else {
			guilds[nation.GuildID] = name
		}
		if nation.VerifiedRoleID == "" {
			errs = append(errs, fmt.Errorf("nation %q: verified_role_id is required", name))
		}
		if !strings.Contains(nation.NicknameFormat, "{ign}") {
			errs = append(errs, fmt.Errorf("nation %q: nickname_format must contain {ign}", name))
		}
	}
	seen := map[string]bool{}
	for _, a := range n.ApprovedNations {
		key := strings.ToLower(strings.TrimSpace(a))
		if key == "" {
			errs = append(errs, errors.New("approved_nations contains an empty name"))
			continue
		}
		if seen[key] {
			errs = append(errs, fmt.Errorf("approved_nations lists %q twice", a))
		}
		seen[key] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid nations config: %w", errors.Join(errs...))
	}
	return nil
}

// IsApproved reports whether a nation name is eligible for verification.
func (n *Nations) IsApproved(nation string) bool {
	for _, a := range n.ApprovedNations {
		if strings.EqualFold(a, nation) {
			return true
		}
	}
	return false
}

// ByName finds a nation by name, case-insensitively.
func (n *Nations) ByName(name string) (Nation, bool) {
	if nation, ok := n.Nations[name]; ok {
		return *nation, true
	}
	for key, nation := range n.Nations {
		if strings.EqualFold(key, name) {
			return *nation, true
		}
	}
	return Nation{}, false
}

// ByGuild finds the nation that owns a guild.
func (n *Nations) ByGuild(guildID string) (Nation, bool) {
	for _, nation := range n.Nations {
		if string(nation.GuildID) == guildID {
			return *nation, true
		}
	}
	return Nation{}, false
}

// List returns every nation ordered by name.
func (n *Nations) List() []Nation {
	out := make([]Nation, 0, len(n.Nations))
	for _, nation := range n.Nations {
		out = append(out, *nation)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
