package registry

// Ref is a name/UUID pair as returned for nested town and nation references.
// Both fields are empty when the reference is absent.
type Ref struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// Present reports whether the reference points at something.
func (r *Ref) Present() bool {
	return r != nil && r.UUID != ""
}

// PlayerStatus holds the subset of status flags the bot consumes.
type PlayerStatus struct {
	IsOnline bool `json:"isOnline"`
	IsMayor  bool `json:"isMayor"`
	IsKing   bool `json:"isKing"`
}

// Player is an EarthMC player record.
type Player struct {
	Name   string       `json:"name"`
	UUID   string       `json:"uuid"`
	Town   *Ref         `json:"town"`
	Nation *Ref         `json:"nation"`
	Status PlayerStatus `json:"status"`
}

func (p Player) identity() (string, string) { return p.Name, p.UUID }

// Coordinates is the spawn location of a town.
type Coordinates struct {
	Spawn struct {
		World string  `json:"world"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Z     float64 `json:"z"`
	} `json:"spawn"`
}

// Town is an EarthMC town record.
type Town struct {
	Name        string       `json:"name"`
	UUID        string       `json:"uuid"`
	Nation      *Ref         `json:"nation"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

func (t Town) identity() (string, string) { return t.Name, t.UUID }

// Nation is an EarthMC nation record.
type Nation struct {
	Name   string `json:"name"`
	UUID   string `json:"uuid"`
	Towns  []Ref  `json:"towns"`
	Allies []Ref  `json:"allies"`
}

func (n Nation) identity() (string, string) { return n.Name, n.UUID }

// DiscordLink is one row of the Discord link lookup. Either side may be null
// when the registry has no association for the queried identifier.
type DiscordLink struct {
	ID   *string `json:"id"`
	UUID *string `json:"uuid"`
}

// Valid reports whether both sides of the link are populated.
func (l DiscordLink) Valid() bool {
	return l.ID != nil && *l.ID != "" && l.UUID != nil && *l.UUID != ""
}

// identified is implemented by records that can be matched back to the
// identifier used to request them.
type identified interface {
	identity() (name string, uuid string)
}
