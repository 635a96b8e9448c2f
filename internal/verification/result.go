package verification

import (
	"discadian/internal/identity"
	"discadian/internal/platform/config"
	dErrors "discadian/pkg/domain-errors"
)

// Outcome names how a verification attempt ended.
type Outcome string

const (
	OutcomeVerified        Outcome = "verified"
	OutcomePlayerNotFound  Outcome = "player_not_found"
	OutcomeLookupFailed    Outcome = "lookup_failed"
	OutcomeLinkCheckFailed Outcome = "link_check_failed"
	OutcomeContradiction   Outcome = "contradiction"
	OutcomeNoNation        Outcome = "no_nation"
	OutcomeUnapproved      Outcome = "unapproved_nation"
)

// Request is a claimed Discord account and in-game name pair.
type Request struct {
	DiscordID string
	IGN       string
	// TargetNation is the nation the verifying guild acts for. It does not
	// restrict which approved nation the player may belong to.
	TargetNation string
}

// Result is the decision for one Request. It carries everything a caller
// needs to persist the identity and update roles.
type Result struct {
	Success          bool               `json:"success"`
	Outcome          Outcome            `json:"outcome"`
	Message          string             `json:"message"`
	IsReverification bool               `json:"is_reverification"`
	Previous         *identity.Identity `json:"previous,omitempty"`

	IGN          string           `json:"ign,omitempty"`
	PlayerUUID   string           `json:"player_uuid,omitempty"`
	Nation       string           `json:"nation,omitempty"`
	NationUUID   string           `json:"nation_uuid,omitempty"`
	Town         string           `json:"town,omitempty"`
	TownUUID     string           `json:"town_uuid,omitempty"`
	IsMayor      bool             `json:"is_mayor"`
	County       string           `json:"county,omitempty"`
	CountyRoleID config.Snowflake `json:"county_role_id,omitempty"`
	HasCounty    bool             `json:"has_county"`
	IsLinked     bool             `json:"is_linked"`

	// ContradictionDetail is the staff-facing report when Outcome is
	// OutcomeContradiction.
	ContradictionDetail string `json:"contradiction_detail,omitempty"`
}

// Err returns the coded error matching a failed outcome, or nil.
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeVerified:
		return nil
	case OutcomePlayerNotFound:
		return dErrors.New(dErrors.CodeNotFound, r.Message)
	case OutcomeLookupFailed, OutcomeLinkCheckFailed:
		return dErrors.New(dErrors.CodeUpstreamFailure, r.Message)
	case OutcomeContradiction:
		return dErrors.New(dErrors.CodeContradiction, r.Message)
	case OutcomeNoNation, OutcomeUnapproved:
		return dErrors.New(dErrors.CodeIneligible, r.Message)
	default:
		return dErrors.New(dErrors.CodeInternal, r.Message)
	}
}
