package admin

import (
	"discadian/internal/county"
	"discadian/internal/identity"
	"discadian/internal/report"
	"discadian/internal/roles"
	"discadian/internal/verification"
)

type messageResponse struct {
	Message string `json:"message"`
}

// VerifyResponse is the HTTP response DTO for a committed verification.
type VerifyResponse struct {
	Message        string              `json:"message"`
	Reverification bool                `json:"is_reverification"`
	Identity       identity.Identity   `json:"identity"`
	County         string              `json:"county,omitempty"`
	HasCounty      bool                `json:"has_county"`
	Linked         bool                `json:"is_linked"`
	RoleChanges    []roles.GuildChange `json:"role_changes"`
	RoleFailures   int                 `json:"role_failures"`
	Partial        bool                `json:"partial"`
}

func toVerifyResponse(r verification.Receipt) VerifyResponse {
	changes := r.Roles.Changes
	if changes == nil {
		changes = []roles.GuildChange{}
	}
	return VerifyResponse{
		Message:        r.Result.Message,
		Reverification: r.Result.IsReverification,
		Identity:       r.Identity,
		County:         r.Result.County,
		HasCounty:      r.Result.HasCounty,
		Linked:         r.Result.IsLinked,
		RoleChanges:    changes,
		RoleFailures:   r.Roles.Failed,
		Partial:        r.Partial,
	}
}

type countiesResponse struct {
	Counties []county.Summary `json:"counties"`
	Total    int              `json:"total"`
}

type reportsResponse struct {
	Reports []report.Event `json:"reports"`
	Total   int            `json:"total"`
}
