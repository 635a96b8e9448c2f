package verification

import (
	"fmt"
	"strings"
)

const (
	msgContradiction = "**Verification blocked.** The Discord and EarthMC link records contradict each other. The case has been reported to staff for review."
	msgNoNation      = "`%s` is not a member of any nation."
	msgUnapproved    = "`%s` is a member of **%s**, which is not an approved nation."
	msgLookupFailed  = "Could not look up `%s`: %s"
	msgNoCounty      = "Their town is not assigned to a county yet. Ask staff to assign **%s** to one."
)

func successMessage(r Result) string {
	var b strings.Builder
	if r.IsReverification {
		fmt.Fprintf(&b, "**Verification updated** for `%s`.\n", r.IGN)
	} else {
		fmt.Fprintf(&b, "**Verified** `%s`.\n", r.IGN)
	}
	fmt.Fprintf(&b, "Nation: **%s**\nTown: **%s**\n", r.Nation, r.Town)
	if r.IsLinked {
		b.WriteString("Discord link: Linked\n")
	} else {
		b.WriteString("Discord link: Not linked\n")
	}
	if r.IsMayor {
		fmt.Fprintf(&b, "Mayor of **%s**\n", r.Town)
	}
	switch {
	case r.County != "":
		fmt.Fprintf(&b, "County: **%s**\n", r.County)
	case !r.HasCounty:
		fmt.Fprintf(&b, msgNoCounty+"\n", r.Town)
	}
	if r.IsReverification && r.Previous != nil && !strings.EqualFold(r.Previous.Nation, r.Nation) {
		fmt.Fprintf(&b, "Previously: %s (%s)\n", r.Previous.Nation, r.Previous.Town)
	}
	return strings.TrimRight(b.String(), "\n")
}
