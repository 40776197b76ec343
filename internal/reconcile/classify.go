// Package reconcile compares the guild roster with the registration set and
// drives administrator bulk actions over the difference.
package reconcile

import (
	"github.com/omc-club/registration/internal/eligibility"
	"github.com/omc-club/registration/internal/platform"
)

// Buckets splits eligible unregistered members by prior-year team membership.
type Buckets struct {
	// Renewal holds members with at least one existing-team role.
	Renewal []platform.Member
	// New holds members with none of those roles.
	New []platform.Member
}

// Classify partitions every unregistered, eligible member into the renewal or
// new bucket. Members holding an excluded role are omitted entirely.
func Classify(members []platform.Member, registered map[string]struct{}, excluded, existingTeam eligibility.RoleSet) Buckets {
	var b Buckets
	for _, m := range members {
		if _, ok := registered[m.ID]; ok {
			continue
		}
		if eligible, _ := eligibility.Check(m.RoleIDs, excluded); !eligible {
			continue
		}
		if existingTeam.ContainsAny(m.RoleIDs) {
			b.Renewal = append(b.Renewal, m)
		} else {
			b.New = append(b.New, m)
		}
	}
	return b
}
