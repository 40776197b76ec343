// Package eligibility holds the pure decision functions of the registration
// system: who must register, and whether submitted field values are valid.
package eligibility

// ReasonExcluded is the user-facing reason for members exempted by role.
const ReasonExcluded = "You're not concerned with this registration"

// RoleSet is a membership-testable set of opaque role IDs.
type RoleSet map[string]struct{}

// NewRoleSet builds a RoleSet from a list of role IDs.
func NewRoleSet(ids []string) RoleSet {
	s := make(RoleSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// ContainsAny reports whether any of ids is in the set.
func (s RoleSet) ContainsAny(ids []string) bool {
	for _, id := range ids {
		if _, ok := s[id]; ok {
			return true
		}
	}
	return false
}

// Check decides whether a member holding roleIDs must register. Everyone must
// register except holders of an excluded role. Existing-team roles do not
// exempt anyone; they only pick the renewal bucket later.
func Check(roleIDs []string, excluded RoleSet) (bool, string) {
	if excluded.ContainsAny(roleIDs) {
		return false, ReasonExcluded
	}
	return true, ""
}
