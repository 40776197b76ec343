// Package platform talks to the community-platform gateway (the bot process
// fronting the chat platform). The core never touches the platform SDK
// directly; it sees members as plain values and actions as explicit calls.
package platform

import "context"

// Member is a roster entry as reported by the gateway.
type Member struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	RoleIDs     []string `json:"role_ids"`
	Bot         bool     `json:"bot"`
	Admin       bool     `json:"admin"` // holds administrator permission on the platform
	Rank        int      `json:"rank"`  // top-role position; higher outranks lower
}

// HasRole reports whether the member holds roleID.
func (m Member) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Gateway is the surface the core needs from the platform: roster reads and
// the two mutating member actions used by bulk enforcement.
type Gateway interface {
	// ListMembers returns the full guild roster.
	ListMembers(ctx context.Context) ([]Member, error)
	// GetMember returns one member, or nil when they have left the guild.
	GetMember(ctx context.Context, id string) (*Member, error)
	// AddRole grants roleID to the member. Granting an already-held role is a
	// platform-side no-op, but callers skip it to keep tallies honest.
	AddRole(ctx context.Context, memberID, roleID string) error
	// Kick removes the member from the guild with an audit reason.
	Kick(ctx context.Context, memberID, reason string) error
	// AgentRank returns the acting agent's own top-role position. Members at
	// or above this rank cannot be acted on.
	AgentRank(ctx context.Context) (int, error)
}
