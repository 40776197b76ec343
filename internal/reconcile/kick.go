package reconcile

import "github.com/omc-club/registration/internal/platform"

// KickReason is the platform audit reason attached to deadline kicks.
const KickReason = "Failed to complete club registration within deadline"

// Skip reasons reported in kick previews.
const (
	SkipReasonBot        = "bot"
	SkipReasonAdmin      = "administrator"
	SkipReasonHigherRole = "higher role"
)

// Skipped is one member excluded from a kick batch, with the reason shown to
// the admin. Skips are reported, never silently dropped.
type Skipped struct {
	Member platform.Member `json:"member"`
	Reason string          `json:"reason"`
}

// FilterKickable removes members the agent must not act on: bot accounts,
// members with administrator permission, and members whose rank is equal or
// above the agent's own.
func FilterKickable(members []platform.Member, agentRank int) ([]platform.Member, []Skipped) {
	var kickable []platform.Member
	var skipped []Skipped
	for _, m := range members {
		switch {
		case m.Bot:
			skipped = append(skipped, Skipped{Member: m, Reason: SkipReasonBot})
		case m.Admin:
			skipped = append(skipped, Skipped{Member: m, Reason: SkipReasonAdmin})
		case m.Rank >= agentRank:
			skipped = append(skipped, Skipped{Member: m, Reason: SkipReasonHigherRole})
		default:
			kickable = append(kickable, m)
		}
	}
	return kickable, skipped
}
