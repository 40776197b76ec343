package models

// Team codes accepted by the registration form.
const (
	TeamIT        = "IT"
	TeamDesign    = "Design"
	TeamMarketing = "Marketing"
	TeamB2B       = "B2B"
	TeamOPS       = "OPS"
	TeamHR        = "HR"
)

// Teams lists the valid team codes in panel order.
var Teams = []string{TeamIT, TeamDesign, TeamMarketing, TeamB2B, TeamOPS, TeamHR}

// TeamOption is one selectable team on the registration panel.
type TeamOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Emoji string `json:"emoji"`
}

// TeamOptions lists the panel entries for each team.
var TeamOptions = []TeamOption{
	{Label: "IT Team", Value: TeamIT, Emoji: "💻"},
	{Label: "Design Team", Value: TeamDesign, Emoji: "🎨"},
	{Label: "Marketing Team", Value: TeamMarketing, Emoji: "📢"},
	{Label: "B2B Team", Value: TeamB2B, Emoji: "🤝"},
	{Label: "OPS Team", Value: TeamOPS, Emoji: "⚙️"},
	{Label: "HR Team", Value: TeamHR, Emoji: "👥"},
}

// ValidTeam reports whether code is one of the accepted team codes.
func ValidTeam(code string) bool {
	for _, t := range Teams {
		if t == code {
			return true
		}
	}
	return false
}
