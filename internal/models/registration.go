package models

import "time"

// Registration is one member's completed registration. At most one exists per
// discord ID; the row is created at flow commit and mutated only by admin edits.
type Registration struct {
	DiscordID   string    `json:"discord_id"`
	LastName    string    `json:"last_name"`
	FirstName   string    `json:"first_name"`
	Photo       string    `json:"photo"`
	YearMajor   string    `json:"year_major"`
	StudentID   string    `json:"student_id"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Team        string    `json:"team"`
	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats summarizes the registration table.
type Stats struct {
	Total  int            `json:"total"`
	Teams  map[string]int `json:"teams"`
	Latest *Registration  `json:"latest,omitempty"`
}
