// Package flow implements the three-stage registration form as an explicit
// state machine: pure transition functions over a Session value, an in-memory
// session store, and a service layer that re-checks eligibility and
// registration status at every stage boundary.
package flow

import (
	"strings"
	"time"

	"github.com/omc-club/registration/internal/eligibility"
	"github.com/omc-club/registration/internal/models"
)

// Stage is the progress tag of a form session.
type Stage string

const (
	// StageBasicInfo means names, photo, year/major and student ID are captured.
	StageBasicInfo Stage = "basic_info_captured"
	// StageContactInfo means phone and email are captured on top of basic info.
	StageContactInfo Stage = "contact_info_captured"
)

// Session is the ephemeral field bag carried across form stages. It lives
// only in memory; commit, cancel or expiry destroys it.
type Session struct {
	ActorID      string    `json:"actor_id"`
	DisplayName  string    `json:"display_name"`
	Stage        Stage     `json:"stage"`
	LastName     string    `json:"last_name"`
	FirstName    string    `json:"first_name"`
	Photo        string    `json:"photo"`
	YearMajor    string    `json:"year_major"`
	StudentID    string    `json:"student_id"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Expired reports whether the session has been inactive longer than timeout.
func (s Session) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) > timeout
}

// BasicInfo is the stage-1 input.
type BasicInfo struct {
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Photo     string `json:"photo"`
	YearMajor string `json:"year_major"`
	StudentID string `json:"student_id"`
}

// Validate returns every field error at once, not just the first.
func (in BasicInfo) Validate() []string {
	var errs []string
	if msg := eligibility.ValidateName("Last Name", in.LastName); msg != "" {
		errs = append(errs, msg)
	}
	if msg := eligibility.ValidateName("First Name", in.FirstName); msg != "" {
		errs = append(errs, msg)
	}
	if msg := eligibility.ValidatePhoto(in.Photo); msg != "" {
		errs = append(errs, msg)
	}
	if msg := eligibility.ValidateYearMajor(in.YearMajor); msg != "" {
		errs = append(errs, msg)
	}
	if msg := eligibility.ValidateStudentID(in.StudentID); msg != "" {
		errs = append(errs, msg)
	}
	return errs
}

// ContactInfo is the stage-2 input.
type ContactInfo struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Validate returns every field error at once.
func (in ContactInfo) Validate() []string {
	var errs []string
	if msg := eligibility.ValidatePhone(in.Phone); msg != "" {
		errs = append(errs, msg)
	}
	if msg := eligibility.ValidateEmail(in.Email); msg != "" {
		errs = append(errs, msg)
	}
	return errs
}

// Begin creates a session at StageBasicInfo from validated stage-1 input.
func Begin(actorID, displayName string, in BasicInfo, now time.Time) Session {
	return Session{
		ActorID:      actorID,
		DisplayName:  displayName,
		Stage:        StageBasicInfo,
		LastName:     trim(in.LastName),
		FirstName:    trim(in.FirstName),
		Photo:        trim(in.Photo),
		YearMajor:    trim(in.YearMajor),
		StudentID:    trim(in.StudentID),
		StartedAt:    now,
		LastActivity: now,
	}
}

// WithContactInfo advances a StageBasicInfo session with validated stage-2
// input, normalizing the phone number.
func (s Session) WithContactInfo(in ContactInfo, now time.Time) Session {
	s.Stage = StageContactInfo
	s.Phone = eligibility.NormalizePhone(in.Phone)
	s.Email = trim(in.Email)
	s.LastActivity = now
	return s
}

// Assemble builds the final Registration from a StageContactInfo session and
// the chosen team. submittedAt is the commit timestamp.
func (s Session) Assemble(team string, submittedAt time.Time) models.Registration {
	return models.Registration{
		DiscordID:   s.ActorID,
		LastName:    s.LastName,
		FirstName:   s.FirstName,
		Photo:       s.Photo,
		YearMajor:   s.YearMajor,
		StudentID:   s.StudentID,
		Phone:       s.Phone,
		Email:       s.Email,
		Team:        team,
		SubmittedAt: submittedAt,
	}
}

func trim(s string) string { return strings.TrimSpace(s) }
