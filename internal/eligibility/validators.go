package eligibility

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/omc-club/registration/internal/models"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigitPattern = regexp.MustCompile(`[^\d]`)
)

// NormalizePhone strips every non-digit character.
func NormalizePhone(phone string) string {
	return nonDigitPattern.ReplaceAllString(phone, "")
}

// ValidateName checks a first or last name. label is the user-facing field
// name ("Last Name", "First Name").
func ValidateName(label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return label + " cannot be empty"
	}
	if utf8.RuneCountInString(value) > 100 {
		return label + " cannot be longer than 100 characters"
	}
	return ""
}

// ValidatePhoto checks the photo URL field.
func ValidatePhoto(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Photo URL cannot be empty"
	}
	if utf8.RuneCountInString(value) > 500 {
		return "Photo URL cannot be longer than 500 characters"
	}
	return ""
}

// ValidateYearMajor checks the year + major field.
func ValidateYearMajor(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Year + Major cannot be empty"
	}
	if utf8.RuneCountInString(value) > 150 {
		return "Year + Major cannot be longer than 150 characters"
	}
	return ""
}

// ValidateStudentID checks the student ID field.
func ValidateStudentID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Student ID cannot be empty"
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return "Student ID must contain only numbers"
		}
	}
	if len(value) < 5 {
		return "Student ID must be at least 5 digits long"
	}
	if len(value) > 20 {
		return "Student ID cannot be longer than 20 digits"
	}
	return ""
}

// ValidatePhone checks a phone number after normalization.
func ValidatePhone(value string) string {
	clean := NormalizePhone(value)
	if clean == "" {
		return "Phone number cannot be empty"
	}
	if len(clean) != 10 {
		return "Phone number must be exactly 10 digits long"
	}
	return ""
}

// ValidateEmail checks the email field.
func ValidateEmail(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Email address cannot be empty"
	}
	if utf8.RuneCountInString(value) > 100 {
		return "Email address is too long (maximum 100 characters)"
	}
	if !emailPattern.MatchString(value) {
		return "Please enter a valid email address (e.g., name@example.com)"
	}
	return ""
}

// ValidateTeam checks a team code against the six accepted literals.
func ValidateTeam(value string) string {
	if !models.ValidTeam(strings.TrimSpace(value)) {
		return fmt.Sprintf("Invalid team. Must be one of: %s", strings.Join(models.Teams, ", "))
	}
	return ""
}

// ValidateField validates one editable registration attribute by its column
// name, for admin field edits. Returns "" when valid; an unknown field
// returns "" here and is rejected by the persistence whitelist instead.
func ValidateField(field, value string) string {
	switch field {
	case "last_name":
		return ValidateName("Last Name", value)
	case "first_name":
		return ValidateName("First Name", value)
	case "photo":
		return ValidatePhoto(value)
	case "year_major":
		return ValidateYearMajor(value)
	case "student_id":
		return ValidateStudentID(value)
	case "phone":
		return ValidatePhone(value)
	case "email":
		return ValidateEmail(value)
	case "team":
		return ValidateTeam(value)
	}
	return ""
}
