package eligibility

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01-23 45 67 89", "0123456789"},
		{"(012) 345-6789", "0123456789"},
		{"0123456789", "0123456789"},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in), "input %q", tt.in)
	}
}

func TestValidatePhone(t *testing.T) {
	assert.Empty(t, ValidatePhone("01-23 45 67 89"))
	assert.Empty(t, ValidatePhone("0123456789"))
	assert.Equal(t, "Phone number cannot be empty", ValidatePhone("--  --"))
	// nine digits is not enough
	assert.Equal(t, "Phone number must be exactly 10 digits long", ValidatePhone("012345678"))
	assert.Equal(t, "Phone number must be exactly 10 digits long", ValidatePhone("01234567890"))
}

func TestValidateName(t *testing.T) {
	assert.Empty(t, ValidateName("Last Name", "Martin"))
	assert.Equal(t, "Last Name cannot be empty", ValidateName("Last Name", "   "))
	assert.Equal(t, "First Name cannot be empty", ValidateName("First Name", ""))
	long := strings.Repeat("a", 101)
	assert.Equal(t, "Last Name cannot be longer than 100 characters", ValidateName("Last Name", long))
	assert.Empty(t, ValidateName("Last Name", strings.Repeat("a", 100)))
}

// Length limits count characters, not UTF-8 bytes: a 100-rune accented name
// is twice that in bytes and must still pass.
func TestLengthLimitsCountRunesNotBytes(t *testing.T) {
	assert.Empty(t, ValidateName("Last Name", strings.Repeat("é", 100)))
	assert.Equal(t, "Last Name cannot be longer than 100 characters",
		ValidateName("Last Name", strings.Repeat("é", 101)))
	assert.Empty(t, ValidateName("First Name", "Łukasz Grzegorz-Wośkowiak"))
	assert.Empty(t, ValidateYearMajor(strings.Repeat("é", 150)))
	assert.Equal(t, "Year + Major cannot be longer than 150 characters",
		ValidateYearMajor(strings.Repeat("é", 151)))
	assert.Empty(t, ValidatePhoto("https://example.com/"+strings.Repeat("é", 480)))
}

func TestValidateStudentID(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
	}{
		{"valid", "12345", ""},
		{"valid long", "202400123", ""},
		{"empty", "", "Student ID cannot be empty"},
		{"letters", "12a45", "Student ID must contain only numbers"},
		{"spaces", "12 45", "Student ID must contain only numbers"},
		{"too short", "1234", "Student ID must be at least 5 digits long"},
		{"at cap", strings.Repeat("9", 20), ""},
		{"too long", strings.Repeat("9", 21), "Student ID cannot be longer than 20 digits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateStudentID(tt.in))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.Empty(t, ValidateEmail("name@example.com"))
	assert.Empty(t, ValidateEmail("first.last+tag@sub.domain.org"))
	assert.Equal(t, "Email address cannot be empty", ValidateEmail(""))
	assert.Equal(t, "Please enter a valid email address (e.g., name@example.com)", ValidateEmail("not-an-email"))
	assert.Equal(t, "Please enter a valid email address (e.g., name@example.com)", ValidateEmail("name@domain"))
	tooLong := strings.Repeat("a", 95) + "@example.com"
	assert.Equal(t, "Email address is too long (maximum 100 characters)", ValidateEmail(tooLong))
}

func TestValidatePhoto(t *testing.T) {
	assert.Empty(t, ValidatePhoto("https://example.com/me.jpg"))
	assert.Equal(t, "Photo URL cannot be empty", ValidatePhoto(""))
	assert.Equal(t, "Photo URL cannot be longer than 500 characters",
		ValidatePhoto("https://example.com/"+strings.Repeat("x", 500)))
}

func TestValidateYearMajor(t *testing.T) {
	assert.Empty(t, ValidateYearMajor("3rd year CS"))
	assert.Equal(t, "Year + Major cannot be empty", ValidateYearMajor(" "))
	assert.Equal(t, "Year + Major cannot be longer than 150 characters",
		ValidateYearMajor(strings.Repeat("x", 151)))
}

func TestValidateTeam(t *testing.T) {
	for _, team := range []string{"IT", "Design", "Marketing", "B2B", "OPS", "HR"} {
		assert.Empty(t, ValidateTeam(team))
	}
	want := "Invalid team. Must be one of: IT, Design, Marketing, B2B, OPS, HR"
	assert.Equal(t, want, ValidateTeam("it"))
	assert.Equal(t, want, ValidateTeam("Sales"))
	assert.Equal(t, want, ValidateTeam(""))
}

func TestValidateField(t *testing.T) {
	assert.Empty(t, ValidateField("team", "IT"))
	assert.NotEmpty(t, ValidateField("team", "Sales"))
	assert.NotEmpty(t, ValidateField("phone", "12345"))
	assert.Empty(t, ValidateField("phone", "01 23 45 67 89"))
	// unknown fields pass through; the persistence whitelist rejects them
	assert.Empty(t, ValidateField("bogus_field", "x"))
}
