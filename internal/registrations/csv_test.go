package registrations

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omc-club/registration/internal/models"
)

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registrations.csv")
	submitted := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)
	list := []models.Registration{
		{
			DiscordID:   "111111111111111111",
			LastName:    "Martin",
			FirstName:   "Alex",
			Photo:       "https://example.com/alex.jpg",
			YearMajor:   "3rd year CS",
			StudentID:   "202400123",
			Phone:       "0123456789",
			Email:       "alex@example.com",
			Team:        models.TeamIT,
			SubmittedAt: submitted,
		},
		{
			DiscordID:   "222222222222222222",
			LastName:    "Durand, Jr.",
			FirstName:   "Sam",
			Photo:       "https://example.com/sam.jpg",
			YearMajor:   "2nd year Marketing",
			StudentID:   "202300456",
			Phone:       "0987654321",
			Email:       "sam@example.com",
			Team:        models.TeamMarketing,
			SubmittedAt: submitted.Add(-time.Hour),
		},
	}

	require.NoError(t, WriteCSV(path, list))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"last_name", "first_name", "photo", "year_major", "student_id",
		"phone", "email", "discord_id", "team", "timestamp",
	}, records[0])

	// every stored field reproduced exactly, including the comma in the name
	assert.Equal(t, []string{
		"Martin", "Alex", "https://example.com/alex.jpg", "3rd year CS", "202400123",
		"0123456789", "alex@example.com", "111111111111111111", "IT",
		"2026-08-30T14:05:00Z",
	}, records[1])
	assert.Equal(t, "Durand, Jr.", records[2][0])

	ts, err := time.Parse(time.RFC3339, records[1][9])
	require.NoError(t, err)
	assert.True(t, ts.Equal(submitted))
}

func TestModifyFieldRejectsUnknownField(t *testing.T) {
	// the whitelist check runs before any database access
	r := NewRepository(nil)
	err := r.ModifyField(context.Background(), "111", "bogus_field", "x")
	var invalid *InvalidFieldError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Invalid field: bogus_field", err.Error())
}

func TestEditableFieldWhitelist(t *testing.T) {
	for _, field := range []string{"last_name", "first_name", "photo", "year_major", "student_id", "phone", "email", "team"} {
		assert.True(t, editableFields[field], field)
	}
	assert.False(t, editableFields["discord_id"])
	assert.False(t, editableFields["submitted_at"])
	assert.False(t, editableFields["created_at"])
}
