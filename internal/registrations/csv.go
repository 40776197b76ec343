package registrations

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/omc-club/registration/internal/models"
)

// csvHeader is the fixed export column order.
var csvHeader = []string{
	"last_name", "first_name", "photo", "year_major", "student_id",
	"phone", "email", "discord_id", "team", "timestamp",
}

// WriteCSV writes registrations to path in the fixed column order, with the
// submission timestamp rendered as RFC 3339.
func WriteCSV(path string, list []models.Registration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, reg := range list {
		record := []string{
			reg.LastName, reg.FirstName, reg.Photo, reg.YearMajor, reg.StudentID,
			reg.Phone, reg.Email, reg.DiscordID, reg.Team,
			reg.SubmittedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}
