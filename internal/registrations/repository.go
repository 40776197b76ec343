package registrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/omc-club/registration/internal/models"
	"github.com/omc-club/registration/pkg/database"
)

var (
	// ErrAlreadyRegistered is returned when a second registration for the
	// same discord ID hits the uniqueness constraint.
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrNotFound is returned when no registration exists for the discord ID.
	ErrNotFound = errors.New("registration not found")
	// ErrNoRegistrations is returned by export when the table is empty.
	ErrNoRegistrations = errors.New("no registrations to export")
)

// InvalidFieldError rejects a field edit whose column is not editable.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return "Invalid field: " + e.Field
}

// editableFields is the whitelist for admin field edits: everything except
// the identity key and the timestamps.
var editableFields = map[string]bool{
	"last_name":  true,
	"first_name": true,
	"photo":      true,
	"year_major": true,
	"student_id": true,
	"phone":      true,
	"email":      true,
	"team":       true,
}

const allColumns = `discord_id, last_name, first_name, photo, year_major, student_id, phone, email, team, submitted_at, created_at`

// Repository persists registrations through the retrying database client.
type Repository struct {
	db *database.Client
}

// NewRepository creates a registrations repository.
func NewRepository(db *database.Client) *Repository {
	return &Repository{db: db}
}

func scanRegistration(row pgx.Row, reg *models.Registration) error {
	return row.Scan(&reg.DiscordID, &reg.LastName, &reg.FirstName, &reg.Photo,
		&reg.YearMajor, &reg.StudentID, &reg.Phone, &reg.Email, &reg.Team,
		&reg.SubmittedAt, &reg.CreatedAt)
}

// Save inserts a registration. The primary key on discord_id is the final
// backstop against two flows racing to commit: the loser gets
// ErrAlreadyRegistered no matter what its pre-checks saw.
func (r *Repository) Save(ctx context.Context, reg *models.Registration) error {
	return r.db.WithRetry(ctx, "save_registration", func(ctx context.Context) error {
		const q = `INSERT INTO registrations (` + allColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			RETURNING created_at`
		err := r.db.Pool().QueryRow(ctx, q,
			reg.DiscordID, reg.LastName, reg.FirstName, reg.Photo, reg.YearMajor,
			reg.StudentID, reg.Phone, reg.Email, reg.Team, reg.SubmittedAt,
		).Scan(&reg.CreatedAt)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyRegistered
		}
		return err
	})
}

// IsRegistered reports whether a registration exists for the discord ID.
func (r *Repository) IsRegistered(ctx context.Context, discordID string) (bool, error) {
	var exists bool
	err := r.db.WithRetry(ctx, "is_registered", func(ctx context.Context) error {
		const q = `SELECT EXISTS (SELECT 1 FROM registrations WHERE discord_id = $1)`
		return r.db.Pool().QueryRow(ctx, q, discordID).Scan(&exists)
	})
	return exists, err
}

// Get returns the registration for the discord ID, or ErrNotFound.
func (r *Repository) Get(ctx context.Context, discordID string) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.WithRetry(ctx, "get_registration", func(ctx context.Context) error {
		const q = `SELECT ` + allColumns + ` FROM registrations WHERE discord_id = $1`
		return scanRegistration(r.db.Pool().QueryRow(ctx, q, discordID), &reg)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// RegisteredIDs returns the set of all registered discord IDs.
func (r *Repository) RegisteredIDs(ctx context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	err := r.db.WithRetry(ctx, "registered_ids", func(ctx context.Context) error {
		rows, err := r.db.Pool().Query(ctx, `SELECT discord_id FROM registrations`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids[id] = struct{}{}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Stats returns the total count, per-team counts and the latest registration.
func (r *Repository) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{Teams: make(map[string]int)}
	err := r.db.WithRetry(ctx, "stats", func(ctx context.Context) error {
		stats.Total = 0
		stats.Teams = make(map[string]int)
		stats.Latest = nil

		if err := r.db.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&stats.Total); err != nil {
			return err
		}
		rows, err := r.db.Pool().Query(ctx, `SELECT team, COUNT(*) FROM registrations GROUP BY team`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var team string
			var count int
			if err := rows.Scan(&team, &count); err != nil {
				return err
			}
			stats.Teams[team] = count
		}
		if err := rows.Err(); err != nil {
			return err
		}

		var latest models.Registration
		const q = `SELECT ` + allColumns + ` FROM registrations ORDER BY submitted_at DESC LIMIT 1`
		err = scanRegistration(r.db.Pool().QueryRow(ctx, q), &latest)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		stats.Latest = &latest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Remove deletes the registration for the discord ID, or ErrNotFound when no
// row was affected.
func (r *Repository) Remove(ctx context.Context, discordID string) error {
	return r.db.WithRetry(ctx, "remove_registration", func(ctx context.Context) error {
		tag, err := r.db.Pool().Exec(ctx, `DELETE FROM registrations WHERE discord_id = $1`, discordID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ModifyField updates one editable column of a registration. An unknown
// field name fails immediately without touching the database; zero rows
// affected means ErrNotFound.
func (r *Repository) ModifyField(ctx context.Context, discordID, field, value string) error {
	if !editableFields[field] {
		return &InvalidFieldError{Field: field}
	}
	return r.db.WithRetry(ctx, "modify_field", func(ctx context.Context) error {
		// field is whitelisted above, never raw user input
		q := fmt.Sprintf(`UPDATE registrations SET %s = $1 WHERE discord_id = $2`, field)
		tag, err := r.db.Pool().Exec(ctx, q, value, discordID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// All returns every registration ordered by submission time descending.
func (r *Repository) All(ctx context.Context) ([]models.Registration, error) {
	var list []models.Registration
	err := r.db.WithRetry(ctx, "all_registrations", func(ctx context.Context) error {
		list = list[:0]
		const q = `SELECT ` + allColumns + ` FROM registrations ORDER BY submitted_at DESC`
		rows, err := r.db.Pool().Query(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var reg models.Registration
			if err := rows.Scan(&reg.DiscordID, &reg.LastName, &reg.FirstName, &reg.Photo,
				&reg.YearMajor, &reg.StudentID, &reg.Phone, &reg.Email, &reg.Team,
				&reg.SubmittedAt, &reg.CreatedAt); err != nil {
				return err
			}
			list = append(list, reg)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ExportCSV writes every registration to path, newest first. Returns
// ErrNoRegistrations (and writes nothing) when the table is empty.
func (r *Repository) ExportCSV(ctx context.Context, path string) (int, error) {
	list, err := r.All(ctx)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, ErrNoRegistrations
	}
	if err := WriteCSV(path, list); err != nil {
		return 0, err
	}
	return len(list), nil
}
