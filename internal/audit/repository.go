// Package audit appends one log row per mutating admin action. Entries are
// never read back by the service; admins inspect the table directly.
package audit

import (
	"context"

	"github.com/omc-club/registration/internal/models"
	"github.com/omc-club/registration/pkg/database"
)

// Recorder appends admin actions to the audit log.
type Recorder interface {
	Record(ctx context.Context, action models.AdminAction) error
}

// Repository is the PostgreSQL-backed Recorder.
type Repository struct {
	db *database.Client
}

// NewRepository creates an audit log repository.
func NewRepository(db *database.Client) *Repository {
	return &Repository{db: db}
}

// Record appends one audit entry. recorded_at defaults to NOW() when unset.
func (r *Repository) Record(ctx context.Context, action models.AdminAction) error {
	return r.db.WithRetry(ctx, "log_admin_action", func(ctx context.Context) error {
		if action.RecordedAt.IsZero() {
			const q = `INSERT INTO admin_logs (action, admin_id, admin_name, details) VALUES ($1, $2, $3, $4)`
			_, err := r.db.Pool().Exec(ctx, q, action.Action, action.AdminID, action.AdminName, action.Details)
			return err
		}
		const q = `INSERT INTO admin_logs (action, admin_id, admin_name, details, recorded_at) VALUES ($1, $2, $3, $4, $5)`
		_, err := r.db.Pool().Exec(ctx, q, action.Action, action.AdminID, action.AdminName, action.Details, action.RecordedAt)
		return err
	})
}
