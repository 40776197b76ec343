package models

import "time"

// Admin action kinds recorded in the audit log.
const (
	ActionRegistration       = "REGISTRATION"
	ActionModifyRegistration = "MODIFY_REGISTRATION"
	ActionDeleteRegistration = "DELETE_REGISTRATION"
	ActionExportCSV          = "EXPORT_CSV"
	ActionAssignNotRenewed   = "ASSIGN_NOT_RENEWED"
	ActionAssignUnverified   = "ASSIGN_UNVERIFIED"
	ActionDeadlineEnforce    = "DEADLINE_ENFORCEMENT"
)

// AdminAction is one append-only audit log entry for a mutating admin action.
type AdminAction struct {
	Action     string    `json:"action"`
	AdminID    string    `json:"admin_id"`
	AdminName  string    `json:"admin_name"`
	Details    string    `json:"details"`
	RecordedAt time.Time `json:"recorded_at"`
}
