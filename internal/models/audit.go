package models

import "time"

// AuditAction constants represent scheduling actions to be logged.
const (
	AuditActionGenerate = "SCHEDULE_GENERATE"
	AuditActionUpdate   = "SCHEDULE_UPDATE"
	AuditActionDelete   = "SCHEDULE_DELETE"
	AuditActionRegen    = "SCHEDULE_REGENERATE_ALL"
)

// AuditLog records one scheduling action together with the conflict counts
// observed before and after it.
type AuditLog struct {
	ID              string    `db:"id" json:"id"`
	UserID          *string   `db:"user_id" json:"user_id,omitempty"`
	Action          string    `db:"action" json:"action"`
	Level           int       `db:"level" json:"level"`
	GroupName       string    `db:"group_name" json:"group_name,omitempty"`
	Prompt          string    `db:"prompt" json:"prompt,omitempty"`
	ChangesSummary  string    `db:"changes_summary" json:"changes_summary"`
	ConflictsBefore int       `db:"conflicts_before" json:"conflicts_before"`
	ConflictsAfter  int       `db:"conflicts_after" json:"conflicts_after"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
