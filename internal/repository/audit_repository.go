package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadplan/timetable-api/internal/models"
)

// AuditRepository records scheduling actions for after-the-fact review.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts one audit entry.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry == nil {
		return fmt.Errorf("audit entry is nil")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO audit_logs (id, user_id, action, level, group_name, prompt, changes_summary, conflicts_before, conflicts_after, created_at)
VALUES (:id, :user_id, :action, :level, :group_name, :prompt, :changes_summary, :conflicts_before, :conflicts_after, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, entry); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListByLevel returns the newest audit entries for a level.
func (r *AuditRepository) ListByLevel(ctx context.Context, level, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, user_id, action, level, group_name, prompt, changes_summary, conflicts_before, conflicts_after, created_at
FROM audit_logs WHERE level = $1 ORDER BY created_at DESC LIMIT $2`
	var entries []models.AuditLog
	if err := r.db.SelectContext(ctx, &entries, query, level, limit); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return entries, nil
}
