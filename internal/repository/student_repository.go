package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadplan/timetable-api/internal/models"
)

// StudentRepository reads the student roster and writes group assignments.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByLevel returns the level's roster in a stable order so group
// assignment is reproducible run to run.
func (r *StudentRepository) ListByLevel(ctx context.Context, level int) ([]models.Student, error) {
	const query = `SELECT id, name, level, COALESCE(group_name, '') AS group_name
FROM students WHERE level = $1 ORDER BY name, id`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, level); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// UpdateGroupAssignments writes the computed group name back for each
// student inside one transaction.
func (r *StudentRepository) UpdateGroupAssignments(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin group assignment tx: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE students SET group_name = $1 WHERE id = $2`
	for _, student := range students {
		if _, err := tx.ExecContext(ctx, query, student.GroupName, student.ID); err != nil {
			return fmt.Errorf("assign student %s to group: %w", student.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit group assignments: %w", err)
	}
	return nil
}
