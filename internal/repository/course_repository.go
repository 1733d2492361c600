package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadplan/timetable-api/internal/models"
)

// CourseRepository reads the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListByLevel returns the catalog entries taught at one level.
func (r *CourseRepository) ListByLevel(ctx context.Context, level int) ([]models.Course, error) {
	const query = `SELECT code, name, level, course_type, is_lab FROM courses WHERE level = $1 ORDER BY code`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, level); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
