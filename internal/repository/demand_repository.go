package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DemandRepository reads per-course elective enrollment counts.
type DemandRepository struct {
	db *sqlx.DB
}

// NewDemandRepository constructs repository.
func NewDemandRepository(db *sqlx.DB) *DemandRepository {
	return &DemandRepository{db: db}
}

// MapByLevel returns the registered student count keyed by course code for
// one level. Courses with no registrations simply have no entry.
func (r *DemandRepository) MapByLevel(ctx context.Context, level int) (map[string]int, error) {
	const query = `SELECT course_code, student_count FROM course_demand WHERE level = $1`
	rows, err := r.db.QueryxContext(ctx, query, level)
	if err != nil {
		return nil, fmt.Errorf("load course demand: %w", err)
	}
	defer rows.Close()

	demand := make(map[string]int)
	for rows.Next() {
		var code string
		var count int
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("scan course demand: %w", err)
		}
		demand[code] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course demand: %w", err)
	}
	return demand, nil
}
