package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/acadplan/timetable-api/internal/models"
)

// ScheduleVersionRepository persists generated schedule versions. Group
// schedules are stored as one JSONB document per version; the row never
// needs to be queried section by section.
type ScheduleVersionRepository struct {
	db *sqlx.DB
}

// NewScheduleVersionRepository constructs repository.
func NewScheduleVersionRepository(db *sqlx.DB) *ScheduleVersionRepository {
	return &ScheduleVersionRepository{db: db}
}

type scheduleVersionRow struct {
	ID            string         `db:"id"`
	Level         int            `db:"level"`
	Groups        types.JSONText `db:"groups"`
	TotalSections int            `db:"total_sections"`
	Conflicts     int            `db:"conflicts"`
	Efficiency    int            `db:"efficiency"`
	GeneratedAt   time.Time      `db:"generated_at"`
}

func (row scheduleVersionRow) toModel() (*models.ScheduleVersion, error) {
	version := &models.ScheduleVersion{
		ID:            row.ID,
		Level:         row.Level,
		TotalSections: row.TotalSections,
		Conflicts:     row.Conflicts,
		Efficiency:    row.Efficiency,
		GeneratedAt:   row.GeneratedAt,
	}
	if len(row.Groups) > 0 {
		if err := json.Unmarshal(row.Groups, &version.Groups); err != nil {
			return nil, fmt.Errorf("decode schedule version groups: %w", err)
		}
	}
	return version, nil
}

func rowFromModel(version *models.ScheduleVersion) (scheduleVersionRow, error) {
	groups, err := json.Marshal(version.Groups)
	if err != nil {
		return scheduleVersionRow{}, fmt.Errorf("encode schedule version groups: %w", err)
	}
	return scheduleVersionRow{
		ID:            version.ID,
		Level:         version.Level,
		Groups:        types.JSONText(groups),
		TotalSections: version.TotalSections,
		Conflicts:     version.Conflicts,
		Efficiency:    version.Efficiency,
		GeneratedAt:   version.GeneratedAt,
	}, nil
}

const scheduleVersionColumns = `id, level, groups, total_sections, conflicts, efficiency, generated_at`

// Create inserts a new version, assigning an identifier and timestamp when
// the caller left them empty.
func (r *ScheduleVersionRepository) Create(ctx context.Context, version *models.ScheduleVersion) error {
	if version == nil {
		return fmt.Errorf("schedule version payload is nil")
	}
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	if version.GeneratedAt.IsZero() {
		version.GeneratedAt = time.Now().UTC()
	}

	row, err := rowFromModel(version)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO schedule_versions (id, level, groups, total_sections, conflicts, efficiency, generated_at)
VALUES (:id, :level, :groups, :total_sections, :conflicts, :efficiency, :generated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, row); err != nil {
		return fmt.Errorf("insert schedule version: %w", err)
	}
	return nil
}

// LatestForLevel returns the most recently generated version for a level.
func (r *ScheduleVersionRepository) LatestForLevel(ctx context.Context, level int) (*models.ScheduleVersion, error) {
	const query = `SELECT ` + scheduleVersionColumns + `
FROM schedule_versions WHERE level = $1 ORDER BY generated_at DESC, id DESC LIMIT 1`
	var row scheduleVersionRow
	if err := r.db.GetContext(ctx, &row, query, level); err != nil {
		return nil, err
	}
	return row.toModel()
}

// LatestPerLevel returns the most recent version of every level that has one.
func (r *ScheduleVersionRepository) LatestPerLevel(ctx context.Context) ([]models.ScheduleVersion, error) {
	const query = `SELECT DISTINCT ON (level) ` + scheduleVersionColumns + `
FROM schedule_versions ORDER BY level, generated_at DESC, id DESC`
	var rows []scheduleVersionRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list latest schedule versions: %w", err)
	}
	versions := make([]models.ScheduleVersion, 0, len(rows))
	for _, row := range rows {
		version, err := row.toModel()
		if err != nil {
			return nil, err
		}
		versions = append(versions, *version)
	}
	return versions, nil
}

// ListByLevel returns every stored version for a level, newest first.
func (r *ScheduleVersionRepository) ListByLevel(ctx context.Context, level int) ([]models.ScheduleVersion, error) {
	const query = `SELECT ` + scheduleVersionColumns + `
FROM schedule_versions WHERE level = $1 ORDER BY generated_at DESC, id DESC`
	var rows []scheduleVersionRow
	if err := r.db.SelectContext(ctx, &rows, query, level); err != nil {
		return nil, fmt.Errorf("list schedule versions: %w", err)
	}
	versions := make([]models.ScheduleVersion, 0, len(rows))
	for _, row := range rows {
		version, err := row.toModel()
		if err != nil {
			return nil, err
		}
		versions = append(versions, *version)
	}
	return versions, nil
}

// FindByID loads one version by its identifier.
func (r *ScheduleVersionRepository) FindByID(ctx context.Context, id string) (*models.ScheduleVersion, error) {
	const query = `SELECT ` + scheduleVersionColumns + ` FROM schedule_versions WHERE id = $1`
	var row scheduleVersionRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return row.toModel()
}

// UpdateInPlace replaces a version's groups and derived counters without
// creating a new version row.
func (r *ScheduleVersionRepository) UpdateInPlace(ctx context.Context, version *models.ScheduleVersion) error {
	row, err := rowFromModel(version)
	if err != nil {
		return err
	}
	const query = `
UPDATE schedule_versions
SET groups = :groups, total_sections = :total_sections, conflicts = :conflicts, efficiency = :efficiency
WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.db, query, row)
	if err != nil {
		return fmt.Errorf("update schedule version: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("schedule version rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a stored version.
func (r *ScheduleVersionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedule_versions WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete schedule version: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("schedule version rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
