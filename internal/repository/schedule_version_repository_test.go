package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadplan/timetable-api/internal/models"
)

func newScheduleVersionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

const groupsJSON = `{"A":{"student_count":25,"sections":[{"course_code":"CS101","group":"A","day":"MONDAY","start_time":"09:00","end_time":"10:00","room":"A101","student_count":25,"capacity":40}]}}`

func TestScheduleVersionRepositoryCreateAssignsIdentity(t *testing.T) {
	db, mock, cleanup := newScheduleVersionRepoMock(t)
	defer cleanup()
	repo := NewScheduleVersionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_versions")).
		WithArgs(sqlmock.AnyArg(), 1, sqlmock.AnyArg(), 6, 0, 100, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	version := &models.ScheduleVersion{
		Level:         1,
		Groups:        map[string]models.GroupSchedule{"A": {StudentCount: 25}},
		TotalSections: 6,
		Efficiency:    100,
	}
	require.NoError(t, repo.Create(context.Background(), version))
	assert.NotEmpty(t, version.ID)
	assert.False(t, version.GeneratedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleVersionRepositoryLatestForLevel(t *testing.T) {
	db, mock, cleanup := newScheduleVersionRepoMock(t)
	defer cleanup()
	repo := NewScheduleVersionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "level", "groups", "total_sections", "conflicts", "efficiency", "generated_at"}).
		AddRow("ver-1", 1, types.JSONText(groupsJSON), 1, 0, 100, time.Now())
	mock.ExpectQuery("SELECT id, level, groups, total_sections, conflicts, efficiency, generated_at").
		WithArgs(1).
		WillReturnRows(rows)

	version, err := repo.LatestForLevel(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ver-1", version.ID)
	require.Contains(t, version.Groups, "A")
	require.Len(t, version.Groups["A"].Sections, 1)
	assert.Equal(t, "CS101", version.Groups["A"].Sections[0].CourseCode)
	assert.Equal(t, "A101", version.Groups["A"].Sections[0].Room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleVersionRepositoryLatestPerLevel(t *testing.T) {
	db, mock, cleanup := newScheduleVersionRepoMock(t)
	defer cleanup()
	repo := NewScheduleVersionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "level", "groups", "total_sections", "conflicts", "efficiency", "generated_at"}).
		AddRow("ver-1", 1, types.JSONText(`{}`), 4, 0, 100, time.Now()).
		AddRow("ver-2", 2, types.JSONText(`{}`), 5, 1, 83, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (level)")).
		WillReturnRows(rows)

	versions, err := repo.LatestPerLevel(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].Level)
	assert.Equal(t, 2, versions[1].Level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleVersionRepositoryUpdateInPlaceNotFound(t *testing.T) {
	db, mock, cleanup := newScheduleVersionRepoMock(t)
	defer cleanup()
	repo := NewScheduleVersionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedule_versions")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateInPlace(context.Background(), &models.ScheduleVersion{ID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleVersionRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newScheduleVersionRepoMock(t)
	defer cleanup()
	repo := NewScheduleVersionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_versions WHERE id = $1")).
		WithArgs("ver-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "ver-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
