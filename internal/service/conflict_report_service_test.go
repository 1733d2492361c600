package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadplan/timetable-api/internal/models"
	appErrors "github.com/acadplan/timetable-api/pkg/errors"
)

type latestReaderStub struct {
	versions []models.ScheduleVersion
	calls    int
}

func (s *latestReaderStub) LatestPerLevel(_ context.Context) ([]models.ScheduleVersion, error) {
	s.calls++
	return s.versions, nil
}

type reportCacheStub struct {
	sets int
}

func (s *reportCacheStub) Get(_ context.Context, _ string, _ interface{}) error {
	return appErrors.ErrCacheMiss
}

func (s *reportCacheStub) Set(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
	s.sets++
	return nil
}

func conflictingVersions() []models.ScheduleVersion {
	level1 := models.ScheduleVersion{
		Level: 1,
		Groups: map[string]models.GroupSchedule{
			"A": {StudentCount: 25, Sections: []models.Section{
				{CourseCode: "CS101", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"},
			}},
		},
	}
	level2 := models.ScheduleVersion{
		Level: 2,
		Groups: map[string]models.GroupSchedule{
			"A": {StudentCount: 25, Sections: []models.Section{
				{CourseCode: "CS201", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"},
			}},
		},
	}
	return []models.ScheduleVersion{level1, level2}
}

func TestConflictReportCountsInterLevelPairOnce(t *testing.T) {
	reader := &latestReaderStub{versions: conflictingVersions()}
	svc := NewConflictReportService(reader, nil, time.Minute, nil)

	report, err := svc.Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalConflicts)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, models.ConflictTypeInterLevel, report.Conflicts[0].Type)
	assert.Equal(t, 2, report.Conflicts[0].Level)
	assert.Equal(t, 1, report.Conflicts[0].OtherLevel)
	assert.Equal(t, 1, report.BySeverity[string(models.SeverityCritical)])
	assert.ElementsMatch(t, []int{1, 2}, report.CheckedLevels)
}

func TestConflictReportCleanSchedules(t *testing.T) {
	versions := conflictingVersions()
	section := versions[1].Groups["A"].Sections
	section[0].Room = "A102"

	svc := NewConflictReportService(&latestReaderStub{versions: versions}, nil, time.Minute, nil)
	report, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.TotalConflicts)
	assert.Empty(t, report.Conflicts)
}

func TestConflictReportWritesCacheOnMiss(t *testing.T) {
	reader := &latestReaderStub{versions: conflictingVersions()}
	cache := &reportCacheStub{}
	svc := NewConflictReportService(reader, cache, time.Minute, nil)

	_, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reader.calls)
	assert.Equal(t, 1, cache.sets)
}
