package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadplan/timetable-api/internal/models"
)

type latestScheduleStub struct{ version *models.ScheduleVersion }

func (s latestScheduleStub) Latest(_ context.Context, _ int) (*models.ScheduleVersion, error) {
	return s.version, nil
}

func exportVersion() *models.ScheduleVersion {
	return &models.ScheduleVersion{
		ID:    "ver-1",
		Level: 1,
		Groups: map[string]models.GroupSchedule{
			"B": {StudentCount: 20, Sections: []models.Section{
				{CourseCode: "MATH101", Group: "B", Day: "TUESDAY", StartTime: "09:00", EndTime: "10:00", Room: "A102", StudentCount: 20},
			}},
			"A": {StudentCount: 25, Sections: []models.Section{
				{CourseCode: "MATH101", Group: "A", Day: "TUESDAY", StartTime: "10:00", EndTime: "11:00", Room: "A101", StudentCount: 25},
				{CourseCode: "CS101", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101", StudentCount: 25},
			}},
		},
	}
}

func TestExportServiceCSVOrdering(t *testing.T) {
	svc := NewExportService(latestScheduleStub{version: exportVersion()}, nil)

	payload, err := svc.CSV(context.Background(), 1)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Group,Day,Start,End,Course,Room,Students", lines[0])
	assert.Equal(t, "A,MONDAY,09:00,10:00,CS101,A101,25", lines[1])
	assert.Equal(t, "A,TUESDAY,10:00,11:00,MATH101,A101,25", lines[2])
	assert.Equal(t, "B,TUESDAY,09:00,10:00,MATH101,A102,20", lines[3])
}

func TestExportServicePDFProducesDocument(t *testing.T) {
	svc := NewExportService(latestScheduleStub{version: exportVersion()}, nil)

	payload, err := svc.PDF(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}
