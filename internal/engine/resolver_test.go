package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadplan/timetable-api/internal/models"
)

func newTestResolver(attempts int) *ConflictResolver {
	return NewConflictResolver(
		ResolverParams{Grid: testGrid(), MaxAttempts: attempts},
		rand.New(rand.NewSource(1)),
		nil,
	)
}

func TestResolverRepairsRoomDoubleBooking(t *testing.T) {
	version := scheduleWith(1, map[string][]models.Section{
		"A": {{CourseCode: "CS101", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"}},
		"B": {{CourseCode: "MATH101", Group: "B", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"}},
	})

	residual := newTestResolver(50).Resolve(&version, nil, nil, testRooms())
	assert.Empty(t, residual)
	assert.Empty(t, ConflictDetector{}.Detect(version, nil))
}

func TestResolverRepairsGroupTimeOverlap(t *testing.T) {
	version := scheduleWith(1, map[string][]models.Section{
		"A": {
			{CourseCode: "CS101", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"},
			{CourseCode: "MATH101", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A102"},
		},
	})

	residual := newTestResolver(50).Resolve(&version, nil, nil, testRooms())
	assert.Empty(t, residual)

	slots := make(map[string]int)
	for _, section := range version.Groups["A"].Sections {
		slots[section.Day+"|"+section.StartTime]++
	}
	for slot, count := range slots {
		assert.Equal(t, 1, count, "group A still double-booked at %s", slot)
	}
}

func TestResolverMovesOwnSectionOutOfInterLevelConflict(t *testing.T) {
	version := scheduleWith(2, map[string][]models.Section{
		"A": {{CourseCode: "CS201", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"}},
	})
	other := scheduleWith(1, map[string][]models.Section{
		"A": {{CourseCode: "CS101", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"}},
	})
	others := []models.ScheduleVersion{other}

	residual := newTestResolver(50).Resolve(&version, others, nil, testRooms())
	assert.Empty(t, residual)

	moved := version.Groups["A"].Sections[0]
	assert.False(t, moved.Room == "A101" && moved.Day == "MONDAY" && moved.StartTime == "09:00")

	untouched := other.Groups["A"].Sections[0]
	assert.Equal(t, "A101", untouched.Room)
	assert.Equal(t, "MONDAY", untouched.Day)
}

func TestResolverLeavesConflictWhenNoAlternativeExists(t *testing.T) {
	grid := GridParams{
		Days:        []string{"MONDAY"},
		SlotStarts:  []string{"09:00"},
		SlotMinutes: 60,
	}
	resolver := NewConflictResolver(
		ResolverParams{Grid: grid, MaxAttempts: 50},
		rand.New(rand.NewSource(1)),
		nil,
	)
	version := scheduleWith(1, map[string][]models.Section{
		"A": {{CourseCode: "CS101", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"}},
		"B": {{CourseCode: "MATH101", Group: "B", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"}},
	})
	rooms := []models.Room{{Name: "A101", Capacity: 40}}

	residual := resolver.Resolve(&version, nil, nil, rooms)
	require.Len(t, residual, 1)
	assert.Equal(t, models.ConflictTypeRoom, residual[0].Type)
}

func TestResolverReturnsNilOnCleanSchedule(t *testing.T) {
	version := scheduleWith(1, map[string][]models.Section{
		"A": {{CourseCode: "CS101", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"}},
	})

	before := version.Groups["A"].Sections[0]
	assert.Nil(t, newTestResolver(50).Resolve(&version, nil, nil, testRooms()))
	assert.Equal(t, before, version.Groups["A"].Sections[0])
}

func TestResolverIsDeterministicForASeed(t *testing.T) {
	build := func() models.ScheduleVersion {
		return scheduleWith(1, map[string][]models.Section{
			"A": {{CourseCode: "CS101", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"}},
			"B": {{CourseCode: "MATH101", Group: "B", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "A101"}},
		})
	}

	first := build()
	second := build()
	newTestResolver(50).Resolve(&first, nil, nil, testRooms())
	newTestResolver(50).Resolve(&second, nil, nil, testRooms())
	assert.Equal(t, first, second)
}

func TestResolverKeepsRepairsOutOfBreakWindow(t *testing.T) {
	grid := GridParams{
		Days:        []string{"MONDAY", "TUESDAY"},
		SlotStarts:  []string{"09:00", "11:00"},
		SlotMinutes: 120,
		BreakStart:  "12:00",
		BreakEnd:    "13:00",
	}
	resolver := NewConflictResolver(
		ResolverParams{Grid: grid, MaxAttempts: 50},
		rand.New(rand.NewSource(1)),
		nil,
	)
	version := scheduleWith(1, map[string][]models.Section{
		"A": {{CourseCode: "CS101", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "11:00", Room: "A101"}},
		"B": {{CourseCode: "MATH101", Group: "B", Day: "MONDAY", StartTime: "09:00", EndTime: "11:00", Room: "A101"}},
	})
	rooms := []models.Room{{Name: "A101", Capacity: 40}}

	residual := resolver.Resolve(&version, nil, nil, rooms)
	assert.Empty(t, residual)

	// Starting at 11:00 would run 11:00-13:00, straight through the break.
	for _, schedule := range version.Groups {
		for _, section := range schedule.Sections {
			assert.Equal(t, "09:00", section.StartTime,
				"section %s repaired into the break window: %s %s-%s",
				section.CourseCode, section.Day, section.StartTime, section.EndTime)
		}
	}
}

func TestResolverHonoursLabRoomAffinity(t *testing.T) {
	courses := []models.Course{
		{Code: "CHEM101", Level: 1, Type: models.CourseTypeCompulsory, IsLab: true},
		{Code: "BIO101", Level: 1, Type: models.CourseTypeCompulsory, IsLab: true},
	}
	version := scheduleWith(1, map[string][]models.Section{
		"A": {{CourseCode: "CHEM101", Group: "A", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "LAB1"}},
		"B": {{CourseCode: "BIO101", Group: "B", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00", Room: "LAB1"}},
	})

	residual := newTestResolver(50).Resolve(&version, nil, courses, testRooms())
	assert.Empty(t, residual)

	for _, schedule := range version.Groups {
		for _, section := range schedule.Sections {
			assert.Equal(t, "LAB1", section.Room,
				"lab course %s repaired into a lecture room %s", section.CourseCode, section.Room)
		}
	}
}
