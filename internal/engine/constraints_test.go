package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadplan/timetable-api/internal/models"
)

func testGrid() GridParams {
	return GridParams{
		Days:        []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY"},
		SlotStarts:  []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"},
		SlotMinutes: 60,
		BreakStart:  "12:00",
		BreakEnd:    "13:00",
	}
}

func TestConstraintBuilderDemandGating(t *testing.T) {
	builder := NewConstraintBuilder(testGrid())
	courses := []models.Course{
		{Code: "CS101", Level: 1, Type: models.CourseTypeCompulsory},
		{Code: "ART101", Level: 1, Type: models.CourseTypeElective},
		{Code: "MUS101", Level: 1, Type: models.CourseTypeElective},
	}
	groups := []models.Group{
		{Name: "A", StudentCount: 25},
		{Name: "B", StudentCount: 10},
	}
	demand := map[string]int{"ART101": 12}

	constraints := builder.Build(1, courses, groups, []models.Room{{Name: "A101"}}, nil, nil, demand)

	// Compulsory courses carry the full student population; zero-demand
	// electives are excluded outright.
	assert.Equal(t, 35, constraints.StudentsPerCourse["CS101"])
	assert.Equal(t, 12, constraints.StudentsPerCourse["ART101"])
	_, scheduled := constraints.StudentsPerCourse["MUS101"]
	assert.False(t, scheduled)
}

func TestConstraintBuilderBlocksNonTeachingDaysAndBreak(t *testing.T) {
	builder := NewConstraintBuilder(testGrid())

	constraints := builder.Build(1, []models.Course{{Code: "CS101", Type: models.CourseTypeCompulsory}},
		[]models.Group{{Name: "A", StudentCount: 20}}, []models.Room{{Name: "A101"}}, nil, nil, nil)

	blockedDays := map[string]bool{}
	breakBlocks := 0
	for _, blocked := range constraints.BlockedSlots {
		if blocked.Start == "00:00" && blocked.End == "23:59" {
			blockedDays[blocked.Day] = true
		}
		if blocked.Start == "12:00" && blocked.End == "13:00" {
			breakBlocks++
		}
	}
	assert.True(t, blockedDays["FRIDAY"])
	assert.True(t, blockedDays["SATURDAY"])
	assert.True(t, blockedDays["SUNDAY"])
	assert.Equal(t, 4, breakBlocks, "break window blocked on each teaching day")
}

func TestConstraintBuilderIncludesExternalOccupancy(t *testing.T) {
	builder := NewConstraintBuilder(testGrid())
	external := []models.Section{
		{CourseCode: "PHY201", Room: "A101", Day: "MONDAY", StartTime: "09:00", EndTime: "10:00"},
	}

	constraints := builder.Build(2, []models.Course{{Code: "CS201", Type: models.CourseTypeCompulsory}},
		[]models.Group{{Name: "A", StudentCount: 20}}, []models.Room{{Name: "A101"}}, external, nil, nil)

	found := false
	for _, blocked := range constraints.BlockedSlots {
		if blocked.Day == "MONDAY" && blocked.Start == "09:00" && blocked.End == "10:00" {
			found = true
		}
	}
	assert.True(t, found, "externally occupied slot translated into a blocked range")
}

func TestConstraintBuilderFiltersRulesByLevelAndPriority(t *testing.T) {
	builder := NewConstraintBuilder(testGrid())
	rules := []models.Rule{
		{Text: "no classes after 17:00", Category: models.RuleCategoryGeneral, Priority: 1},
		{Text: "labs must be consecutive", Category: models.RuleCategoryLabContinuity, Priority: 5, Levels: []int{2}},
		{Text: "level three only", Category: models.RuleCategoryGeneral, Priority: 3, Levels: []int{3}},
	}

	constraints := builder.Build(2, []models.Course{{Code: "CS201", Type: models.CourseTypeCompulsory}},
		[]models.Group{{Name: "A", StudentCount: 20}}, []models.Room{{Name: "A101"}}, nil, rules, nil)

	require.Len(t, constraints.Rules, 2)
	assert.Equal(t, "labs must be consecutive", constraints.Rules[0], "higher priority rules come first")
}
