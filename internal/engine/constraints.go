package engine

import (
	"sort"

	"github.com/acadplan/timetable-api/internal/models"
)

// GridParams describes the teaching grid shared by the constraint builder,
// the placer and the resolver.
type GridParams struct {
	Days        []string
	SlotStarts  []string
	SlotMinutes int
	BreakStart  string
	BreakEnd    string
}

// intersectsBreak reports whether [start,end) touches the configured break
// window. Placement and repair both reject such intervals.
func (g GridParams) intersectsBreak(start, end string) bool {
	if g.BreakStart == "" || g.BreakEnd == "" {
		return false
	}
	return clockRangesOverlap(start, end, g.BreakStart, g.BreakEnd)
}

// allDays is the full week; days absent from GridParams.Days are hard-blocked.
var allDays = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// ConstraintBuilder assembles the payload handed to the recommendation
// oracle for one level.
type ConstraintBuilder struct {
	params GridParams
}

// NewConstraintBuilder wires grid parameters.
func NewConstraintBuilder(params GridParams) *ConstraintBuilder {
	return &ConstraintBuilder{params: params}
}

// Build produces the constraint object for a level: the room pool, every
// hard-blocked slot (non-teaching days, the daily break window and all
// externally occupied slots), rule texts and per-course demand.
func (b *ConstraintBuilder) Build(
	level int,
	courses []models.Course,
	groups []models.Group,
	rooms []models.Room,
	external []models.Section,
	rules []models.Rule,
	demand map[string]int,
) Constraints {
	totalStudents := 0
	for _, group := range groups {
		totalStudents += group.StudentCount
	}

	perCourse := make(map[string]int)
	for _, course := range EligibleCourses(courses, demand) {
		if course.Type == models.CourseTypeCompulsory {
			perCourse[course.Code] = totalStudents
			continue
		}
		perCourse[course.Code] = demand[course.Code]
	}

	blocked := b.blockedSlots(external)

	ruleTexts := make([]string, 0, len(rules))
	sorted := make([]models.Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })
	for _, rule := range sorted {
		if rule.AppliesTo(level) {
			ruleTexts = append(ruleTexts, rule.Text)
		}
	}

	roomNames := make([]string, 0, len(rooms))
	for _, room := range rooms {
		roomNames = append(roomNames, room.Name)
	}
	sort.Strings(roomNames)

	return Constraints{
		Level:             level,
		StudentsPerCourse: perCourse,
		BlockedSlots:      blocked,
		Rules:             ruleTexts,
		AvailableRooms:    roomNames,
	}
}

func (b *ConstraintBuilder) blockedSlots(external []models.Section) []BlockedRange {
	teaching := make(map[string]struct{}, len(b.params.Days))
	for _, day := range b.params.Days {
		teaching[day] = struct{}{}
	}

	var blocked []BlockedRange
	for _, day := range allDays {
		if _, ok := teaching[day]; !ok {
			blocked = append(blocked, BlockedRange{Day: day, Start: "00:00", End: "23:59"})
			continue
		}
		if b.params.BreakStart != "" && b.params.BreakEnd != "" {
			blocked = append(blocked, BlockedRange{Day: day, Start: b.params.BreakStart, End: b.params.BreakEnd})
		}
	}

	for _, section := range external {
		blocked = append(blocked, BlockedRange{Day: section.Day, Start: section.StartTime, End: section.EndTime})
	}
	return blocked
}

// EligibleCourses filters the catalog for scheduling: compulsory courses are
// always in, electives only when at least one student registered demand.
func EligibleCourses(courses []models.Course, demand map[string]int) []models.Course {
	eligible := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if course.Type == models.CourseTypeElective && demand[course.Code] <= 0 {
			continue
		}
		eligible = append(eligible, course)
	}
	return eligible
}
