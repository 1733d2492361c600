package engine

import (
	"go.uber.org/zap"

	"github.com/acadplan/timetable-api/internal/models"
)

// SectionPlacer turns oracle proposals into validated sections and back-fills
// whatever the oracle failed to place with a deterministic strategy.
type SectionPlacer struct {
	tracker *RoomOccupancyTracker
	params  GridParams
	logger  *zap.Logger
}

// NewSectionPlacer wires the placer against a shared occupancy tracker.
func NewSectionPlacer(tracker *RoomOccupancyTracker, params GridParams, logger *zap.Logger) *SectionPlacer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if params.SlotMinutes <= 0 {
		params.SlotMinutes = 60
	}
	return &SectionPlacer{tracker: tracker, params: params, logger: logger}
}

// PlaceGroup builds the schedule for one group. Proposals are walked in
// order and accepted only when the course is still unplaced for the group,
// the group is free at the slot, and the room is free in the tracker.
// Accepted proposals reserve the room immediately so a later proposal in the
// same batch cannot collide with it. Courses left over after the proposal
// walk go through deterministic fallback; what still cannot be placed is
// returned as a placement gap.
func (p *SectionPlacer) PlaceGroup(
	group models.Group,
	courses []models.Course,
	rooms []models.Room,
	proposals []Proposal,
) ([]models.Section, []PlacementGap) {
	courseByCode := make(map[string]models.Course, len(courses))
	for _, course := range courses {
		courseByCode[course.Code] = course
	}
	roomByName := make(map[string]models.Room, len(rooms))
	for _, room := range rooms {
		roomByName[room.Name] = room
	}
	teachingDay := make(map[string]struct{}, len(p.params.Days))
	for _, day := range p.params.Days {
		teachingDay[day] = struct{}{}
	}

	sections := make([]models.Section, 0, len(courses))
	placed := make(map[string]bool, len(courses))
	groupSlots := make(map[string]bool)

	for _, proposal := range proposals {
		if !proposal.Complete() {
			continue
		}
		course, wanted := courseByCode[proposal.CourseCode]
		if !wanted || placed[course.Code] {
			continue
		}
		if _, ok := teachingDay[proposal.Day]; !ok {
			p.logger.Debug("proposal on blocked day discarded",
				zap.String("course", course.Code), zap.String("day", proposal.Day))
			continue
		}
		end := proposal.End
		if end == "" {
			end = addMinutes(proposal.Start, p.params.SlotMinutes)
		}
		// Hard post-filter: anything touching the break window is dropped
		// and falls back to deterministic placement.
		if p.params.intersectsBreak(proposal.Start, end) {
			p.logger.Debug("proposal intersects break window",
				zap.String("course", course.Code), zap.String("start", proposal.Start))
			continue
		}
		if groupSlots[occupancyKey(proposal.Day, proposal.Start)] {
			continue
		}
		room, known := roomByName[proposal.Room]
		if !known {
			continue
		}
		if !p.tracker.TryReserve(room.Name, proposal.Day, proposal.Start) {
			continue
		}

		placed[course.Code] = true
		groupSlots[occupancyKey(proposal.Day, proposal.Start)] = true
		sections = append(sections, models.Section{
			CourseCode:   course.Code,
			Group:        group.Name,
			Day:          proposal.Day,
			StartTime:    proposal.Start,
			EndTime:      end,
			Room:         room.Name,
			StudentCount: group.StudentCount,
			Capacity:     room.Capacity,
		})
	}

	var gaps []PlacementGap
	for _, course := range courses {
		if placed[course.Code] {
			continue
		}
		section, ok := p.placeFallback(group, course, rooms, groupSlots)
		if !ok {
			p.logger.Warn("course could not be placed",
				zap.String("course", course.Code),
				zap.String("group", group.Name),
				zap.Int("level", course.Level))
			gaps = append(gaps, PlacementGap{
				CourseCode: course.Code,
				Group:      group.Name,
				Reason:     "no free slot and room combination",
			})
			continue
		}
		placed[course.Code] = true
		groupSlots[occupancyKey(section.Day, section.StartTime)] = true
		sections = append(sections, section)
	}

	return sections, gaps
}

// placeFallback iterates (day, slot) pairs in a fixed round-robin order
// offset by the group's index, so sibling groups spread across different
// days and times by default. Candidate rooms are filtered by the course's
// lab affinity; the first combination free in both the group's own schedule
// and the tracker wins.
func (p *SectionPlacer) placeFallback(
	group models.Group,
	course models.Course,
	rooms []models.Room,
	groupSlots map[string]bool,
) (models.Section, bool) {
	days := p.params.Days
	starts := p.params.SlotStarts
	total := len(days) * len(starts)
	if total == 0 {
		return models.Section{}, false
	}

	candidates := roomsForCourse(course, rooms)
	offset := group.Index

	for i := 0; i < total; i++ {
		idx := (i + offset) % total
		day := days[idx%len(days)]
		start := starts[idx/len(days)]
		end := addMinutes(start, p.params.SlotMinutes)

		if p.params.intersectsBreak(start, end) {
			continue
		}
		if groupSlots[occupancyKey(day, start)] {
			continue
		}
		for _, room := range candidates {
			if p.tracker.TryReserve(room.Name, day, start) {
				return models.Section{
					CourseCode:   course.Code,
					Group:        group.Name,
					Day:          day,
					StartTime:    start,
					EndTime:      end,
					Room:         room.Name,
					StudentCount: group.StudentCount,
					Capacity:     room.Capacity,
				}, true
			}
		}
	}
	return models.Section{}, false
}

// roomsForCourse honours lab affinity: lab courses only take lab rooms;
// lecture courses prefer lecture rooms but fall back to the whole pool when
// the inventory has none. Shared by placement and conflict repair.
func roomsForCourse(course models.Course, rooms []models.Room) []models.Room {
	matched := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.IsLab == course.IsLab {
			matched = append(matched, room)
		}
	}
	if len(matched) == 0 && !course.IsLab {
		return rooms
	}
	return matched
}
