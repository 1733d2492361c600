package engine

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/acadplan/timetable-api/internal/models"
)

// ResolverParams makes the retry budget and the candidate slot/room pools
// explicit so tests can supply a deterministic random source and assert
// convergence.
type ResolverParams struct {
	Grid        GridParams
	MaxAttempts int
}

// ConflictResolver repairs conflicting sections by bounded randomized
// reassignment. Sections that cannot be repaired within the attempt ceiling
// stay in place and remain visible in the final conflict count.
type ConflictResolver struct {
	params   ResolverParams
	rng      *rand.Rand
	detector ConflictDetector
	logger   *zap.Logger
}

// NewConflictResolver builds a resolver around an injected random source.
func NewConflictResolver(params ResolverParams, rng *rand.Rand, logger *zap.Logger) *ConflictResolver {
	if params.MaxAttempts <= 0 {
		params.MaxAttempts = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictResolver{params: params, rng: rng, detector: ConflictDetector{}, logger: logger}
}

// Resolve repairs the version's detected conflicts in place and returns the
// residual conflicts after one repair pass. Repairs obey the same hard rules
// as placement: the break window and the course's lab-room affinity. Courses
// not found in the catalog slice are treated as lecture courses.
func (r *ConflictResolver) Resolve(
	version *models.ScheduleVersion,
	others []models.ScheduleVersion,
	courses []models.Course,
	rooms []models.Room,
) []models.Conflict {
	conflicts := r.detector.Detect(*version, others)
	if len(conflicts) == 0 {
		return nil
	}

	courseByCode := make(map[string]models.Course, len(courses))
	for _, course := range courses {
		courseByCode[course.Code] = course
	}
	occupancy := r.buildOccupancy(*version, others)

	for _, conflict := range conflicts {
		for _, target := range r.movableSections(conflict) {
			section := findSection(version, target)
			if section == nil {
				continue
			}
			candidates := roomsForCourse(courseByCode[section.CourseCode], rooms)
			if r.reassign(section, candidates, occupancy) {
				r.logger.Debug("section reassigned",
					zap.String("course", section.CourseCode),
					zap.String("group", section.Group),
					zap.String("day", section.Day),
					zap.String("start", section.StartTime),
					zap.String("room", section.Room))
			} else {
				r.logger.Warn("section could not be repaired within attempt budget",
					zap.String("course", target.CourseCode),
					zap.String("group", target.Group),
					zap.Int("attempts", r.params.MaxAttempts))
			}
		}
	}

	return r.detector.Detect(*version, others)
}

// movableSections selects which sections of a conflict may be moved: the
// first section keeps its slot for room and time conflicts, and for
// inter-level conflicts only the candidate level's own section may move.
func (r *ConflictResolver) movableSections(conflict models.Conflict) []models.Section {
	if len(conflict.Sections) == 0 {
		return nil
	}
	if conflict.Type == models.ConflictTypeInterLevel {
		return conflict.Sections[:1]
	}
	return conflict.Sections[1:]
}

type occupancyState struct {
	rooms  map[string]struct{}
	groups map[string]map[string]struct{}
}

func (r *ConflictResolver) buildOccupancy(version models.ScheduleVersion, others []models.ScheduleVersion) *occupancyState {
	state := &occupancyState{
		rooms:  make(map[string]struct{}),
		groups: make(map[string]map[string]struct{}),
	}
	add := func(section models.Section, ownGroup bool) {
		state.rooms[section.Room+"|"+section.Day+"|"+section.StartTime] = struct{}{}
		if !ownGroup {
			return
		}
		slots, ok := state.groups[section.Group]
		if !ok {
			slots = make(map[string]struct{})
			state.groups[section.Group] = slots
		}
		slots[occupancyKey(section.Day, section.StartTime)] = struct{}{}
	}
	for _, schedule := range version.Groups {
		for _, section := range schedule.Sections {
			add(section, true)
		}
	}
	for _, other := range others {
		if other.Level == version.Level {
			continue
		}
		for _, schedule := range other.Groups {
			for _, section := range schedule.Sections {
				add(section, false)
			}
		}
	}
	return state
}

// reassign proposes random (day, start, room) combinations until one clears
// the break window and is free in both the group's own schedule and the
// combined room occupancy, or the attempt ceiling is reached.
func (r *ConflictResolver) reassign(section *models.Section, rooms []models.Room, state *occupancyState) bool {
	days := r.params.Grid.Days
	starts := r.params.Grid.SlotStarts
	if len(days) == 0 || len(starts) == 0 || len(rooms) == 0 {
		return false
	}
	minutes := r.params.Grid.SlotMinutes
	if minutes <= 0 {
		minutes = 60
	}

	oldRoomKey := section.Room + "|" + section.Day + "|" + section.StartTime
	oldGroupKey := occupancyKey(section.Day, section.StartTime)

	for attempt := 0; attempt < r.params.MaxAttempts; attempt++ {
		day := days[r.rng.Intn(len(days))]
		start := starts[r.rng.Intn(len(starts))]
		room := rooms[r.rng.Intn(len(rooms))]

		if r.params.Grid.intersectsBreak(start, addMinutes(start, minutes)) {
			continue
		}
		roomKey := room.Name + "|" + day + "|" + start
		groupKey := occupancyKey(day, start)
		if roomKey == oldRoomKey {
			continue
		}
		if _, taken := state.rooms[roomKey]; taken {
			continue
		}
		if slots, ok := state.groups[section.Group]; ok && groupKey != oldGroupKey {
			if _, taken := slots[groupKey]; taken {
				continue
			}
		}

		delete(state.rooms, oldRoomKey)
		if slots, ok := state.groups[section.Group]; ok {
			delete(slots, oldGroupKey)
			slots[groupKey] = struct{}{}
		}
		state.rooms[roomKey] = struct{}{}

		section.Day = day
		section.StartTime = start
		section.EndTime = addMinutes(start, minutes)
		section.Room = room.Name
		section.Capacity = room.Capacity
		return true
	}
	return false
}

// findSection locates the version's own copy of a conflict section so the
// repair mutates the schedule rather than a detached value.
func findSection(version *models.ScheduleVersion, target models.Section) *models.Section {
	schedule, ok := version.Groups[target.Group]
	if !ok {
		return nil
	}
	for i := range schedule.Sections {
		section := &schedule.Sections[i]
		if section.CourseCode == target.CourseCode &&
			section.Day == target.Day &&
			section.StartTime == target.StartTime &&
			section.Room == target.Room {
			return section
		}
	}
	return nil
}
