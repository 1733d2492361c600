package engine

import (
	"fmt"
	"sort"

	"github.com/acadplan/timetable-api/internal/models"
)

// ConflictDetector enumerates violations over one or more schedule versions.
// It is a pure function of its inputs: detecting twice over the same
// versions yields identical conflict lists.
type ConflictDetector struct{}

// Detect runs all three detectors over the candidate version against the
// other levels' versions and returns the combined, deterministically ordered
// conflict list.
func (d ConflictDetector) Detect(candidate models.ScheduleVersion, others []models.ScheduleVersion) []models.Conflict {
	conflicts := d.RoomConflicts(candidate)
	conflicts = append(conflicts, d.TimeOverlaps(candidate)...)
	conflicts = append(conflicts, d.InterLevelConflicts(candidate, others)...)
	return conflicts
}

// RoomConflicts finds slots where two distinct courses occupy the same room
// at the same moment anywhere within the version.
func (d ConflictDetector) RoomConflicts(version models.ScheduleVersion) []models.Conflict {
	buckets := make(map[string][]models.Section)
	for _, name := range sortedGroupNames(version) {
		for _, section := range version.Groups[name].Sections {
			key := section.Room + "|" + section.Day + "|" + section.StartTime
			buckets[key] = append(buckets[key], section)
		}
	}

	var conflicts []models.Conflict
	for _, key := range sortedKeys(buckets) {
		sections := buckets[key]
		if len(sections) < 2 || distinctCourses(sections) < 2 {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			Type:        models.ConflictTypeRoom,
			Severity:    models.SeverityHigh,
			Level:       version.Level,
			Description: fmt.Sprintf("room %s double-booked on %s at %s", sections[0].Room, sections[0].Day, sections[0].StartTime),
			Sections:    sections,
		})
	}
	return conflicts
}

// TimeOverlaps finds slots where one group would attend two distinct courses
// at once. Parallel sections of the same course are not a conflict. Severity
// escalates when the colliding sections also share a room.
func (d ConflictDetector) TimeOverlaps(version models.ScheduleVersion) []models.Conflict {
	var conflicts []models.Conflict
	for _, name := range sortedGroupNames(version) {
		buckets := make(map[string][]models.Section)
		for _, section := range version.Groups[name].Sections {
			key := section.Day + "|" + section.StartTime
			buckets[key] = append(buckets[key], section)
		}
		for _, key := range sortedKeys(buckets) {
			sections := buckets[key]
			if len(sections) < 2 || distinctCourses(sections) < 2 {
				continue
			}
			severity := models.SeverityMedium
			if sharesRoom(sections) {
				severity = models.SeverityHigh
			}
			conflicts = append(conflicts, models.Conflict{
				Type:        models.ConflictTypeTime,
				Severity:    severity,
				Level:       version.Level,
				Group:       name,
				Description: fmt.Sprintf("group %s has overlapping classes on %s at %s", name, sections[0].Day, sections[0].StartTime),
				Sections:    sections,
			})
		}
	}
	return conflicts
}

// InterLevelConflicts compares the candidate's sections against every other
// level's version on the (room, day, start) key. Matches are critical: they
// represent hard double-bookings across administratively independent
// schedules.
func (d ConflictDetector) InterLevelConflicts(candidate models.ScheduleVersion, others []models.ScheduleVersion) []models.Conflict {
	type slotOwner struct {
		section models.Section
		level   int
	}
	occupied := make(map[string]slotOwner)
	for _, other := range others {
		if other.Level == candidate.Level {
			continue
		}
		for _, name := range sortedGroupNames(other) {
			for _, section := range other.Groups[name].Sections {
				key := section.Room + "|" + section.Day + "|" + section.StartTime
				occupied[key] = slotOwner{section: section, level: other.Level}
			}
		}
	}

	var conflicts []models.Conflict
	for _, name := range sortedGroupNames(candidate) {
		for _, section := range candidate.Groups[name].Sections {
			key := section.Room + "|" + section.Day + "|" + section.StartTime
			owner, taken := occupied[key]
			if !taken {
				continue
			}
			conflicts = append(conflicts, models.Conflict{
				Type:        models.ConflictTypeInterLevel,
				Severity:    models.SeverityCritical,
				Level:       candidate.Level,
				Group:       name,
				OtherLevel:  owner.level,
				Description: fmt.Sprintf("room %s on %s at %s already used by level %d", section.Room, section.Day, section.StartTime, owner.level),
				Sections:    []models.Section{section, owner.section},
			})
		}
	}
	return conflicts
}

func sortedGroupNames(version models.ScheduleVersion) []string {
	names := make([]string, 0, len(version.Groups))
	for name := range version.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(buckets map[string][]models.Section) []string {
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func distinctCourses(sections []models.Section) int {
	codes := make(map[string]struct{}, len(sections))
	for _, section := range sections {
		codes[section.CourseCode] = struct{}{}
	}
	return len(codes)
}

func sharesRoom(sections []models.Section) bool {
	rooms := make(map[string]struct{}, len(sections))
	for _, section := range sections {
		rooms[section.Room] = struct{}{}
	}
	return len(rooms) < len(sections)
}
