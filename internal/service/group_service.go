package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/acadplan/timetable-api/internal/models"
	appErrors "github.com/acadplan/timetable-api/pkg/errors"
)

type studentRepository interface {
	ListByLevel(ctx context.Context, level int) ([]models.Student, error)
	UpdateGroupAssignments(ctx context.Context, students []models.Student) error
}

// GroupService partitions a level's roster into capacity-bounded groups.
// Partitioning is deterministic: the same roster always yields the same
// groups, and students keep their existing group while it has room.
type GroupService struct {
	students studentRepository
	capacity int
	logger   *zap.Logger
}

// NewGroupService instantiates GroupService.
func NewGroupService(students studentRepository, capacity int, logger *zap.Logger) *GroupService {
	if capacity <= 0 {
		capacity = 25
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{students: students, capacity: capacity, logger: logger}
}

// BuildGroups loads the level's roster, assigns each student to a group and
// persists the assignments. Groups are named A, B, C, ... in order; a level
// with 60 students and capacity 25 yields groups of 25, 25 and 10.
func (s *GroupService) BuildGroups(ctx context.Context, level int) ([]models.Group, error) {
	students, err := s.students.ListByLevel(ctx, level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student roster")
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no students found for this level")
	}

	numGroups := (len(students) + s.capacity - 1) / s.capacity
	index := make(map[string]int, numGroups)
	counts := make([]int, numGroups)
	for g := 0; g < numGroups; g++ {
		index[groupName(g)] = g
	}

	// First pass keeps students whose current group still exists and has
	// room; everyone else is reassigned.
	var unassigned []*models.Student
	for i := range students {
		student := &students[i]
		g, ok := index[student.GroupName]
		if !ok || counts[g] >= s.capacity {
			unassigned = append(unassigned, student)
			continue
		}
		counts[g]++
	}

	// Second pass spills the remainder into groups in name order, walking
	// roster order so reassignment is reproducible.
	var changed []models.Student
	next := 0
	for _, student := range unassigned {
		for counts[next] >= s.capacity {
			next++
		}
		counts[next]++
		student.GroupName = groupName(next)
		changed = append(changed, *student)
	}

	if len(changed) > 0 {
		if err := s.students.UpdateGroupAssignments(ctx, changed); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist group assignments")
		}
	}

	groups := make([]models.Group, 0, numGroups)
	for g := 0; g < numGroups; g++ {
		groups = append(groups, models.Group{
			Name:         groupName(g),
			Level:        level,
			Index:        g,
			StudentCount: counts[g],
		})
	}

	s.logger.Info("student groups built",
		zap.Int("level", level),
		zap.Int("students", len(students)),
		zap.Int("groups", len(groups)),
		zap.Int("reassigned", len(changed)))
	return groups, nil
}

// groupName maps 0 -> A, 1 -> B, ..., 26 -> A1 and so on.
func groupName(index int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if index < len(letters) {
		return string(letters[index])
	}
	return fmt.Sprintf("%c%d", letters[index%len(letters)], index/len(letters))
}
