package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadplan/timetable-api/internal/models"
	appErrors "github.com/acadplan/timetable-api/pkg/errors"
)

type studentRepoStub struct {
	students []models.Student
	updated  []models.Student
	listErr  error
}

func (s *studentRepoStub) ListByLevel(_ context.Context, _ int) ([]models.Student, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.students, nil
}

func (s *studentRepoStub) UpdateGroupAssignments(_ context.Context, students []models.Student) error {
	s.updated = append(s.updated, students...)
	return nil
}

func roster(n int) []models.Student {
	students := make([]models.Student, 0, n)
	for i := 0; i < n; i++ {
		students = append(students, models.Student{
			ID:    fmt.Sprintf("s%03d", i),
			Name:  fmt.Sprintf("Student %03d", i),
			Level: 1,
		})
	}
	return students
}

func TestGroupServicePartitionsSixtyStudents(t *testing.T) {
	repo := &studentRepoStub{students: roster(60)}
	svc := NewGroupService(repo, 25, nil)

	groups, err := svc.BuildGroups(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, groups, 3)
	assert.Equal(t, "A", groups[0].Name)
	assert.Equal(t, 25, groups[0].StudentCount)
	assert.Equal(t, "B", groups[1].Name)
	assert.Equal(t, 25, groups[1].StudentCount)
	assert.Equal(t, "C", groups[2].Name)
	assert.Equal(t, 10, groups[2].StudentCount)

	assert.Equal(t, 0, groups[0].Index)
	assert.Equal(t, 2, groups[2].Index)
	assert.Len(t, repo.updated, 60)
}

func TestGroupServiceIsDeterministic(t *testing.T) {
	first, err := NewGroupService(&studentRepoStub{students: roster(60)}, 25, nil).BuildGroups(context.Background(), 1)
	require.NoError(t, err)
	second, err := NewGroupService(&studentRepoStub{students: roster(60)}, 25, nil).BuildGroups(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGroupServiceKeepsExistingAssignments(t *testing.T) {
	students := roster(30)
	for i := range students {
		if i < 10 {
			students[i].GroupName = "B"
		}
	}
	repo := &studentRepoStub{students: students}

	groups, err := NewGroupService(repo, 25, nil).BuildGroups(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, 30, groups[0].StudentCount+groups[1].StudentCount)
	assert.Len(t, repo.updated, 20, "students already in group B keep their seat")
	for _, student := range repo.updated {
		assert.NotEmpty(t, student.GroupName)
	}
}

func TestGroupServiceEmptyRoster(t *testing.T) {
	_, err := NewGroupService(&studentRepoStub{}, 25, nil).BuildGroups(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}
