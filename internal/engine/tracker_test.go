package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acadplan/timetable-api/internal/models"
)

func TestTrackerReserveAndIsFree(t *testing.T) {
	tracker := NewRoomOccupancyTracker()

	assert.True(t, tracker.IsFree("A101", "MONDAY", "09:00"))
	tracker.Reserve("A101", "MONDAY", "09:00")
	assert.False(t, tracker.IsFree("A101", "MONDAY", "09:00"))

	// Same room, different slot stays free.
	assert.True(t, tracker.IsFree("A101", "MONDAY", "10:00"))
	assert.True(t, tracker.IsFree("A101", "TUESDAY", "09:00"))
}

func TestTrackerReserveIsIdempotent(t *testing.T) {
	tracker := NewRoomOccupancyTracker()
	tracker.Reserve("A101", "MONDAY", "09:00")
	tracker.Reserve("A101", "MONDAY", "09:00")

	tracker.Release("A101", "MONDAY", "09:00")
	assert.True(t, tracker.IsFree("A101", "MONDAY", "09:00"))
}

func TestTrackerTryReserve(t *testing.T) {
	tracker := NewRoomOccupancyTracker()

	assert.True(t, tracker.TryReserve("B201", "TUESDAY", "10:00"))
	assert.False(t, tracker.TryReserve("B201", "TUESDAY", "10:00"))
}

func TestTrackerReset(t *testing.T) {
	tracker := NewRoomOccupancyTracker()
	tracker.Reserve("A101", "MONDAY", "09:00")
	tracker.Reset()
	assert.True(t, tracker.IsFree("A101", "MONDAY", "09:00"))
}

func TestTrackerSeedSections(t *testing.T) {
	tracker := NewRoomOccupancyTracker()
	tracker.SeedSections([]models.Section{
		{CourseCode: "CS101", Room: "A101", Day: "MONDAY", StartTime: "09:00"},
		{CourseCode: "MATH201", Room: "B201", Day: "WEDNESDAY", StartTime: "13:00"},
	})

	assert.False(t, tracker.IsFree("A101", "MONDAY", "09:00"))
	assert.False(t, tracker.IsFree("B201", "WEDNESDAY", "13:00"))
	assert.True(t, tracker.IsFree("A101", "WEDNESDAY", "13:00"))
}

func TestTrackerConcurrentTryReserve(t *testing.T) {
	tracker := NewRoomOccupancyTracker()

	const workers = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tracker.TryReserve("A101", "MONDAY", "09:00") {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "exactly one concurrent reservation may win")
}
