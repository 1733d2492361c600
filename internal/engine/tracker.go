package engine

import (
	"sync"

	"github.com/acadplan/timetable-api/internal/models"
)

// RoomOccupancyTracker answers "is this room free at this slot" for the
// duration of one generation pass. The check-then-reserve pair runs under a
// single lock so concurrent runs against a shared instance cannot both claim
// the same slot. It must be Reset at the start of every pass; cross-run
// protection comes from seeding it with other levels' persisted sections.
type RoomOccupancyTracker struct {
	mu       sync.Mutex
	occupied map[string]map[string]struct{}
}

// NewRoomOccupancyTracker builds an empty tracker.
func NewRoomOccupancyTracker() *RoomOccupancyTracker {
	return &RoomOccupancyTracker{occupied: make(map[string]map[string]struct{})}
}

func occupancyKey(day, start string) string {
	return day + "|" + start
}

// IsFree reports whether the room is unreserved at the given slot.
func (t *RoomOccupancyTracker) IsFree(room, day, start string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isFreeLocked(room, day, start)
}

func (t *RoomOccupancyTracker) isFreeLocked(room, day, start string) bool {
	slots, ok := t.occupied[room]
	if !ok {
		return true
	}
	_, taken := slots[occupancyKey(day, start)]
	return !taken
}

// Reserve marks the room as occupied at the slot. Idempotent.
func (t *RoomOccupancyTracker) Reserve(room, day, start string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reserveLocked(room, day, start)
}

func (t *RoomOccupancyTracker) reserveLocked(room, day, start string) {
	slots, ok := t.occupied[room]
	if !ok {
		slots = make(map[string]struct{})
		t.occupied[room] = slots
	}
	slots[occupancyKey(day, start)] = struct{}{}
}

// TryReserve atomically checks and reserves; it returns false when the slot
// was already taken.
func (t *RoomOccupancyTracker) TryReserve(room, day, start string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isFreeLocked(room, day, start) {
		return false
	}
	t.reserveLocked(room, day, start)
	return true
}

// Release frees a previously reserved slot so a cancelled placement does not
// leave a reservation without a section.
func (t *RoomOccupancyTracker) Release(room, day, start string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if slots, ok := t.occupied[room]; ok {
		delete(slots, occupancyKey(day, start))
	}
}

// Reset drops every reservation. Call it before each full generation pass so
// stale reservations from a previous run cannot leak.
func (t *RoomOccupancyTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.occupied = make(map[string]map[string]struct{})
}

// SeedSections preloads occupancy from already-persisted sections, typically
// the latest versions of every other level.
func (t *RoomOccupancyTracker) SeedSections(sections []models.Section) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, section := range sections {
		t.reserveLocked(section.Room, section.Day, section.StartTime)
	}
}
