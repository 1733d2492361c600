package engine

// Slot is the atomic unit of occupancy: a (day, start-time) pair.
type Slot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
}

// BlockedRange marks a closed interval on one day that no section may touch.
type BlockedRange struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Constraints is the payload handed to the recommendation oracle. It also
// feeds deterministic fallback placement when the oracle is unavailable.
type Constraints struct {
	Level               int                `json:"level"`
	StudentsPerCourse   map[string]int     `json:"students_per_course"`
	BlockedSlots        []BlockedRange     `json:"blocked_slots"`
	AvailableRooms      []string           `json:"available_rooms"`
	Rules               []string           `json:"rules"`
	ObjectivePriorities map[string]float64 `json:"objective_priorities,omitempty"`
}

// Proposal is one candidate placement returned by the oracle. Proposals are
// advice, never ground truth; every field is re-validated before acceptance.
type Proposal struct {
	CourseCode          string   `json:"course_code"`
	SectionLabel        string   `json:"section_label,omitempty"`
	Day                 string   `json:"day"`
	Start               string   `json:"start"`
	End                 string   `json:"end"`
	Room                string   `json:"room"`
	AllocatedStudentIDs []string `json:"allocated_student_ids,omitempty"`
	Justification       string   `json:"justification,omitempty"`
	Confidence          float64  `json:"confidence_score,omitempty"`
}

// Complete reports whether the proposal carries every field placement needs.
// Partial entries are filtered out instead of crashing the pipeline.
func (p Proposal) Complete() bool {
	return p.CourseCode != "" && p.Day != "" && p.Start != "" && p.Room != ""
}

// PlacementGap records a course that could not be placed for a group.
// Gaps are warnings, not errors; they lower the schedule's efficiency.
type PlacementGap struct {
	CourseCode string `json:"course_code"`
	Group      string `json:"group"`
	Reason     string `json:"reason"`
}

// RunState names the phases of one generation run.
type RunState string

const (
	StateIdle                RunState = "idle"
	StateBuildingConstraints RunState = "building_constraints"
	StateAwaitingOracle      RunState = "awaiting_oracle"
	StatePlacing             RunState = "placing"
	StateDetectingConflicts  RunState = "detecting_conflicts"
	StateResolving           RunState = "resolving"
	StatePersisting          RunState = "persisting"
	StateDone                RunState = "done"
	StateFailed              RunState = "failed"
)
