package models

import "time"

// Section is one scheduled occurrence of a course for one group.
type Section struct {
	CourseCode   string `json:"course_code"`
	Group        string `json:"group"`
	Day          string `json:"day"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Room         string `json:"room"`
	StudentCount int    `json:"student_count"`
	Capacity     int    `json:"capacity"`
}

// GroupSchedule holds all sections assigned to one group.
type GroupSchedule struct {
	StudentCount int       `json:"student_count"`
	Sections     []Section `json:"sections"`
}

// ScheduleVersion is the persisted, timestamped timetable artifact for one
// level. The most recent GeneratedAt per level is the authoritative version
// for conflict checking; older rows remain for audit history.
type ScheduleVersion struct {
	ID            string                   `json:"id"`
	Level         int                      `json:"level"`
	Groups        map[string]GroupSchedule `json:"groups"`
	TotalSections int                      `json:"total_sections"`
	Conflicts     int                      `json:"conflicts"`
	Efficiency    int                      `json:"efficiency"`
	GeneratedAt   time.Time                `json:"generated_at"`
}

// ConflictType classifies a detected violation.
type ConflictType string

const (
	ConflictTypeRoom       ConflictType = "room"
	ConflictTypeTime       ConflictType = "time"
	ConflictTypeInterLevel ConflictType = "inter_level"
)

// ConflictSeverity ranks how urgently a conflict needs attention.
type ConflictSeverity string

const (
	SeverityMedium   ConflictSeverity = "medium"
	SeverityHigh     ConflictSeverity = "high"
	SeverityCritical ConflictSeverity = "critical"
)

// Conflict is a derived violation record; it is recomputed from the current
// ScheduleVersion set rather than stored as ground truth.
type Conflict struct {
	Type        ConflictType     `json:"type"`
	Severity    ConflictSeverity `json:"severity"`
	Level       int              `json:"level"`
	Group       string           `json:"group,omitempty"`
	OtherLevel  int              `json:"other_level,omitempty"`
	Description string           `json:"description"`
	Sections    []Section        `json:"sections"`
}
