package dto

import (
	"time"

	"github.com/acadplan/timetable-api/internal/engine"
	"github.com/acadplan/timetable-api/internal/models"
)

// GenerateScheduleRequest triggers a fresh generation run for one level.
type GenerateScheduleRequest struct {
	Level int `json:"level" validate:"required,min=1,max=8"`
}

// PlacementGapView surfaces a course the run could not place for a group.
type PlacementGapView struct {
	CourseCode string `json:"courseCode"`
	Group      string `json:"group"`
	Reason     string `json:"reason"`
}

// GenerateScheduleResponse returns the persisted version plus run diagnostics.
type GenerateScheduleResponse struct {
	Version         *models.ScheduleVersion `json:"version"`
	Gaps            []PlacementGapView      `json:"gaps,omitempty"`
	Conflicts       []models.Conflict       `json:"conflicts,omitempty"`
	ConflictsBefore int                     `json:"conflictsBefore"`
	OracleUsed      bool                    `json:"oracleUsed"`
	State           string                  `json:"state"`
}

// GapViews converts engine placement gaps into their response shape.
func GapViews(gaps []engine.PlacementGap) []PlacementGapView {
	if len(gaps) == 0 {
		return nil
	}
	views := make([]PlacementGapView, 0, len(gaps))
	for _, gap := range gaps {
		views = append(views, PlacementGapView{
			CourseCode: gap.CourseCode,
			Group:      gap.Group,
			Reason:     gap.Reason,
		})
	}
	return views
}

// UpdateScheduleRequest replaces a version's group schedules by hand. The
// prompt is free-text context recorded in the audit trail.
type UpdateScheduleRequest struct {
	Groups map[string]models.GroupSchedule `json:"groups" validate:"required,min=1"`
	Prompt string                          `json:"prompt"`
}

// ScheduleVersionSummary lists versions without their full group payloads.
type ScheduleVersionSummary struct {
	ID            string    `json:"id"`
	Level         int       `json:"level"`
	TotalSections int       `json:"totalSections"`
	Conflicts     int       `json:"conflicts"`
	Efficiency    int       `json:"efficiency"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// SummaryOf projects a version into its list representation.
func SummaryOf(version models.ScheduleVersion) ScheduleVersionSummary {
	return ScheduleVersionSummary{
		ID:            version.ID,
		Level:         version.Level,
		TotalSections: version.TotalSections,
		Conflicts:     version.Conflicts,
		Efficiency:    version.Efficiency,
		GeneratedAt:   version.GeneratedAt,
	}
}

// ConflictReport aggregates conflicts across every level's latest version.
type ConflictReport struct {
	TotalConflicts int                 `json:"totalConflicts"`
	BySeverity     map[string]int      `json:"bySeverity"`
	ByLevel        map[int]int         `json:"byLevel"`
	Conflicts      []models.Conflict   `json:"conflicts"`
	CheckedLevels  []int               `json:"checkedLevels"`
	GeneratedAt    time.Time           `json:"generatedAt"`
}

// RegenerateResponse acknowledges an asynchronous full regeneration.
type RegenerateResponse struct {
	Accepted bool  `json:"accepted"`
	Levels   []int `json:"levels"`
}
