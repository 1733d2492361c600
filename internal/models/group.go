package models

// Student belongs to exactly one group within their level.
type Student struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Level     int    `db:"level" json:"level"`
	GroupName string `db:"group_name" json:"group_name"`
}

// Group is a capacity-bounded subdivision of a level's students,
// scheduled as one unit. Index drives the deterministic fallback
// placement offset so sibling groups spread across the week.
type Group struct {
	Name         string `json:"name"`
	Level        int    `json:"level"`
	Index        int    `json:"index"`
	StudentCount int    `json:"student_count"`
}
