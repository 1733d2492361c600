package models

// CourseType distinguishes mandatory curriculum from electives.
type CourseType string

const (
	CourseTypeCompulsory CourseType = "compulsory"
	CourseTypeElective   CourseType = "elective"
)

// Course is an immutable catalog entry owned by the course-catalog collaborator.
type Course struct {
	Code  string     `db:"code" json:"code"`
	Name  string     `db:"name" json:"name"`
	Level int        `db:"level" json:"level"`
	Type  CourseType `db:"course_type" json:"type"`
	IsLab bool       `db:"is_lab" json:"is_lab"`
}

// Room is one bookable space in the institution's inventory.
type Room struct {
	Name     string `db:"name" json:"name"`
	IsLab    bool   `db:"is_lab" json:"is_lab"`
	Capacity int    `db:"capacity" json:"capacity"`
}
