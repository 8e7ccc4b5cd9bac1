package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus tracks the lifecycle of a stored timetable version.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
)

// Timetable is a persisted, versioned schedule generated for a dataset.
type Timetable struct {
	ID        string          `db:"id" json:"id"`
	DatasetID string          `db:"dataset_id" json:"dataset_id"`
	Version   int             `db:"version" json:"version"`
	Status    TimetableStatus `db:"status" json:"status"`
	Meta      types.JSONText  `db:"meta" json:"meta"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// TimetableSlot is one assigned session of a stored timetable. The columns
// mirror the solver's export record so a stored schedule can be served or
// exported without re-joining entity tables.
type TimetableSlot struct {
	TimetableID    string `db:"timetable_id" json:"timetable_id"`
	CourseID       string `db:"course_id" json:"course_id"`
	CourseName     string `db:"course_name" json:"course_name"`
	CourseType     string `db:"course_type" json:"course_type"`
	SectionID      string `db:"section_id" json:"section_id"`
	Day            string `db:"day" json:"day"`
	StartTime      string `db:"start_time" json:"start_time"`
	EndTime        string `db:"end_time" json:"end_time"`
	RoomID         string `db:"room_id" json:"room_id"`
	RoomType       string `db:"room_type" json:"room_type"`
	RoomCapacity   int    `db:"room_capacity" json:"room_capacity"`
	InstructorID   string `db:"instructor_id" json:"instructor_id"`
	InstructorName string `db:"instructor_name" json:"instructor_name"`
	InstructorRole string `db:"instructor_role" json:"instructor_role"`
}
