package dto

import (
	"encoding/json"
	"strings"
)

// CourseList accepts either a comma-separated string or a JSON array of
// course ids; either way the service sees a plain slice.
type CourseList []string

// UnmarshalJSON implements the dual-form decoding.
func (c *CourseList) UnmarshalJSON(data []byte) error {
	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		*c = asList
		return nil
	}
	var asText string
	if err := json.Unmarshal(data, &asText); err != nil {
		return err
	}
	if strings.TrimSpace(asText) == "" {
		*c = nil
		return nil
	}
	parts := strings.Split(asText, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	*c = list
	return nil
}

// CourseInput is one catalog entry of an inline dataset.
type CourseInput struct {
	CourseID string `json:"courseId" validate:"required"`
	Name     string `json:"name"`
	Credits  int    `json:"credits" validate:"omitempty,min=0"`
	Type     string `json:"type" validate:"required"`
}

// InstructorInput is one staff record of an inline dataset.
type InstructorInput struct {
	InstructorID     string     `json:"instructorId" validate:"required"`
	Name             string     `json:"name"`
	Role             string     `json:"role"`
	UnavailableDay   string     `json:"unavailableDay"`
	QualifiedCourses CourseList `json:"qualifiedCourses"`
}

// RoomInput is one room record of an inline dataset.
type RoomInput struct {
	RoomID   string `json:"roomId" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=Lecture Lab"`
	Capacity int    `json:"capacity" validate:"omitempty,min=0"`
}

// TimeslotInput is one weekly slot of an inline dataset.
type TimeslotInput struct {
	Day       string `json:"day" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
}

// DatasetPayload groups the four entity collections.
type DatasetPayload struct {
	Courses     []CourseInput     `json:"courses" validate:"dive"`
	Instructors []InstructorInput `json:"instructors" validate:"dive"`
	Rooms       []RoomInput       `json:"rooms" validate:"dive"`
	Timeslots   []TimeslotInput   `json:"timeslots" validate:"dive"`
}

// GenerateTimetableRequest triggers a solve over a stored dataset or an
// inline payload.
type GenerateTimetableRequest struct {
	DatasetID      string          `json:"datasetId"`
	Dataset        *DatasetPayload `json:"dataset"`
	TimeoutSeconds int             `json:"timeoutSeconds" validate:"omitempty,min=1,max=300"`
	Seed           *int64          `json:"seed"`
}

// ScheduleRecord is one placed session in the response payload.
type ScheduleRecord struct {
	CourseID       string `json:"course_id"`
	CourseName     string `json:"course_name"`
	CourseType     string `json:"course_type"`
	SectionID      string `json:"section_id"`
	Day            string `json:"day"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	RoomID         string `json:"room_id"`
	RoomType       string `json:"room_type"`
	RoomCapacity   int    `json:"room_capacity"`
	InstructorID   string `json:"instructor_id"`
	InstructorName string `json:"instructor_name"`
	InstructorRole string `json:"instructor_role"`
}

// TimetableStatistics aggregates a generated schedule.
type TimetableStatistics struct {
	DayDistribution    map[string]int `json:"day_distribution"`
	InstructorWorkload map[string]int `json:"instructor_workload"`
	RoomUtilization    map[string]int `json:"room_utilization"`
}

// GenerateTimetableResponse returns the generated schedule plus a proposal
// handle for a later save.
type GenerateTimetableResponse struct {
	ProposalID       string              `json:"proposalId"`
	DatasetID        string              `json:"datasetId"`
	Success          bool                `json:"success"`
	TotalCourses     int                 `json:"total_courses"`
	ScheduledCourses int                 `json:"scheduled_courses"`
	Schedule         []ScheduleRecord    `json:"schedule"`
	Statistics       TimetableStatistics `json:"statistics"`
	Attempts         int                 `json:"attempts"`
	ElapsedMs        int64               `json:"elapsedMs"`
	Cached           bool                `json:"cached,omitempty"`
}

// SaveTimetableRequest persists a proposal as a timetable version.
type SaveTimetableRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Publish    bool   `json:"publish"`
}

// TimetableQuery filters stored timetables by dataset.
type TimetableQuery struct {
	DatasetID string `form:"datasetId" json:"datasetId"`
}
