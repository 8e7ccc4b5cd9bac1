package solver

import (
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Record is one scheduled session in the exported timetable.
type Record struct {
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

// Statistics aggregates the generated schedule.
type Statistics struct {
	DayDistribution    map[string]int `json:"day_distribution"`
	InstructorWorkload map[string]int `json:"instructor_workload"`
	RoomUtilization    map[string]int `json:"room_utilization"`
}

// Result is the exported outcome of one solve call.
type Result struct {
	Success          bool          `json:"success"`
	TotalCourses     int           `json:"total_courses"`
	ScheduledCourses int           `json:"scheduled_courses"`
	Schedule         []Record      `json:"schedule"`
	Statistics       Statistics    `json:"statistics"`
	Attempts         int           `json:"attempts"`
	Elapsed          time.Duration `json:"elapsed"`
}

// buildResult freezes the best assignment set into the export shape.
// Records follow variable-builder order so identical solves serialize
// byte-identically.
func buildResult(p Problem, variables []Variable, best *assignments, attempts int, elapsed time.Duration) *Result {
	courseIndex := make(map[string]models.Course, len(p.Courses))
	for _, course := range p.Courses {
		courseIndex[course.CourseID] = course
	}

	stats := Statistics{
		DayDistribution:    make(map[string]int),
		InstructorWorkload: make(map[string]int),
		RoomUtilization:    make(map[string]int),
	}

	schedule := make([]Record, 0, best.len())
	for _, variable := range variables {
		cand, ok := best.byVariable[variable]
		if !ok {
			continue
		}
		course := courseIndex[variable.CourseID]
		schedule = append(schedule, Record{
			CourseID:       variable.CourseID,
			CourseName:     course.Name,
			CourseType:     course.Type,
			SectionID:      variable.SectionID,
			Day:            cand.Slot.Day,
			StartTime:      cand.Slot.StartTime,
			EndTime:        cand.Slot.EndTime,
			RoomID:         cand.Room.RoomID,
			RoomType:       string(cand.Room.Type),
			RoomCapacity:   cand.Room.Capacity,
			InstructorID:   cand.Instructor.InstructorID,
			InstructorName: cand.Instructor.Name,
			InstructorRole: cand.Instructor.Role,
		})
		stats.DayDistribution[cand.Slot.Day]++
		stats.InstructorWorkload[cand.Instructor.Name]++
		stats.RoomUtilization[cand.Room.RoomID]++
	}

	return &Result{
		Success:          best.len() == len(variables),
		TotalCourses:     len(variables),
		ScheduledCourses: best.len(),
		Schedule:         schedule,
		Statistics:       stats,
		Attempts:         attempts,
		Elapsed:          elapsed,
	}
}
