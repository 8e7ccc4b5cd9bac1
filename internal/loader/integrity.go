package loader

import "github.com/noah-isme/timetable-api/internal/models"

// IntegrityReport summarises whether a dataset can produce a useful
// schedule before the solver runs.
type IntegrityReport struct {
	Courses                   int            `json:"courses"`
	Instructors               int            `json:"instructors"`
	Rooms                     int            `json:"rooms"`
	Timeslots                 int            `json:"timeslots"`
	LectureRooms              int            `json:"lecture_rooms"`
	LabRooms                  int            `json:"lab_rooms"`
	CoursesWithoutInstructors []string       `json:"courses_without_instructors"`
	UnavailableDays           map[string]int `json:"unavailable_days"`
}

// CheckIntegrity inspects the parsed entity collections: courses lacking
// any qualified instructor, the lecture/lab room split, and the histogram
// of instructor unavailability.
func CheckIntegrity(courses []models.Course, instructors []models.Instructor, rooms []models.Room, timeslots []models.Timeslot) IntegrityReport {
	report := IntegrityReport{
		Courses:         len(courses),
		Instructors:     len(instructors),
		Rooms:           len(rooms),
		Timeslots:       len(timeslots),
		UnavailableDays: make(map[string]int),
	}

	for _, course := range courses {
		qualified := false
		for _, instructor := range instructors {
			if instructor.Qualified(course.CourseID) {
				qualified = true
				break
			}
		}
		if !qualified {
			report.CoursesWithoutInstructors = append(report.CoursesWithoutInstructors, course.CourseID)
		}
	}

	for _, room := range rooms {
		switch room.Type {
		case models.RoomTypeLecture:
			report.LectureRooms++
		case models.RoomTypeLab:
			report.LabRooms++
		}
	}

	for _, instructor := range instructors {
		if instructor.BlockedDay != "" {
			report.UnavailableDays[instructor.BlockedDay]++
		}
	}

	return report
}
