// Package loader parses the four tabular entity files feeding the
// timetable solver and reports on dataset integrity.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/noah-isme/timetable-api/internal/models"
)

// header positions resolved once per file.
type columns map[string]int

func readTable(r io.Reader, required ...string) (columns, [][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("csv file has no header row")
	}

	cols := make(columns, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("csv file missing column %q", name)
		}
	}
	return cols, rows[1:], nil
}

func (c columns) value(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Courses parses a Courses file (CourseID, CourseName, Credits, Type).
// Unparseable credit counts are kept as zero; course typing drives the
// solver, credits are informational.
func Courses(r io.Reader) ([]models.Course, error) {
	cols, rows, err := readTable(r, "CourseID", "CourseName", "Credits", "Type")
	if err != nil {
		return nil, err
	}
	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		credits, _ := strconv.Atoi(cols.value(row, "Credits"))
		courses = append(courses, models.Course{
			CourseID: cols.value(row, "CourseID"),
			Name:     cols.value(row, "CourseName"),
			Credits:  credits,
			Type:     cols.value(row, "Type"),
		})
	}
	return courses, nil
}

// Instructors parses an Instructors file (InstructorID, Name, Role,
// PreferredSlots, QualifiedCourses). PreferredSlots carries the
// "Not on {Day}" unavailability text; QualifiedCourses is a comma-separated
// course id list.
func Instructors(r io.Reader) ([]models.Instructor, error) {
	cols, rows, err := readTable(r, "InstructorID", "Name", "Role", "PreferredSlots", "QualifiedCourses")
	if err != nil {
		return nil, err
	}
	instructors := make([]models.Instructor, 0, len(rows))
	for _, row := range rows {
		instructors = append(instructors, models.NewInstructor(
			cols.value(row, "InstructorID"),
			cols.value(row, "Name"),
			cols.value(row, "Role"),
			cols.value(row, "PreferredSlots"),
			models.SplitCourseList(cols.value(row, "QualifiedCourses")),
		))
	}
	return instructors, nil
}

// Rooms parses a Rooms file (RoomID, Type, Capacity).
func Rooms(r io.Reader) ([]models.Room, error) {
	cols, rows, err := readTable(r, "RoomID", "Type", "Capacity")
	if err != nil {
		return nil, err
	}
	rooms := make([]models.Room, 0, len(rows))
	for _, row := range rows {
		capacity, err := strconv.Atoi(cols.value(row, "Capacity"))
		if err != nil {
			return nil, fmt.Errorf("room %s: invalid capacity %q", cols.value(row, "RoomID"), cols.value(row, "Capacity"))
		}
		rooms = append(rooms, models.Room{
			RoomID:   cols.value(row, "RoomID"),
			Type:     models.RoomType(cols.value(row, "Type")),
			Capacity: capacity,
		})
	}
	return rooms, nil
}

// Timeslots parses a Timeslots file (Day, StartTime, EndTime).
func Timeslots(r io.Reader) ([]models.Timeslot, error) {
	cols, rows, err := readTable(r, "Day", "StartTime", "EndTime")
	if err != nil {
		return nil, err
	}
	timeslots := make([]models.Timeslot, 0, len(rows))
	for _, row := range rows {
		timeslots = append(timeslots, models.Timeslot{
			Day:       cols.value(row, "Day"),
			StartTime: cols.value(row, "StartTime"),
			EndTime:   cols.value(row, "EndTime"),
		})
	}
	return timeslots, nil
}
