package solver

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func newTestSolver(seed int64) *Solver {
	return New(Options{Rand: rand.New(rand.NewSource(seed))})
}

func solve(t *testing.T, seed int64, p Problem) *Result {
	t.Helper()
	result, err := newTestSolver(seed).Solve(context.Background(), p)
	require.NoError(t, err)
	return result
}

func TestSolveSingleTrivialCourse(t *testing.T) {
	p := Problem{
		Courses:     []models.Course{{CourseID: "C1", Name: "Algorithms", Credits: 3, Type: "Lecture"}},
		Instructors: []models.Instructor{models.NewInstructor("I1", "A", "Prof", "Not on Friday", []string{"C1"})},
		Rooms:       []models.Room{{RoomID: "R1", Type: models.RoomTypeLecture, Capacity: 30}},
		Timeslots:   []models.Timeslot{{Day: "Sunday", StartTime: "9:00 AM", EndTime: "10:30 AM"}},
	}

	result := solve(t, 1, p)

	assert.Equal(t, 1, result.TotalCourses)
	assert.Equal(t, 1, result.ScheduledCourses)
	assert.True(t, result.Success)
	require.Len(t, result.Schedule, 1)
	rec := result.Schedule[0]
	assert.Equal(t, "Sunday", rec.Day)
	assert.Equal(t, "9:00 AM", rec.StartTime)
	assert.Equal(t, "R1", rec.RoomID)
	assert.Equal(t, "I1", rec.InstructorID)
}

func TestSolveQualificationAbsent(t *testing.T) {
	p := Problem{
		Courses:     []models.Course{{CourseID: "C1", Name: "Algorithms", Credits: 3, Type: "Lecture"}},
		Instructors: []models.Instructor{models.NewInstructor("I1", "A", "Prof", "Not on Friday", []string{"C2"})},
		Rooms:       []models.Room{{RoomID: "R1", Type: models.RoomTypeLecture, Capacity: 30}},
		Timeslots:   []models.Timeslot{{Day: "Sunday", StartTime: "9:00 AM", EndTime: "10:30 AM"}},
	}

	_, err := newTestSolver(1).Solve(context.Background(), p)
	assert.ErrorIs(t, err, ErrNoSchedulable)
}

func TestSolveUnavailabilityBlocksOnlyDay(t *testing.T) {
	p := Problem{
		Courses:     []models.Course{{CourseID: "C1", Name: "Algorithms", Credits: 3, Type: "Lecture"}},
		Instructors: []models.Instructor{models.NewInstructor("I1", "A", "Prof", "Not on Sunday", []string{"C1"})},
		Rooms:       []models.Room{{RoomID: "R1", Type: models.RoomTypeLecture, Capacity: 30}},
		Timeslots:   []models.Timeslot{{Day: "Sunday", StartTime: "9:00 AM", EndTime: "10:30 AM"}},
	}

	result := solve(t, 1, p)

	assert.Equal(t, 1, result.TotalCourses)
	assert.Equal(t, 0, result.ScheduledCourses)
	assert.False(t, result.Success)
	assert.Empty(t, result.Schedule)
}

func TestSolveCombinedCourseSplits(t *testing.T) {
	p := Problem{
		Courses:     []models.Course{{CourseID: "C1", Name: "Databases", Credits: 4, Type: "Lecture and Lab"}},
		Instructors: []models.Instructor{models.NewInstructor("I1", "A", "Prof", "Not on Friday", []string{"C1"})},
		Rooms: []models.Room{
			{RoomID: "R1", Type: models.RoomTypeLecture, Capacity: 60},
			{RoomID: "R2", Type: models.RoomTypeLab, Capacity: 25},
		},
		Timeslots: []models.Timeslot{
			{Day: "Sunday", StartTime: "9:00 AM", EndTime: "10:30 AM"},
			{Day: "Sunday", StartTime: "10:45 AM", EndTime: "12:15 PM"},
			{Day: "Sunday", StartTime: "12:30 PM", EndTime: "2:00 PM"},
		},
	}

	result := solve(t, 1, p)

	assert.Equal(t, 2, result.TotalCourses)
	assert.Equal(t, 2, result.ScheduledCourses)
	assert.True(t, result.Success)
	require.Len(t, result.Schedule, 2)

	var lecture, lab Record
	for _, rec := range result.Schedule {
		switch rec.SectionID {
		case SectionLecture:
			lecture = rec
		case SectionLab:
			lab = rec
		}
	}
	assert.Equal(t, "R1", lecture.RoomID)
	assert.Equal(t, "R2", lab.RoomID)
	assert.NotEqual(t, lecture.StartTime, lab.StartTime, "both halves must use different timeslots")
}

func TestSolveRoomClashForced(t *testing.T) {
	p := Problem{
		Courses: []models.Course{
			{CourseID: "C1", Name: "Algorithms", Credits: 3, Type: "Lecture"},
			{CourseID: "C2", Name: "Compilers", Credits: 3, Type: "Lecture"},
		},
		Instructors: []models.Instructor{
			models.NewInstructor("I1", "A", "Prof", "Not on Friday", []string{"C1"}),
			models.NewInstructor("I2", "B", "Prof", "Not on Friday", []string{"C2"}),
		},
		Rooms:     []models.Room{{RoomID: "R1", Type: models.RoomTypeLecture, Capacity: 30}},
		Timeslots: []models.Timeslot{{Day: "Sunday", StartTime: "9:00 AM", EndTime: "10:30 AM"}},
	}

	result := solve(t, 1, p)

	assert.Equal(t, 2, result.TotalCourses)
	assert.Equal(t, 1, result.ScheduledCourses)
	assert.False(t, result.Success)
	require.Len(t, result.Schedule, 1, "the unscheduled variable is absent from the result")
}

func TestSolveDailyInstructorCap(t *testing.T) {
	courses := make([]models.Course, 0, 5)
	rooms := make([]models.Room, 0, 5)
	courseIDs := make([]string, 0, 5)
	for n := 1; n <= 5; n++ {
		id := fmt.Sprintf("C%d", n)
		courses = append(courses, models.Course{CourseID: id, Name: "Course " + id, Credits: 3, Type: "Lecture"})
		rooms = append(rooms, models.Room{RoomID: fmt.Sprintf("R%d", n), Type: models.RoomTypeLecture, Capacity: 60})
		courseIDs = append(courseIDs, id)
	}

	p := Problem{
		Courses:     courses,
		Instructors: []models.Instructor{models.NewInstructor("I1", "A", "Prof", "Not on Friday", courseIDs)},
		Rooms:       rooms,
		Timeslots: []models.Timeslot{
			{Day: "Sunday", StartTime: "9:00 AM", EndTime: "10:30 AM"},
			{Day: "Sunday", StartTime: "10:45 AM", EndTime: "12:15 PM"},
			{Day: "Sunday", StartTime: "12:30 PM", EndTime: "2:00 PM"},
			{Day: "Sunday", StartTime: "2:15 PM", EndTime: "3:45 PM"},
		},
	}

	result := solve(t, 1, p)
	assert.Equal(t, 5, result.TotalCourses)
	assert.Equal(t, 4, result.ScheduledCourses)

	// The cap holds even with spare timeslots on the same day.
	p.Timeslots = append(p.Timeslots,
		models.Timeslot{Day: "Sunday", StartTime: "4:00 PM", EndTime: "5:30 PM"},
		models.Timeslot{Day: "Sunday", StartTime: "5:45 PM", EndTime: "7:15 PM"},
	)
	result = solve(t, 2, p)
	assert.Equal(t, 4, result.ScheduledCourses)
}

func TestSolveEmptyInputs(t *testing.T) {
	base := Problem{
		Courses:     []models.Course{{CourseID: "C1", Type: "Lecture"}},
		Instructors: []models.Instructor{models.NewInstructor("I1", "A", "Prof", "", []string{"C1"})},
		Rooms:       []models.Room{{RoomID: "R1", Type: models.RoomTypeLecture, Capacity: 30}},
		Timeslots:   []models.Timeslot{{Day: "Sunday", StartTime: "9:00 AM", EndTime: "10:30 AM"}},
	}

	for name, mutate := range map[string]func(p *Problem){
		"courses":     func(p *Problem) { p.Courses = nil },
		"instructors": func(p *Problem) { p.Instructors = nil },
		"rooms":       func(p *Problem) { p.Rooms = nil },
		"timeslots":   func(p *Problem) { p.Timeslots = nil },
	} {
		p := base
		mutate(&p)
		_, err := newTestSolver(1).Solve(context.Background(), p)
		assert.ErrorIs(t, err, ErrEmptyInput, name)
	}
}

func TestSolveVariableCountLaw(t *testing.T) {
	p := invariantFixture()
	result := solve(t, 3, p)

	singles, combined := 0, 0
	for _, course := range p.Courses {
		if course.IsCombined() {
			combined++
		} else {
			singles++
		}
	}
	assert.Equal(t, singles+2*combined, result.TotalCourses)
}

func TestSolveDeterministicWithFixedSeed(t *testing.T) {
	p := invariantFixture()

	first := solve(t, 42, p)
	second := solve(t, 42, p)

	assert.Equal(t, first.Schedule, second.Schedule)
	assert.Equal(t, first.ScheduledCourses, second.ScheduledCourses)
	assert.Equal(t, first.Statistics, second.Statistics)
}

func TestSolveUniversalInvariants(t *testing.T) {
	p := invariantFixture()

	for seed := int64(0); seed < 5; seed++ {
		result := solve(t, seed, p)
		assertScheduleInvariants(t, p, result)
	}
}

// invariantFixture is a mid-sized dataset with combined courses, scarce lab
// rooms, and day restrictions, so every constraint is exercised.
func invariantFixture() Problem {
	days := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"}
	starts := [][2]string{
		{"9:00 AM", "10:30 AM"},
		{"10:45 AM", "12:15 PM"},
		{"12:30 PM", "2:00 PM"},
		{"2:15 PM", "3:45 PM"},
	}

	var timeslots []models.Timeslot
	for _, day := range days {
		for _, window := range starts {
			timeslots = append(timeslots, models.Timeslot{Day: day, StartTime: window[0], EndTime: window[1]})
		}
	}

	var courses []models.Course
	var courseIDs []string
	for n := 1; n <= 12; n++ {
		id := fmt.Sprintf("C%d", n)
		courseType := "Lecture"
		switch n % 3 {
		case 1:
			courseType = "Lecture and Lab"
		case 2:
			courseType = "Lab"
		}
		courses = append(courses, models.Course{CourseID: id, Name: "Course " + id, Credits: 3, Type: courseType})
		courseIDs = append(courseIDs, id)
	}

	instructors := []models.Instructor{
		models.NewInstructor("I1", "Amira", "Prof", "Not on Monday", courseIDs[:6]),
		models.NewInstructor("I2", "Bashir", "Prof", "Not on Tuesday", courseIDs[4:10]),
		models.NewInstructor("I3", "Chidi", "Lecturer", "Not on Sunday", courseIDs[8:]),
		models.NewInstructor("I4", "Dana", "TA", "Not on Thursday", courseIDs),
	}

	rooms := []models.Room{
		{RoomID: "R1", Type: models.RoomTypeLecture, Capacity: 120},
		{RoomID: "R2", Type: models.RoomTypeLecture, Capacity: 45},
		{RoomID: "R3", Type: models.RoomTypeLab, Capacity: 30},
		{RoomID: "R4", Type: models.RoomTypeLab, Capacity: 24},
	}

	return Problem{Courses: courses, Instructors: instructors, Rooms: rooms, Timeslots: timeslots}
}

func assertScheduleInvariants(t *testing.T, p Problem, result *Result) {
	t.Helper()

	courseIndex := make(map[string]models.Course)
	for _, course := range p.Courses {
		courseIndex[course.CourseID] = course
	}
	instructorIndex := make(map[string]models.Instructor)
	for _, instructor := range p.Instructors {
		instructorIndex[instructor.InstructorID] = instructor
	}

	roomSlots := make(map[string]struct{})
	instructorSlots := make(map[string]struct{})
	dailyLoad := make(map[string]int)
	sectionSlots := make(map[string]map[string]string)

	for _, rec := range result.Schedule {
		slotID := rec.Day + "_" + rec.StartTime

		roomKey := slotID + "|" + rec.RoomID
		_, clash := roomSlots[roomKey]
		assert.False(t, clash, "room clash at %s", roomKey)
		roomSlots[roomKey] = struct{}{}

		instructorKey := slotID + "|" + rec.InstructorID
		_, clash = instructorSlots[instructorKey]
		assert.False(t, clash, "instructor clash at %s", instructorKey)
		instructorSlots[instructorKey] = struct{}{}

		instructor := instructorIndex[rec.InstructorID]
		assert.True(t, instructor.Qualified(rec.CourseID), "unqualified instructor %s for %s", rec.InstructorID, rec.CourseID)
		assert.True(t, instructor.AvailableOn(rec.Day), "instructor %s scheduled on blocked day %s", rec.InstructorID, rec.Day)

		course := courseIndex[rec.CourseID]
		expectedType := requiredRoomType(course, rec.SectionID)
		assert.Equal(t, string(expectedType), rec.RoomType, "room type mismatch for %s/%s", rec.CourseID, rec.SectionID)

		dayKey := rec.Day + "|" + rec.InstructorID
		dailyLoad[dayKey]++
		assert.LessOrEqual(t, dailyLoad[dayKey], dailyInstructorCap, "daily cap exceeded for %s", dayKey)

		if sectionSlots[rec.CourseID] == nil {
			sectionSlots[rec.CourseID] = make(map[string]string)
		}
		for otherSection, otherSlot := range sectionSlots[rec.CourseID] {
			if otherSection != rec.SectionID {
				assert.NotEqual(t, otherSlot, slotID, "sections of %s share a timeslot", rec.CourseID)
			}
		}
		sectionSlots[rec.CourseID][rec.SectionID] = slotID
	}
}
