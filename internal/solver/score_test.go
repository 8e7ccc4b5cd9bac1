package solver

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-api/internal/models"
)

// assertScoreNear allows for the ±0.5 jitter every scoring call adds.
func assertScoreNear(t *testing.T, expected, got float64) {
	t.Helper()
	assert.InDelta(t, expected, got, jitterSpan+1e-9)
}

func TestScoreEdgeSlotPenalties(t *testing.T) {
	a := newAssignments()
	rng := rand.New(rand.NewSource(7))
	course := models.Course{CourseID: "C1", Type: "Lecture"}
	bigRoom := models.Room{RoomID: "R1", Type: models.RoomTypeLecture, Capacity: 120}

	early := a.score(course, Candidate{Slot: testSlotSun9, Room: bigRoom, Instructor: testInstructor("I1", "C1")}, rng)
	assertScoreNear(t, 0.5, early)

	late := a.score(course, Candidate{
		Slot:       models.Timeslot{Day: "Sunday", StartTime: "2:15 PM", EndTime: "3:45 PM"},
		Room:       bigRoom,
		Instructor: testInstructor("I1", "C1"),
	}, rng)
	assertScoreNear(t, 0.5, late)

	midday := a.score(course, Candidate{
		Slot:       models.Timeslot{Day: "Sunday", StartTime: "12:30 PM", EndTime: "2:00 PM"},
		Room:       bigRoom,
		Instructor: testInstructor("I1", "C1"),
	}, rng)
	assertScoreNear(t, 0, midday)
}

func TestScoreBalancePenalties(t *testing.T) {
	a := newAssignments()
	rng := rand.New(rand.NewSource(7))
	i1 := testInstructor("I1", "C1", "C2", "C3")
	bigRoom := models.Room{RoomID: "R1", Type: models.RoomTypeLecture, Capacity: 120}

	// Two existing Sunday sessions, both held by I1, at 9:00 and 12:30.
	a.assign(Variable{CourseID: "C2", SectionID: SectionSingle},
		Candidate{Slot: testSlotSun9, Room: bigRoom, Instructor: i1})
	a.assign(Variable{CourseID: "C3", SectionID: SectionSingle},
		Candidate{Slot: models.Timeslot{Day: "Sunday", StartTime: "12:30 PM", EndTime: "2:00 PM"},
			Room: models.Room{RoomID: "R2", Type: models.RoomTypeLecture, Capacity: 90}, Instructor: i1})

	course := models.Course{CourseID: "C1", Type: "Lecture"}
	cand := Candidate{
		Slot:       models.Timeslot{Day: "Sunday", StartTime: "10:45 AM", EndTime: "12:15 PM"},
		Room:       bigRoom,
		Instructor: i1,
	}

	// day balance 2×0.5 + workload 2×0.3 − two adjacent sessions 2×2.0.
	got := a.score(course, cand, rng)
	assertScoreNear(t, 0.5*2+0.3*2-2.0*2, got)
}

func TestScoreSmallRoomLecturePenalty(t *testing.T) {
	a := newAssignments()
	rng := rand.New(rand.NewSource(7))
	smallRoom := models.Room{RoomID: "R1", Type: models.RoomTypeLecture, Capacity: 30}
	slot := models.Timeslot{Day: "Sunday", StartTime: "10:45 AM", EndTime: "12:15 PM"}

	lecture := a.score(models.Course{CourseID: "C1", Type: "Lecture"},
		Candidate{Slot: slot, Room: smallRoom, Instructor: testInstructor("I1", "C1")}, rng)
	assertScoreNear(t, 1.0, lecture)

	// A lab-typed course never pays the small-room penalty.
	smallLab := models.Room{RoomID: "R2", Type: models.RoomTypeLab, Capacity: 20}
	lab := a.score(models.Course{CourseID: "C2", Type: "Lab"},
		Candidate{Slot: slot, Room: smallLab, Instructor: testInstructor("I2", "C2")}, rng)
	assertScoreNear(t, 0, lab)
}

func TestScoreJitterStaysBounded(t *testing.T) {
	a := newAssignments()
	rng := rand.New(rand.NewSource(11))
	course := models.Course{CourseID: "C1", Type: "Lecture"}
	cand := Candidate{
		Slot:       models.Timeslot{Day: "Sunday", StartTime: "10:45 AM", EndTime: "12:15 PM"},
		Room:       models.Room{RoomID: "R1", Type: models.RoomTypeLecture, Capacity: 120},
		Instructor: testInstructor("I1", "C1"),
	}

	for i := 0; i < 200; i++ {
		score := a.score(course, cand, rng)
		assert.GreaterOrEqual(t, score, -0.5)
		assert.LessOrEqual(t, score, 0.5)
	}
}

func TestStartTimeIndex(t *testing.T) {
	assert.Equal(t, 0, startTimeIndex("9:00 AM"))
	assert.Equal(t, 3, startTimeIndex("2:15 PM"))
	assert.Equal(t, -1, startTimeIndex("4:00 PM"))
}
