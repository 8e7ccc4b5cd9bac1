package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBlockedDay(t *testing.T) {
	assert.Equal(t, "Tuesday", ParseBlockedDay("Not on Tuesday"))
	assert.Equal(t, "Friday", ParseBlockedDay("  not on Friday  "))
	assert.Equal(t, "", ParseBlockedDay("Tuesday"), "missing prefix blocks nothing")
	assert.Equal(t, "", ParseBlockedDay(""))
	assert.Equal(t, "", ParseBlockedDay("anytime"))
}

func TestNewInstructorNormalizesQualifications(t *testing.T) {
	instructor := NewInstructor("I1", "A", "Prof", "Not on Monday", []string{" C1", "C2 ", "", "C3"})

	assert.True(t, instructor.Qualified("C1"))
	assert.True(t, instructor.Qualified("C2"))
	assert.True(t, instructor.Qualified("C3"))
	assert.False(t, instructor.Qualified("C4"))
	assert.Equal(t, "Monday", instructor.BlockedDay)
}

func TestInstructorAvailableOn(t *testing.T) {
	instructor := NewInstructor("I1", "A", "Prof", "Not on Tuesday", []string{"C1"})

	assert.False(t, instructor.AvailableOn("Tuesday"))
	assert.False(t, instructor.AvailableOn("TUESDAY"), "day comparison is case-insensitive")
	assert.True(t, instructor.AvailableOn("Wednesday"))

	unrestricted := NewInstructor("I2", "B", "Prof", "whenever", []string{"C1"})
	assert.True(t, unrestricted.AvailableOn("Tuesday"), "unparseable restriction blocks nothing")
}

func TestSplitCourseList(t *testing.T) {
	assert.Equal(t, []string{"C1", "C2"}, SplitCourseList("C1, C2"))
	assert.Equal(t, []string{"C1"}, SplitCourseList(" C1 "))
	assert.Nil(t, SplitCourseList(""))
	assert.Nil(t, SplitCourseList("   "))
}

func TestCourseTypePredicates(t *testing.T) {
	assert.True(t, Course{Type: "Lecture and Lab"}.IsCombined())
	assert.True(t, Course{Type: "Seminar AND Studio"}.IsCombined())
	assert.False(t, Course{Type: "Lecture"}.IsCombined())

	assert.True(t, Course{Type: "Lab"}.MentionsLab())
	assert.True(t, Course{Type: "Lecture and Lab"}.MentionsLab())
	assert.False(t, Course{Type: "Lecture"}.MentionsLab())
}

func TestTimeslotID(t *testing.T) {
	slot := Timeslot{Day: "Sunday", StartTime: "9:00 AM", EndTime: "10:30 AM"}
	assert.Equal(t, "Sunday_9:00 AM", slot.ID())
}
