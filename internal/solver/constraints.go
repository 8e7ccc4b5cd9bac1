package solver

import "github.com/noah-isme/timetable-api/internal/models"

// dailyInstructorCap is the maximum number of sessions one instructor may
// hold on a single day. A candidate that would become the fifth is rejected.
const dailyInstructorCap = 4

type slotRoomKey struct {
	slotID string
	roomID string
}

type slotInstructorKey struct {
	slotID       string
	instructorID string
}

type dayInstructorKey struct {
	day          string
	instructorID string
}

// assignments is the partial schedule under construction. Besides the
// variable → candidate map it maintains incremental indexes so clash checks
// and scoring stay O(1) per candidate instead of re-scanning every
// assignment.
type assignments struct {
	byVariable map[Variable]Candidate

	roomBusy       map[slotRoomKey]struct{}
	instructorBusy map[slotInstructorKey]struct{}
	dailyLoad      map[dayInstructorKey]int
	sectionSlots   map[string]map[string]string

	dayTotal          map[string]int
	instructorTotal   map[string]int
	slotsByInstructor map[dayInstructorKey][]int
}

func newAssignments() *assignments {
	return &assignments{
		byVariable:        make(map[Variable]Candidate),
		roomBusy:          make(map[slotRoomKey]struct{}),
		instructorBusy:    make(map[slotInstructorKey]struct{}),
		dailyLoad:         make(map[dayInstructorKey]int),
		sectionSlots:      make(map[string]map[string]string),
		dayTotal:          make(map[string]int),
		instructorTotal:   make(map[string]int),
		slotsByInstructor: make(map[dayInstructorKey][]int),
	}
}

func (a *assignments) len() int {
	return len(a.byVariable)
}

func (a *assignments) assign(variable Variable, cand Candidate) {
	slotID := cand.Slot.ID()
	a.byVariable[variable] = cand

	a.roomBusy[slotRoomKey{slotID: slotID, roomID: cand.Room.RoomID}] = struct{}{}
	a.instructorBusy[slotInstructorKey{slotID: slotID, instructorID: cand.Instructor.InstructorID}] = struct{}{}

	dayKey := dayInstructorKey{day: cand.Slot.Day, instructorID: cand.Instructor.InstructorID}
	a.dailyLoad[dayKey]++

	if a.sectionSlots[variable.CourseID] == nil {
		a.sectionSlots[variable.CourseID] = make(map[string]string)
	}
	a.sectionSlots[variable.CourseID][variable.SectionID] = slotID

	a.dayTotal[cand.Slot.Day]++
	a.instructorTotal[cand.Instructor.InstructorID]++
	if idx := startTimeIndex(cand.Slot.StartTime); idx >= 0 {
		a.slotsByInstructor[dayKey] = append(a.slotsByInstructor[dayKey], idx)
	}
}

// isValid checks the seven hard constraints for a candidate triple against
// the current partial schedule. All clash comparisons key on entity IDs.
func (a *assignments) isValid(course models.Course, variable Variable, cand Candidate) bool {
	// H1: room type must suit the section.
	if cand.Room.Type != requiredRoomType(course, variable.SectionID) {
		return false
	}

	// H2: instructor cannot teach on their blocked day.
	if !cand.Instructor.AvailableOn(cand.Slot.Day) {
		return false
	}

	// H3: instructor must be qualified for the course.
	if !cand.Instructor.Qualified(variable.CourseID) {
		return false
	}

	slotID := cand.Slot.ID()

	// H4: no room double-booking.
	if _, busy := a.roomBusy[slotRoomKey{slotID: slotID, roomID: cand.Room.RoomID}]; busy {
		return false
	}

	// H5: no instructor double-booking.
	if _, busy := a.instructorBusy[slotInstructorKey{slotID: slotID, instructorID: cand.Instructor.InstructorID}]; busy {
		return false
	}

	// H6: daily instructor cap.
	if a.dailyLoad[dayInstructorKey{day: cand.Slot.Day, instructorID: cand.Instructor.InstructorID}] >= dailyInstructorCap {
		return false
	}

	// H7: the lecture and lab halves of one course must occupy different
	// timeslots.
	for sectionID, occupiedSlot := range a.sectionSlots[variable.CourseID] {
		if sectionID != variable.SectionID && occupiedSlot == slotID {
			return false
		}
	}

	return true
}
