package solver

import (
	"math/rand"

	"github.com/noah-isme/timetable-api/internal/models"
)

// startTimeOrder is the fixed daily grid; adjacency in this list defines
// consecutive sessions.
var startTimeOrder = []string{"9:00 AM", "10:45 AM", "12:30 PM", "2:15 PM"}

const (
	earliestStart = "9:00 AM"
	latestStart   = "2:15 PM"

	edgeSlotPenalty       = 0.5
	dayBalanceWeight      = 0.5
	workloadBalanceWeight = 0.3
	smallRoomPenalty      = 1.0
	consecutiveBonus      = 2.0
	jitterSpan            = 0.5
	smallLectureRoomSeats = 50
)

func startTimeIndex(start string) int {
	for i, s := range startTimeOrder {
		if s == start {
			return i
		}
	}
	return -1
}

// score rates a candidate against the soft constraints; lower is better.
// The random jitter breaks ties and feeds exploration across restarts.
func (a *assignments) score(course models.Course, cand Candidate, rng *rand.Rand) float64 {
	var score float64

	if cand.Slot.StartTime == earliestStart {
		score += edgeSlotPenalty
	}
	if cand.Slot.StartTime == latestStart {
		score += edgeSlotPenalty
	}

	score += dayBalanceWeight * float64(a.dayTotal[cand.Slot.Day])
	score += workloadBalanceWeight * float64(a.instructorTotal[cand.Instructor.InstructorID])

	if !course.MentionsLab() && cand.Room.Capacity < smallLectureRoomSeats {
		score += smallRoomPenalty
	}

	if idx := startTimeIndex(cand.Slot.StartTime); idx >= 0 {
		dayKey := dayInstructorKey{day: cand.Slot.Day, instructorID: cand.Instructor.InstructorID}
		for _, assignedIdx := range a.slotsByInstructor[dayKey] {
			diff := assignedIdx - idx
			if diff == 1 || diff == -1 {
				score -= consecutiveBonus
			}
		}
	}

	score += rng.Float64()*2*jitterSpan - jitterSpan

	return score
}
