package solver

import "github.com/noah-isme/timetable-api/internal/models"

// requiredRoomType resolves the room type a variable must occupy. The
// section tag wins over the course type: the LAB half of a combined course
// needs a lab even though the course type also mentions "Lecture".
func requiredRoomType(course models.Course, sectionID string) models.RoomType {
	switch sectionID {
	case SectionLab:
		return models.RoomTypeLab
	case SectionLecture:
		return models.RoomTypeLecture
	}
	if course.MentionsLab() {
		return models.RoomTypeLab
	}
	return models.RoomTypeLecture
}

// BuildDomains materializes every candidate triple per variable, applying
// the three pre-filters: room-type suitability, instructor qualification,
// and instructor day-availability. Enumeration order is timeslots × rooms ×
// instructors so domains are deterministic in the input order.
func BuildDomains(p Problem, variables []Variable) map[Variable][]Candidate {
	courseIndex := make(map[string]models.Course, len(p.Courses))
	for _, course := range p.Courses {
		courseIndex[course.CourseID] = course
	}

	domains := make(map[Variable][]Candidate, len(variables))
	for _, variable := range variables {
		course, ok := courseIndex[variable.CourseID]
		if !ok {
			continue
		}

		roomType := requiredRoomType(course, variable.SectionID)
		rooms := make([]models.Room, 0, len(p.Rooms))
		for _, room := range p.Rooms {
			if room.Type == roomType {
				rooms = append(rooms, room)
			}
		}

		instructors := make([]models.Instructor, 0, len(p.Instructors))
		for _, instructor := range p.Instructors {
			if instructor.Qualified(variable.CourseID) {
				instructors = append(instructors, instructor)
			}
		}

		var domain []Candidate
		for _, slot := range p.Timeslots {
			for _, room := range rooms {
				for _, instructor := range instructors {
					if !instructor.AvailableOn(slot.Day) {
						continue
					}
					domain = append(domain, Candidate{Slot: slot, Room: room, Instructor: instructor})
				}
			}
		}
		domains[variable] = domain
	}
	return domains
}
