package solver

import "github.com/noah-isme/timetable-api/internal/models"

// BuildVariables expands the course list into the sessions that need
// placement, preserving input order. A combined course ("Lecture and Lab",
// or any type containing "and") yields a LECTURE and a LAB variable, in that
// order; every other course yields a single S1 variable.
func BuildVariables(courses []models.Course) []Variable {
	variables := make([]Variable, 0, len(courses))
	for _, course := range courses {
		if course.IsCombined() {
			variables = append(variables,
				Variable{CourseID: course.CourseID, SectionID: SectionLecture},
				Variable{CourseID: course.CourseID, SectionID: SectionLab},
			)
			continue
		}
		variables = append(variables, Variable{CourseID: course.CourseID, SectionID: SectionSingle})
	}
	return variables
}
