package solver

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Solve runs the multi-restart greedy search and returns the best schedule
// found. It fails fast on empty inputs or when no course has a qualified
// instructor; an incomplete placement is a normal result, not an error.
//
// Cancellation is cooperative: the context, the caller timeout, and the
// internal attempt budget are all consulted between attempts, never inside
// the per-variable loop. Whatever the best attempt produced so far is
// returned.
func (s *Solver) Solve(ctx context.Context, p Problem) (*Result, error) {
	if len(p.Courses) == 0 || len(p.Instructors) == 0 || len(p.Rooms) == 0 || len(p.Timeslots) == 0 {
		return nil, ErrEmptyInput
	}
	if !anySchedulable(p) {
		return nil, ErrNoSchedulable
	}

	variables := BuildVariables(p.Courses)
	courseIndex := make(map[string]models.Course, len(p.Courses))
	for _, course := range p.Courses {
		courseIndex[course.CourseID] = course
	}

	start := time.Now()
	best := newAssignments()
	attemptsUsed := 0

	for attempt := 0; attempt < s.opts.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		result := s.runAttempt(p, variables, courseIndex)
		attemptsUsed++

		if result.len() > best.len() {
			best = result
			s.opts.Logger.Debug("new best attempt",
				zap.Int("attempt", attempt+1),
				zap.Int("scheduled", best.len()),
				zap.Int("total", len(variables)),
			)
		}

		if float64(best.len()) >= earlyExitRatio*float64(len(variables)) {
			break
		}
		elapsed := time.Since(start)
		if elapsed > s.opts.AttemptBudget || elapsed > s.opts.Timeout {
			s.opts.Logger.Debug("solve time budget exhausted", zap.Duration("elapsed", elapsed))
			break
		}
	}

	return buildResult(p, variables, best, attemptsUsed, time.Since(start)), nil
}

// runAttempt is one full greedy pass from an empty schedule: rebuild
// domains, order variables most-constrained first, and commit the first
// valid candidate per variable in soft-score order. Variables with no valid
// candidate stay unassigned; there is no backtracking.
func (s *Solver) runAttempt(p Problem, variables []Variable, courseIndex map[string]models.Course) *assignments {
	domains := BuildDomains(p, variables)

	ordered := make([]Variable, len(variables))
	copy(ordered, variables)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(domains[ordered[i]]) < len(domains[ordered[j]])
	})

	current := newAssignments()
	for _, variable := range ordered {
		course := courseIndex[variable.CourseID]

		candidates := domains[variable]
		if len(candidates) > s.opts.CandidateCap {
			shuffled := make([]Candidate, len(candidates))
			copy(shuffled, candidates)
			s.opts.Rand.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			candidates = shuffled[:s.opts.CandidateCap]
		}

		scored := make([]scoredCandidate, len(candidates))
		for i, cand := range candidates {
			scored[i] = scoredCandidate{cand: cand, score: current.score(course, cand, s.opts.Rand)}
		}
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].score < scored[j].score
		})

		for _, sc := range scored {
			if current.isValid(course, variable, sc.cand) {
				current.assign(variable, sc.cand)
				break
			}
		}
	}
	return current
}

type scoredCandidate struct {
	cand  Candidate
	score float64
}

// anySchedulable reports whether at least one course has a qualified
// instructor; without that the search cannot place anything.
func anySchedulable(p Problem) bool {
	for _, course := range p.Courses {
		for _, instructor := range p.Instructors {
			if instructor.Qualified(course.CourseID) {
				return true
			}
		}
	}
	return false
}
