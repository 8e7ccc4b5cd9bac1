// Package solver implements the constraint-satisfaction timetable engine:
// variable expansion, domain construction, hard-constraint checking,
// soft-constraint scoring, and a multi-restart greedy search.
package solver

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
)

// Sentinel errors surfaced before the search runs.
var (
	ErrEmptyInput    = errors.New("solver: courses, instructors, rooms, and timeslots must all be non-empty")
	ErrNoSchedulable = errors.New("solver: no course has a qualified instructor")
)

// Section tags distinguish the sessions a course expands into.
const (
	SectionSingle  = "S1"
	SectionLecture = "LECTURE"
	SectionLab     = "LAB"
)

// Problem bundles the already-parsed entity collections for one solve call.
type Problem struct {
	Courses     []models.Course
	Instructors []models.Instructor
	Rooms       []models.Room
	Timeslots   []models.Timeslot
}

// Variable identifies one session to place. Identity is the pair
// (CourseID, SectionID); the zero value is not a valid variable.
type Variable struct {
	CourseID  string
	SectionID string
}

// Candidate is one (timeslot, room, instructor) triple a variable may take.
type Candidate struct {
	Slot       models.Timeslot
	Room       models.Room
	Instructor models.Instructor
}

// Options tunes the search engine. Zero values fall back to the documented
// defaults.
type Options struct {
	// MaxAttempts bounds the number of greedy restarts. Default 5.
	MaxAttempts int
	// Timeout is the caller-supplied wall-clock budget for the whole solve,
	// consulted between attempts. Default 60s.
	Timeout time.Duration
	// AttemptBudget is the hard internal cap on restart time, independent of
	// Timeout. Default 20s.
	AttemptBudget time.Duration
	// CandidateCap truncates oversized domains after a shuffle. Default 100.
	CandidateCap int
	// Rand supplies the jitter and shuffle randomness. When nil a fresh
	// OS-entropy-seeded source is used, so runs vary; inject a fixed-seed
	// source for reproducible schedules.
	Rand *rand.Rand
	// Logger receives per-attempt progress. Defaults to a nop logger.
	Logger *zap.Logger
}

const (
	defaultMaxAttempts   = 5
	defaultTimeout       = 60 * time.Second
	defaultAttemptBudget = 20 * time.Second
	defaultCandidateCap  = 100

	// earlyExitRatio stops restarting once this share of variables is placed.
	earlyExitRatio = 0.95
)

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.AttemptBudget <= 0 {
		o.AttemptBudget = defaultAttemptBudget
	}
	if o.CandidateCap <= 0 {
		o.CandidateCap = defaultCandidateCap
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(entropySeed()))
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// entropySeed draws a seed from the OS entropy pool, falling back to the
// clock if that fails.
func entropySeed() int64 {
	var seed int64
	if err := binary.Read(crand.Reader, binary.LittleEndian, &seed); err != nil {
		return time.Now().UnixNano()
	}
	return seed
}

// Solver runs the multi-restart greedy search over a Problem.
type Solver struct {
	opts Options
}

// New constructs a solver with the provided options.
func New(opts Options) *Solver {
	return &Solver{opts: opts.withDefaults()}
}
