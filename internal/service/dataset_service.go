package service

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/loader"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/solver"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// DatasetLimits bounds uploaded entity collections.
type DatasetLimits struct {
	MaxCourses     int
	MaxInstructors int
	MaxRooms       int
	MaxTimeslots   int
	RetentionTTL   time.Duration
}

// Dataset is one uploaded entity collection held in memory for solving.
type Dataset struct {
	ID          string
	Courses     []models.Course
	Instructors []models.Instructor
	Rooms       []models.Room
	Timeslots   []models.Timeslot
	Integrity   loader.IntegrityReport
	UploadedAt  time.Time
}

// Problem converts the dataset into the solver input shape.
func (d *Dataset) Problem() solver.Problem {
	return solver.Problem{
		Courses:     d.Courses,
		Instructors: d.Instructors,
		Rooms:       d.Rooms,
		Timeslots:   d.Timeslots,
	}
}

// DatasetService parses, validates, and retains uploaded datasets.
type DatasetService struct {
	limits DatasetLimits
	logger *zap.Logger

	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewDatasetService constructs a dataset service.
func NewDatasetService(limits DatasetLimits, logger *zap.Logger) *DatasetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limits.RetentionTTL <= 0 {
		limits.RetentionTTL = 12 * time.Hour
	}
	return &DatasetService{
		limits:   limits,
		logger:   logger,
		datasets: make(map[string]*Dataset),
	}
}

// UploadCSV parses the four tabular files and stores the dataset.
func (s *DatasetService) UploadCSV(courses, instructors, rooms, timeslots io.Reader) (*dto.DatasetSummary, error) {
	parsedCourses, err := loader.Courses(courses)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid courses file")
	}
	parsedInstructors, err := loader.Instructors(instructors)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructors file")
	}
	parsedRooms, err := loader.Rooms(rooms)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rooms file")
	}
	parsedTimeslots, err := loader.Timeslots(timeslots)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timeslots file")
	}

	return s.store(parsedCourses, parsedInstructors, parsedRooms, parsedTimeslots)
}

// UploadPayload stores a dataset provided as inline JSON entities.
func (s *DatasetService) UploadPayload(payload dto.DatasetPayload) (*dto.DatasetSummary, error) {
	courses := make([]models.Course, 0, len(payload.Courses))
	for _, course := range payload.Courses {
		courses = append(courses, models.Course{
			CourseID: course.CourseID,
			Name:     course.Name,
			Credits:  course.Credits,
			Type:     course.Type,
		})
	}
	instructors := make([]models.Instructor, 0, len(payload.Instructors))
	for _, instructor := range payload.Instructors {
		instructors = append(instructors, models.NewInstructor(
			instructor.InstructorID,
			instructor.Name,
			instructor.Role,
			instructor.UnavailableDay,
			instructor.QualifiedCourses,
		))
	}
	rooms := make([]models.Room, 0, len(payload.Rooms))
	for _, room := range payload.Rooms {
		rooms = append(rooms, models.Room{
			RoomID:   room.RoomID,
			Type:     models.RoomType(room.Type),
			Capacity: room.Capacity,
		})
	}
	timeslots := make([]models.Timeslot, 0, len(payload.Timeslots))
	for _, slot := range payload.Timeslots {
		timeslots = append(timeslots, models.Timeslot{
			Day:       slot.Day,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}

	return s.store(courses, instructors, rooms, timeslots)
}

func (s *DatasetService) store(courses []models.Course, instructors []models.Instructor, rooms []models.Room, timeslots []models.Timeslot) (*dto.DatasetSummary, error) {
	if err := s.checkLimits(len(courses), len(instructors), len(rooms), len(timeslots)); err != nil {
		return nil, err
	}

	dataset := &Dataset{
		ID:          uuid.NewString(),
		Courses:     courses,
		Instructors: instructors,
		Rooms:       rooms,
		Timeslots:   timeslots,
		Integrity:   loader.CheckIntegrity(courses, instructors, rooms, timeslots),
		UploadedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	s.evictExpired()
	s.datasets[dataset.ID] = dataset
	s.mu.Unlock()

	s.logger.Info("dataset stored",
		zap.String("dataset_id", dataset.ID),
		zap.Int("courses", len(courses)),
		zap.Int("instructors", len(instructors)),
		zap.Int("rooms", len(rooms)),
		zap.Int("timeslots", len(timeslots)),
	)

	return s.summary(dataset), nil
}

// Get returns a stored dataset.
func (s *DatasetService) Get(id string) (*Dataset, error) {
	s.mu.RLock()
	dataset, ok := s.datasets[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "dataset not found or expired")
	}
	if time.Since(dataset.UploadedAt) > s.limits.RetentionTTL {
		s.mu.Lock()
		delete(s.datasets, id)
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "dataset not found or expired")
	}
	return dataset, nil
}

// Summary returns the stored dataset's summary DTO.
func (s *DatasetService) Summary(id string) (*dto.DatasetSummary, error) {
	dataset, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.summary(dataset), nil
}

func (s *DatasetService) summary(dataset *Dataset) *dto.DatasetSummary {
	return &dto.DatasetSummary{
		DatasetID:   dataset.ID,
		Courses:     len(dataset.Courses),
		Instructors: len(dataset.Instructors),
		Rooms:       len(dataset.Rooms),
		Timeslots:   len(dataset.Timeslots),
		Integrity:   dataset.Integrity,
		UploadedAt:  dataset.UploadedAt,
	}
}

func (s *DatasetService) checkLimits(courses, instructors, rooms, timeslots int) error {
	if s.limits.MaxCourses > 0 && courses > s.limits.MaxCourses {
		return appErrors.Clone(appErrors.ErrValidation, "courses exceed the configured limit")
	}
	if s.limits.MaxInstructors > 0 && instructors > s.limits.MaxInstructors {
		return appErrors.Clone(appErrors.ErrValidation, "instructors exceed the configured limit")
	}
	if s.limits.MaxRooms > 0 && rooms > s.limits.MaxRooms {
		return appErrors.Clone(appErrors.ErrValidation, "rooms exceed the configured limit")
	}
	if s.limits.MaxTimeslots > 0 && timeslots > s.limits.MaxTimeslots {
		return appErrors.Clone(appErrors.ErrValidation, "timeslots exceed the configured limit")
	}
	return nil
}

// evictExpired drops datasets past their retention TTL. Caller holds the lock.
func (s *DatasetService) evictExpired() {
	cutoff := time.Now().Add(-s.limits.RetentionTTL)
	for id, dataset := range s.datasets {
		if dataset.UploadedAt.Before(cutoff) {
			delete(s.datasets, id)
		}
	}
}
