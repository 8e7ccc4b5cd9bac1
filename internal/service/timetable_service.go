package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/solver"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

type timetableRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	ListByDataset(ctx context.Context, datasetID string) ([]models.Timetable, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus) error
}

type timetableSlotRepository interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSlot, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetableConfig governs solver defaults and proposal retention.
type TimetableConfig struct {
	MaxAttempts    int
	SolveTimeout   time.Duration
	AttemptBudget  time.Duration
	CandidateCap   int
	ProposalTTL    time.Duration
	ResultCacheTTL time.Duration
}

// TimetableService orchestrates the solve pipeline: resolve the dataset,
// run the constraint search, hold proposals for later persistence, and
// manage stored timetable versions.
type TimetableService struct {
	datasets   *DatasetService
	timetables timetableRepository
	slots      timetableSlotRepository
	tx         txProvider
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	config     TimetableConfig
	store      *proposalStore
}

// NewTimetableService wires the solve pipeline dependencies.
func NewTimetableService(
	datasets *DatasetService,
	timetables timetableRepository,
	slots timetableSlotRepository,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	return &TimetableService{
		datasets:   datasets,
		timetables: timetables,
		slots:      slots,
		tx:         tx,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		config:     cfg,
		store:      newProposalStore(cfg.ProposalTTL),
	}
}

// Generate resolves the dataset and runs the constraint solver. The
// returned proposal can be saved until its TTL lapses.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	dataset, err := s.resolveDataset(req)
	if err != nil {
		return nil, err
	}

	cacheKey := ""
	if req.Seed != nil {
		cacheKey = "solve:" + dataset.ID + ":" + strconv.FormatInt(*req.Seed, 10)
		var cached dto.GenerateTimetableResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			if _, ok := s.store.Get(cached.ProposalID); ok {
				cached.Cached = true
				return &cached, nil
			}
		}
	}

	opts := solver.Options{
		MaxAttempts:   s.config.MaxAttempts,
		Timeout:       s.config.SolveTimeout,
		AttemptBudget: s.config.AttemptBudget,
		CandidateCap:  s.config.CandidateCap,
		Logger:        s.logger,
	}
	if req.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}
	if req.Seed != nil {
		opts.Rand = rand.New(rand.NewSource(*req.Seed))
	}

	result, err := solver.New(opts).Solve(ctx, dataset.Problem())
	if err != nil {
		switch {
		case errors.Is(err, solver.ErrEmptyInput):
			return nil, appErrors.Clone(appErrors.ErrEmptyDataset, "")
		case errors.Is(err, solver.ErrNoSchedulable):
			return nil, appErrors.Clone(appErrors.ErrNoSchedulable, "")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "solver failed")
		}
	}

	s.metrics.ObserveSolve(result.Elapsed, result.Attempts, result.ScheduledCourses, result.TotalCourses)
	s.logger.Info("timetable generated",
		zap.String("dataset_id", dataset.ID),
		zap.Int("scheduled", result.ScheduledCourses),
		zap.Int("total", result.TotalCourses),
		zap.Int("attempts", result.Attempts),
		zap.Duration("elapsed", result.Elapsed),
	)

	resp := toGenerateResponse(result)
	resp.ProposalID = uuid.NewString()
	resp.DatasetID = dataset.ID

	s.store.Save(proposal{
		ID:          resp.ProposalID,
		DatasetID:   dataset.ID,
		Result:      result,
		RequestedAt: time.Now().UTC(),
	})

	if cacheKey != "" {
		_ = s.cache.Set(ctx, cacheKey, resp, s.config.ResultCacheTTL)
	}

	return resp, nil
}

// Save persists a generated proposal as a versioned timetable.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save payload")
	}
	prop, ok := s.store.Get(req.ProposalID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if s.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	metaPayload := map[string]any{
		"success":    prop.Result.Success,
		"scheduled":  prop.Result.ScheduledCourses,
		"total":      prop.Result.TotalCourses,
		"attempts":   prop.Result.Attempts,
		"statistics": prop.Result.Statistics,
		"generated":  prop.RequestedAt,
		"algorithm":  "greedy_restart_v1",
	}
	metaBytes, marshalErr := json.Marshal(metaPayload)
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable metadata")
		return "", err
	}

	record := &models.Timetable{
		DatasetID: prop.DatasetID,
		Status:    models.TimetableStatusDraft,
		Meta:      types.JSONText(metaBytes),
	}

	if err = s.timetables.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
		return "", err
	}

	slotModels := make([]models.TimetableSlot, 0, len(prop.Result.Schedule))
	for _, rec := range prop.Result.Schedule {
		slotModels = append(slotModels, models.TimetableSlot{
			TimetableID:    record.ID,
			CourseID:       rec.CourseID,
			CourseName:     rec.CourseName,
			CourseType:     rec.CourseType,
			SectionID:      rec.SectionID,
			Day:            rec.Day,
			StartTime:      rec.StartTime,
			EndTime:        rec.EndTime,
			RoomID:         rec.RoomID,
			RoomType:       rec.RoomType,
			RoomCapacity:   rec.RoomCapacity,
			InstructorID:   rec.InstructorID,
			InstructorName: rec.InstructorName,
			InstructorRole: rec.InstructorRole,
		})
	}

	if err = s.slots.InsertBatch(ctx, tx, slotModels); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable slots")
		return "", err
	}

	if req.Publish {
		if err = s.timetables.UpdateStatus(ctx, tx, record.ID, models.TimetableStatusPublished); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return "", err
	}

	s.store.Delete(req.ProposalID)
	return record.ID, nil
}

// List returns stored timetable versions for a dataset.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, error) {
	if query.DatasetID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "datasetId is required")
	}
	list, err := s.timetables.ListByDataset(ctx, query.DatasetID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return list, nil
}

// GetSlots returns the stored sessions of a timetable.
func (s *TimetableService) GetSlots(ctx context.Context, timetableID string) ([]models.TimetableSlot, error) {
	if timetableID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	if _, err := s.timetables.FindByID(ctx, timetableID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	slots, err := s.slots.ListByTimetable(ctx, timetableID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable slots")
	}
	return slots, nil
}

// Delete removes a draft timetable version.
func (s *TimetableService) Delete(ctx context.Context, timetableID string) error {
	record, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if record.Status != models.TimetableStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be deleted")
	}
	if err := s.timetables.Delete(ctx, timetableID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	return nil
}

// Export renders a stored timetable as CSV or PDF.
func (s *TimetableService) Export(ctx context.Context, timetableID, format string) ([]byte, string, error) {
	slots, err := s.GetSlots(ctx, timetableID)
	if err != nil {
		return nil, "", err
	}

	data := export.Dataset{
		Headers: []string{"Course", "Section", "Day", "Start", "End", "Room", "Instructor"},
		Rows:    make([]map[string]string, 0, len(slots)),
	}
	for _, slot := range slots {
		data.Rows = append(data.Rows, map[string]string{
			"Course":     fmt.Sprintf("%s %s", slot.CourseID, slot.CourseName),
			"Section":    slot.SectionID,
			"Day":        slot.Day,
			"Start":      slot.StartTime,
			"End":        slot.EndTime,
			"Room":       slot.RoomID,
			"Instructor": slot.InstructorName,
		})
	}

	switch format {
	case "pdf":
		payload, err := export.NewPDFExporter().Render(data, "Generated Timetable")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	case "", "csv":
		payload, err := export.NewCSVExporter().Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *TimetableService) resolveDataset(req dto.GenerateTimetableRequest) (*Dataset, error) {
	if req.DatasetID != "" {
		return s.datasets.Get(req.DatasetID)
	}
	if req.Dataset == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "either datasetId or an inline dataset is required")
	}
	summary, err := s.datasets.UploadPayload(*req.Dataset)
	if err != nil {
		return nil, err
	}
	return s.datasets.Get(summary.DatasetID)
}

func toGenerateResponse(result *solver.Result) *dto.GenerateTimetableResponse {
	schedule := make([]dto.ScheduleRecord, 0, len(result.Schedule))
	for _, rec := range result.Schedule {
		schedule = append(schedule, dto.ScheduleRecord(rec))
	}
	return &dto.GenerateTimetableResponse{
		Success:          result.Success,
		TotalCourses:     result.TotalCourses,
		ScheduledCourses: result.ScheduledCourses,
		Schedule:         schedule,
		Statistics: dto.TimetableStatistics{
			DayDistribution:    result.Statistics.DayDistribution,
			InstructorWorkload: result.Statistics.InstructorWorkload,
			RoomUtilization:    result.Statistics.RoomUtilization,
		},
		Attempts:  result.Attempts,
		ElapsedMs: result.Elapsed.Milliseconds(),
	}
}

// --- Proposal cache ---

type proposal struct {
	ID          string
	DatasetID   string
	Result      *solver.Result
	RequestedAt time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]proposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]proposal),
	}
}

func (s *proposalStore) Save(p proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.ID] = p
}

func (s *proposalStore) Get(id string) (proposal, bool) {
	s.mu.RLock()
	p, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return proposal{}, false
	}
	if time.Since(p.RequestedAt) > s.ttl {
		s.Delete(id)
		return proposal{}, false
	}
	return p, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
