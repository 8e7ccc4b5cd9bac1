package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// TimetableSlotRepository persists the assigned sessions of a stored
// timetable.
type TimetableSlotRepository struct {
	db *sqlx.DB
}

// NewTimetableSlotRepository constructs repository.
func NewTimetableSlotRepository(db *sqlx.DB) *TimetableSlotRepository {
	return &TimetableSlotRepository{db: db}
}

func (r *TimetableSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch stores every slot of a timetable.
func (r *TimetableSlotRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	if len(slots) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO timetable_slots (
	timetable_id, course_id, course_name, course_type, section_id,
	day, start_time, end_time,
	room_id, room_type, room_capacity,
	instructor_id, instructor_name, instructor_role
) VALUES (
	:timetable_id, :course_id, :course_name, :course_type, :section_id,
	:day, :start_time, :end_time,
	:room_id, :room_type, :room_capacity,
	:instructor_id, :instructor_name, :instructor_role
)`
	for _, slot := range slots {
		if _, err := sqlx.NamedExecContext(ctx, target, query, slot); err != nil {
			return fmt.Errorf("insert timetable slot: %w", err)
		}
	}
	return nil
}

// ListByTimetable returns the stored sessions ordered for display.
func (r *TimetableSlotRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSlot, error) {
	const query = `SELECT timetable_id, course_id, course_name, course_type, section_id,
	day, start_time, end_time,
	room_id, room_type, room_capacity,
	instructor_id, instructor_name, instructor_role
FROM timetable_slots WHERE timetable_id = $1 ORDER BY day, start_time, course_id, section_id`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}
