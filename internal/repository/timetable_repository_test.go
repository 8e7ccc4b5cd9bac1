package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM timetables WHERE dataset_id = $1")).
		WithArgs("ds-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WithArgs(sqlmock.AnyArg(), "ds-1", 3, string(models.TimetableStatusDraft), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload := &models.Timetable{
		DatasetID: "ds-1",
		Meta:      types.JSONText(`{"scheduled":12}`),
	}
	err := repo.CreateVersioned(context.Background(), nil, payload)
	require.NoError(t, err)
	assert.Equal(t, 3, payload.Version)
	assert.NotEmpty(t, payload.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCreateVersionedRequiresDataset(t *testing.T) {
	db, _, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	err := repo.CreateVersioned(context.Background(), nil, &models.Timetable{})
	require.Error(t, err)
}

func TestTimetableRepositoryListByDataset(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "dataset_id", "version", "status", "meta", "created_at", "updated_at"}).
		AddRow("tt-1", "ds-1", 1, string(models.TimetableStatusDraft), types.JSONText(`{}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE dataset_id = $1 ORDER BY version DESC")).
		WithArgs("ds-1").
		WillReturnRows(rows)

	list, err := repo.ListByDataset(context.Background(), "ds-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id = $1")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(1, 0))

	err := repo.Delete(context.Background(), "tt-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(string(models.TimetableStatusPublished), sqlmock.AnyArg(), "tt-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateStatus(context.Background(), nil, "tt-1", models.TimetableStatusPublished)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryInsertAndList(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	slot := models.TimetableSlot{
		TimetableID: "tt-1", CourseID: "C1", CourseName: "Algorithms", CourseType: "Lecture", SectionID: "S1",
		Day: "Sunday", StartTime: "9:00 AM", EndTime: "10:30 AM",
		RoomID: "R1", RoomType: "Lecture", RoomCapacity: 60,
		InstructorID: "I1", InstructorName: "Amira", InstructorRole: "Prof",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_slots")).
		WithArgs("tt-1", "C1", "Algorithms", "Lecture", "S1", "Sunday", "9:00 AM", "10:30 AM", "R1", "Lecture", 60, "I1", "Amira", "Prof").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.InsertBatch(context.Background(), nil, []models.TimetableSlot{slot}))

	rows := sqlmock.NewRows([]string{
		"timetable_id", "course_id", "course_name", "course_type", "section_id",
		"day", "start_time", "end_time", "room_id", "room_type", "room_capacity",
		"instructor_id", "instructor_name", "instructor_role",
	}).AddRow("tt-1", "C1", "Algorithms", "Lecture", "S1", "Sunday", "9:00 AM", "10:30 AM", "R1", "Lecture", 60, "I1", "Amira", "Prof")
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_slots WHERE timetable_id = $1")).
		WithArgs("tt-1").
		WillReturnRows(rows)

	listed, err := repo.ListByTimetable(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, slot, listed[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryInsertBatchEmpty(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	require.NoError(t, repo.InsertBatch(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
