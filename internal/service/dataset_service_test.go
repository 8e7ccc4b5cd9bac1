package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/loader"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func TestDatasetServiceUploadCSV(t *testing.T) {
	svc := NewDatasetService(DatasetLimits{RetentionTTL: time.Hour}, zap.NewNop())

	summary, err := svc.UploadCSV(
		strings.NewReader("CourseID,CourseName,Credits,Type\nC1,Algorithms,3,Lecture\n"),
		strings.NewReader("InstructorID,Name,Role,PreferredSlots,QualifiedCourses\nI1,Amira,Prof,Not on Tuesday,C1\n"),
		strings.NewReader("RoomID,Type,Capacity\nR1,Lecture,60\n"),
		strings.NewReader("Day,StartTime,EndTime\nSunday,9:00 AM,10:30 AM\n"),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Courses)
	assert.Equal(t, 1, summary.Instructors)
	assert.Equal(t, 1, summary.Rooms)
	assert.Equal(t, 1, summary.Timeslots)

	report, ok := summary.Integrity.(loader.IntegrityReport)
	require.True(t, ok)
	assert.Empty(t, report.CoursesWithoutInstructors)

	dataset, err := svc.Get(summary.DatasetID)
	require.NoError(t, err)
	assert.Len(t, dataset.Courses, 1)
}

func TestDatasetServiceUploadCSVBadFile(t *testing.T) {
	svc := NewDatasetService(DatasetLimits{RetentionTTL: time.Hour}, zap.NewNop())

	_, err := svc.UploadCSV(
		strings.NewReader("CourseID\nC1\n"),
		strings.NewReader("InstructorID,Name,Role,PreferredSlots,QualifiedCourses\n"),
		strings.NewReader("RoomID,Type,Capacity\n"),
		strings.NewReader("Day,StartTime,EndTime\n"),
	)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDatasetServiceLimits(t *testing.T) {
	svc := NewDatasetService(DatasetLimits{MaxCourses: 1, RetentionTTL: time.Hour}, zap.NewNop())

	payload := *testDatasetPayload()
	_, err := svc.UploadPayload(payload)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDatasetServiceGetUnknown(t *testing.T) {
	svc := NewDatasetService(DatasetLimits{RetentionTTL: time.Hour}, zap.NewNop())

	_, err := svc.Get("missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDatasetServiceRetention(t *testing.T) {
	svc := NewDatasetService(DatasetLimits{RetentionTTL: time.Millisecond}, zap.NewNop())

	summary, err := svc.UploadPayload(*testDatasetPayload())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = svc.Get(summary.DatasetID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
