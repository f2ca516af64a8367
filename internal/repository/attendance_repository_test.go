package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abogida/abogida-api/internal/models"
)

func TestAttendanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance_records").
		WithArgs(sqlmock.AnyArg(), "class-1", "s-1", sqlmock.AnyArg(), string(models.AttendanceLate), "user-1", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.AttendanceRecord{
		ClassID:    "class-1",
		StudentID:  "s-1",
		Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:     models.AttendanceLate,
		RecordedBy: "user-1",
	}
	require.NoError(t, repo.Upsert(context.Background(), record))
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListByClassDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "class_id", "student_id", "date", "status", "recorded_by", "notes", "created_at", "updated_at", "student_name"}).
		AddRow("a1", "class-1", "s-1", date, "present", "user-1", nil, time.Now(), time.Now(), "Student A")
	mock.ExpectQuery("SELECT a.id, a.class_id").
		WithArgs("class-1", date).
		WillReturnRows(rows)

	records, err := repo.ListByClassDate(context.Background(), "class-1", date)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.AttendancePresent, records[0].Status)
	assert.Equal(t, "Student A", records[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
