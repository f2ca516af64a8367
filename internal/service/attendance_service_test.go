package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

type fakeAttendanceRepo struct {
	records []models.AttendanceRecord
}

func (f *fakeAttendanceRepo) Upsert(_ context.Context, record *models.AttendanceRecord) error {
	for i := range f.records {
		existing := &f.records[i]
		if existing.ClassID == record.ClassID && existing.StudentID == record.StudentID && existing.Date.Equal(record.Date) {
			existing.Status = record.Status
			existing.Notes = record.Notes
			return nil
		}
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeAttendanceRepo) ListByClassDate(_ context.Context, classID string, date time.Time) ([]models.AttendanceRecordDetail, error) {
	out := make([]models.AttendanceRecordDetail, 0)
	for _, record := range f.records {
		if record.ClassID == classID && record.Date.Equal(date) {
			out = append(out, models.AttendanceRecordDetail{AttendanceRecord: record})
		}
	}
	return out, nil
}

type fakeEnrollments struct {
	enrolled map[string][]string // class id -> student ids
}

func (f *fakeEnrollments) IsEnrolled(_ context.Context, classID, studentID string) (bool, error) {
	for _, id := range f.enrolled[classID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

func TestAttendanceServiceMarkUpserts(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	classes := &fakeClassOwnership{owned: map[string]string{"class-1": "t-1"}}
	enrollments := &fakeEnrollments{enrolled: map[string][]string{"class-1": {"s-1", "s-2"}}}
	svc := NewAttendanceService(repo, classes, enrollments, nil, nil)

	req := models.MarkAttendanceRequest{
		ClassID: "class-1",
		Date:    "2026-03-02",
		Entries: []models.AttendanceEntry{
			{StudentID: "s-1", Status: models.AttendancePresent},
			{StudentID: "s-2", Status: models.AttendanceAbsent},
		},
	}
	records, err := svc.Mark(context.Background(), teacherCaller(), req)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// marking again replaces rather than duplicates
	req.Entries = []models.AttendanceEntry{{StudentID: "s-2", Status: models.AttendanceLate}}
	_, err = svc.Mark(context.Background(), teacherCaller(), req)
	require.NoError(t, err)
	assert.Len(t, repo.records, 2)
	assert.Equal(t, models.AttendanceLate, repo.records[1].Status)
}

func TestAttendanceServiceMarkRejectsBadStatus(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, &fakeClassOwnership{owned: map[string]string{"class-1": "t-1"}}, &fakeEnrollments{enrolled: map[string][]string{"class-1": {"s-1"}}}, nil, nil)

	_, err := svc.Mark(context.Background(), teacherCaller(), models.MarkAttendanceRequest{
		ClassID: "class-1",
		Date:    "2026-03-02",
		Entries: []models.AttendanceEntry{{StudentID: "s-1", Status: "sleeping"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceMarkRequiresOwnership(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, &fakeClassOwnership{owned: map[string]string{"class-1": "other"}}, &fakeEnrollments{}, nil, nil)

	_, err := svc.Mark(context.Background(), teacherCaller(), models.MarkAttendanceRequest{
		ClassID: "class-1",
		Date:    "2026-03-02",
		Entries: []models.AttendanceEntry{{StudentID: "s-1", Status: models.AttendancePresent}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceMarkRejectsUnenrolledStudent(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	classes := &fakeClassOwnership{owned: map[string]string{"class-1": "t-1"}}
	svc := NewAttendanceService(repo, classes, &fakeEnrollments{enrolled: map[string][]string{"class-1": {"s-1"}}}, nil, nil)

	_, err := svc.Mark(context.Background(), teacherCaller(), models.MarkAttendanceRequest{
		ClassID: "class-1",
		Date:    "2026-03-02",
		Entries: []models.AttendanceEntry{{StudentID: "s-9", Status: models.AttendancePresent}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.records)
}

func TestAttendanceServiceListParentForbidden(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, &fakeClassOwnership{}, &fakeEnrollments{}, nil, nil)

	parentID := "p-1"
	caller := models.Caller{UserID: "user-2", Role: models.RoleParent, SchoolID: "school-1", ParentID: &parentID}
	_, err := svc.List(context.Background(), caller, "class-1", "2026-03-02")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
