package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

type fakeReportAttendance struct {
	records []models.AttendanceRecordDetail
}

func (f *fakeReportAttendance) ListRange(_ context.Context, _ string, _, _ time.Time) ([]models.AttendanceRecordDetail, error) {
	return f.records, nil
}

func TestReportServiceAttendanceCSV(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	attendance := &fakeReportAttendance{records: []models.AttendanceRecordDetail{
		{AttendanceRecord: models.AttendanceRecord{Date: date, Status: models.AttendancePresent}, StudentName: "Student A"},
		{AttendanceRecord: models.AttendanceRecord{Date: date, Status: models.AttendanceLate}, StudentName: "Student B"},
	}}
	classes := &fakeClassOwnership{owned: map[string]string{"class-1": "t-1"}}
	svc := NewReportService(attendance, classes, nil, nil, nil)

	result, err := svc.Attendance(context.Background(), teacherCaller(), "class-1", "2026-03-01", "2026-03-07", ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.FileName, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "Date,Student,Status,Notes")
	assert.Contains(t, body, "Student A")
	assert.Contains(t, body, "late")
}

func TestReportServiceAttendancePDF(t *testing.T) {
	attendance := &fakeReportAttendance{}
	classes := &fakeClassOwnership{owned: map[string]string{"class-1": "t-1"}}
	svc := NewReportService(attendance, classes, nil, nil, nil)

	result, err := svc.Attendance(context.Background(), teacherCaller(), "class-1", "2026-03-01", "2026-03-07", ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.NotEmpty(t, result.Payload)
}

func TestReportServiceAttendanceValidation(t *testing.T) {
	svc := NewReportService(&fakeReportAttendance{}, &fakeClassOwnership{owned: map[string]string{"class-1": "t-1"}}, nil, nil, nil)

	_, err := svc.Attendance(context.Background(), teacherCaller(), "class-1", "2026-03-07", "2026-03-01", ReportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Attendance(context.Background(), teacherCaller(), "class-1", "2026-03-01", "2026-03-07", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceAttendanceParentForbidden(t *testing.T) {
	svc := NewReportService(&fakeReportAttendance{}, &fakeClassOwnership{}, nil, nil, nil)

	parentID := "p-1"
	caller := models.Caller{UserID: "user-2", Role: models.RoleParent, SchoolID: "school-1", ParentID: &parentID}
	_, err := svc.Attendance(context.Background(), caller, "class-1", "2026-03-01", "2026-03-07", ReportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
