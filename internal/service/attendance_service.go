package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	ListByClassDate(ctx context.Context, classID string, date time.Time) ([]models.AttendanceRecordDetail, error)
}

type attendanceClassRepository interface {
	OwnedByTeacher(ctx context.Context, classID, teacherID string) (bool, error)
}

type attendanceEnrollmentRepository interface {
	IsEnrolled(ctx context.Context, classID, studentID string) (bool, error)
}

// AttendanceService records and lists per-student attendance. Writes are
// teacher-only and idempotent on (class, student, date).
type AttendanceService struct {
	attendance  attendanceRepository
	classes     attendanceClassRepository
	enrollments attendanceEnrollmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(attendance attendanceRepository, classes attendanceClassRepository, enrollments attendanceEnrollmentRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{attendance: attendance, classes: classes, enrollments: enrollments, validator: validate, logger: logger}
}

// Mark upserts attendance statuses for a class on a date.
func (s *AttendanceService) Mark(ctx context.Context, caller models.Caller, req models.MarkAttendanceRequest) ([]models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	for _, entry := range req.Entries {
		if !entry.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported attendance status")
		}
	}
	if !caller.IsTeacher() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers can mark attendance")
	}

	owned, err := s.classes.OwnedByTeacher(ctx, req.ClassID, *caller.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify class ownership")
	}
	if !owned {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class does not belong to caller")
	}

	records := make([]models.AttendanceRecord, 0, len(req.Entries))
	for _, entry := range req.Entries {
		enrolled, err := s.enrollments.IsEnrolled(ctx, req.ClassID, entry.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify enrollment")
		}
		if !enrolled {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student is not enrolled in the class")
		}
		record := models.AttendanceRecord{
			ClassID:    req.ClassID,
			StudentID:  entry.StudentID,
			Date:       date,
			Status:     entry.Status,
			RecordedBy: caller.UserID,
			Notes:      entry.Notes,
		}
		if err := s.attendance.Upsert(ctx, &record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
		}
		records = append(records, record)
	}
	return records, nil
}

// List returns the attendance rows for a class on one date.
func (s *AttendanceService) List(ctx context.Context, caller models.Caller, classID, dateRaw string) ([]models.AttendanceRecordDetail, error) {
	if classID == "" || dateRaw == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class_id and date are required")
	}
	date, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	if !caller.IsTeacher() && caller.Role != models.RoleSchoolAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "attendance is restricted to staff")
	}
	if caller.IsTeacher() {
		owned, err := s.classes.OwnedByTeacher(ctx, classID, *caller.TeacherID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify class ownership")
		}
		if !owned {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "class does not belong to caller")
		}
	}

	records, err := s.attendance.ListByClassDate(ctx, classID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}
