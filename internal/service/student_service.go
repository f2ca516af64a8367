package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

type studentRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.StudentDetail, error)
	ListByClass(ctx context.Context, classID string) ([]models.StudentDetail, error)
	ListByParent(ctx context.Context, parentID string) ([]models.StudentDetail, error)
	ListBySchool(ctx context.Context, schoolID string) ([]models.StudentDetail, error)
}

// StudentService lists learners scoped to the caller's role: teachers see
// students in their classes, parents see their children, admins the school.
type StudentService struct {
	students studentRepository
	logger   *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentRepository, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, logger: logger}
}

// List returns the students visible to the caller, optionally narrowed to one
// class for teachers.
func (s *StudentService) List(ctx context.Context, caller models.Caller, classID string) ([]models.StudentDetail, error) {
	var (
		students []models.StudentDetail
		err      error
	)
	switch caller.Role {
	case models.RoleTeacher:
		if caller.TeacherID == nil {
			return []models.StudentDetail{}, nil
		}
		if classID != "" {
			students, err = s.students.ListByClass(ctx, classID)
		} else {
			students, err = s.students.ListByTeacher(ctx, *caller.TeacherID)
		}
	case models.RoleParent:
		if caller.ParentID == nil {
			return []models.StudentDetail{}, nil
		}
		students, err = s.students.ListByParent(ctx, *caller.ParentID)
	case models.RoleSchoolAdmin:
		students, err = s.students.ListBySchool(ctx, caller.SchoolID)
	default:
		return []models.StudentDetail{}, nil
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}
