package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

type classRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error)
	ListBySchool(ctx context.Context, schoolID string) ([]models.Class, error)
}

// ClassService lists classes scoped to the caller's role: teachers see the
// sections they own, parents and admins see the whole school.
type ClassService struct {
	classes classRepository
	logger  *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(classes classRepository, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, logger: logger}
}

// List returns the classes visible to the caller.
func (s *ClassService) List(ctx context.Context, caller models.Caller) ([]models.Class, error) {
	switch caller.Role {
	case models.RoleTeacher:
		if caller.TeacherID == nil {
			return []models.Class{}, nil
		}
		classes, err := s.classes.ListByTeacher(ctx, *caller.TeacherID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
		}
		return classes, nil
	case models.RoleParent, models.RoleSchoolAdmin:
		classes, err := s.classes.ListBySchool(ctx, caller.SchoolID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
		}
		return classes, nil
	default:
		return []models.Class{}, nil
	}
}
