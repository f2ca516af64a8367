package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

type callerUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type callerTeacherRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

type callerParentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Parent, error)
}

type callerClassRepository interface {
	ListRefsByTeacher(ctx context.Context, teacherID string) ([]models.ClassRef, error)
}

// CallerService resolves a session's user into the role-scoped caller context
// the rest of the API operates on. Resolution degrades instead of failing: a
// missing profile row yields an unknown role or an empty class list, never a
// hard error, so read surfaces still render.
type CallerService struct {
	users    callerUserRepository
	teachers callerTeacherRepository
	parents  callerParentRepository
	classes  callerClassRepository
	logger   *zap.Logger
}

// NewCallerService constructs a CallerService.
func NewCallerService(users callerUserRepository, teachers callerTeacherRepository, parents callerParentRepository, classes callerClassRepository, logger *zap.Logger) *CallerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallerService{users: users, teachers: teachers, parents: parents, classes: classes, logger: logger}
}

// Resolve loads the caller context for a user ID.
func (s *CallerService) Resolve(ctx context.Context, userID string) (*models.CallerContext, error) {
	unknown := &models.CallerContext{
		Caller:  models.Caller{UserID: userID, Role: models.RoleUnknown},
		Classes: []models.ClassRef{},
	}
	if userID == "" {
		return unknown, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return unknown, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	cc := &models.CallerContext{
		Caller: models.Caller{
			UserID:   user.ID,
			Role:     user.Role,
			SchoolID: user.SchoolID,
		},
		Classes: []models.ClassRef{},
	}
	if !user.Role.Valid() {
		cc.Caller.Role = models.RoleUnknown
		return cc, nil
	}

	switch user.Role {
	case models.RoleTeacher:
		teacher, err := s.teachers.FindByUserID(ctx, user.ID)
		if err != nil {
			// an account without its teacher row still gets a read-only view
			if !errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("teacher profile lookup failed", zap.String("user_id", user.ID), zap.Error(err))
			}
			return cc, nil
		}
		cc.Caller.TeacherID = &teacher.ID
		refs, err := s.classes.ListRefsByTeacher(ctx, teacher.ID)
		if err != nil {
			s.logger.Warn("class list lookup failed", zap.String("teacher_id", teacher.ID), zap.Error(err))
			return cc, nil
		}
		cc.Classes = refs
	case models.RoleParent:
		parent, err := s.parents.FindByUserID(ctx, user.ID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("parent profile lookup failed", zap.String("user_id", user.ID), zap.Error(err))
			}
			return cc, nil
		}
		cc.Caller.ParentID = &parent.ID
	}

	return cc, nil
}
