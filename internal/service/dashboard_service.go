package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

type dashboardClassRepository interface {
	CountByTeacher(ctx context.Context, teacherID string) (int, error)
	CountBySchool(ctx context.Context, schoolID string) (int, error)
}

type dashboardUpdateRepository interface {
	CountByTeacher(ctx context.Context, teacherID string) (int, error)
}

type dashboardParentRepository interface {
	CountChildren(ctx context.Context, parentID string) (int, error)
}

type dashboardAnnouncementRepository interface {
	CountBySchool(ctx context.Context, schoolID string) (int, error)
}

type dashboardUserRepository interface {
	CountBySchool(ctx context.Context, schoolID string) (int, error)
}

// DashboardService aggregates the per-role landing page counts. Summaries are
// cached per caller with a short TTL; handlers surface the hit through
// response meta.
type DashboardService struct {
	classes       dashboardClassRepository
	updates       dashboardUpdateRepository
	parents       dashboardParentRepository
	announcements dashboardAnnouncementRepository
	users         dashboardUserRepository
	cache         *CacheService
	metrics       *MetricsService
	cacheTTL      time.Duration
	logger        *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(classes dashboardClassRepository, updates dashboardUpdateRepository, parents dashboardParentRepository, announcements dashboardAnnouncementRepository, users dashboardUserRepository, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		classes:       classes,
		updates:       updates,
		parents:       parents,
		announcements: announcements,
		users:         users,
		cache:         cache,
		metrics:       metrics,
		cacheTTL:      cacheTTL,
		logger:        logger,
	}
}

// Teacher returns the teacher landing summary. The second return reports a
// cache hit.
func (s *DashboardService) Teacher(ctx context.Context, caller models.Caller) (*models.TeacherDashboard, bool, error) {
	if !caller.IsTeacher() {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "teacher dashboard requires a teacher profile")
	}
	key := fmt.Sprintf("dashboard:teacher:%s", *caller.TeacherID)

	var cached models.TeacherDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	classCount, err := s.classes.CountByTeacher(ctx, *caller.TeacherID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}
	updateCount, err := s.updates.CountByTeacher(ctx, *caller.TeacherID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count updates")
	}

	s.metrics.ObserveDBQuery("dashboard_teacher_counts", time.Since(start))

	summary := &models.TeacherDashboard{ClassCount: classCount, UpdateCount: updateCount}
	if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
	return summary, false, nil
}

// Parent returns the parent landing summary.
func (s *DashboardService) Parent(ctx context.Context, caller models.Caller) (*models.ParentDashboard, bool, error) {
	if caller.Role != models.RoleParent || caller.ParentID == nil {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "parent dashboard requires a parent profile")
	}
	key := fmt.Sprintf("dashboard:parent:%s", *caller.ParentID)

	var cached models.ParentDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	childCount, err := s.parents.CountChildren(ctx, *caller.ParentID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count children")
	}
	announcementCount, err := s.announcements.CountBySchool(ctx, caller.SchoolID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count announcements")
	}

	s.metrics.ObserveDBQuery("dashboard_parent_counts", time.Since(start))

	summary := &models.ParentDashboard{ChildCount: childCount, AnnouncementCount: announcementCount}
	if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
	return summary, false, nil
}

// Admin returns the school-wide landing summary.
func (s *DashboardService) Admin(ctx context.Context, caller models.Caller) (*models.AdminDashboard, bool, error) {
	if caller.Role != models.RoleSchoolAdmin {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "admin dashboard requires the school_admin role")
	}
	key := fmt.Sprintf("dashboard:admin:%s", caller.SchoolID)

	var cached models.AdminDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	userCount, err := s.users.CountBySchool(ctx, caller.SchoolID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	classCount, err := s.classes.CountBySchool(ctx, caller.SchoolID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}

	s.metrics.ObserveDBQuery("dashboard_admin_counts", time.Since(start))

	summary := &models.AdminDashboard{UserCount: userCount, ClassCount: classCount}
	if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
	return summary, false, nil
}
