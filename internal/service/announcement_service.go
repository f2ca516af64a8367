package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

type announcementReader interface {
	ListBySchool(ctx context.Context, schoolID string, limit int) ([]models.Announcement, error)
}

// AnnouncementService lists school-wide notices.
type AnnouncementService struct {
	announcements announcementReader
	logger        *zap.Logger
}

// NewAnnouncementService constructs an AnnouncementService.
func NewAnnouncementService(announcements announcementReader, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{announcements: announcements, logger: logger}
}

// List returns the latest announcements for the caller's school.
func (s *AnnouncementService) List(ctx context.Context, caller models.Caller, limit int) ([]models.Announcement, error) {
	if caller.Role == models.RoleUnknown || caller.SchoolID == "" {
		return []models.Announcement{}, nil
	}
	items, err := s.announcements.ListBySchool(ctx, caller.SchoolID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return items, nil
}
