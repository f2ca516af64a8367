package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/abogida/abogida-api/internal/models"
)

// AnnouncementRepository reads school-wide notices.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates a new instance of AnnouncementRepository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// CountBySchool returns the number of announcements published in a school.
func (r *AnnouncementRepository) CountBySchool(ctx context.Context, schoolID string) (int, error) {
	const query = `SELECT COUNT(*) FROM announcements WHERE school_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, schoolID); err != nil {
		return 0, fmt.Errorf("count announcements: %w", err)
	}
	return total, nil
}

// ListBySchool returns announcements newest first.
func (r *AnnouncementRepository) ListBySchool(ctx context.Context, schoolID string, limit int) ([]models.Announcement, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT id, school_id, title, body, created_by, created_at FROM announcements WHERE school_id = $1 ORDER BY created_at DESC LIMIT %d`, limit)
	items := make([]models.Announcement, 0)
	if err := r.db.SelectContext(ctx, &items, query, schoolID); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return items, nil
}
