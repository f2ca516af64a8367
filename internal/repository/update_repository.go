package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/abogida/abogida-api/internal/models"
)

// UpdateRepository persists and pages the daily updates feed.
type UpdateRepository struct {
	db *sqlx.DB
}

// NewUpdateRepository creates a new instance of UpdateRepository.
func NewUpdateRepository(db *sqlx.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

// Insert stores a new daily update.
func (r *UpdateRepository) Insert(ctx context.Context, update *models.DailyUpdate) error {
	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO daily_updates (id, school_id, class_id, teacher_id, text_content, created_at) VALUES (:id, :school_id, :class_id, :teacher_id, :text_content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, update); err != nil {
		return fmt.Errorf("insert daily update: %w", err)
	}
	return nil
}

// ListFeed returns one newest-first page of the feed. It fetches one row past
// the page size to learn whether another page exists.
func (r *UpdateRepository) ListFeed(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	page := q.Page
	if page < 0 {
		page = 0
	}
	offset := page * pageSize

	baseQuery := `
		SELECT u.id, u.school_id, u.class_id, u.teacher_id, u.text_content, u.created_at,
		       t.full_name AS teacher_name, c.name AS class_name
		FROM daily_updates u
		JOIN teachers t ON t.id = u.teacher_id
		JOIN classes c ON c.id = u.class_id
		WHERE u.school_id = $1`
	args := []interface{}{q.SchoolID}
	if q.ClassID != "" {
		baseQuery += fmt.Sprintf(" AND u.class_id = $%d", len(args)+1)
		args = append(args, q.ClassID)
	}
	query := fmt.Sprintf("%s ORDER BY u.created_at DESC LIMIT %d OFFSET %d", baseQuery, pageSize+1, offset)

	rows := make([]models.DailyUpdateDetail, 0, pageSize+1)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list feed page: %w", err)
	}

	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	return &models.FeedPage{Updates: rows, Page: page, PageSize: pageSize, HasMore: hasMore}, nil
}

// CountByTeacher returns how many updates a teacher has posted.
func (r *UpdateRepository) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	const query = `SELECT COUNT(*) FROM daily_updates WHERE teacher_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, teacherID); err != nil {
		return 0, fmt.Errorf("count updates by teacher: %w", err)
	}
	return total, nil
}
