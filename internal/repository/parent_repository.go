package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/abogida/abogida-api/internal/models"
)

// ParentRepository reads guardian profiles and their child links.
type ParentRepository struct {
	db *sqlx.DB
}

// NewParentRepository creates a new instance of ParentRepository.
func NewParentRepository(db *sqlx.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// FindByUserID returns the parent profile backing a user account.
func (r *ParentRepository) FindByUserID(ctx context.Context, userID string) (*models.Parent, error) {
	const query = `SELECT id, user_id, school_id, full_name, created_at FROM parents WHERE user_id = $1 LIMIT 1`
	var parent models.Parent
	if err := r.db.GetContext(ctx, &parent, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find parent by user id: %w", err)
	}
	return &parent, nil
}

// CountChildren returns how many students are linked to a parent.
func (r *ParentRepository) CountChildren(ctx context.Context, parentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM parent_students WHERE parent_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, parentID); err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return total, nil
}
