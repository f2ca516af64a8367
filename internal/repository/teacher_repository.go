package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/abogida/abogida-api/internal/models"
)

// TeacherRepository reads instructor profiles.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new instance of TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByUserID returns the teacher profile backing a user account, or
// sql.ErrNoRows when the account has no profile yet.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, school_id, full_name, phone, created_at, updated_at FROM teachers WHERE user_id = $1 LIMIT 1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher by user id: %w", err)
	}
	return &teacher, nil
}

// FindByID returns a teacher profile by identifier.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, school_id, full_name, phone, created_at, updated_at FROM teachers WHERE id = $1 LIMIT 1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher by id: %w", err)
	}
	return &teacher, nil
}
