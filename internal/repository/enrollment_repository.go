package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/abogida/abogida-api/internal/models"
)

// EnrollmentRepository reads class membership rows.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new instance of EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByClass returns the enrollments of a class.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error) {
	const query = `SELECT id, class_id, student_id, created_at FROM enrollments WHERE class_id = $1`
	enrollments := make([]models.Enrollment, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, classID); err != nil {
		return nil, fmt.Errorf("list enrollments by class: %w", err)
	}
	return enrollments, nil
}

// IsEnrolled reports whether a student belongs to a class.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, classID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE class_id = $1 AND student_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, classID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}
