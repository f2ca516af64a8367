package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/abogida/abogida-api/internal/models"
)

// StudentRepository reads learner records through their enrollment and
// guardian links.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByClass returns students enrolled in a class, ordered by name.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) ([]models.StudentDetail, error) {
	const query = `
		SELECT s.id, s.school_id, s.full_name, s.date_of_birth, s.created_at, s.updated_at,
		       e.class_id, c.name AS class_name
		FROM students s
		JOIN enrollments e ON e.student_id = s.id
		JOIN classes c ON c.id = e.class_id
		WHERE e.class_id = $1
		ORDER BY s.full_name ASC`
	students := make([]models.StudentDetail, 0)
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	return students, nil
}

// ListByTeacher returns students enrolled in any class the teacher owns.
func (r *StudentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.StudentDetail, error) {
	const query = `
		SELECT DISTINCT s.id, s.school_id, s.full_name, s.date_of_birth, s.created_at, s.updated_at,
		       e.class_id, c.name AS class_name
		FROM students s
		JOIN enrollments e ON e.student_id = s.id
		JOIN classes c ON c.id = e.class_id
		WHERE c.teacher_id = $1
		ORDER BY s.full_name ASC`
	students := make([]models.StudentDetail, 0)
	if err := r.db.SelectContext(ctx, &students, query, teacherID); err != nil {
		return nil, fmt.Errorf("list students by teacher: %w", err)
	}
	return students, nil
}

// ListByParent returns the children linked to a parent.
func (r *StudentRepository) ListByParent(ctx context.Context, parentID string) ([]models.StudentDetail, error) {
	const query = `
		SELECT s.id, s.school_id, s.full_name, s.date_of_birth, s.created_at, s.updated_at
		FROM students s
		JOIN parent_students ps ON ps.student_id = s.id
		WHERE ps.parent_id = $1
		ORDER BY s.full_name ASC`
	students := make([]models.StudentDetail, 0)
	if err := r.db.SelectContext(ctx, &students, query, parentID); err != nil {
		return nil, fmt.Errorf("list students by parent: %w", err)
	}
	return students, nil
}

// ListBySchool returns every student registered at a school.
func (r *StudentRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.StudentDetail, error) {
	const query = `
		SELECT s.id, s.school_id, s.full_name, s.date_of_birth, s.created_at, s.updated_at
		FROM students s
		WHERE s.school_id = $1
		ORDER BY s.full_name ASC`
	students := make([]models.StudentDetail, 0)
	if err := r.db.SelectContext(ctx, &students, query, schoolID); err != nil {
		return nil, fmt.Errorf("list students by school: %w", err)
	}
	return students, nil
}
