package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/abogida/abogida-api/internal/models"
)

// ClassRepository reads class sections.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new instance of ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `id, school_id, teacher_id, name, grade_level, created_at, updated_at`

// FindByID returns a class by identifier.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE id = $1 LIMIT 1`, classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class by id: %w", err)
	}
	return &class, nil
}

// ListByTeacher returns the classes owned by a teacher, ordered by name.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE teacher_id = $1 ORDER BY name ASC`, classColumns)
	classes := make([]models.Class, 0)
	if err := r.db.SelectContext(ctx, &classes, query, teacherID); err != nil {
		return nil, fmt.Errorf("list classes by teacher: %w", err)
	}
	return classes, nil
}

// ListBySchool returns every class in a school, ordered by name.
func (r *ClassRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE school_id = $1 ORDER BY name ASC`, classColumns)
	classes := make([]models.Class, 0)
	if err := r.db.SelectContext(ctx, &classes, query, schoolID); err != nil {
		return nil, fmt.Errorf("list classes by school: %w", err)
	}
	return classes, nil
}

// ListRefsByTeacher returns lightweight class handles for caller context.
func (r *ClassRepository) ListRefsByTeacher(ctx context.Context, teacherID string) ([]models.ClassRef, error) {
	const query = `SELECT id, name FROM classes WHERE teacher_id = $1 ORDER BY name ASC`
	refs := make([]models.ClassRef, 0)
	if err := r.db.SelectContext(ctx, &refs, query, teacherID); err != nil {
		return nil, fmt.Errorf("list class refs by teacher: %w", err)
	}
	return refs, nil
}

// OwnedByTeacher reports whether the class belongs to the teacher.
func (r *ClassRepository) OwnedByTeacher(ctx context.Context, classID, teacherID string) (bool, error) {
	const query = `SELECT 1 FROM classes WHERE id = $1 AND teacher_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, classID, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class ownership: %w", err)
	}
	return true, nil
}

// CountBySchool returns the number of classes in a school.
func (r *ClassRepository) CountBySchool(ctx context.Context, schoolID string) (int, error) {
	const query = `SELECT COUNT(*) FROM classes WHERE school_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, schoolID); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return total, nil
}

// CountByTeacher returns the number of classes a teacher owns.
func (r *ClassRepository) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	const query = `SELECT COUNT(*) FROM classes WHERE teacher_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, teacherID); err != nil {
		return 0, fmt.Errorf("count classes by teacher: %w", err)
	}
	return total, nil
}
