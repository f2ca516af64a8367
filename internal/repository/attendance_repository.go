package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/abogida/abogida-api/internal/models"
)

// AttendanceRepository persists per-student attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert writes one attendance row, replacing any existing status for the
// same (class, student, date).
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `
		INSERT INTO attendance_records (id, class_id, student_id, date, status, recorded_by, notes, created_at, updated_at)
		VALUES (:id, :class_id, :student_id, :date, :status, :recorded_by, :notes, :created_at, :updated_at)
		ON CONFLICT (class_id, student_id, date)
		DO UPDATE SET status = EXCLUDED.status, recorded_by = EXCLUDED.recorded_by, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance record: %w", err)
	}
	return nil
}

// ListByClassDate returns the attendance rows for a class on one date.
func (r *AttendanceRepository) ListByClassDate(ctx context.Context, classID string, date time.Time) ([]models.AttendanceRecordDetail, error) {
	const query = `
		SELECT a.id, a.class_id, a.student_id, a.date, a.status, a.recorded_by, a.notes, a.created_at, a.updated_at,
		       s.full_name AS student_name
		FROM attendance_records a
		JOIN students s ON s.id = a.student_id
		WHERE a.class_id = $1 AND a.date = $2
		ORDER BY s.full_name ASC`
	records := make([]models.AttendanceRecordDetail, 0)
	if err := r.db.SelectContext(ctx, &records, query, classID, date); err != nil {
		return nil, fmt.Errorf("list attendance by class and date: %w", err)
	}
	return records, nil
}

// ListRange returns attendance rows for a class between two dates inclusive,
// ordered for report export.
func (r *AttendanceRepository) ListRange(ctx context.Context, classID string, from, to time.Time) ([]models.AttendanceRecordDetail, error) {
	const query = `
		SELECT a.id, a.class_id, a.student_id, a.date, a.status, a.recorded_by, a.notes, a.created_at, a.updated_at,
		       s.full_name AS student_name
		FROM attendance_records a
		JOIN students s ON s.id = a.student_id
		WHERE a.class_id = $1 AND a.date BETWEEN $2 AND $3
		ORDER BY a.date ASC, s.full_name ASC`
	records := make([]models.AttendanceRecordDetail, 0)
	if err := r.db.SelectContext(ctx, &records, query, classID, from, to); err != nil {
		return nil, fmt.Errorf("list attendance range: %w", err)
	}
	return records, nil
}
