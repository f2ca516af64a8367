package models

import "time"

// AttendanceStatus enumerates the recordable attendance states.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid reports whether the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one student's status for a class on a date. Rows are
// unique on (class_id, student_id, date); writes upsert.
type AttendanceRecord struct {
	ID         string           `db:"id" json:"id"`
	ClassID    string           `db:"class_id" json:"class_id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	Date       time.Time        `db:"date" json:"date"`
	Status     AttendanceStatus `db:"status" json:"status"`
	RecordedBy string           `db:"recorded_by" json:"recorded_by"`
	Notes      *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceRecordDetail adds the student name for listings and reports.
type AttendanceRecordDetail struct {
	AttendanceRecord
	StudentName string `db:"student_name" json:"student_name"`
}

// AttendanceEntry is one row of a mark-attendance submission.
type AttendanceEntry struct {
	StudentID string           `json:"student_id" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required"`
	Notes     *string          `json:"notes,omitempty"`
}

// MarkAttendanceRequest records statuses for a class on a date.
type MarkAttendanceRequest struct {
	ClassID string            `json:"class_id" validate:"required"`
	Date    string            `json:"date" validate:"required"`
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}
