package models

import "time"

// Enrollment registers a student into a class.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
