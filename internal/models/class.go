package models

import "time"

// Class represents a class section owned by a teacher.
type Class struct {
	ID         string    `db:"id" json:"id"`
	SchoolID   string    `db:"school_id" json:"school_id"`
	TeacherID  *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	Name       string    `db:"name" json:"name"`
	GradeLevel string    `db:"grade_level" json:"grade_level"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ClassRef is the lightweight class handle carried in caller context and
// used to populate feed filters.
type ClassRef struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
