package models

import "time"

// Student represents a learner registered at a school.
type Student struct {
	ID          string     `db:"id" json:"id"`
	SchoolID    string     `db:"school_id" json:"school_id"`
	FullName    string     `db:"full_name" json:"full_name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentDetail enriches Student with the class context it was listed under.
type StudentDetail struct {
	Student
	ClassID   *string `db:"class_id" json:"class_id,omitempty"`
	ClassName *string `db:"class_name" json:"class_name,omitempty"`
}
