package models

import "time"

// Parent links a user account to its guardian profile.
type Parent struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ParentStudent relates a parent to one of their children.
type ParentStudent struct {
	ParentID  string `db:"parent_id" json:"parent_id"`
	StudentID string `db:"student_id" json:"student_id"`
}
