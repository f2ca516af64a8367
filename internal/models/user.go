package models

import "time"

// Role represents the caller roles recognised by the API. RoleUnknown is the
// degraded value used when a session cannot be resolved to a profile.
type Role string

const (
	RoleTeacher     Role = "teacher"
	RoleParent      Role = "parent"
	RoleSchoolAdmin Role = "school_admin"
	RoleUnknown     Role = "unknown"
)

// Valid reports whether the role is one of the resolvable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleParent, RoleSchoolAdmin:
		return true
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID                 string     `db:"id" json:"id"`
	SchoolID           string     `db:"school_id" json:"school_id"`
	Email              string     `db:"email" json:"email"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	FullName           string     `db:"full_name" json:"full_name"`
	Role               Role       `db:"role_key" json:"role"`
	LanguagePreference string     `db:"language_preference" json:"language_preference"`
	Active             bool       `db:"active" json:"active"`
	LastLogin          *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
