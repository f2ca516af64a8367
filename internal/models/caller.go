package models

// Caller is the resolved identity every role-scoped operation receives. A
// session that cannot be resolved yields RoleUnknown rather than an error.
type Caller struct {
	UserID    string  `json:"user_id"`
	Role      Role    `json:"role"`
	SchoolID  string  `json:"school_id"`
	TeacherID *string `json:"teacher_id,omitempty"`
	ParentID  *string `json:"parent_id,omitempty"`
}

// CallerContext bundles the caller with the classes it may scope a feed to.
// Classes is populated for teachers only and is empty, never nil-dereferenced,
// when the teacher profile is missing.
type CallerContext struct {
	Caller  Caller     `json:"caller"`
	Classes []ClassRef `json:"classes"`
}

// IsTeacher reports whether the caller may compose updates.
func (c Caller) IsTeacher() bool { return c.Role == RoleTeacher && c.TeacherID != nil }
