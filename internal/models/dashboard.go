package models

// TeacherDashboard summarises a teacher's footprint.
type TeacherDashboard struct {
	ClassCount  int `json:"class_count"`
	UpdateCount int `json:"update_count"`
}

// ParentDashboard summarises a parent's view.
type ParentDashboard struct {
	ChildCount        int `json:"child_count"`
	AnnouncementCount int `json:"announcement_count"`
}

// AdminDashboard summarises a school.
type AdminDashboard struct {
	UserCount  int `json:"user_count"`
	ClassCount int `json:"class_count"`
}
