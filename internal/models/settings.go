package models

// SupportedLanguages are the UI languages a user may choose.
var SupportedLanguages = map[string]bool{"en": true, "am": true}

// Profile is the settings-page view of a user.
type Profile struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	FullName           string `json:"full_name"`
	Role               Role   `json:"role"`
	SchoolID           string `json:"school_id"`
	LanguagePreference string `json:"language_preference"`
}

// UpdateProfileRequest changes the mutable profile fields.
type UpdateProfileRequest struct {
	FullName           string `json:"full_name" validate:"required"`
	LanguagePreference string `json:"language_preference" validate:"required,oneof=en am"`
}
