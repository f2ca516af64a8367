package models

import "time"

// MediaAsset is a stored attachment row linked to a daily update.
type MediaAsset struct {
	ID         string    `db:"id" json:"id"`
	SchoolID   string    `db:"school_id" json:"school_id"`
	UpdateID   string    `db:"update_id" json:"update_id"`
	UploadedBy string    `db:"uploaded_by" json:"uploaded_by"`
	FileName   string    `db:"file_name" json:"file_name"`
	FilePath   string    `db:"file_path" json:"-"`
	FileType   string    `db:"file_type" json:"file_type"`
	FileSize   int64     `db:"file_size" json:"file_size"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// MediaPreview is a display-ready attachment reference. Resolved is false when
// the signed URL could not be produced; the entry still renders without media.
type MediaPreview struct {
	AssetID   string    `json:"asset_id"`
	UpdateID  string    `json:"update_id"`
	FileName  string    `json:"file_name"`
	FileType  string    `json:"file_type"`
	URL       string    `json:"url,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Resolved  bool      `json:"resolved"`
}
