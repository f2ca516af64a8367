package models

import (
	"io"
	"time"
)

// DailyUpdate is a post in a class feed.
type DailyUpdate struct {
	ID          string    `db:"id" json:"id"`
	SchoolID    string    `db:"school_id" json:"school_id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	TextContent string    `db:"text_content" json:"text_content"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DailyUpdateDetail carries the joined display fields a feed entry renders.
type DailyUpdateDetail struct {
	DailyUpdate
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	ClassName   string `db:"class_name" json:"class_name"`
}

// FeedQuery identifies one page of one filtered feed. ClassID empty means the
// unfiltered school-wide feed.
type FeedQuery struct {
	SchoolID string `json:"school_id"`
	ClassID  string `json:"class_id,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// FeedPage is the result of fetching one feed page.
type FeedPage struct {
	Updates  []DailyUpdateDetail `json:"updates"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	HasMore  bool                `json:"has_more"`
}

// MediaUpload carries an attachment through the post flow. Reader is consumed
// exactly once during phase two.
type MediaUpload struct {
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Reader      io.Reader `json:"-"`
}

// PostUpdateRequest is the composer submission.
type PostUpdateRequest struct {
	ClassID    string       `json:"class_id" validate:"required"`
	Text       string       `json:"text" validate:"required"`
	Attachment *MediaUpload `json:"-"`
}

// PostResult reports a post outcome. MediaError is set when the text update
// was persisted but the attachment phase failed; the post still counts as a
// success in that case.
type PostResult struct {
	Update     DailyUpdate `json:"update"`
	Media      *MediaAsset `json:"media,omitempty"`
	MediaError string      `json:"media_error,omitempty"`
}

// Degraded reports whether the post succeeded without its attachment.
func (r PostResult) Degraded() bool { return r.MediaError != "" }
