package models

import (
	"time"

	"github.com/lib/pq"
)

// ContentStatus marks the moderation state of a content item.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusRejected  ContentStatus = "rejected"
)

// ContentCategory is the closed set of publishing categories.
type ContentCategory string

const (
	CategoryMeditation  ContentCategory = "meditation"
	CategoryPhilosophy  ContentCategory = "philosophy"
	CategoryDailyWisdom ContentCategory = "daily-wisdom"
	CategoryScripture   ContentCategory = "scripture"
	CategoryPractice    ContentCategory = "practice"
)

// ModerationAction enumerates admin actions on a content item.
type ModerationAction string

const (
	ActionHide      ModerationAction = "hide"
	ActionUnhide    ModerationAction = "unhide"
	ActionFeature   ModerationAction = "feature"
	ActionUnfeature ModerationAction = "unfeature"
	ActionDelete    ModerationAction = "delete"
)

// Content represents a teacher-authored post stored in the contents table.
type Content struct {
	ID              string          `db:"id" json:"id"`
	TeacherID       string          `db:"teacher_id" json:"teacherId"`
	TeacherName     string          `db:"teacher_name" json:"teacherName,omitempty"`
	TeacherEmail    string          `db:"teacher_email" json:"teacherEmail,omitempty"`
	Title           string          `db:"title" json:"title"`
	Excerpt         string          `db:"excerpt" json:"excerpt"`
	Body            string          `db:"body" json:"content"`
	Category        ContentCategory `db:"category" json:"category"`
	Tags            pq.StringArray  `db:"tags" json:"tags"`
	Status          ContentStatus   `db:"status" json:"status"`
	ModerationNotes string          `db:"moderation_notes" json:"moderationNotes,omitempty"`
	Featured        bool            `db:"featured" json:"featured"`
	ReadingTime     int             `db:"reading_time" json:"readingTime"`
	Views           int             `db:"views" json:"views"`
	Likes           int             `db:"likes" json:"likes"`
	PublishedAt     *time.Time      `db:"published_at" json:"publishedAt,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// CreateContentRequest is a teacher-authored submission.
type CreateContentRequest struct {
	Title    string   `json:"title" validate:"required"`
	Excerpt  string   `json:"excerpt" validate:"required,max=500"`
	Content  string   `json:"content" validate:"required"`
	Category string   `json:"category" validate:"required,oneof=meditation philosophy daily-wisdom scripture practice"`
	Tags     []string `json:"tags"`
}

// ModerateContentRequest applies an admin action to a content item.
type ModerateContentRequest struct {
	Action ModerationAction `json:"action" validate:"required,oneof=hide unhide feature unfeature delete"`
	Reason string           `json:"reason"`
}

// ManageTeacherRequest applies an admin action to a teacher account.
type ManageTeacherRequest struct {
	Action string `json:"action" validate:"required,oneof=delete"`
}

// ContentFilter captures filtering criteria for content lists.
type ContentFilter struct {
	Search    string
	Status    *ContentStatus
	Category  *ContentCategory
	Featured  *bool
	TeacherID string
	Page      int
	Limit     int
}
