package models

import "time"

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
)

// Comment is a thesis comment. ParentCommentID forms a reply tree of
// unbounded depth; replies are removed together with their parent.
type Comment struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	ThesisID        uint          `gorm:"not null;index" json:"thesis_id"`
	UserID          *uint         `gorm:"index" json:"user_id"`
	User            *User         `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	ParentCommentID *uint         `gorm:"index" json:"parent_comment_id"`
	Replies         []Comment     `gorm:"foreignKey:ParentCommentID;constraint:OnDelete:CASCADE" json:"-"`
	Content         string        `gorm:"type:text;not null" json:"content"`
	Status          CommentStatus `gorm:"type:varchar(20);not null;default:'approved';index" json:"status"`
	RejectedReason  *string       `gorm:"type:text" json:"rejected_reason"`
	CreatedAt       time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// EffectiveStatus treats an unset status as approved.
func (c *Comment) EffectiveStatus() CommentStatus {
	if c.Status == "" {
		return CommentStatusApproved
	}
	return c.Status
}
