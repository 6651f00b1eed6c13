package models

import "time"

// Citation records a work that cites a thesis.
type Citation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ThesisID        uint      `gorm:"not null;index" json:"thesis_id"`
	UserID          *uint     `gorm:"index" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Authors         string    `gorm:"type:text;not null" json:"authors"`
	PublicationType string    `gorm:"size:120;not null" json:"publication_type"`
	YearPublished   *int      `json:"year_published"`
	CitationContext *string   `gorm:"type:text" json:"citation_context"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ViewEvent is one recorded view of a thesis.
type ViewEvent struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	ThesisID uint      `gorm:"not null;index:idx_view_events_thesis_time,priority:1" json:"thesis_id"`
	ViewedAt time.Time `gorm:"not null;index:idx_view_events_thesis_time,priority:2" json:"viewed_at"`
}

// Favorite marks a thesis as bookmarked by a user.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_thesis" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ThesisID  uint      `gorm:"not null;uniqueIndex:idx_favorites_user_thesis" json:"thesis_id"`
	Thesis    *Thesis   `gorm:"foreignKey:ThesisID;constraint:OnDelete:CASCADE" json:"thesis,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
