package models

import "time"

// Faculty is a top-level academic unit.
type Faculty struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:160;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Department belongs to a faculty.
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:160;not null" json:"name"`
	FacultyID uint      `gorm:"not null;index" json:"faculty_id"`
	Faculty   *Faculty  `gorm:"foreignKey:FacultyID;constraint:OnDelete:CASCADE" json:"faculty,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
