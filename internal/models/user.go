// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role identifiers as stored in users.role_id.
const (
	RoleStudent = 1
	RoleAdvisor = 2
	RoleAdmin   = 3
)

// User represents an account in the thesis repository.
type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	FullName     string      `gorm:"size:160;not null" json:"full_name"`
	Email        string      `gorm:"size:200;uniqueIndex;not null" json:"email"`
	Password     string      `gorm:"not null" json:"-"`
	RoleID       int         `gorm:"not null;default:1;index" json:"role_id"`
	FacultyID    *uint       `gorm:"index" json:"faculty_id"`
	Faculty      *Faculty    `gorm:"foreignKey:FacultyID;constraint:OnDelete:SET NULL" json:"faculty,omitempty"`
	DepartmentID *uint       `gorm:"index" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL" json:"department,omitempty"`
	IsActive     bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.RoleID == RoleAdmin
}

// IsAdvisor reports whether the user holds the advisor role.
func (u *User) IsAdvisor() bool {
	return u != nil && u.RoleID == RoleAdvisor
}

// ValidRole reports whether id names a known role.
func ValidRole(id int) bool {
	return id == RoleStudent || id == RoleAdvisor || id == RoleAdmin
}
