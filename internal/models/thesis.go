package models

import "time"

// Thesis is the top-level academic document that comments, citations and
// view events attach to. The three counters are denormalized and are only
// mutated through the repository's transactional helpers.
type Thesis struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	Title             string      `gorm:"size:300;not null" json:"title"`
	Abstract          string      `gorm:"type:text;not null" json:"abstract"`
	Keywords          string      `gorm:"type:text" json:"keywords"`
	AuthorName        string      `gorm:"size:160;not null;index" json:"author_name"`
	PublicationYear   int         `gorm:"not null;index" json:"publication_year"`
	DepartmentID      uint        `gorm:"not null;index" json:"department_id"`
	Department        *Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:RESTRICT" json:"department,omitempty"`
	AdvisorID         *uint       `gorm:"index" json:"advisor_id"`
	Advisor           *User       `gorm:"foreignKey:AdvisorID;constraint:OnDelete:SET NULL" json:"advisor,omitempty"`
	SubmittedByID     *uint       `gorm:"index" json:"submitted_by_id"`
	SubmittedBy       *User       `gorm:"foreignKey:SubmittedByID;constraint:OnDelete:SET NULL" json:"-"`
	ViewCount         int64       `gorm:"not null;default:0" json:"view_count"`
	DownloadCount     int64       `gorm:"not null;default:0" json:"download_count"`
	BibliographyCount int64       `gorm:"not null;default:0" json:"bibliography_count"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`

	Comments   []Comment   `gorm:"foreignKey:ThesisID;constraint:OnDelete:CASCADE" json:"-"`
	Citations  []Citation  `gorm:"foreignKey:ThesisID;constraint:OnDelete:CASCADE" json:"-"`
	ViewEvents []ViewEvent `gorm:"foreignKey:ThesisID;constraint:OnDelete:CASCADE" json:"-"`

	// AbstractHTML is rendered on read and never persisted.
	AbstractHTML string `gorm:"-" json:"abstract_html,omitempty"`
}

// ThesisSummary is the row shape returned by list and search queries.
type ThesisSummary struct {
	ID                uint      `json:"id"`
	Title             string    `json:"title"`
	Abstract          string    `json:"abstract"`
	AuthorName        string    `json:"author_name"`
	PublicationYear   int       `json:"publication_year"`
	ViewCount         int64     `json:"view_count"`
	DownloadCount     int64     `json:"download_count"`
	BibliographyCount int64     `json:"bibliography_count"`
	AdvisorID         *uint     `json:"advisor_id"`
	AdvisorName       *string   `json:"advisor_name"`
	DepartmentID      uint      `json:"department_id"`
	DepartmentName    *string   `json:"department_name"`
	FacultyID         *uint     `json:"faculty_id"`
	FacultyName       *string   `json:"faculty_name"`
	CreatedAt         time.Time `json:"created_at"`
}

// AdvisorStats aggregates the counters of an advisor's theses.
type AdvisorStats struct {
	ThesisCount    int64 `json:"thesis_count"`
	TotalCitations int64 `json:"total_citations"`
	TotalViews     int64 `json:"total_views"`
	TotalDownloads int64 `json:"total_downloads"`
}
