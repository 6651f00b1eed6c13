// Package seed provides helpers to create demo data for the thesis
// repository. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"thesisrepo/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account signs in with.
const DefaultPassword = "password123"

var publicationTypes = []string{
	"Journal Article", "Conference Paper", "Thesis", "Book Chapter", "Technical Report",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	faker  *gofakeit.Faker
	domain string
	hash   string
	seq    int
	now    time.Time
}

// NewFactory creates a Factory bound to db. A zero seed picks a random one.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	domain := strings.TrimPrefix(strings.TrimSpace(opts.EmailDomain), "@")
	if domain == "" {
		domain = "example.edu"
	}

	cost := bcrypt.DefaultCost
	if opts.FastHash {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	return &Factory{
		db:     db,
		faker:  gofakeit.New(seed),
		domain: domain,
		hash:   string(hash),
		now:    time.Now().UTC(),
	}, nil
}

// CreateUser persists an active user with the given role. Emails are unique
// within a factory run.
func (f *Factory) CreateUser(roleID int, dept *models.Department, overrides ...func(*models.User)) (*models.User, error) {
	f.seq++
	first, last := f.faker.FirstName(), f.faker.LastName()
	fullName := first + " " + last
	if roleID == models.RoleAdvisor {
		fullName = "Dr. " + fullName
	}

	user := &models.User{
		FullName: fullName,
		Email:    fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), f.seq, f.domain),
		Password: f.hash,
		RoleID:   roleID,
		IsActive: true,
	}
	if dept != nil {
		user.DepartmentID = &dept.ID
		user.FacultyID = &dept.FacultyID
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Omit("Faculty", "Department").Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateThesis persists a thesis written by author in dept.
func (f *Factory) CreateThesis(author *models.User, advisor *models.User, dept *models.Department, overrides ...func(*models.Thesis)) (*models.Thesis, error) {
	n := f.faker.Number(2, 4)
	keywords := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keywords = append(keywords, strings.ToLower(f.faker.BuzzWord()))
	}

	thesis := &models.Thesis{
		Title:           strings.TrimSuffix(f.faker.HipsterSentence(f.faker.Number(4, 9)), "."),
		Abstract:        f.faker.Paragraph(2, 4, 12, "\n\n"),
		Keywords:        strings.Join(keywords, ", "),
		AuthorName:      author.FullName,
		PublicationYear: f.faker.Number(f.now.Year()-8, f.now.Year()),
		DepartmentID:    dept.ID,
		SubmittedByID:   &author.ID,
		DownloadCount:   int64(f.faker.Number(0, 120)),
		CreatedAt:       f.pastTime(365),
	}
	if advisor != nil {
		thesis.AdvisorID = &advisor.ID
	}
	for _, override := range overrides {
		override(thesis)
	}

	if err := f.db.Omit("Department", "Advisor", "SubmittedBy").Create(thesis).Error; err != nil {
		return nil, err
	}
	return thesis, nil
}

// CreateComment persists a comment on thesis, optionally replying to parent.
func (f *Factory) CreateComment(thesis *models.Thesis, user *models.User, parent *models.Comment, status models.CommentStatus) (*models.Comment, error) {
	comment := &models.Comment{
		ThesisID:  thesis.ID,
		UserID:    &user.ID,
		Content:   f.faker.Sentence(f.faker.Number(6, 24)),
		Status:    status,
		CreatedAt: f.pastTime(90),
	}
	if parent != nil {
		comment.ParentCommentID = &parent.ID
		if comment.CreatedAt.Before(parent.CreatedAt) {
			comment.CreatedAt = parent.CreatedAt.Add(time.Duration(f.faker.Number(1, 72)) * time.Hour)
		}
	}
	if status == models.CommentStatusRejected {
		reason := "Off-topic"
		comment.RejectedReason = &reason
	}

	if err := f.db.Omit("User").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateCitation persists a citation of thesis. Roughly one in ten has no
// publication year.
func (f *Factory) CreateCitation(thesis *models.Thesis, submitter *models.User) (*models.Citation, error) {
	n := f.faker.Number(1, 3)
	authors := make([]string, 0, n)
	for i := 0; i < n; i++ {
		authors = append(authors, fmt.Sprintf("%s, %s.", f.faker.LastName(), f.faker.Letter()))
	}

	citation := &models.Citation{
		ThesisID:        thesis.ID,
		Authors:         strings.Join(authors, "; "),
		PublicationType: f.faker.RandomString(publicationTypes),
		CreatedAt:       f.pastTime(180),
	}
	if submitter != nil {
		citation.UserID = &submitter.ID
	}
	if f.faker.Number(1, 10) > 1 {
		year := f.faker.Number(thesis.PublicationYear, f.now.Year())
		citation.YearPublished = &year
	}
	if f.faker.Bool() {
		excerpt := f.faker.Sentence(10)
		citation.CitationContext = &excerpt
	}

	if err := f.db.Omit("User").Create(citation).Error; err != nil {
		return nil, err
	}
	return citation, nil
}

// CreateViews persists count view events spread over the last days days.
func (f *Factory) CreateViews(thesis *models.Thesis, count, days int) error {
	if count <= 0 {
		return nil
	}
	events := make([]models.ViewEvent, 0, count)
	for i := 0; i < count; i++ {
		events = append(events, models.ViewEvent{ThesisID: thesis.ID, ViewedAt: f.pastTime(days)})
	}
	return f.db.CreateInBatches(events, 200).Error
}

func (f *Factory) pastTime(maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 1
	}
	return f.faker.DateRange(f.now.AddDate(0, 0, -maxDays), f.now)
}
