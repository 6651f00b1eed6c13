package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"thesisrepo/internal/database"
	"thesisrepo/internal/models"
	"thesisrepo/internal/observability"
	"thesisrepo/internal/repository"

	"gorm.io/gorm"
)

// Options configures the factory behind a Seeder.
type Options struct {
	// Seed makes runs reproducible. Zero picks a time-based seed.
	Seed        int64
	EmailDomain string
	// FastHash hashes the shared password with the minimum bcrypt cost.
	FastHash bool
}

// Summary counts what a run created.
type Summary struct {
	Departments int
	Users       int
	Theses      int
	Comments    int
	Citations   int
	Views       int
}

// Seeder populates a database from a Preset.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	factory, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: factory}, nil
}

// ClearAll deletes every row of every schema-managed table, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	observability.GlobalLogger.InfoContext(ctx, "clearing existing data")
	tables := database.PersistentModels()
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for i := len(tables) - 1; i >= 0; i-- {
		if err := tx.Delete(tables[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", tables[i], err)
		}
	}
	return nil
}

// Run seeds lookups, users, theses and their detail rows, then rebuilds the
// denormalized thesis counters from the inserted rows.
func (s *Seeder) Run(ctx context.Context, p Preset) (*Summary, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	log := observability.GlobalLogger.With(slog.String("preset", p.Name))
	sum := &Summary{}

	departments, err := Lookups(s.db.WithContext(ctx), p.faculties())
	if err != nil {
		return nil, err
	}
	if len(departments) == 0 {
		return nil, fmt.Errorf("preset %q defines no departments", p.Name)
	}
	sum.Departments = len(departments)

	f := s.factory
	pickDept := func() *models.Department {
		return &departments[f.faker.Number(0, len(departments)-1)]
	}

	advisors := make([]*models.User, 0, p.Advisors)
	for i := 0; i < p.Advisors; i++ {
		u, err := f.CreateUser(models.RoleAdvisor, pickDept())
		if err != nil {
			return nil, fmt.Errorf("create advisor: %w", err)
		}
		advisors = append(advisors, u)
	}
	students := make([]*models.User, 0, p.Students)
	for i := 0; i < p.Students; i++ {
		u, err := f.CreateUser(models.RoleStudent, pickDept())
		if err != nil {
			return nil, fmt.Errorf("create student: %w", err)
		}
		students = append(students, u)
	}
	sum.Users = len(advisors) + len(students)
	log.InfoContext(ctx, "users created", slog.Int("advisors", len(advisors)), slog.Int("students", len(students)))

	everyone := append(append([]*models.User{}, students...), advisors...)
	for i := 0; i < p.Theses; i++ {
		author := students[i%len(students)]
		var advisor *models.User
		if len(advisors) > 0 {
			advisor = advisors[f.faker.Number(0, len(advisors)-1)]
		}
		dept := pickDept()
		if author.DepartmentID != nil {
			for j := range departments {
				if departments[j].ID == *author.DepartmentID {
					dept = &departments[j]
				}
			}
		}

		thesis, err := f.CreateThesis(author, advisor, dept)
		if err != nil {
			return nil, fmt.Errorf("create thesis: %w", err)
		}
		sum.Theses++

		n, err := s.seedComments(thesis, everyone, p)
		if err != nil {
			return nil, err
		}
		sum.Comments += n

		for j := 0; j < p.CitationsPerThesis; j++ {
			if _, err := f.CreateCitation(thesis, everyone[f.faker.Number(0, len(everyone)-1)]); err != nil {
				return nil, fmt.Errorf("create citation: %w", err)
			}
			sum.Citations++
		}

		if err := f.CreateViews(thesis, p.ViewsPerThesis, p.ViewDays); err != nil {
			return nil, fmt.Errorf("create views: %w", err)
		}
		sum.Views += p.ViewsPerThesis
	}

	if sum.Theses > 0 {
		if _, err := repository.NewThesisRepository(s.db).Recount(ctx, 0); err != nil {
			return nil, fmt.Errorf("recount theses: %w", err)
		}
	}

	log.InfoContext(ctx, "seeding completed",
		slog.Int("theses", sum.Theses),
		slog.Int("comments", sum.Comments),
		slog.Int("citations", sum.Citations),
		slog.Int("views", sum.Views),
		slog.Duration("took", time.Since(start)))
	return sum, nil
}

// seedComments builds a reply tree: each comment either starts a thread or
// answers an earlier comment on the same thesis.
func (s *Seeder) seedComments(thesis *models.Thesis, users []*models.User, p Preset) (int, error) {
	f := s.factory
	created := make([]*models.Comment, 0, p.CommentsPerThesis)
	for i := 0; i < p.CommentsPerThesis; i++ {
		user := users[f.faker.Number(0, len(users)-1)]

		var parent *models.Comment
		if len(created) > 0 && f.faker.Float64Range(0, 1) < p.ReplyRatio {
			parent = created[f.faker.Number(0, len(created)-1)]
		}

		status := models.CommentStatusApproved
		if user.RoleID == models.RoleStudent && f.faker.Float64Range(0, 1) < p.PendingRatio {
			status = models.CommentStatusPending
		}

		c, err := f.CreateComment(thesis, user, parent, status)
		if err != nil {
			return len(created), fmt.Errorf("create comment: %w", err)
		}
		created = append(created, c)
	}
	return len(created), nil
}
