package repository

import (
	"testing"

	"thesisrepo/internal/database"
	"thesisrepo/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupSQLiteDB opens a migrated in-memory database. The pool is pinned to a
// single connection so every query sees the same memory database.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	Faculty    models.Faculty
	Department models.Department
	Student    models.User
	Advisor    models.User
}

func seedFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{}
	f.Faculty = models.Faculty{Name: "Engineering"}
	require.NoError(t, db.Create(&f.Faculty).Error)
	f.Department = models.Department{Name: "Computer Engineering", FacultyID: f.Faculty.ID}
	require.NoError(t, db.Create(&f.Department).Error)
	f.Student = models.User{FullName: "Selin Kaya", Email: "selin@final.edu.tr", Password: "x", RoleID: models.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&f.Student).Error)
	f.Advisor = models.User{FullName: "Dr. Emre Aydin", Email: "emre@final.edu.tr", Password: "x", RoleID: models.RoleAdvisor, IsActive: true}
	require.NoError(t, db.Create(&f.Advisor).Error)
	return f
}

func (f *fixture) thesis(t *testing.T, db *gorm.DB, title string, year int) *models.Thesis {
	t.Helper()
	advisorID := f.Advisor.ID
	th := &models.Thesis{
		Title:           title,
		Abstract:        "Abstract of " + title,
		Keywords:        "graphs, caching",
		AuthorName:      "Selin Kaya",
		PublicationYear: year,
		DepartmentID:    f.Department.ID,
		AdvisorID:       &advisorID,
	}
	require.NoError(t, db.Omit("Department", "Advisor", "SubmittedBy").Create(th).Error)
	return th
}
