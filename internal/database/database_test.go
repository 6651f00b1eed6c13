package database

import (
	"context"
	"testing"
	"time"

	"thesisrepo/internal/config"
	"thesisrepo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN("db", "5432", "u", "p", "theses", "")
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=theses sslmode=disable", dsn)

	dsn = buildDSN("db", "5432", "u", "p", "theses", "require")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestGetReadDB_FallsBackToPrimary(t *testing.T) {
	primary := openSQLite(t)
	DB, ReadDB = primary, nil
	t.Cleanup(func() { DB, ReadDB = nil, nil })

	assert.Same(t, primary, GetReadDB())

	replica := openSQLite(t)
	ReadDB = replica
	assert.Same(t, replica, GetReadDB())
}

func TestApplySchema(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	status, err := GetSchemaStatus(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, status.Present)
	assert.Len(t, status.Missing, len(PersistentModels()))

	assert.Error(t, ApplySchema(ctx, db, "production", false))
	require.NoError(t, ApplySchema(ctx, db, "development", false))

	status, err = GetSchemaStatus(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, status.Missing)
	assert.Contains(t, status.Present, "theses")
	assert.Contains(t, status.Present, "view_events")
}

func TestMigrate_CommentCascade(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Migrate(db))

	faculty := models.Faculty{Name: "Engineering"}
	require.NoError(t, db.Create(&faculty).Error)
	dept := models.Department{Name: "Computer Engineering", FacultyID: faculty.ID}
	require.NoError(t, db.Create(&dept).Error)
	thesis := models.Thesis{Title: "T", AuthorName: "A", PublicationYear: 2024, DepartmentID: dept.ID, CreatedAt: time.Now()}
	require.NoError(t, db.Create(&thesis).Error)

	root := models.Comment{ThesisID: thesis.ID, Content: "root"}
	require.NoError(t, db.Create(&root).Error)
	reply := models.Comment{ThesisID: thesis.ID, ParentCommentID: &root.ID, Content: "reply"}
	require.NoError(t, db.Create(&reply).Error)

	require.NoError(t, db.Delete(&thesis).Error)

	var n int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPersistentModels_IncludesAnalyticsTables(t *testing.T) {
	var hasViews, hasCitations bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.ViewEvent:
			hasViews = true
		case *models.Citation:
			hasCitations = true
		}
	}
	assert.True(t, hasViews)
	assert.True(t, hasCitations)
}
