package bootstrap

import (
	"context"
	"testing"

	"thesisrepo/internal/config"
	"thesisrepo/internal/database"
	"thesisrepo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
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

func devConfig() *config.Config {
	return &config.Config{
		Env:              "development",
		DevBootstrapRoot: true,
		DevRootEmail:     "Root@Final.edu.tr",
		DevRootPassword:  "RootPass12!@",
	}
}

func TestEnsureDevRootAdmin_CreatesOnce(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureDevRootAdmin(ctx, devConfig(), db))
	require.NoError(t, EnsureDevRootAdmin(ctx, devConfig(), db))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "root@final.edu.tr", users[0].Email)
	assert.Equal(t, "Repository Root", users[0].FullName)
	assert.Equal(t, models.RoleAdmin, users[0].RoleID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("RootPass12!@")))
}

func TestEnsureDevRootAdmin_PromotesExisting(t *testing.T) {
	db := openDB(t)
	existing := models.User{FullName: "Was Student", Email: "root@final.edu.tr", Password: "x", RoleID: models.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&existing).Error)

	require.NoError(t, EnsureDevRootAdmin(context.Background(), devConfig(), db))

	var got models.User
	require.NoError(t, db.First(&got, existing.ID).Error)
	assert.Equal(t, models.RoleAdmin, got.RoleID)
	assert.Equal(t, "Was Student", got.FullName)
}

func TestEnsureDevRootAdmin_Skipped(t *testing.T) {
	db := openDB(t)

	tests := []struct {
		name   string
		mutate func(*config.Config)
		err    bool
	}{
		{"production", func(c *config.Config) { c.Env = "production" }, false},
		{"flag off", func(c *config.Config) { c.DevBootstrapRoot = false }, false},
		{"missing password", func(c *config.Config) { c.DevRootPassword = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := devConfig()
			tt.mutate(cfg)
			err := EnsureDevRootAdmin(context.Background(), cfg, db)
			if tt.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.NoError(t, EnsureDevRootAdmin(context.Background(), nil, db))
}
