package database

import (
	"context"
	"fmt"
	"log/slog"

	"thesisrepo/internal/middleware"

	"gorm.io/gorm"
)

// SchemaStatus reports which managed tables exist.
type SchemaStatus struct {
	Present []string
	Missing []string
}

// Migrate creates or updates every managed table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema runs Migrate. Production databases are only migrated when
// force is set.
func ApplySchema(ctx context.Context, db *gorm.DB, env string, force bool) error {
	if (env == "production" || env == "prod") && !force {
		return fmt.Errorf("refusing to auto-migrate %q without force", env)
	}
	middleware.Logger.InfoContext(ctx, "Running GORM AutoMigrate", slog.String("env", env))
	if err := Migrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus lists managed tables by presence.
func GetSchemaStatus(ctx context.Context, db *gorm.DB) (*SchemaStatus, error) {
	status := &SchemaStatus{}
	migrator := db.WithContext(ctx).Migrator()
	for _, model := range PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model: %w", err)
		}
		table := stmt.Schema.Table
		if migrator.HasTable(model) {
			status.Present = append(status.Present, table)
		} else {
			status.Missing = append(status.Missing, table)
		}
	}
	return status, nil
}
