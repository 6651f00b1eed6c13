package database

import "thesisrepo/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters: referenced tables come before the tables pointing at them.
func PersistentModels() []any {
	return []any{
		&models.Faculty{},
		&models.Department{},
		&models.User{},
		&models.Thesis{},
		&models.Comment{},
		&models.Citation{},
		&models.ViewEvent{},
		&models.Favorite{},
	}
}
