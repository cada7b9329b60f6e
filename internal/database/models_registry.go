package database

import "agora/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.PostFile{},
		&models.PostStats{},
		&models.Comment{},
		&models.Like{},
	}
}
